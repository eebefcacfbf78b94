package util

// Upload related constants
const (
	MimeImage = "image/"
	MimeAudio = "audio/"

	DefaultUploadFolder = "interventions"
)

var AllowedUploadMimePrefixes = []string{MimeImage, MimeAudio}

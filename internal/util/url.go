package util

import (
	"net/url"
	"strings"
)

// stray fragments that have been seen glued onto stored image URLs
var urlJunkMarkers = []string{"\n", "\r", "\t", " ", "\"", "'", "`", "<", ">", "{", "}", ";", "${", ")"}

// SanitizeImageURL trims anything after the first character that cannot belong
// to a stored image URL and returns "" unless what is left is an absolute
// http(s) URL. Blob and data URLs are local previews and are dropped too.
func SanitizeImageURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	cut := len(s)
	for _, m := range urlJunkMarkers {
		if i := strings.Index(s, m); i >= 0 && i < cut {
			cut = i
		}
	}
	s = s[:cut]

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

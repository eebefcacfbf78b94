package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"literacy_backend/internal/config"
	"literacy_backend/internal/util"
	"literacy_backend/pkg/logger"
	"literacy_backend/pkg/monitoring"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Presigner issues time-limited PUT URLs for object keys.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
}

// MinioPresigner signs S3 PUT requests with minio-go.
type MinioPresigner struct {
	Client *minio.Client
	Bucket string
}

func NewMinioPresigner(cfg *config.StorageConfig) (*MinioPresigner, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	return &MinioPresigner{Client: client, Bucket: cfg.Bucket}, nil
}

func (p *MinioPresigner) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	headers := http.Header{}
	headers.Set("Content-Type", contentType)
	u, err := p.Client.PresignHeader(ctx, http.MethodPut, p.Bucket, key, expiry, nil, headers)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

type UploadURLRequest struct {
	FileName string `json:"fileName" binding:"required"`
	FileType string `json:"fileType" binding:"required"`
	Folder   string `json:"folder"`
}

type UploadURLResponse struct {
	UploadURL string    `json:"uploadUrl"`
	FileURL   string    `json:"fileUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UploadService struct {
	Presigner Presigner
	Bucket    string
	Region    string
	Expiry    time.Duration
	Now       func() time.Time
}

func NewUploadService(presigner Presigner, cfg *config.StorageConfig) *UploadService {
	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = 5 * time.Minute
	}
	return &UploadService{
		Presigner: presigner,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		Expiry:    expiry,
		Now:       time.Now,
	}
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeFileName keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with an underscore.
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		name = ""
	}
	name = unsafeKeyChars.ReplaceAllString(name, "_")
	if name == "" {
		name = "file"
	}
	return name
}

func sanitizeFolder(folder string) string {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return util.DefaultUploadFolder
	}
	parts := strings.Split(folder, "/")
	clean := parts[:0]
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		clean = append(clean, unsafeKeyChars.ReplaceAllString(p, "_"))
	}
	if len(clean) == 0 {
		return util.DefaultUploadFolder
	}
	return strings.Join(clean, "/")
}

// ObjectKey builds "<folder>/<epochMillis>_<fileName>".
func ObjectKey(folder, fileName string, at time.Time) string {
	return fmt.Sprintf("%s/%d_%s", sanitizeFolder(folder), at.UnixMilli(), SanitizeFileName(fileName))
}

// PublicURL is the virtual-hosted S3 URL the object is served from once uploaded.
func (s *UploadService) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Bucket, s.Region, key)
}

func allowedUploadType(fileType string) bool {
	for _, prefix := range util.AllowedUploadMimePrefixes {
		if strings.HasPrefix(fileType, prefix) && len(fileType) > len(prefix) {
			return true
		}
	}
	return false
}

func (s *UploadService) CreateUploadURL(ctx context.Context, req UploadURLRequest) (*UploadURLResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if s.Presigner == nil {
		return nil, errors.New("object storage is not configured")
	}
	fileType := strings.ToLower(strings.TrimSpace(req.FileType))
	if !allowedUploadType(fileType) {
		return nil, util.NewValidationError("", util.FieldError{Field: "fileType", Message: "only image and audio uploads are allowed"})
	}

	now := s.Now()
	key := ObjectKey(req.Folder, req.FileName, now)
	uploadURL, err := s.Presigner.PresignPut(ctx, key, fileType, s.Expiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload for %s: %w", key, err)
	}

	monitoring.UploadURLsIssued.WithLabelValues(strings.SplitN(key, "/", 2)[0]).Inc()
	logger.Log.Debug("upload url issued", zap.String("key", key), zap.String("fileType", fileType))
	return &UploadURLResponse{
		UploadURL: uploadURL,
		FileURL:   s.PublicURL(key),
		Key:       key,
		ExpiresAt: now.Add(s.Expiry),
	}, nil
}

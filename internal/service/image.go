package service

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/storefront/internal/domain"
)

const maxImageSize = 10 << 20 // 10MB

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageService stores uploaded product images and serves them back.
type ImageService struct {
	files   domain.FileStore
	baseURL string
	now     func() time.Time
}

// NewImageService creates a new ImageService. Image URLs are built as
// baseURL + "/images/" + key.
func NewImageService(files domain.FileStore, baseURL string) *ImageService {
	return &ImageService{
		files:   files,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// Upload validates and stores an image, returning its storage key and the
// public URL it is served from.
func (s *ImageService) Upload(ctx context.Context, filename string, data []byte) (key, url string, err error) {
	if len(data) == 0 {
		return "", "", fmt.Errorf("%w: empty file", domain.ErrInvalidInput)
	}
	if len(data) > maxImageSize {
		return "", "", fmt.Errorf("%w: image exceeds 10MB limit", domain.ErrInvalidInput)
	}

	// Sniff the bytes; the multipart header is client-controlled.
	contentType := http.DetectContentType(data)
	defaultExt, ok := imageExtensions[contentType]
	if !ok {
		return "", "", fmt.Errorf("%w: unsupported image type %s", domain.ErrInvalidInput, contentType)
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if !validExtension(ext) {
		ext = defaultExt
	}

	key = fmt.Sprintf("product_%d_%s%s", s.now().UnixMilli(), uuid.NewString(), ext)
	if err := s.files.Save(ctx, key, data); err != nil {
		return "", "", fmt.Errorf("save file: %w", err)
	}

	return key, s.URL(key), nil
}

// Open returns the stored bytes and their content type.
func (s *ImageService) Open(ctx context.Context, key string) ([]byte, string, error) {
	data, err := s.files.Get(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("get file: %w", err)
	}
	return data, http.DetectContentType(data), nil
}

// URL returns the public URL for a storage key.
func (s *ImageService) URL(key string) string {
	return s.baseURL + "/images/" + key
}

func validExtension(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}

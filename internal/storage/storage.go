// Package storage keeps uploaded profile pictures.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"cluster-ledger-backend/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidKey   = errors.New("invalid storage key")
)

// FileStorage stores files addressed by slash separated keys.
type FileStorage interface {
	SaveFile(ctx context.Context, key string, reader io.Reader) error
	ReadFile(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteFile(ctx context.Context, key string) error
	// FileExists reports whether the key exists and its size.
	FileExists(ctx context.Context, key string) (bool, int64, error)
	// URL is where clients fetch the file from.
	URL(key string) string
}

// NewProfileKey returns a fresh key for a profile picture, keeping the
// extension of the uploaded file name.
func NewProfileKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return "profiles/" + uuid.New().String() + ext
}

// Policy limits what may be uploaded.
type Policy struct {
	MaxBytes     int64
	AllowedTypes []string
}

// Check validates an upload's declared content type and size.
func (p Policy) Check(contentType string, size int64) error {
	if len(p.AllowedTypes) > 0 && !slices.Contains(p.AllowedTypes, contentType) {
		return &domain.ValidationError{Field: "image", Reason: fmt.Sprintf("content type %q is not allowed", contentType)}
	}
	if p.MaxBytes > 0 && size > p.MaxBytes {
		return &domain.ValidationError{Field: "image", Reason: fmt.Sprintf("file exceeds %d bytes", p.MaxBytes)}
	}
	return nil
}

// cleanKey rejects keys that would escape the storage root.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// Package storage persists rendered images and returns their public URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidConfig      = errors.New("invalid storage configuration")
	ErrInvalidName        = errors.New("invalid object name")
	ErrNotFound           = errors.New("stored file not found")
	ErrWriteFailed        = errors.New("failed to write file")
	ErrDeleteFailed       = errors.New("failed to delete file")
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrServiceUnavailable = errors.New("storage service temporarily unavailable")
	ErrOperationTimeout   = errors.New("storage operation timed out")
	ErrOperationCanceled  = errors.New("storage operation canceled")
)

// Storage saves encoded images under a flat name.
type Storage interface {
	// Save writes data and returns the URL it is served from.
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
	// Delete removes a previously saved object. A missing object is not an error.
	Delete(ctx context.Context, name string) error
}

// UniqueName returns a collision-free file name such as qr-classic-<uuid>.png.
func UniqueName(style, ext string) string {
	if style == "" {
		style = "classic"
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("qr-%s-%s%s", style, uuid.NewString(), ext)
}

// cleanName rejects anything that is not a single plain path element.
func cleanName(name string) (string, error) {
	n := strings.TrimPrefix(name, "/")
	if n == "" || n != path.Base(n) || n == "." || n == ".." || strings.ContainsAny(n, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return n, nil
}

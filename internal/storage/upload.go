package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("unsupported file type")

var allowedExtensions = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"svg":  "image/svg+xml",
	"gif":  "image/gif",
}

// ObjectStore is the subset of an S3-compatible bucket the uploader needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PublicURL(ctx context.Context, key string) (string, error)
}

// Uploader stores user images under a random prefix and hands back a
// permanent URL for them.
type Uploader struct {
	store ObjectStore
	log   *slog.Logger
	newID func() string
}

func NewUploader(store ObjectStore, log *slog.Logger) *Uploader {
	return &Uploader{store: store, log: log, newID: uuid.NewString}
}

// Extension returns the lower-cased extension of filename if it is one of
// the accepted image types.
func Extension(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: Files of type %s are not supported", ErrUnsupportedType, ext)
	}
	return ext, nil
}

// Upload stores r for userID. filename only contributes its extension.
func (u *Uploader) Upload(ctx context.Context, userID int, filename string, r io.Reader, size int64) (string, error) {
	ext, err := Extension(filename)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%d.%s", u.newID(), userID, ext)
	if err := u.store.Put(ctx, key, r, size, allowedExtensions[ext]); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", key, err)
	}

	url, err := u.store.PublicURL(ctx, key)
	if err != nil {
		return "", err
	}

	u.log.Info("file uploaded", "user_id", userID, "key", key, "size", size)
	return url, nil
}

package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/emilythestrangee/discuss/backend/internal/config"
)

// MinIOStore keeps uploads in an S3-compatible bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

// NewMinIOStore connects to the bucket, creating it if it does not exist.
func NewMinIOStore(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	log.Info("object store connected", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return &MinIOStore{client: client, bucket: cfg.Bucket, expiry: cfg.URLExpiry}, nil
}

func (m *MinIOStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// PublicURL presigns a GET for key and drops the signature. The bucket is
// public, so the bare URL keeps working after the signature would expire.
func (m *MinIOStore) PublicURL(ctx context.Context, key string) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to sign url: %w", err)
	}
	return stripSignature(u.String()), nil
}

func stripSignature(url string) string {
	base, _, _ := strings.Cut(url, "?")
	return base
}

package minio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"dossier/internal/storage"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds connection settings for an S3-compatible endpoint
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// BlobStore stores blobs as objects in one bucket.
type BlobStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewBlobStore connects to the endpoint and creates the bucket if missing
func NewBlobStore(ctx context.Context, cfg Config, logger *slog.Logger) (*BlobStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("bucket created", "bucket", cfg.Bucket)
	}

	return &BlobStore{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// Put uploads the object and returns its key
func (s *BlobStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	key := storage.ObjectKey(name)
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	s.logger.Debug("object stored", "key", key, "size", info.Size)
	return key, nil
}

// Delete removes the object; missing objects are ignored
func (s *BlobStore) Delete(ctx context.Context, ref string) error {
	err := s.client.RemoveObject(ctx, s.bucket, ref, minio.RemoveObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("remove object %s: %w", ref, err)
	}
	return nil
}

// URLFor returns a presigned GET URL valid for ttl
func (s *BlobStore) URLFor(ctx context.Context, ref string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, ref, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", ref, err)
	}
	return u.String(), nil
}

// Ping checks that the bucket is reachable
func (s *BlobStore) Ping(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	return nil
}

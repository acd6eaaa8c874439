package minio

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"image-derivatives/internal/config"
	"image-derivatives/internal/repository/blob"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// BlobStore is the S3-compatible blob store adapter. Buckets are provisioned
// on demand and objects are written with their content type so stored URLs
// serve directly.
type BlobStore struct {
	client     *minio.Client
	publicBase string
	retries    retry.Strategy
	logger     *zlog.Zerolog
}

func NewBlobStore(cfg *config.Config, retries retry.Strategy, logger *zlog.Zerolog) (*BlobStore, error) {
	client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &BlobStore{
		client:     client,
		publicBase: strings.TrimRight(cfg.Storage.PublicBaseURL, "/"),
		retries:    retries,
		logger:     logger,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *BlobStore) EnsureBucket(ctx context.Context, bucket string) error {
	err := retry.Do(func() error {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
		s.logger.Info().Str("bucket", bucket).Msg("Created bucket")
		return nil
	}, s.retries)

	if err != nil {
		return fmt.Errorf("%w: failed to ensure bucket %q: %v", blob.ErrStorageUnavailable, bucket, err)
	}
	return nil
}

// Exists reports whether an object is already stored under key.
func (s *BlobStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	var found bool
	err := retry.Do(func() error {
		_, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
		if err != nil {
			if minio.ToErrorResponse(err).Code == "NoSuchKey" {
				found = false
				return nil
			}
			return err
		}
		found = true
		return nil
	}, s.retries)

	if err != nil {
		return false, fmt.Errorf("%w: failed to stat object %q: %v", blob.ErrStorageUnavailable, key, err)
	}
	return found, nil
}

// Put writes data under key with the given content type and returns the
// addressable URI of the stored object.
func (s *BlobStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	err := retry.Do(func() error {
		_, err := s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: contentType,
		})
		return err
	}, s.retries)

	if err != nil {
		return "", fmt.Errorf("%w: failed to put object %q: %v", blob.ErrStorageUnavailable, key, err)
	}

	s.logger.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Int("size", len(data)).
		Str("content_type", contentType).
		Msg("Object stored")

	return s.URL(bucket, key), nil
}

// URL builds the browser-accessible URL for a stored object.
func (s *BlobStore) URL(bucket, key string) string {
	return s.publicBase + "/" + bucket + "/" + key
}

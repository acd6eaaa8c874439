package derivative

import (
	"context"

	"image-derivatives/internal/domain"
)

type blobStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	Exists(ctx context.Context, bucket, key string) (bool, error)
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
	URL(bucket, key string) string
}

type eventProducer interface {
	Send(ctx context.Context, event *domain.DerivativeEvent) error
}

package broker

import (
	"context"

	"image-derivatives/internal/domain"
)

// Producer publishes derivative completion events for downstream consumers.
type Producer interface {
	Send(ctx context.Context, event *domain.DerivativeEvent) error
	Close() error
}

package derivative

import (
	"context"

	"image-derivatives/internal/domain"
)

type derivativeUsecase interface {
	Generate(ctx context.Context, req *domain.DerivativeRequest) (*domain.DerivativeResult, error)
}

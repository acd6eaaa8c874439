package derivative

import (
	"errors"
	"fmt"

	"image-derivatives/internal/domain"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrDecodeFailed     = errors.New("unsupported or corrupt image data")
	ErrStoreUnavailable = errors.New("blob store unavailable")
)

var (
	ErrEmptySource      = fmt.Errorf("%w: source bytes are empty", ErrInvalidInput)
	ErrMissingFilename  = fmt.Errorf("%w: filename is required", ErrInvalidInput)
	ErrMissingExtension = fmt.Errorf("%w: extension is required", ErrInvalidInput)
	ErrMissingBucket    = fmt.Errorf("%w: target bucket is required", ErrInvalidInput)
	ErrInvalidBounds    = fmt.Errorf("%w: resize bounds must be positive", ErrInvalidInput)
)

// VariantError reports which derivative failed once generation has started.
// Uploads that completed before the failure are not rolled back, their keys
// are deterministic and a retry simply overwrites them.
type VariantError struct {
	Variant domain.Variant
	Err     error
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("variant %s: %v", e.Variant, e.Err)
}

func (e *VariantError) Unwrap() error {
	return e.Err
}

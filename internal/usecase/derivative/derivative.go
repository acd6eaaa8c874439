package derivative

import (
	"context"
	"fmt"
	"time"

	"image-derivatives/internal/contenttype"
	"image-derivatives/internal/domain"
	"image-derivatives/internal/fingerprint"
	"image-derivatives/internal/resize"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/errgroup"
)

// DerivativeUsecase turns one raw upload into three stored derivatives:
// a size-capped original, a sized rendition and a thumbnail. Identical
// artifacts are detected up front and not regenerated when dedupe is on.
type DerivativeUsecase struct {
	store    blobStore
	producer eventProducer
	logger   *zlog.Zerolog
}

// NewDerivativeUsecase wires the pipeline. producer may be nil when no
// broker is deployed; completion events are then skipped.
func NewDerivativeUsecase(store blobStore, producer eventProducer, logger *zlog.Zerolog) *DerivativeUsecase {
	return &DerivativeUsecase{
		store:    store,
		producer: producer,
		logger:   logger,
	}
}

// Generate runs the full pipeline for one request. The returned result maps
// each URI to its variant regardless of upload completion order.
func (u *DerivativeUsecase) Generate(ctx context.Context, req *domain.DerivativeRequest) (*domain.DerivativeResult, error) {
	started := time.Now()

	if err := validate(req); err != nil {
		return nil, err
	}

	// Naming is fixed before any derivative work so all three keys share
	// one base name.
	filename := req.Filename
	if req.UseHashForFilename {
		filename = fingerprint.Sum(req.SourceBytes)
	}

	result := &domain.DerivativeResult{}
	for _, v := range domain.Variants() {
		result.ByVariant(v).Key = domain.ArtifactKey(req.SubDirectory, filename, v, req.Extension)
	}

	if err := u.store.EnsureBucket(ctx, req.Bucket); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if req.DeDupe {
		// The original key is the canonical existence witness for the
		// whole group: one probe, no per-variant races.
		exists, err := u.store.Exists(ctx, req.Bucket, result.Original.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: dedupe check: %v", ErrStoreUnavailable, err)
		}
		if exists {
			for _, v := range domain.Variants() {
				art := result.ByVariant(v)
				art.URI = u.store.URL(req.Bucket, art.Key)
			}
			result.Skipped = true
			result.Elapsed = time.Since(started)

			u.logger.Info().
				Str("bucket", req.Bucket).
				Str("key", result.Original.Key).
				Dur("duration", result.Elapsed).
				Msg("Derivatives already stored, generation skipped")
			return result, nil
		}
	}

	src, err := resize.Decode(req.SourceBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	contentType := contenttype.Resolve(req.Extension)

	// The three computations are independent and each reads only the
	// untouched decoded source, so they run concurrently.
	g, gctx := errgroup.WithContext(ctx)
	for _, v := range domain.Variants() {
		art := result.ByVariant(v)
		bounds := req.BoundsFor(v)
		g.Go(func() error {
			variantStart := time.Now()

			data, err := resize.Encode(resize.Fit(src, bounds))
			if err != nil {
				return &VariantError{Variant: v, Err: err}
			}

			uri, err := u.store.Put(gctx, req.Bucket, art.Key, data, contentType)
			if err != nil {
				return &VariantError{Variant: v, Err: fmt.Errorf("%w: %v", ErrStoreUnavailable, err)}
			}

			art.URI = uri
			art.Elapsed = time.Since(variantStart)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		u.logger.Error().
			Err(err).
			Str("bucket", req.Bucket).
			Str("filename", filename).
			Msg("Derivative generation failed")
		return result, err
	}

	result.Elapsed = time.Since(started)

	u.logger.Info().
		Str("bucket", req.Bucket).
		Str("filename", filename).
		Str("format", src.Format).
		Dur("duration", result.Elapsed).
		Msg("Derivatives generated")

	u.publishEvent(ctx, req, filename, result)
	return result, nil
}

func (u *DerivativeUsecase) publishEvent(ctx context.Context, req *domain.DerivativeRequest, filename string, result *domain.DerivativeResult) {
	if u.producer == nil {
		return
	}

	event := &domain.DerivativeEvent{
		ID:        uuid.New().String(),
		Bucket:    req.Bucket,
		Filename:  filename,
		Original:  result.Original.URI,
		Sized:     result.Sized.URI,
		Thumbnail: result.Thumbnail.URI,
		Skipped:   result.Skipped,
		ElapsedMs: result.Elapsed.Milliseconds(),
	}

	if err := u.producer.Send(ctx, event); err != nil {
		u.logger.Error().Err(err).Str("filename", filename).Msg("Failed to publish completion event")
	}
}

func validate(req *domain.DerivativeRequest) error {
	if len(req.SourceBytes) == 0 {
		return ErrEmptySource
	}
	if req.Filename == "" && !req.UseHashForFilename {
		return ErrMissingFilename
	}
	if req.Extension == "" {
		return ErrMissingExtension
	}
	if req.Bucket == "" {
		return ErrMissingBucket
	}
	for _, v := range domain.Variants() {
		b := req.BoundsFor(v)
		if b.MaxWidth <= 0 || b.MaxHeight <= 0 {
			return fmt.Errorf("%w (%s: %dx%d)", ErrInvalidBounds, v, b.MaxWidth, b.MaxHeight)
		}
	}
	return nil
}

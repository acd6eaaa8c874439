package derivative

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"image-derivatives/internal/domain"
	"image-derivatives/internal/http-server/handler/derivative/dto"
	derivative_uc "image-derivatives/internal/usecase/derivative"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

const maxMemory = 32 << 20

type DerivativeHandler struct {
	usecase       derivativeUsecase
	validate      *validator.Validate
	logger        *zlog.Zerolog
	maxUploadSize int64
	defaultBucket string
}

func NewDerivativeHandler(usecase derivativeUsecase, maxUploadSize int64, defaultBucket string, logger *zlog.Zerolog) *DerivativeHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = domain.DefaultMaxUploadSize
	}
	return &DerivativeHandler{
		usecase:       usecase,
		validate:      validator.New(),
		logger:        logger,
		maxUploadSize: maxUploadSize,
		defaultBucket: defaultBucket,
	}
}

// bucketOrDefault falls back to the configured bucket when the request
// leaves the container empty.
func (h *DerivativeHandler) bucketOrDefault(bucket string) string {
	if bucket == "" {
		return h.defaultBucket
	}
	return bucket
}

// Process accepts a single JSON body with a base64 encoded image plus
// sizing parameters and responds with the three stored derivative URIs.
func (h *DerivativeHandler) Process(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var req dto.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to decode request body")
		h.respondError(w, http.StatusBadRequest, "Invalid request format", nil)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.logger.Warn().Err(err).Msg("Request validation failed")
		h.respondError(w, http.StatusBadRequest, "Invalid request parameters", err)
		return
	}

	sourceBytes, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Invalid base64 payload")
		h.respondError(w, http.StatusBadRequest, "Invalid base64 image payload", nil)
		return
	}

	h.generate(ctx, w, &domain.DerivativeRequest{
		SourceBytes:        sourceBytes,
		Filename:           req.FileName,
		Extension:          req.Extension,
		UseHashForFilename: req.UseHashForFileName,
		DeDupe:             req.DeDupe,
		SubDirectory:       req.SubDirectory,
		Bucket:             h.bucketOrDefault(req.BlobContainer),
		Original:           domain.Bounds{MaxWidth: req.OriginalMaxWidth, MaxHeight: req.OriginalMaxHeight},
		Sized:              domain.Bounds{MaxWidth: req.SizedMaxWidth, MaxHeight: req.SizedMaxHeight},
		Thumbnail:          domain.Bounds{MaxWidth: req.ThumbnailMaxWidth, MaxHeight: req.ThumbnailMaxHeight},
	})
}

// ProcessMultipart is the multipart/form-data ingestion variant. The image
// travels as the "file" part, all other parameters as form values.
func (h *DerivativeHandler) ProcessMultipart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to parse multipart form")
		h.respondError(w, http.StatusBadRequest, "Invalid request format", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "File is required", nil)
		return
	}
	defer file.Close()

	sourceBytes, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", header.Filename).Msg("Failed to read file")
		h.respondError(w, http.StatusInternalServerError, "Failed to read file", err)
		return
	}

	ext := strings.TrimPrefix(filepath.Ext(header.Filename), ".")
	filename := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))

	bounds, err := boundsFromForm(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	h.generate(ctx, w, &domain.DerivativeRequest{
		SourceBytes:        sourceBytes,
		Filename:           filename,
		Extension:          ext,
		UseHashForFilename: r.FormValue("useHashForFileName") == "true",
		DeDupe:             r.FormValue("deDupe") == "true",
		SubDirectory:       r.FormValue("subDirectory"),
		Bucket:             h.bucketOrDefault(r.FormValue("blobContainer")),
		Original:           bounds[domain.VariantOriginal],
		Sized:              bounds[domain.VariantSized],
		Thumbnail:          bounds[domain.VariantThumbnail],
	})
}

func (h *DerivativeHandler) generate(ctx context.Context, w http.ResponseWriter, req *domain.DerivativeRequest) {
	result, err := h.usecase.Generate(ctx, req)
	if err != nil {
		h.handleGenerateError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.ProcessResponse{
		Original:  result.Original.URI,
		Sized:     result.Sized.URI,
		Thumbnail: result.Thumbnail.URI,
		Skipped:   result.Skipped,
		ElapsedMs: result.Elapsed.Milliseconds(),
	})
}

func (h *DerivativeHandler) handleGenerateError(w http.ResponseWriter, err error) {
	var variantErr *derivative_uc.VariantError

	switch {
	case errors.Is(err, derivative_uc.ErrInvalidInput):
		h.respondError(w, http.StatusBadRequest, "Invalid input parameters", err)
	case errors.Is(err, derivative_uc.ErrDecodeFailed):
		h.respondError(w, http.StatusUnprocessableEntity, "Unsupported image format", err)
	case errors.As(err, &variantErr):
		h.logger.Error().Err(err).Str("variant", string(variantErr.Variant)).Msg("Variant upload failed")
		h.respondError(w, http.StatusBadGateway, "Failed to store derivative "+string(variantErr.Variant), err)
	case errors.Is(err, derivative_uc.ErrStoreUnavailable):
		h.respondError(w, http.StatusBadGateway, "Blob store unavailable", err)
	default:
		h.logger.Error().Err(err).Msg("Derivative generation failed")
		h.respondError(w, http.StatusInternalServerError, "Failed to process image", err)
	}
}

func boundsFromForm(r *http.Request) (map[domain.Variant]domain.Bounds, error) {
	out := make(map[domain.Variant]domain.Bounds, 3)
	for _, v := range domain.Variants() {
		width, err := formInt(r, string(v)+"MaxWidth")
		if err != nil {
			return nil, err
		}
		height, err := formInt(r, string(v)+"MaxHeight")
		if err != nil {
			return nil, err
		}
		out[v] = domain.Bounds{MaxWidth: width, MaxHeight: height}
	}
	return out, nil
}

func formInt(r *http.Request, field string) (int, error) {
	value, err := strconv.Atoi(r.FormValue(field))
	if err != nil {
		return 0, errors.New(field + " must be a positive integer")
	}
	return value, nil
}

func (h *DerivativeHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *DerivativeHandler) respondError(w http.ResponseWriter, status int, message string, err error) {
	response := dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}

	if err != nil {
		response.Details = err.Error()
	}

	h.respondJSON(w, status, response)
}

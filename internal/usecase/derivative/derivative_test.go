package derivative

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"strings"
	"sync"
	"testing"

	"image-derivatives/internal/domain"
	"image-derivatives/internal/fingerprint"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

type fakeStore struct {
	mu           sync.Mutex
	buckets      map[string]bool
	objects      map[string][]byte
	contentTypes map[string]string
	existsCalls  int
	putCalls     int
	failPut      string // substring of keys whose Put fails
	failExists   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		buckets:      make(map[string]bool),
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (s *fakeStore) EnsureBucket(ctx context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[bucket] = true
	return nil
}

func (s *fakeStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.existsCalls++
	if s.failExists {
		return false, errors.New("stat failed")
	}
	_, ok := s.objects[bucket+"/"+key]
	return ok, nil
}

func (s *fakeStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls++
	if s.failPut != "" && strings.Contains(key, s.failPut) {
		return "", errors.New("put failed")
	}
	s.objects[bucket+"/"+key] = data
	s.contentTypes[bucket+"/"+key] = contentType
	return s.URL(bucket, key), nil
}

func (s *fakeStore) URL(bucket, key string) string {
	return "http://store.local/" + bucket + "/" + key
}

type fakeProducer struct {
	mu     sync.Mutex
	events []*domain.DerivativeEvent
}

func (p *fakeProducer) Send(ctx context.Context, event *domain.DerivativeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

func newUsecase(store *fakeStore, producer eventProducer) *DerivativeUsecase {
	zlog.Init()
	return NewDerivativeUsecase(store, producer, &zlog.Logger)
}

func testRequest(source []byte) *domain.DerivativeRequest {
	return &domain.DerivativeRequest{
		SourceBytes:  source,
		Filename:     "jpg-test",
		Extension:    "jpg",
		SubDirectory: "uploads/2026/",
		Bucket:       "images",
		Original:     domain.Bounds{MaxWidth: 3840, MaxHeight: 2160},
		Sized:        domain.Bounds{MaxWidth: 1920, MaxHeight: 1080},
		Thumbnail:    domain.Bounds{MaxWidth: 300, MaxHeight: 300},
	}
}

func TestGenerateStoresThreeVariants(t *testing.T) {
	store := newFakeStore()
	u := newUsecase(store, nil)

	result, err := u.Generate(context.Background(), testRequest(jpegBytes(t, 64, 48)))
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, "uploads/2026/jpg-test_original.jpg", result.Original.Key)
	assert.Equal(t, "uploads/2026/jpg-test_sized.jpg", result.Sized.Key)
	assert.Equal(t, "uploads/2026/jpg-test_thumbnail.jpg", result.Thumbnail.Key)
	assert.Equal(t, "http://store.local/images/uploads/2026/jpg-test_original.jpg", result.Original.URI)

	assert.True(t, store.buckets["images"])
	assert.Equal(t, 3, store.putCalls)
	assert.Zero(t, store.existsCalls)
	for key, ct := range store.contentTypes {
		assert.Equal(t, "image/jpeg", ct, key)
	}
}

func TestGenerateHashNaming(t *testing.T) {
	store := newFakeStore()
	u := newUsecase(store, nil)

	source := jpegBytes(t, 64, 48)
	req := testRequest(source)
	req.Filename = ""
	req.UseHashForFilename = true

	result, err := u.Generate(context.Background(), req)
	require.NoError(t, err)

	id := fingerprint.Sum(source)
	assert.Equal(t, "uploads/2026/"+id+"_original.jpg", result.Original.Key)
	assert.Equal(t, "uploads/2026/"+id+"_sized.jpg", result.Sized.Key)
	assert.Equal(t, "uploads/2026/"+id+"_thumbnail.jpg", result.Thumbnail.Key)
}

func TestGenerateDedupeIdempotence(t *testing.T) {
	store := newFakeStore()
	u := newUsecase(store, nil)

	req := testRequest(jpegBytes(t, 64, 48))
	req.DeDupe = true

	first, err := u.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Skipped)
	assert.Equal(t, 3, store.putCalls)

	second, err := u.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Skipped)

	// no new uploads, exactly one existence probe per run
	assert.Equal(t, 3, store.putCalls)
	assert.Equal(t, 2, store.existsCalls)

	assert.Equal(t, first.Original.URI, second.Original.URI)
	assert.Equal(t, first.Sized.URI, second.Sized.URI)
	assert.Equal(t, first.Thumbnail.URI, second.Thumbnail.URI)
}

func TestGenerateWithoutDedupeOverwrites(t *testing.T) {
	store := newFakeStore()
	u := newUsecase(store, nil)

	req := testRequest(jpegBytes(t, 64, 48))

	first, err := u.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := u.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, first.Skipped)
	assert.False(t, second.Skipped)
	assert.Equal(t, 6, store.putCalls)
	assert.Zero(t, store.existsCalls)
	assert.Equal(t, first.Original.URI, second.Original.URI)
}

func TestGenerateInvalidInput(t *testing.T) {
	u := newUsecase(newFakeStore(), nil)

	tests := []struct {
		name   string
		mutate func(*domain.DerivativeRequest)
		want   error
	}{
		{"empty source", func(r *domain.DerivativeRequest) { r.SourceBytes = nil }, ErrEmptySource},
		{"missing filename", func(r *domain.DerivativeRequest) { r.Filename = "" }, ErrMissingFilename},
		{"missing extension", func(r *domain.DerivativeRequest) { r.Extension = "" }, ErrMissingExtension},
		{"missing bucket", func(r *domain.DerivativeRequest) { r.Bucket = "" }, ErrMissingBucket},
		{"zero width", func(r *domain.DerivativeRequest) { r.Sized.MaxWidth = 0 }, ErrInvalidBounds},
		{"negative height", func(r *domain.DerivativeRequest) { r.Thumbnail.MaxHeight = -1 }, ErrInvalidBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest(jpegBytes(t, 8, 8))
			tt.mutate(req)

			_, err := u.Generate(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestGenerateDecodeError(t *testing.T) {
	store := newFakeStore()
	u := newUsecase(store, nil)

	req := testRequest([]byte("not an image"))

	_, err := u.Generate(context.Background(), req)
	assert.ErrorIs(t, err, ErrDecodeFailed)
	assert.Zero(t, store.putCalls)
}

func TestGenerateDedupeCheckFailure(t *testing.T) {
	store := newFakeStore()
	store.failExists = true
	u := newUsecase(store, nil)

	req := testRequest(jpegBytes(t, 8, 8))
	req.DeDupe = true

	_, err := u.Generate(context.Background(), req)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Zero(t, store.putCalls)
}

func TestGenerateReportsFailedVariant(t *testing.T) {
	store := newFakeStore()
	store.failPut = "_sized."
	u := newUsecase(store, nil)

	_, err := u.Generate(context.Background(), testRequest(jpegBytes(t, 64, 48)))
	require.Error(t, err)

	var variantErr *VariantError
	require.ErrorAs(t, err, &variantErr)
	assert.Equal(t, domain.VariantSized, variantErr.Variant)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestGeneratePublishesEvent(t *testing.T) {
	store := newFakeStore()
	producer := &fakeProducer{}
	u := newUsecase(store, producer)

	result, err := u.Generate(context.Background(), testRequest(jpegBytes(t, 64, 48)))
	require.NoError(t, err)

	require.Len(t, producer.events, 1)
	event := producer.events[0]
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "images", event.Bucket)
	assert.Equal(t, "jpg-test", event.Filename)
	assert.Equal(t, result.Original.URI, event.Original)
	assert.False(t, event.Skipped)
}

func TestGenerateSkippedRunPublishesNoEvent(t *testing.T) {
	store := newFakeStore()
	producer := &fakeProducer{}
	u := newUsecase(store, producer)

	req := testRequest(jpegBytes(t, 64, 48))
	req.DeDupe = true

	_, err := u.Generate(context.Background(), req)
	require.NoError(t, err)
	_, err = u.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, producer.events, 1)
}

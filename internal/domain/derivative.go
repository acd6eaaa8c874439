package domain

import "time"

type Variant string

const (
	VariantOriginal  Variant = "original"
	VariantSized     Variant = "sized"
	VariantThumbnail Variant = "thumbnail"
)

// Variants returns the three derivative targets. Order carries no meaning,
// the computations are independent of each other.
func Variants() [3]Variant {
	return [3]Variant{VariantOriginal, VariantSized, VariantThumbnail}
}

// Bounds is the maximum box one derivative has to fit into.
type Bounds struct {
	MaxWidth  int
	MaxHeight int
}

// DerivativeRequest is the per-call configuration of the pipeline. It is
// built once at the boundary and never mutated afterwards.
type DerivativeRequest struct {
	SourceBytes        []byte
	Filename           string
	Extension          string
	UseHashForFilename bool
	DeDupe             bool
	SubDirectory       string
	Bucket             string
	Original           Bounds
	Sized              Bounds
	Thumbnail          Bounds
}

func (r *DerivativeRequest) BoundsFor(v Variant) Bounds {
	switch v {
	case VariantSized:
		return r.Sized
	case VariantThumbnail:
		return r.Thumbnail
	default:
		return r.Original
	}
}

// ArtifactKey derives the storage path for one variant:
// {subDirectory}{filename}_{variant}.{extension}. The sub directory is used
// verbatim, separators included, so keys stay predictable for clients.
func ArtifactKey(subDirectory, filename string, v Variant, extension string) string {
	return subDirectory + filename + "_" + string(v) + "." + extension
}

// Artifact is one stored derivative.
type Artifact struct {
	Key     string
	URI     string
	Elapsed time.Duration
}

// DerivativeResult is the assembled outcome of one pipeline run. Skipped is
// true when the dedupe gate found the original key already stored.
type DerivativeResult struct {
	Original  Artifact
	Sized     Artifact
	Thumbnail Artifact
	Skipped   bool
	Elapsed   time.Duration
}

func (r *DerivativeResult) ByVariant(v Variant) *Artifact {
	switch v {
	case VariantSized:
		return &r.Sized
	case VariantThumbnail:
		return &r.Thumbnail
	default:
		return &r.Original
	}
}

// DerivativeEvent is published to the results topic after a generated set.
type DerivativeEvent struct {
	ID        string
	Bucket    string
	Filename  string
	Original  string
	Sized     string
	Thumbnail string
	Skipped   bool
	ElapsedMs int64
}

const (
	DefaultMaxUploadSize = 32 << 20
	DefaultJPEGQuality   = 85
)

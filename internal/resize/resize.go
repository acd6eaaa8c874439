// Package resize implements proportional max-fit scaling for still and
// animated sources. Every operation reads from the decoded source without
// mutating it, so one decode can feed any number of derivative computations.
package resize

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"strings"

	"image-derivatives/internal/domain"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode parses raw upload bytes into an ImageSource. Animated-capable
// formats are decoded frame-wise so resizing can preserve the sequence.
func Decode(data []byte) (*domain.ImageSource, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if format == "gif" {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode gif frames: %w", err)
		}
		return &domain.ImageSource{Format: format, Anim: g}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &domain.ImageSource{Format: format, Still: img}, nil
}

// Fit scales the source down so both dimensions fit the bounds while
// preserving aspect ratio. Sources already inside the bounds are returned
// unchanged, never upscaled. The input source is not modified.
func Fit(src *domain.ImageSource, bounds domain.Bounds) *domain.ImageSource {
	if src.Animated() {
		return &domain.ImageSource{Format: src.Format, Anim: fitAnimation(src.Anim, bounds)}
	}
	return &domain.ImageSource{Format: src.Format, Still: fitStill(src.Still, bounds)}
}

// Encode serializes a source back to bytes in its decoded format. Animated
// sources keep their full frame sequence. Formats without an encoder fall
// back to JPEG.
func Encode(src *domain.ImageSource) ([]byte, error) {
	buf := new(bytes.Buffer)

	if src.Animated() {
		if err := gif.EncodeAll(buf, src.Anim); err != nil {
			return nil, fmt.Errorf("failed to encode gif: %w", err)
		}
		return buf.Bytes(), nil
	}

	var err error
	switch strings.ToLower(src.Format) {
	case "png":
		err = png.Encode(buf, src.Still)
	case "gif":
		err = gif.Encode(buf, src.Still, nil)
	default:
		err = jpeg.Encode(buf, src.Still, &jpeg.Options{Quality: domain.DefaultJPEGQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s image: %w", src.Format, err)
	}
	return buf.Bytes(), nil
}

// scaleFactor returns min(maxW/srcW, maxH/srcH) clamped to 1.0.
func scaleFactor(srcW, srcH, maxW, maxH int) float64 {
	factor := math.Min(float64(maxW)/float64(srcW), float64(maxH)/float64(srcH))
	if factor >= 1 {
		return 1
	}
	return factor
}

func scaleLength(length int, factor float64) int {
	scaled := int(math.Round(float64(length) * factor))
	if scaled < 1 {
		return 1
	}
	return scaled
}

func fitStill(img image.Image, bounds domain.Bounds) image.Image {
	srcBounds := img.Bounds()
	factor := scaleFactor(srcBounds.Dx(), srcBounds.Dy(), bounds.MaxWidth, bounds.MaxHeight)
	if factor == 1 {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0,
		scaleLength(srcBounds.Dx(), factor),
		scaleLength(srcBounds.Dy(), factor)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, srcBounds, xdraw.Over, nil)
	return dst
}

// fitAnimation applies one shared scale factor, computed from the logical
// screen, to every frame. Frame order, delays, disposal and loop metadata
// are carried over untouched.
func fitAnimation(g *gif.GIF, bounds domain.Bounds) *gif.GIF {
	factor := scaleFactor(g.Config.Width, g.Config.Height, bounds.MaxWidth, bounds.MaxHeight)
	if factor == 1 {
		return g
	}

	out := &gif.GIF{
		Image:           make([]*image.Paletted, 0, len(g.Image)),
		Delay:           append([]int(nil), g.Delay...),
		Disposal:        append([]byte(nil), g.Disposal...),
		LoopCount:       g.LoopCount,
		BackgroundIndex: g.BackgroundIndex,
		Config: image.Config{
			ColorModel: g.Config.ColorModel,
			Width:      scaleLength(g.Config.Width, factor),
			Height:     scaleLength(g.Config.Height, factor),
		},
	}

	canvas := image.Rect(0, 0, out.Config.Width, out.Config.Height)
	for _, frame := range g.Image {
		out.Image = append(out.Image, scaleFrame(frame, factor, canvas))
	}
	return out
}

func scaleFrame(frame *image.Paletted, factor float64, canvas image.Rectangle) *image.Paletted {
	b := frame.Bounds()

	// Edges are scaled by coordinate, not offset+length: the frame's Max
	// never exceeds the logical screen, so the scaled edge never exceeds
	// the scaled screen either. Partial-update frames in optimized GIFs
	// would otherwise overshoot the canvas and break re-encoding.
	scaled := image.Rect(
		scaleCoord(b.Min.X, factor),
		scaleCoord(b.Min.Y, factor),
		scaleCoord(b.Max.X, factor),
		scaleCoord(b.Max.Y, factor))

	// a tiny frame can collapse to an empty rect; give it one pixel back
	// inside the canvas
	if scaled.Dx() == 0 {
		if scaled.Max.X < canvas.Max.X {
			scaled.Max.X++
		} else {
			scaled.Min.X--
		}
	}
	if scaled.Dy() == 0 {
		if scaled.Max.Y < canvas.Max.Y {
			scaled.Max.Y++
		} else {
			scaled.Min.Y--
		}
	}

	// NearestNeighbor keeps the frame on its original palette, so no
	// re-quantization happens between frames.
	dst := image.NewPaletted(scaled, frame.Palette)
	xdraw.NearestNeighbor.Scale(dst, scaled, frame, b, xdraw.Src, nil)
	return dst
}

func scaleCoord(coord int, factor float64) int {
	return int(math.Round(float64(coord) * factor))
}

package domain

import (
	"image"
	"image/gif"
)

// ImageSource is the decoded form of an upload: either a single still frame
// or an ordered animated frame sequence. It is decoded once per request and
// treated as read-only by every derivative computation.
type ImageSource struct {
	Format string
	Still  image.Image
	Anim   *gif.GIF
}

// Animated reports whether the source carries a frame sequence.
func (s *ImageSource) Animated() bool {
	return s.Anim != nil
}

// Size returns the base canvas dimensions. For animated sources that is the
// logical screen, which every frame shares.
func (s *ImageSource) Size() (width, height int) {
	if s.Animated() {
		return s.Anim.Config.Width, s.Anim.Config.Height
	}
	b := s.Still.Bounds()
	return b.Dx(), b.Dy()
}

// Package sprite turns raw fish images into render-ready sprites: white
// background stripped, provenance watermark cleared, downsampled, and
// classified by asset name.
package sprite

import (
	"image"
	"strings"
)

// rightFacingMarker in an asset name marks a fish drawn facing right, which
// therefore swims left-to-right.
const rightFacingMarker = "right_"

// Sprite is a processed fish image plus the classification derived from the
// asset name. Image is never mutated after Process returns.
type Sprite struct {
	Name  string
	Image *image.NRGBA
	Class Classification
}

// RightFacing reports whether the sprite's asset name carries the
// right-facing marker. The match is case-sensitive.
func (s *Sprite) RightFacing() bool {
	return strings.Contains(s.Name, rightFacingMarker)
}

// Size returns the sprite's pixel size before classification scale.
func (s *Sprite) Size() (w, h int) {
	if s.Image == nil {
		return 0, 0
	}
	b := s.Image.Bounds()
	return b.Dx(), b.Dy()
}

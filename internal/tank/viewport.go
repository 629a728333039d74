package tank

import "github.com/phanxgames/aquarium/internal/sprite"

// ReferenceWidth is the viewport width the motion constants were tuned
// against. ReferenceHeight matches the sprite package's.
const (
	ReferenceWidth  = 1800.0
	ReferenceHeight = sprite.ReferenceHeight
)

// Viewport is the logical drawing area. Pixel constants tuned at the
// reference size are scaled through X and Y.
type Viewport struct {
	Width, Height float64
}

// X scales a horizontal reference-pixel length to this viewport.
func (v Viewport) X(px float64) float64 {
	return px * v.Width / ReferenceWidth
}

// Y scales a vertical reference-pixel length to this viewport.
func (v Viewport) Y(px float64) float64 {
	return px * v.Height / ReferenceHeight
}

package render

import (
	"testing"
)

func TestWaterGradientDarkensDownward(t *testing.T) {
	img := WaterGradient(4, 100)
	top := img.RGBAAt(0, 0)
	bottom := img.RGBAAt(3, 99)
	if top.A != 255 || bottom.A != 255 {
		t.Fatalf("gradient not opaque: %v %v", top, bottom)
	}
	lum := func(r, g, b uint8) int { return int(r) + int(g) + int(b) }
	if lum(top.R, top.G, top.B) <= lum(bottom.R, bottom.G, bottom.B) {
		t.Errorf("top %v should be lighter than bottom %v", top, bottom)
	}
}

func TestWaterGradientMinimumSize(t *testing.T) {
	img := WaterGradient(0, 0)
	if b := img.Bounds(); b.Dx() != 1 || b.Dy() != 1 {
		t.Errorf("size = %v, want 1x1", b)
	}
}

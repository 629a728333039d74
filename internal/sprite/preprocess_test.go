package sprite

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestIsBackground(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    bool
	}{
		{255, 255, 255, true},
		{235, 235, 235, true},
		{234, 255, 255, false},
		{200, 200, 200, false},
		{255, 0, 255, false},
	}
	for _, tt := range tests {
		if got := IsBackground(tt.r, tt.g, tt.b, DefaultTolerance); got != tt.want {
			t.Errorf("IsBackground(%d,%d,%d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestRemoveBackgroundWhiteAndGrey(t *testing.T) {
	img := solidImage(10, 10, color.NRGBA{200, 200, 200, 255})
	img.SetNRGBA(0, 0, color.NRGBA{255, 255, 255, 255})

	RemoveBackground(img, DefaultTolerance)

	if a := img.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("white alpha = %d, want 0", a)
	}
	if a := img.NRGBAAt(1, 0).A; a != 255 {
		t.Errorf("grey alpha = %d, want 255", a)
	}
}

func TestRemoveBackgroundWatermarkScalesWithSize(t *testing.T) {
	for _, size := range []int{1024, 512, 100} {
		img := solidImage(size, size, color.NRGBA{10, 80, 160, 255})
		RemoveBackground(img, DefaultTolerance)

		if a := img.NRGBAAt(size-1, size-1).A; a != 0 {
			t.Errorf("size %d: corner alpha = %d, want 0", size, a)
		}
		if a := img.NRGBAAt(0, 0).A; a != 255 {
			t.Errorf("size %d: origin alpha = %d, want 255", size, a)
		}
		// Just left of the watermark region stays opaque.
		x := int(float64(size)*watermarkRegion.x) - 1
		if a := img.NRGBAAt(x, size-1).A; a != 255 {
			t.Errorf("size %d: pixel left of watermark alpha = %d, want 255", size, a)
		}
	}
}

func TestDownscaleHalvesSize(t *testing.T) {
	img := solidImage(64, 32, color.NRGBA{1, 2, 3, 255})
	out := Downscale(img, DownscaleFactor)
	if w, h := out.Bounds().Dx(), out.Bounds().Dy(); w != 32 || h != 16 {
		t.Errorf("size = %dx%d, want 32x16", w, h)
	}

	tiny := Downscale(solidImage(1, 1, color.NRGBA{}), DownscaleFactor)
	if w, h := tiny.Bounds().Dx(), tiny.Bounds().Dy(); w != 1 || h != 1 {
		t.Errorf("tiny size = %dx%d, want 1x1", w, h)
	}
}

func TestDecodeProducesSprite(t *testing.T) {
	p := NewPreprocessor(DefaultTolerance, testRNG())
	data := encodePNG(t, solidImage(40, 20, color.NRGBA{0, 0, 255, 255}))

	s, err := p.Decode("right_whale.png", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if w, h := s.Size(); w != 20 || h != 10 {
		t.Errorf("size = %dx%d, want 20x10", w, h)
	}
	if s.Class.Scale != 2.0 {
		t.Errorf("scale = %v, want 2.0", s.Class.Scale)
	}
	if !s.RightFacing() {
		t.Error("expected right-facing sprite")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	p := NewPreprocessor(DefaultTolerance, testRNG())
	_, err := p.Decode("broken.png", strings.NewReader("not a png"))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("err = %v, want ErrDecode", err)
	}
}

func TestProcessMissingFile(t *testing.T) {
	p := NewPreprocessor(DefaultTolerance, testRNG())
	_, err := p.Process(filepath.Join(t.TempDir(), "nope.png"))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("err = %v, want ErrDecode", err)
	}
}

func TestProcessFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clownfish.png")
	if err := os.WriteFile(path, encodePNG(t, solidImage(8, 8, color.NRGBA{255, 128, 0, 255})), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewPreprocessor(-1, testRNG())
	if p.Tolerance != DefaultTolerance {
		t.Errorf("tolerance = %d, want %d", p.Tolerance, DefaultTolerance)
	}
	s, err := p.Process(path)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if s.Name != "clownfish.png" {
		t.Errorf("name = %q, want clownfish.png", s.Name)
	}
	if s.RightFacing() {
		t.Error("clownfish should not be right-facing")
	}
}

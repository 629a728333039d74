package sprite

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/draw"
)

// ErrDecode is returned when an asset is not a readable image.
var ErrDecode = errors.New("sprite: decode failed")

// DefaultTolerance is the per-channel distance from pure white that still
// counts as background.
const DefaultTolerance = 20

// DownscaleFactor softens the processed image before it reaches the tank.
const DownscaleFactor = 0.5

// watermarkRegion is the bottom-right corner cleared on every image,
// expressed as fractions of the image size.
var watermarkRegion = struct{ x, y float64 }{x: 900.0 / 1024.0, y: 950.0 / 1024.0}

// Preprocessor loads raw fish images and returns sprites. It is safe for
// concurrent use; the shared random source is guarded.
type Preprocessor struct {
	Tolerance int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPreprocessor creates a Preprocessor. A negative tolerance selects
// DefaultTolerance.
func NewPreprocessor(tolerance int, rng *rand.Rand) *Preprocessor {
	if tolerance < 0 {
		tolerance = DefaultTolerance
	}
	return &Preprocessor{Tolerance: tolerance, rng: rng}
}

// Process loads the PNG at path and returns a sprite named after the file.
func (p *Preprocessor) Process(path string) (*Sprite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	defer f.Close()
	return p.Decode(filepath.Base(path), f)
}

// Decode reads a PNG from r and runs the full pipeline: background removal,
// watermark clearing, downscale, classification.
func (p *Preprocessor) Decode(name string, r io.Reader) (*Sprite, error) {
	src, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
	}
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s: empty image", ErrDecode, name)
	}

	img := toNRGBA(src)
	RemoveBackground(img, p.Tolerance)
	img = Downscale(img, DownscaleFactor)

	p.mu.Lock()
	class := Classify(name, p.rng)
	p.mu.Unlock()

	return &Sprite{Name: name, Image: img, Class: class}, nil
}

// toNRGBA copies src into a fresh NRGBA image with origin at (0, 0).
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// IsBackground reports whether an RGB triple lies within tolerance of pure
// white on every channel.
func IsBackground(r, g, b uint8, tolerance int) bool {
	lo, hi := 255-tolerance, 255+tolerance
	in := func(c uint8) bool { return int(c) >= lo && int(c) <= hi }
	return in(r) && in(g) && in(b)
}

// RemoveBackground makes near-white pixels and the watermark corner fully
// transparent, in place.
func RemoveBackground(img *image.NRGBA, tolerance int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	wx := b.Min.X + int(float64(w)*watermarkRegion.x)
	wy := b.Min.Y + int(float64(h)*watermarkRegion.y)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			px := img.Pix[i : i+4 : i+4]
			if (x >= wx && y >= wy) || IsBackground(px[0], px[1], px[2], tolerance) {
				px[3] = 0
			}
		}
	}
}

// Downscale resamples img by factor with a Catmull-Rom kernel. The result
// is never smaller than 1x1.
func Downscale(img *image.NRGBA, factor float64) *image.NRGBA {
	b := img.Bounds()
	w := max(int(float64(b.Dx())*factor), 1)
	h := max(int(float64(b.Dy())*factor), 1)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

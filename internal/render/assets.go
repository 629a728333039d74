package render

import (
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/phanxgames/aquarium/internal/tank"
)

// Water gradient used when no background image is available.
var (
	waterTop    = colorful.Color{R: 0.31, G: 0.70, B: 0.85}
	waterBottom = colorful.Color{R: 0.02, G: 0.13, B: 0.23}
)

// AssetPaths locates the static scene images.
type AssetPaths struct {
	Background  string
	WaveOverlay string
	Bubble      string
	StarfishDir string
}

// Assets are the static images drawn every frame. Any field may be nil or
// empty; Draw skips what is missing.
type Assets struct {
	Background *ebiten.Image
	Wave       *ebiten.Image
	Bubble     *ebiten.Image
	Starfish   []*ebiten.Image
}

// LoadAssets reads the scene images. Missing files are logged and replaced
// by generated stand-ins where one exists: a water gradient for the
// background and a drawn circle for the bubble.
func LoadAssets(paths AssetPaths, v tank.Viewport) *Assets {
	a := &Assets{}

	if img := loadImage(paths.Background); img != nil {
		a.Background = img
	} else {
		a.Background = ebiten.NewImageFromImage(WaterGradient(int(v.Width), int(v.Height)))
	}

	a.Wave = loadImage(paths.WaveOverlay)

	if img := loadImage(paths.Bubble); img != nil {
		a.Bubble = img
	} else {
		a.Bubble = drawnBubble(100)
	}

	a.Starfish = loadFrames(paths.StarfishDir)
	return a
}

func loadImage(path string) *ebiten.Image {
	if path == "" {
		return nil
	}
	img, _, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		log.Printf("[aquarium] asset %s: %v", path, err)
		return nil
	}
	return img
}

// loadFrames loads every PNG in dir, ordered by file name.
func loadFrames(dir string) []*ebiten.Image {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("[aquarium] starfish frames %s: %v", dir, err)
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	frames := make([]*ebiten.Image, 0, len(names))
	for _, name := range names {
		if img := loadImage(filepath.Join(dir, name)); img != nil {
			frames = append(frames, img)
		}
	}
	return frames
}

// WaterGradient renders a vertical top-to-bottom water gradient, blended in
// Lab space.
func WaterGradient(w, h int) *image.RGBA {
	w, h = max(w, 1), max(h, 1)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		t := 0.0
		if h > 1 {
			t = float64(y) / float64(h-1)
		}
		r, g, b := waterTop.BlendLab(waterBottom, t).Clamped().RGB255()
		c := color.RGBA{r, g, b, 255}
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// drawnBubble draws a translucent ringed circle of the given diameter.
func drawnBubble(size int) *ebiten.Image {
	img := ebiten.NewImage(size, size)
	c := float32(size) / 2
	vector.DrawFilledCircle(img, c, c, c-2, color.NRGBA{180, 220, 255, 60}, true)
	vector.StrokeCircle(img, c, c, c-2, 2, color.NRGBA{230, 245, 255, 200}, true)
	return img
}

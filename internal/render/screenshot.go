package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// capture is a pending screenshot of the tank as it stood when requested.
type capture struct {
	tick uint64
	fish int
	at   time.Time
}

// Screenshot asks for the next drawn frame to be saved under
// Options.ScreenshotDir. Repeated requests within one tick collapse into one.
func (g *Game) Screenshot() {
	if g.capture != nil {
		return
	}
	g.capture = &capture{tick: g.clock.Tick(), fish: g.pool.Len(), at: time.Now()}
}

// saveCapture writes the pending capture of screen, if any. Called last in
// Draw so the image holds the finished frame.
func (g *Game) saveCapture(screen *ebiten.Image) {
	c := g.capture
	if c == nil {
		return
	}
	g.capture = nil

	dir := g.opts.ScreenshotDir
	if dir == "" {
		dir = "screenshots"
	}
	path := filepath.Join(dir, c.name())
	if err := writeFrame(path, frameImage(screen)); err != nil {
		log.Printf("[aquarium] screenshot: %v", err)
		return
	}
	log.Printf("[aquarium] tank at tick %d with %d fish saved to %s", c.tick, c.fish, path)
}

// name is the capture's file name, e.g. 20261019_150405_t001200_12fish.png.
func (c *capture) name() string {
	return fmt.Sprintf("%s_t%06d_%dfish.png", c.at.Format("20060102_150405"), c.tick, c.fish)
}

// frameImage copies screen into an RGBA image. ebiten returns premultiplied
// pixels, which is the layout image.RGBA stores.
func frameImage(screen *ebiten.Image) *image.RGBA {
	img := image.NewRGBA(screen.Bounds())
	screen.ReadPixels(img.Pix)
	return img
}

// writeFrame encodes img as PNG and writes it to path, creating the parent
// folder.
func writeFrame(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Package render drives the aquarium window: it polls keyboard input, steps
// the simulation, draws the scene back to front and kicks off background
// ingestion on the polling interval.
package render

import (
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/aquarium/internal/ingest"
	"github.com/phanxgames/aquarium/internal/tank"
)

// State is the render loop's lifecycle stage.
type State uint8

const (
	StateInit         State = iota // window created, first frame not yet run
	StateRunning                   // simulating and drawing
	StateShuttingDown              // quit requested; next Update terminates
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRunning:
		return "running"
	default:
		return "shutting-down"
	}
}

// Ingester is the background work the loop schedules.
type Ingester interface {
	MaybeTrigger(tick uint64) bool
	PurgeAsync()
	InFlight() bool
	LastResult() *ingest.Result
}

// Options configures a Game.
type Options struct {
	Viewport      tank.Viewport
	FrameRate     int
	WaveAlpha     float64
	Debug         bool
	ScreenshotDir string
}

// Game implements ebiten.Game for the aquarium.
type Game struct {
	opts     Options
	pool     *tank.Pool
	clock    *tank.Clock
	ingest   Ingester
	assets   *Assets
	textures *textureCache
	input    *Input

	state   State
	dt      float32
	showFPS bool

	capture *capture
	stats   debugStats
}

// NewGame wires a Game. assets may be nil, in which case only fish and
// bubbles without an image are skipped.
func NewGame(opts Options, pool *tank.Pool, clock *tank.Clock, ing Ingester, assets *Assets) *Game {
	if opts.FrameRate <= 0 {
		opts.FrameRate = 120
	}
	if assets == nil {
		assets = &Assets{}
	}
	return &Game{
		opts:     opts,
		pool:     pool,
		clock:    clock,
		ingest:   ing,
		assets:   assets,
		textures: newTextureCache(),
		input:    NewInput(DefaultKeymap(), nil),
		dt:       float32(1.0 / float64(opts.FrameRate)),
		showFPS:  opts.Debug,
	}
}

// State returns the current lifecycle stage.
func (g *Game) State() State {
	return g.state
}

// Update polls input and advances the simulation by one tick.
func (g *Game) Update() error {
	switch g.state {
	case StateInit:
		g.state = StateRunning
	case StateShuttingDown:
		return ebiten.Termination
	}

	for _, a := range g.input.Poll() {
		g.apply(a)
	}
	if g.state == StateShuttingDown {
		log.Printf("[aquarium] shutting down after %d ticks", g.clock.Tick())
		return ebiten.Termination
	}

	g.step()
	return nil
}

// step runs the per-tick work: admit queued fish, move everything, trigger
// ingestion on the interval boundary, advance the tick counter.
func (g *Game) step() {
	if n := g.pool.Flush(); n > 0 {
		log.Printf("[aquarium] %d new fish swimming in", n)
	}
	res := g.clock.Step(g.dt)
	g.ingest.MaybeTrigger(g.clock.Tick())
	g.clock.Advance()

	if g.opts.Debug {
		g.stats.record(res)
		if g.clock.Tick()%uint64(g.opts.FrameRate) == 0 {
			g.debugLog()
		}
	}
}

func (g *Game) apply(a Action) {
	switch a {
	case ActionQuit:
		g.state = StateShuttingDown
	case ActionRemoveLast:
		g.pool.RemoveLast()
	case ActionClearAll:
		g.pool.Clear()
		g.ingest.PurgeAsync()
		log.Printf("[aquarium] tank cleared")
	case ActionToggleFPS:
		g.showFPS = !g.showFPS
	case ActionScreenshot:
		g.Screenshot()
	}
}

// Draw renders background, fish in pool order, bubbles, the wave overlay
// and the starfish.
func (g *Game) Draw(screen *ebiten.Image) {
	v := g.opts.Viewport
	tick := g.clock.Tick()

	if bg := g.assets.Background; bg != nil {
		drawStretched(screen, bg, 0, 0, v.Width, v.Height, 1)
	}

	g.textures.beginFrame()
	g.pool.EachFish(func(_ int, f *tank.Fish) {
		g.drawFish(screen, f, tick)
	})
	g.textures.endFrame()

	if img := g.assets.Bubble; img != nil {
		g.pool.EachBubble(func(_ int, b *tank.Bubble) {
			drawStretched(screen, img, b.Pos.X, b.Pos.Y, b.Size, b.Size, 1)
		})
	}

	if wave := g.assets.Wave; wave != nil {
		o := tank.WaveOffset(v, tick)
		drawStretched(screen, wave, o.X, o.Y, v.Width*1.5, v.Height*1.5, g.opts.WaveAlpha)
	}

	if frames := g.assets.Starfish; len(frames) > 0 {
		img := frames[tank.StarfishFrame(tick, len(frames))]
		drawStretched(screen, img, v.Width-v.X(200), v.Height-v.Y(200), v.X(100), v.X(100), 1)
	}

	if g.showFPS {
		g.drawFPS(screen)
	}
	g.saveCapture(screen)
}

// drawFish blits a fish scaled by its classification and tilted about its
// centre. The stored sprite is never modified.
func (g *Game) drawFish(screen *ebiten.Image, f *tank.Fish, tick uint64) {
	img := g.textures.get(f.Sprite)
	if img == nil {
		return
	}
	b := img.Bounds()
	scale := f.Sprite.Class.Scale * g.opts.Viewport.Width / tank.ReferenceWidth
	hw := float64(b.Dx()) * scale / 2
	hh := float64(b.Dy()) * scale / 2

	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterLinear
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(-hw, -hh)
	op.GeoM.Rotate(-tank.RotationDegrees(f.RotationSeed, tick) * math.Pi / 180)
	op.GeoM.Translate(f.Pos.X+hw, f.Pos.Y+hh)
	op.ColorScale.ScaleAlpha(float32(f.Alpha()))
	screen.DrawImage(img, op)
}

// Layout reports the fixed logical viewport; ebiten scales it to the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(g.opts.Viewport.Width), int(g.opts.Viewport.Height)
}

// drawStretched draws img into the rectangle (x, y, w, h) with the given
// alpha.
func drawStretched(dst, img *ebiten.Image, x, y, w, h, alpha float64) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterLinear
	op.GeoM.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	op.GeoM.Translate(x, y)
	if alpha < 1 {
		op.ColorScale.ScaleAlpha(float32(alpha))
	}
	dst.DrawImage(img, op)
}

// Aquarium opens a window with a scrolling tank of fish. New fish images
// dropped into a local folder or uploaded to a blob container are picked
// up while it runs.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand/v2"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/aquarium/internal/config"
	"github.com/phanxgames/aquarium/internal/ingest"
	"github.com/phanxgames/aquarium/internal/ledger"
	"github.com/phanxgames/aquarium/internal/render"
	"github.com/phanxgames/aquarium/internal/source"
	"github.com/phanxgames/aquarium/internal/sprite"
	"github.com/phanxgames/aquarium/internal/tank"
)

const windowTitle = "Aquarium"

func main() {
	configPath := flag.String("config", "aquarium.yaml", "YAML config file (optional).")
	envPath := flag.String("env", ".env", "dotenv file (optional).")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		log.Fatal(err)
	}

	src, err := newSource(cfg)
	if err != nil {
		log.Fatal(err)
	}

	view := viewport(cfg.WindowWidth)
	seed := uint64(time.Now().UnixNano())
	pool := tank.NewPool(view, cfg.FishLimit, rand.New(rand.NewPCG(seed, 1)))
	clock := tank.NewClock(pool, rand.New(rand.NewPCG(seed, 2)))
	pre := sprite.NewPreprocessor(cfg.Tolerance, rand.New(rand.NewPCG(seed, 3)))
	sched := ingest.New(src, ledger.New(cfg.Paths.Ledger), pre, pool, cfg.Paths.Cache, cfg.IngestInterval)

	if cfg.ResetOnStart {
		if err := sched.Reset(); err != nil {
			log.Printf("[aquarium] reset: %v", err)
		}
	}
	for i := 0; i < cfg.BubbleCount; i++ {
		pool.AddBubble()
	}
	if _, err := sched.Bootstrap(context.Background()); err != nil {
		log.Printf("[aquarium] bootstrap: %v", err)
	}

	assets := render.LoadAssets(render.AssetPaths{
		Background:  cfg.Paths.Background,
		WaveOverlay: cfg.Paths.WaveOverlay,
		Bubble:      cfg.Paths.Bubble,
		StarfishDir: cfg.Paths.Starfish,
	}, view)

	game := render.NewGame(render.Options{
		Viewport:      view,
		FrameRate:     cfg.FrameRate,
		WaveAlpha:     cfg.WaveAlpha,
		Debug:         cfg.Debug,
		ScreenshotDir: cfg.Paths.Screenshots,
	}, pool, clock, sched, assets)

	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetWindowSize(int(view.Width), int(view.Height))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.FrameRate)

	log.Printf("[aquarium] %s source, %dx%d at %d ticks/s, fish limit %d",
		src.Kind(), int(view.Width), int(view.Height), cfg.FrameRate, cfg.FishLimit)

	err = ebiten.RunGame(game)
	sched.Close()
	if err != nil {
		log.Fatal(err)
	}
}

func newSource(cfg *config.Config) (source.Source, error) {
	if cfg.Method == config.MethodAzure {
		return source.NewAzure(cfg.Azure.ConnectionString, cfg.Azure.Container)
	}
	return source.NewLocal(cfg.LocalPath), nil
}

// viewport keeps the configured width and takes the height from the
// monitor's aspect ratio, falling back to 16:9.
func viewport(width int) tank.Viewport {
	w := float64(width)
	mw, mh := 16, 9
	if m := ebiten.Monitor(); m != nil {
		if sw, sh := m.Size(); sw > 0 && sh > 0 {
			mw, mh = sw, sh
		}
	}
	return tank.Viewport{Width: w, Height: float64(int(w / float64(mw) * float64(mh)))}
}

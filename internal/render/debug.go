package render

import (
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/aquarium/internal/tank"
)

// debugStats accumulates motion counters between debug log lines.
// Only populated when Options.Debug is true.
type debugStats struct {
	wrapped int
	removed int
	since   time.Time
}

func (s *debugStats) record(res tank.StepStats) {
	s.wrapped += res.Wrapped
	s.removed += res.Removed
}

// debugLog prints population and motion stats to stderr, then resets the
// counters.
func (g *Game) debugLog() {
	now := time.Now()
	var elapsed time.Duration
	if !g.stats.since.IsZero() {
		elapsed = now.Sub(g.stats.since)
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[aquarium] tick: %d | fish: %d/%d | bubbles: %d | pending: %d | textures: %d | ingest: %v\n",
		g.clock.Tick(), g.pool.Len(), g.pool.Limit(), g.pool.BubbleLen(), g.pool.Pending(),
		g.textures.len(), g.ingest.InFlight())
	_, _ = fmt.Fprintf(os.Stderr,
		"[aquarium] wrapped: %d | removed: %d | window: %v | fps: %.1f | tps: %.1f\n",
		g.stats.wrapped, g.stats.removed, elapsed.Round(time.Millisecond),
		ebiten.ActualFPS(), ebiten.ActualTPS())
	if res := g.ingest.LastResult(); res != nil {
		_, _ = fmt.Fprintf(os.Stderr,
			"[aquarium] last ingest: listed %d | new %d | fetched %d | added %d | skipped %d\n",
			res.Listed, res.New, res.Fetched, res.Added, res.Skipped)
	}
	g.stats = debugStats{since: now}
}

// drawFPS prints the current FPS, TPS and fish count in the top-left corner.
func (g *Game) drawFPS(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nFish: %d",
		ebiten.ActualFPS(), ebiten.ActualTPS(), g.pool.Len()))
}

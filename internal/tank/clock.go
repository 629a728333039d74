package tank

import (
	"math"
	"math/rand/v2"
	"slices"
)

// Motion constants, in reference pixels where they are lengths.
const (
	separationPerFish = 100.0
	maxRotationDeg    = 15.0
	rotationRate      = 0.001
	starfishRate      = 0.03
	waveRate          = 0.005
	waveSwing         = 50.0
	bubbleTopMargin   = 100.0
)

// WaveOrigin is the overlay's resting draw position in reference pixels.
var WaveOrigin = Vec2{X: -500, Y: -200}

var bubbleRespawn = Range{100, 500}

// StepStats reports what a single Step changed.
type StepStats struct {
	Wrapped int
	Removed int
}

// Clock advances simulation time and applies the motion rules to a Pool.
type Clock struct {
	pool *Pool
	rng  *rand.Rand
	tick uint64
}

// NewClock creates a clock driving pool.
func NewClock(pool *Pool, rng *rand.Rand) *Clock {
	return &Clock{pool: pool, rng: rng}
}

// Tick returns the number of completed ticks.
func (c *Clock) Tick() uint64 {
	return c.tick
}

// Advance increments the tick counter.
func (c *Clock) Advance() {
	c.tick++
}

// Separation returns the population-dependent spawn spacing for n live fish,
// in reference pixels.
func Separation(n int) float64 {
	return separationPerFish * float64(n)
}

// Step moves every fish and bubble by one tick. dt is the tick length in
// seconds and only drives fade-in tweens. Fish that swim off their far edge
// re-enter from the origin side, unless the pool is above its soft cap, in
// which case they are removed after the pass.
func (c *Clock) Step(dt float32) StepStats {
	p := c.pool
	p.mu.Lock()
	defer p.mu.Unlock()

	var stats StepStats
	v := p.view
	live := len(p.fish)
	sep := v.X(Separation(live))
	margin := v.X(spawnMargin)
	reentry := Range{margin, sep}

	for _, f := range p.fish {
		wrapped := false
		switch f.Direction {
		case LeftToRight:
			f.Pos.X += f.Speed
			if f.Pos.X > v.Width+sep {
				f.Pos.X = -reentry.Random(c.rng)
				wrapped = true
			}
		default:
			f.Pos.X -= f.Speed
			if f.Pos.X < -margin {
				f.Pos.X = v.Width + reentry.Random(c.rng)
				wrapped = true
			}
		}

		if wrapped {
			if live > p.limit {
				f.removed = true
				live--
				stats.Removed++
				continue
			}
			stats.Wrapped++
		}

		f.Pos.Y += f.Amplitude * math.Sin(f.Frequency*f.Pos.X)
		if f.Fade != nil {
			f.Fade.Update(dt)
		}
	}

	if stats.Removed > 0 {
		p.fish = slices.DeleteFunc(p.fish, func(f *Fish) bool { return f.removed })
	}

	top := -v.Y(bubbleTopMargin)
	for _, b := range p.bubbles {
		b.Pos.Y -= b.Speed
		if b.Pos.Y < top {
			b.Pos.Y = v.Height + v.Y(bubbleRespawn.Random(c.rng))
		}
	}
	return stats
}

// RotationDegrees returns a fish's display tilt at the given tick. The tilt
// is applied at draw time and never baked into the sprite.
func RotationDegrees(seed float64, tick uint64) float64 {
	return maxRotationDeg * math.Sin(seed*float64(tick)*rotationRate)
}

// StarfishFrame returns the starfish animation frame index for tick. It
// returns 0 when there are no frames.
func StarfishFrame(tick uint64, frames int) int {
	if frames <= 0 {
		return 0
	}
	return int(math.Floor(float64(tick)*starfishRate)) % frames
}

// WaveOffset returns the wave overlay's draw position at tick, scaled to v.
func WaveOffset(v Viewport, tick uint64) Vec2 {
	return Vec2{
		X: v.X(WaveOrigin.X),
		Y: v.Y(WaveOrigin.Y + waveSwing*math.Sin(float64(tick)*waveRate)),
	}
}

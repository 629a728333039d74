// Package tank holds the live aquarium: the fish and bubble collections and
// the per-tick motion rules that move them.
package tank

import (
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/phanxgames/aquarium/internal/sprite"
)

// Separation factors used when spawning. Fish present at startup spread far
// off-screen; fish arriving later enter close to the edge.
const (
	InitialSeparation = 1500.0
	IngestSeparation  = 100.0
)

// spawnMargin is the reference-pixel distance kept between a spawn point and
// the visible edge, and the bottom band fish never spawn into.
const spawnMargin = 300.0

var (
	speedRange     = Range{0.05, 0.2}
	amplitudeRange = Range{0.1, 1}
	frequencyRange = Range{0.01, 0.2}
	rotationRange  = Range{0, 10}
)

// Fish is one swimming sprite and its motion state.
type Fish struct {
	Sprite       *sprite.Sprite
	Direction    Direction
	Pos          Vec2
	Speed        float64
	Amplitude    float64
	Frequency    float64
	RotationSeed float64
	Fade         *Fade

	removed bool
}

// Alpha returns the fish's current draw alpha.
func (f *Fish) Alpha() float64 {
	return alphaOf(f.Fade)
}

// Bubble is one rising bubble. Its rise speed equals its scale.
type Bubble struct {
	Scale float64
	Size  float64
	Speed float64
	Pos   Vec2
}

type pendingFish struct {
	sprite     *sprite.Sprite
	separation float64
	fade       bool
}

// Pool owns the live fish and bubbles. Each collection is a single ordered
// slice of records, so an index always names one whole entity.
//
// The render goroutine mutates the pool through Step, AddFish and the
// removal methods. Ingestion goroutines only call Enqueue; queued sprites
// are moved into the pool by Flush, once per frame.
type Pool struct {
	mu      sync.Mutex
	view    Viewport
	limit   int
	rng     *rand.Rand
	fish    []*Fish
	bubbles []*Bubble
	pending []pendingFish
}

// NewPool creates an empty pool. limit is the soft cap on live fish.
func NewPool(view Viewport, limit int, rng *rand.Rand) *Pool {
	return &Pool{view: view, limit: limit, rng: rng}
}

// Limit returns the soft cap on live fish.
func (p *Pool) Limit() int {
	return p.limit
}

// Len returns the number of live fish.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.fish)
}

// BubbleLen returns the number of bubbles.
func (p *Pool) BubbleLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.bubbles)
}

// Pending returns the number of sprites waiting for the next Flush.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// AddFish spawns a fish for s just off the edge it swims in from. The
// horizontal spawn distance is drawn from the separation factor.
func (p *Pool) AddFish(s *sprite.Sprite, separation float64) *Fish {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addFishLocked(s, separation, nil)
}

func (p *Pool) addFishLocked(s *sprite.Sprite, separation float64, fade *Fade) *Fish {
	v := p.view
	sep := v.X(separation)
	margin := v.X(spawnMargin)

	f := &Fish{
		Sprite:       s,
		Speed:        v.X(speedRange.Random(p.rng)),
		Amplitude:    amplitudeRange.Random(p.rng),
		Frequency:    frequencyRange.Random(p.rng),
		RotationSeed: rotationRange.Random(p.rng),
		Fade:         fade,
	}

	if s.RightFacing() {
		f.Direction = LeftToRight
		f.Pos.X = Range{-margin, -sep}.Random(p.rng)
	} else {
		f.Direction = RightToLeft
		f.Pos.X = Range{v.Width, v.Width + sep}.Random(p.rng)
	}

	top := v.Height - v.Y(spawnMargin) - s.Class.Offset(v.Height)
	f.Pos.Y = Range{0, max(top, 0)}.Random(p.rng)

	p.fish = append(p.fish, f)
	return f
}

// Enqueue hands processed sprites to the pool from any goroutine. They join
// the tank on the next Flush and fade in.
func (p *Pool) Enqueue(separation float64, sprites ...*sprite.Sprite) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range sprites {
		p.pending = append(p.pending, pendingFish{sprite: s, separation: separation, fade: true})
	}
}

// Flush moves every queued sprite into the pool and returns how many joined.
func (p *Pool) Flush() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.pending)
	for _, pf := range p.pending {
		var fade *Fade
		if pf.fade {
			fade = NewFadeIn(FadeInSeconds, nil)
		}
		p.addFishLocked(pf.sprite, pf.separation, fade)
	}
	clear(p.pending)
	p.pending = p.pending[:0]
	return n
}

// RemoveFish removes the fish at index i. It reports false when i is out of
// range.
func (p *Pool) RemoveFish(i int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.fish) {
		return false
	}
	p.fish = slices.Delete(p.fish, i, i+1)
	return true
}

// RemoveLast removes the most recently added fish.
func (p *Pool) RemoveLast() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.fish) == 0 {
		return false
	}
	p.fish = slices.Delete(p.fish, len(p.fish)-1, len(p.fish))
	return true
}

// AddBubble spawns a bubble below the bottom edge near the left of the tank.
func (p *Pool) AddBubble() *Bubble {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := p.view
	scale := Range{0.11, 0.5}.Random(p.rng)
	left := v.Width / 7
	b := &Bubble{
		Scale: scale,
		Size:  100 * scale,
		Speed: scale,
		Pos: Vec2{
			X: Range{left, left + v.X(200)}.Random(p.rng),
			Y: Range{v.Height, v.Height + v.Y(500)}.Random(p.rng),
		},
	}
	p.bubbles = append(p.bubbles, b)
	return b
}

// RemoveBubble removes the bubble at index i. It reports false when i is out
// of range.
func (p *Pool) RemoveBubble(i int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.bubbles) {
		return false
	}
	p.bubbles = slices.Delete(p.bubbles, i, i+1)
	return true
}

// Clear drops every live and queued fish. Bubbles are part of the scenery
// and stay.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.fish)
	p.fish = p.fish[:0]
	clear(p.pending)
	p.pending = p.pending[:0]
}

// EachFish calls fn for every live fish in pool order. fn must not call back
// into the pool.
func (p *Pool) EachFish(fn func(i int, f *Fish)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, f := range p.fish {
		fn(i, f)
	}
}

// EachBubble calls fn for every bubble. fn must not call back into the pool.
func (p *Pool) EachBubble(fn func(i int, b *Bubble)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, b := range p.bubbles {
		fn(i, b)
	}
}

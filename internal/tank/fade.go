package tank

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// FadeInSeconds is how long a newly ingested fish takes to become opaque.
const FadeInSeconds = 2.0

// Fade animates a fish's draw alpha. Call Update(dt) each tick; Alpha holds
// the current value and Done is set once the tween finishes.
type Fade struct {
	tween *gween.Tween
	Alpha float64
	Done  bool
}

// NewFadeIn creates a Fade from transparent to opaque over duration seconds.
func NewFadeIn(duration float32, fn ease.TweenFunc) *Fade {
	if fn == nil {
		fn = ease.OutQuad
	}
	return &Fade{tween: gween.New(0, 1, duration, fn)}
}

// Update advances the tween by dt seconds.
func (f *Fade) Update(dt float32) {
	if f.Done {
		return
	}
	val, finished := f.tween.Update(dt)
	f.Alpha = float64(val)
	f.Done = finished
	if finished {
		f.Alpha = 1
	}
}

// alphaOf returns the draw alpha for an optional fade.
func alphaOf(f *Fade) float64 {
	if f == nil {
		return 1
	}
	return f.Alpha
}

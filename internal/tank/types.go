package tank

import "math/rand/v2"

// Vec2 is a 2D vector used for positions and offsets throughout the tank.
type Vec2 struct {
	X, Y float64
}

// Range is a general-purpose min/max range. Min may exceed Max; Random still
// returns a value between the two.
type Range struct {
	Min, Max float64
}

// Random returns a random float64 between Min and Max drawn from rng.
func (r Range) Random(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Direction is the horizontal heading of a fish.
type Direction uint8

const (
	RightToLeft Direction = iota // default heading, spawns off the right edge
	LeftToRight                  // spawns off the left edge
)

func (d Direction) String() string {
	if d == LeftToRight {
		return "left-to-right"
	}
	return "right-to-left"
}

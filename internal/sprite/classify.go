package sprite

import (
	"math/rand/v2"
	"strings"
)

// ReferenceHeight is the viewport height the vertical offset corrections
// were tuned against.
const ReferenceHeight = 1024.0

// Scale bounds for assets that match no named class.
const (
	MinDefaultScale = 0.5
	MaxDefaultScale = 1.5
)

// Classification carries the draw scale and the vertical spawn correction
// for a sprite. OffsetFraction is a fraction of viewport height.
type Classification struct {
	Kind           string
	Scale          float64
	OffsetFraction float64
}

// Offset returns the vertical correction in pixels for a viewport of the
// given height.
func (c Classification) Offset(viewportHeight float64) float64 {
	return c.OffsetFraction * viewportHeight
}

// Classify derives a Classification from an asset name. Whales and sharks
// have fixed scales; everything else draws a scale from rng.
func Classify(name string, rng *rand.Rand) Classification {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "whale"):
		return Classification{Kind: "whale", Scale: 2.0, OffsetFraction: 700 / ReferenceHeight}
	case strings.Contains(lower, "shark"):
		return Classification{Kind: "shark", Scale: 1.0, OffsetFraction: 200 / ReferenceHeight}
	default:
		scale := MinDefaultScale + rng.Float64()*(MaxDefaultScale-MinDefaultScale)
		return Classification{Kind: "fish", Scale: scale}
	}
}

package radar

import (
	"math"
	"time"

	"doa-radar.klederson.com/internal/palette"
)

// Point is one detected source as delivered by the feed. Missing numeric
// fields are NaN.
type Point struct {
	ID        string
	Label     string // human readable name, may be empty
	Direction float64 // degrees, 0=north, clockwise
	Distance  float64 // meters
	Intensity float64 // [0, 1]
	Class     string
	Timestamp time.Time
}

// Normalized returns a copy safe to draw: NaN or out-of-range numbers are
// replaced with mid-range values and the class label is canonicalized.
func (p Point) Normalized(s Scale) Point {
	if math.IsNaN(p.Intensity) || math.IsInf(p.Intensity, 0) {
		p.Intensity = 0.5
	}
	p.Intensity = math.Max(0, math.Min(1, p.Intensity))

	if math.IsNaN(p.Direction) || math.IsInf(p.Direction, 0) {
		p.Direction = 180
	}
	p.Direction = NormalizeDegrees(p.Direction)

	if math.IsNaN(p.Distance) || math.IsInf(p.Distance, 0) {
		p.Distance = s.Mid()
	}
	p.Class = palette.Normalize(p.Class)
	return p
}

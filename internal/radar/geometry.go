package radar

import (
	"math"
)

// edgeMargin keeps the outer ring off the surface border.
const edgeMargin = 2.0

// Scale is the logarithmic radial distance scale.
type Scale struct {
	Min, Max float64 // meters
}

// Clamp bounds meters to [Min, Max]. Non-positive and NaN values map to Min.
func (s Scale) Clamp(meters float64) float64 {
	if math.IsNaN(meters) || meters <= s.Min {
		return s.Min
	}
	if meters > s.Max {
		return s.Max
	}
	return meters
}

// Mid returns the geometric middle of the range, the center of the log scale.
func (s Scale) Mid() float64 {
	return math.Sqrt(s.Min * s.Max)
}

// Fraction returns the normalized log position of meters in [0, 1].
func (s Scale) Fraction(meters float64) float64 {
	lo, hi := math.Log10(s.Min), math.Log10(s.Max)
	if hi <= lo {
		return 0
	}
	return (math.Log10(s.Clamp(meters)) - lo) / (hi - lo)
}

// ScreenRadius converts meters to a screen radius in pixels.
func (s Scale) ScreenRadius(meters, maxRadius float64) float64 {
	if !(maxRadius > 0) {
		return 0
	}
	return s.Fraction(meters) * maxRadius
}

// MapToSurface converts a compass bearing and distance to surface
// coordinates around (cx, cy). Non-positive maxRadius yields the center.
func (s Scale) MapToSurface(directionDeg, meters, maxRadius, cx, cy float64) (float64, float64) {
	r := s.ScreenRadius(meters, maxRadius)
	if r == 0 {
		return cx, cy
	}
	rad := (NormalizeDegrees(directionDeg) - 90) * math.Pi / 180
	return cx + r*math.Cos(rad), cy + r*math.Sin(rad)
}

// MaxRadius returns the largest radar radius that fits a w x h surface.
// It is zero or negative for surfaces too small to draw on.
func MaxRadius(w, h int) float64 {
	return float64(min(w, h))/2 - edgeMargin
}

// NormalizeDegrees wraps an angle to [0, 360).
func NormalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// AngleDiff returns the shortest angular distance between two bearings in
// degrees. Result is in [0, 180].
func AngleDiff(a, b float64) float64 {
	d := math.Abs(NormalizeDegrees(a) - NormalizeDegrees(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

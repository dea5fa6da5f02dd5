package radar

import (
	"math"
	"time"
)

// sweepInnerThreshold hides the trail while it is still inside this many
// pixels of the center.
const sweepInnerThreshold = 4.0

// SweepSample is the single live point of the expanding sweep trail.
type SweepSample struct {
	Radius    float64 // pixels
	CreatedAt time.Time
}

// Sweep is the expanding sweep beam. Progress runs over [0, 1) and wraps.
type Sweep struct {
	Progress float64
	Sample   SweepSample

	increment float64
	lifetime  time.Duration
}

// NewSweep creates a sweep at the center.
func NewSweep(increment float64, lifetime time.Duration) *Sweep {
	return &Sweep{increment: increment, lifetime: lifetime}
}

// Advance moves the sweep one running frame forward. The sample is updated
// in place rather than accumulated.
func (s *Sweep) Advance(maxRadius float64, now time.Time) {
	s.Progress = math.Mod(s.Progress+s.increment, 1.0)
	s.Sample.Radius = s.Progress * math.Max(maxRadius, 0)
	s.Sample.CreatedAt = now
}

// Fit recomputes the sample radius against a new maxRadius without
// advancing. Radii from a previous surface size are never carried over.
func (s *Sweep) Fit(maxRadius float64) {
	s.Sample.Radius = s.Progress * math.Max(maxRadius, 0)
}

// Visible reports whether the trail should be drawn at all.
func (s *Sweep) Visible(maxRadius float64) bool {
	r := s.Sample.Radius
	return maxRadius > 0 && r > sweepInnerThreshold && r <= maxRadius
}

// Alpha returns the trail opacity at now: the smaller of a fade with
// distance from the center and a fade with the sample's age.
func (s *Sweep) Alpha(base, maxRadius float64, now time.Time) float64 {
	if !(maxRadius > 0) {
		return 0
	}
	distFade := 1 - 0.8*(s.Sample.Radius/maxRadius)
	timeFade := 1.0
	if s.lifetime > 0 && !s.Sample.CreatedAt.IsZero() {
		age := now.Sub(s.Sample.CreatedAt)
		timeFade = 1 - float64(age)/float64(s.lifetime)
	}
	a := base * math.Min(distFade, timeFade)
	return math.Max(0, math.Min(1, a))
}

package radar

import (
	"math"
	"time"
)

// pulsePhaseOffset staggers the rings of one point over the period.
const pulsePhaseOffset = 0.33

// PulseRing is one ring of a point's pulse, derived purely from time.
type PulseRing struct {
	Phase float64 // [0, 1): 0 just emitted, 1 fully expanded
	Alpha float64
}

// Pulse computes the pulse rings of a point at now. There is no stored
// per-point state; identical inputs give identical rings.
func Pulse(now time.Time, period time.Duration, rings int, intensity float64) []PulseRing {
	if period <= 0 || rings <= 0 {
		return nil
	}
	t := float64(now.UnixNano()) / float64(period)
	out := make([]PulseRing, rings)
	for i := range out {
		phase := math.Mod(t+float64(i)*pulsePhaseOffset, 1.0)
		if phase < 0 {
			phase++
		}
		out[i] = PulseRing{
			Phase: phase,
			Alpha: (1 - phase) * (0.25 + 0.5*intensity),
		}
	}
	return out
}

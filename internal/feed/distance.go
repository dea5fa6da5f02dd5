package feed

import (
	"errors"
	"fmt"
	"math"

	"doa-radar.klederson.com/internal/palette"
)

// ErrUnknownClass is returned when no propagation model exists for a class.
var ErrUnknownClass = errors.New("feed: no propagation model for class")

// Propagation describes how loud a class of source is and how its level
// falls off with distance.
type Propagation struct {
	L0 float64 // sound level at R0, dB
	R0 float64 // reference distance, meters
	A  float64 // atmospheric attenuation, dB per meter
}

// Calibrated defaults per class.
var propagation = map[string]Propagation{
	"helicopter": {L0: 110, R0: 100, A: 0.002},
	"tank":       {L0: 105, R0: 100, A: 0.0015},
	"vehicle":    {L0: 95, R0: 50, A: 0.001},
	"human":      {L0: 75, R0: 5, A: 0.0005},
}

const (
	searchMin   = 3.0    // meters
	searchMax   = 5000.0 // meters
	searchIters = 40
)

// level is the modeled sound level at distance r.
func (p Propagation) level(r float64) float64 {
	return p.L0 - 20*math.Log10(r/p.R0) - p.A*(r-p.R0)
}

// Distance inverts the model for a measured level by bisection over
// [3 m, 5 km]. When the level is outside the bracket, the attenuation
// term is dropped and the spherical-spreading model is solved directly.
func (p Propagation) Distance(levelDB float64) float64 {
	f := func(r float64) float64 { return p.level(r) - levelDB }
	lo, hi := searchMin, searchMax
	fLo, fHi := f(lo), f(hi)
	if fLo*fHi > 0 {
		return p.R0 * math.Pow(10, (p.L0-levelDB)/20)
	}
	for i := 0; i < searchIters; i++ {
		mid := (lo + hi) / 2
		fMid := f(mid)
		if fLo*fMid <= 0 {
			hi = mid
		} else {
			lo, fLo = mid, fMid
		}
	}
	return (lo + hi) / 2
}

// EstimateDistance returns the distance in meters of a source of the
// given class heard at levelDB.
func EstimateDistance(class string, levelDB float64) (float64, error) {
	if invalid(levelDB) {
		return math.NaN(), fmt.Errorf("feed: invalid level %v", levelDB)
	}
	p, ok := propagation[palette.Normalize(class)]
	if !ok {
		return math.NaN(), fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	return p.Distance(levelDB), nil
}

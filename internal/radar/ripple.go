package radar

import (
	"math"
	"time"
)

const (
	// rippleEpsilon is the opacity at or below which a ripple is retired.
	rippleEpsilon = 0.01
	// rippleOvershoot lets a ripple travel slightly past the rim.
	rippleOvershoot = 1.1
	// rippleRingSpacing is the pixel gap between the rendered rings of one ripple.
	rippleRingSpacing = 12.0
)

// Ripple is one expanding water-drop ring.
type Ripple struct {
	Origin    time.Time
	MaxRadius float64
	Radius    float64
	Opacity   float64
}

// Ripples is the bounded set of live ripples. Times passed to it come from
// the pausable engine clock so ripples do not age while paused.
type Ripples struct {
	Live []Ripple
	Last time.Time

	interval time.Duration
	max      int
	speed    float64
	alpha    float64
}

// NewRipples creates an empty ripple set.
func NewRipples(interval time.Duration, max int, speed, alpha float64) *Ripples {
	return &Ripples{interval: interval, max: max, speed: speed, alpha: alpha}
}

// Advance spawns at most one ripple and ages the live ones.
func (rs *Ripples) Advance(now time.Time, maxRadius float64) {
	if !(maxRadius > 0) {
		return
	}
	if (rs.Last.IsZero() || now.Sub(rs.Last) > rs.interval) && len(rs.Live) < rs.max {
		rs.Live = append(rs.Live, Ripple{Origin: now, MaxRadius: maxRadius, Opacity: rs.alpha})
		rs.Last = now
	}

	live := rs.Live[:0]
	for _, r := range rs.Live {
		r.MaxRadius = math.Min(r.MaxRadius, maxRadius)
		age := now.Sub(r.Origin).Seconds()
		r.Radius = math.Max(0, age*rs.speed)
		r.Opacity = math.Max(0, (1-r.Radius/r.MaxRadius)*rs.alpha)
		if r.Opacity <= rippleEpsilon || r.Radius > rippleOvershoot*r.MaxRadius {
			continue
		}
		live = append(live, r)
	}
	if n := len(live) - rs.max; n > 0 {
		live = live[n:]
	}
	rs.Live = live
}

// Fit bounds every ripple to a new maxRadius without aging it. Ripples that
// no longer fit are discarded.
func (rs *Ripples) Fit(maxRadius float64) {
	if !(maxRadius > 0) {
		rs.Live = rs.Live[:0]
		return
	}
	live := rs.Live[:0]
	for _, r := range rs.Live {
		if r.MaxRadius > maxRadius {
			r.MaxRadius = maxRadius
			r.Opacity = math.Max(0, (1-r.Radius/r.MaxRadius)*rs.alpha)
		}
		if r.Opacity <= rippleEpsilon || r.Radius > rippleOvershoot*r.MaxRadius {
			continue
		}
		live = append(live, r)
	}
	rs.Live = live
}

// Reset discards all ripples.
func (rs *Ripples) Reset() {
	rs.Live = nil
	rs.Last = time.Time{}
}

// rippleRing is one rendered ring of a ripple.
type rippleRing struct {
	Radius float64
	Alpha  float64
}

// Rings expands a ripple into its rendered rings, innermost ring last.
// Rings that would fall at or inside the center are omitted.
func (r Ripple) Rings(count int) []rippleRing {
	rings := make([]rippleRing, 0, count)
	for i := 0; i < count; i++ {
		radius := r.Radius - float64(i)*rippleRingSpacing
		if radius <= 0 {
			break
		}
		rings = append(rings, rippleRing{
			Radius: radius,
			Alpha:  r.Opacity * (1 - float64(i)/float64(count)),
		})
	}
	return rings
}

package canvas

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrDegenerateGradient is returned when a radial gradient is constructed
// with a negative radius, an inner radius not below the outer one, or a
// non-finite value.
var ErrDegenerateGradient = errors.New("canvas: degenerate gradient radii")

// MinGradientSpan is the smallest outer-inner distance ClampRadii produces.
const MinGradientSpan = 0.5

// Stop is one color stop of a gradient. Offset runs from 0 (inner radius)
// to 1 (outer radius).
type Stop struct {
	Offset float64
	Color  color.NRGBA
}

// RadialGradient is a concentric two-circle gradient filling the disc of
// radius Outer. Inside Inner the first stop color is used.
type RadialGradient struct {
	CX, CY       float64
	Inner, Outer float64
	stops        []Stop
}

// NewRadialGradient validates radii and stops and builds a gradient.
func NewRadialGradient(cx, cy, inner, outer float64, stops ...Stop) (*RadialGradient, error) {
	if !finite(cx, cy, inner, outer) {
		return nil, fmt.Errorf("%w: non-finite value (inner=%v outer=%v)", ErrDegenerateGradient, inner, outer)
	}
	if inner < 0 || outer <= inner {
		return nil, fmt.Errorf("%w: inner=%.3f outer=%.3f", ErrDegenerateGradient, inner, outer)
	}
	if len(stops) == 0 {
		return nil, fmt.Errorf("%w: no color stops", ErrDegenerateGradient)
	}
	prev := 0.0
	for _, s := range stops {
		if !finite(s.Offset) || s.Offset < prev || s.Offset > 1 {
			return nil, fmt.Errorf("%w: stop offset %v out of order", ErrDegenerateGradient, s.Offset)
		}
		prev = s.Offset
	}
	return &RadialGradient{CX: cx, CY: cy, Inner: inner, Outer: outer, stops: stops}, nil
}

// ClampRadii turns any inner/outer pair into one NewRadialGradient accepts:
// both non-negative, outer at least MinGradientSpan beyond inner.
func ClampRadii(inner, outer float64) (float64, float64) {
	if math.IsNaN(inner) || math.IsInf(inner, 0) || inner < 0 {
		inner = 0
	}
	if math.IsNaN(outer) || math.IsInf(outer, 0) || outer < 0 {
		outer = 0
	}
	if outer < inner+MinGradientSpan {
		outer = inner + MinGradientSpan
	}
	return inner, outer
}

// At returns the gradient color at distance d from the center.
func (g *RadialGradient) At(d float64) color.NRGBA {
	t := clamp01((d - g.Inner) / (g.Outer - g.Inner))
	first := g.stops[0]
	if t <= first.Offset {
		return first.Color
	}
	for i := 1; i < len(g.stops); i++ {
		s := g.stops[i]
		if t <= s.Offset {
			p := g.stops[i-1]
			span := s.Offset - p.Offset
			if span <= 0 {
				return s.Color
			}
			return lerp(p.Color, s.Color, (t-p.Offset)/span)
		}
	}
	return g.stops[len(g.stops)-1].Color
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	alpha := float64(a.A) + (float64(b.A)-float64(a.A))*t
	return WithAlpha(ca.BlendRgb(cb, t), alpha/255)
}

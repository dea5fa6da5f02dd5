// Package canvas holds the drawing surface the radar renders into: a gonum
// vg image canvas whose pixels are encoded into terminal half-block cells or
// written out as PNG snapshots.
package canvas

import (
	"errors"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidSize is returned when a surface is requested with a zero or
// negative dimension.
var ErrInvalidSize = errors.New("canvas: invalid surface size")

// Context is a drawing context over a fixed-size surface. Coordinates are in
// pixels, origin at the top-left corner, y growing downwards.
type Context interface {
	Size() (w, h int)
	Clear(c color.NRGBA)
	FillCircle(cx, cy, r float64, c color.NRGBA)
	StrokeCircle(cx, cy, r, width float64, c color.NRGBA, dash Dash)
	Line(x0, y0, x1, y1, width float64, c color.NRGBA, dash Dash)
	FillGradient(g *RadialGradient)
}

// Dash is an on/off length pattern in pixels. A nil Dash draws solid.
type Dash []float64

// WithAlpha converts c to a non-premultiplied color with the given opacity.
// Alpha is clamped to [0, 1]; NaN becomes fully transparent.
func WithAlpha(c colorful.Color, alpha float64) color.NRGBA {
	if math.IsNaN(alpha) || alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

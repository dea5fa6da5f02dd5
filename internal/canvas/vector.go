package canvas

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"
)

// gradientSteps bounds the number of rings used to approximate a gradient.
const (
	minGradientSteps = 8
	maxGradientSteps = 48
)

// Vector is a Context backed by a gonum vg image canvas. The live display
// encodes its pixels for the terminal; snapshots write them as PNG. One vg
// length unit equals one pixel.
type Vector struct {
	c    *vgimg.Canvas
	w, h int
}

// NewVector creates a w x h vector canvas.
func NewVector(w, h int) (*Vector, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(w), vg.Length(h)),
		vgimg.UseDPI(72),
	)
	return &Vector{c: c, w: w, h: h}, nil
}

// Size returns the canvas dimensions.
func (v *Vector) Size() (int, int) { return v.w, v.h }

// Image returns the rendered pixels, origin at the top-left corner.
func (v *Vector) Image() image.Image { return v.c.Image() }

// At returns the pixel at (x, y) as a non-premultiplied color.
func (v *Vector) At(x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(v.c.Image().At(x, y)).(color.NRGBA)
}

// pt converts top-left pixel coordinates into vg's bottom-left space.
func (v *Vector) pt(x, y float64) vg.Point {
	return vg.Point{X: vg.Length(x), Y: vg.Length(float64(v.h) - y)}
}

// Clear paints the whole canvas.
func (v *Vector) Clear(c color.NRGBA) {
	var p vg.Path
	p.Move(v.pt(0, 0))
	p.Line(v.pt(float64(v.w), 0))
	p.Line(v.pt(float64(v.w), float64(v.h)))
	p.Line(v.pt(0, float64(v.h)))
	p.Close()
	v.c.SetColor(c)
	v.c.Fill(p)
}

func (v *Vector) circle(cx, cy, r float64) vg.Path {
	var p vg.Path
	p.Move(v.pt(cx+r, cy))
	p.Arc(v.pt(cx, cy), vg.Length(r), 0, 2*math.Pi)
	p.Close()
	return p
}

// FillCircle fills a disc.
func (v *Vector) FillCircle(cx, cy, r float64, c color.NRGBA) {
	if !finite(cx, cy, r) || r <= 0 || c.A == 0 {
		return
	}
	v.c.SetColor(c)
	v.c.Fill(v.circle(cx, cy, r))
}

// StrokeCircle draws a circle outline.
func (v *Vector) StrokeCircle(cx, cy, r, width float64, c color.NRGBA, dash Dash) {
	if !finite(cx, cy, r, width) || r <= 0 || width <= 0 || c.A == 0 {
		return
	}
	v.c.Push()
	defer v.c.Pop()
	v.stroke(width, c, dash)
	v.c.Stroke(v.circle(cx, cy, r))
}

// Line draws a straight segment.
func (v *Vector) Line(x0, y0, x1, y1, width float64, c color.NRGBA, dash Dash) {
	if !finite(x0, y0, x1, y1, width) || width <= 0 || c.A == 0 {
		return
	}
	v.c.Push()
	defer v.c.Pop()
	v.stroke(width, c, dash)
	var p vg.Path
	p.Move(v.pt(x0, y0))
	p.Line(v.pt(x1, y1))
	v.c.Stroke(p)
}

func (v *Vector) stroke(width float64, c color.NRGBA, dash Dash) {
	v.c.SetColor(c)
	v.c.SetLineWidth(vg.Length(width))
	pattern := make([]vg.Length, len(dash))
	for i, d := range dash {
		pattern[i] = vg.Length(d)
	}
	v.c.SetLineDash(pattern, 0)
}

// FillGradient approximates the gradient with concentric rings.
func (v *Vector) FillGradient(g *RadialGradient) {
	if g == nil {
		return
	}
	if g.Inner > 0 {
		v.FillCircle(g.CX, g.CY, g.Inner, g.At(0))
	}
	span := g.Outer - g.Inner
	steps := int(span / 2)
	steps = max(minGradientSteps, min(maxGradientSteps, steps))
	width := span / float64(steps)
	v.c.Push()
	defer v.c.Pop()
	for i := 0; i < steps; i++ {
		r := g.Inner + (float64(i)+0.5)*width
		c := g.At(r)
		if c.A == 0 {
			continue
		}
		v.stroke(width, c, nil)
		v.c.Stroke(v.circle(g.CX, g.CY, r))
	}
}

// WritePNG encodes the canvas as PNG.
func (v *Vector) WritePNG(w io.Writer) error {
	if _, err := (vgimg.PngCanvas{Canvas: v.c}).WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

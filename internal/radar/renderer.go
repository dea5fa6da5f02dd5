package radar

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"doa-radar.klederson.com/internal/canvas"
	"doa-radar.klederson.com/internal/palette"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
)

var (
	colorBackground = color.NRGBA{R: 0x05, G: 0x0A, B: 0x05, A: 0xFF}
	colorRing       = mustHex("#008F11")
	colorCross      = mustHex("#004A0A")
	colorSweep      = mustHex("#00FF41")
	colorHighlight  = mustHex("#FFFFFF")

	dashCrosshair = canvas.Dash{2, 4}
	dashRange     = canvas.Dash{3, 3}
	dashBearing   = canvas.Dash{4, 4}
)

const (
	sweepBaseAlpha = 0.55
	rippleBand     = 3.0
	maxDecadeRings = 12
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Renderer draws one frame of the radar into a canvas.Context.
type Renderer struct {
	scale  Scale
	opts   Options
	colors *palette.Resolver
}

// NewRenderer creates a renderer for the given distance scale.
func NewRenderer(opts Options, colors *palette.Resolver) *Renderer {
	if colors == nil {
		colors = palette.MustDefault()
	}
	return &Renderer{
		scale:  Scale{Min: opts.MinDistance, Max: opts.MaxDistance},
		opts:   opts,
		colors: colors,
	}
}

// Draw renders background, ripples, sweep and points. Failures in one
// primitive are collected and drawing continues with the next.
func (r *Renderer) Draw(ctx canvas.Context, s *RenderState, now time.Time) error {
	ctx.Clear(colorBackground)
	if !(s.MaxRadius > 0) {
		return nil
	}
	w, h := ctx.Size()
	cx, cy := float64(w)/2, float64(h)/2

	var errs []error
	r.drawRangeRings(ctx, cx, cy, s.MaxRadius)
	for _, rp := range s.Ripples.Live {
		errs = append(errs, r.drawRipple(ctx, cx, cy, rp))
	}
	errs = append(errs, r.drawSweep(ctx, cx, cy, s, now))
	for i, p := range s.Points {
		if err := r.drawPoint(ctx, cx, cy, s.MaxRadius, p, now); err != nil {
			errs = append(errs, fmt.Errorf("point %d (%s): %w", i, p.ID, err))
		}
	}
	return errors.Join(errs...)
}

// decades returns the range ring distances, one per power of ten.
func (r *Renderer) decades() []float64 {
	n := int(math.Round(math.Log10(r.scale.Max/r.scale.Min))) + 1
	n = max(2, min(n, maxDecadeRings))
	return floats.LogSpan(make([]float64, n), r.scale.Min, r.scale.Max)
}

func (r *Renderer) drawRangeRings(ctx canvas.Context, cx, cy, maxR float64) {
	rings := r.decades()
	for i, d := range rings {
		rad := r.scale.ScreenRadius(d, maxR)
		if rad <= 0 {
			continue
		}
		dash := dashRange
		alpha := 0.35
		if i == len(rings)-1 {
			dash, alpha = nil, 0.6
		}
		ctx.StrokeCircle(cx, cy, rad, 1, canvas.WithAlpha(colorRing, alpha), dash)
	}
	cross := canvas.WithAlpha(colorCross, 0.8)
	ctx.Line(cx-maxR, cy, cx+maxR, cy, 1, cross, dashCrosshair)
	ctx.Line(cx, cy-maxR, cx, cy+maxR, 1, cross, dashCrosshair)
}

func (r *Renderer) drawRipple(ctx canvas.Context, cx, cy float64, rp Ripple) error {
	var errs []error
	for _, ring := range rp.Rings(r.opts.RippleRings) {
		inner, outer := canvas.ClampRadii(ring.Radius-rippleBand, ring.Radius+rippleBand)
		g, err := canvas.NewRadialGradient(cx, cy, inner, outer,
			canvas.Stop{Offset: 0, Color: canvas.WithAlpha(colorSweep, 0)},
			canvas.Stop{Offset: 0.5, Color: canvas.WithAlpha(colorSweep, ring.Alpha)},
			canvas.Stop{Offset: 1, Color: canvas.WithAlpha(colorSweep, 0)},
		)
		if err != nil {
			errs = append(errs, fmt.Errorf("ripple ring: %w", err))
			continue
		}
		ctx.FillGradient(g)
	}
	return errors.Join(errs...)
}

func (r *Renderer) drawSweep(ctx canvas.Context, cx, cy float64, s *RenderState, now time.Time) error {
	if !s.Sweep.Visible(s.MaxRadius) {
		return nil
	}
	alpha := s.Sweep.Alpha(sweepBaseAlpha, s.MaxRadius, now)
	if alpha <= 0 {
		return nil
	}
	head := s.Sweep.Sample.Radius
	inner, outer := canvas.ClampRadii(head-r.opts.TrailWidth, head)
	g, err := canvas.NewRadialGradient(cx, cy, inner, outer,
		canvas.Stop{Offset: 0, Color: canvas.WithAlpha(colorSweep, 0)},
		canvas.Stop{Offset: 1, Color: canvas.WithAlpha(colorSweep, alpha)},
	)
	if err != nil {
		return fmt.Errorf("sweep trail: %w", err)
	}
	ctx.FillGradient(g)
	ctx.StrokeCircle(cx, cy, head, 1.5, canvas.WithAlpha(colorSweep, math.Min(1, alpha*1.5)), nil)
	return nil
}

// pointGlow is one layer of a point's outer glow: radius multiple of the
// core and opacity multiple of the point alpha.
var pointGlow = []struct{ radius, alpha float64 }{
	{4.0, 0.15},
	{3.0, 0.25},
	{2.0, 0.40},
}

func (r *Renderer) drawPoint(ctx canvas.Context, cx, cy, maxR float64, pt Point, now time.Time) error {
	p := pt.Normalized(r.scale)
	col := r.colors.ColorOf(p.Class)
	x, y := r.scale.MapToSurface(p.Direction, p.Distance, maxR, cx, cy)
	core := 2.5 + 3.5*p.Intensity
	strength := 0.5 + 0.5*p.Intensity

	spread := 6 + 14*p.Intensity
	for _, ring := range Pulse(now, r.opts.PulsePeriod, r.opts.PulseRings, p.Intensity) {
		ctx.StrokeCircle(x, y, core+ring.Phase*spread, 1.2, canvas.WithAlpha(col, ring.Alpha), nil)
	}

	var errs []error
	for _, layer := range pointGlow {
		inner, outer := canvas.ClampRadii(core*0.5, core*layer.radius)
		g, err := canvas.NewRadialGradient(x, y, inner, outer,
			canvas.Stop{Offset: 0, Color: canvas.WithAlpha(col, layer.alpha*strength)},
			canvas.Stop{Offset: 1, Color: canvas.WithAlpha(col, 0)},
		)
		if err != nil {
			errs = append(errs, fmt.Errorf("glow: %w", err))
			continue
		}
		ctx.FillGradient(g)
	}

	ctx.FillCircle(x, y, core, canvas.WithAlpha(col, 0.6+0.4*p.Intensity))
	ctx.FillCircle(x-core*0.3, y-core*0.3, core*0.35, canvas.WithAlpha(colorHighlight, 0.8))
	ctx.Line(cx, cy, x, y, 1, canvas.WithAlpha(col, 0.35), dashBearing)
	return errors.Join(errs...)
}

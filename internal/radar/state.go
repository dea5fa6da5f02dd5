package radar

import (
	"time"

	"doa-radar.klederson.com/internal/canvas"
)

// PresentFunc receives the drawing context after every produced frame.
type PresentFunc func(ctx canvas.Context)

// RenderState is the mutable state of one mounted display. It is owned by
// the Display and touched only from the bubbletea update loop.
type RenderState struct {
	Running bool
	Points  []Point

	Sweep   *Sweep
	Ripples *Ripples

	Width, Height int
	MaxRadius     float64

	Present PresentFunc
}

func newRenderState(o Options) *RenderState {
	return &RenderState{
		Running: true,
		Sweep:   NewSweep(o.SweepIncrement, o.TrailLifetime),
		Ripples: NewRipples(o.RippleInterval, o.RippleMax, o.RippleSpeed, o.RippleAlpha),
	}
}

// fit records the current surface size and bounds every stored radius to
// it. Returns false when the surface is too small to draw.
func (s *RenderState) fit(w, h int) bool {
	s.Width, s.Height = w, h
	s.MaxRadius = MaxRadius(w, h)
	s.Sweep.Fit(s.MaxRadius)
	s.Ripples.Fit(s.MaxRadius)
	return s.MaxRadius > 0
}

// advance steps the decay layers one running frame. wall stamps the sweep
// sample; engine ages ripples.
func (s *RenderState) advance(wall, engine time.Time, ripples bool) {
	s.Sweep.Advance(s.MaxRadius, wall)
	if ripples {
		s.Ripples.Advance(engine, s.MaxRadius)
	}
}

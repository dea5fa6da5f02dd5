package radar

import (
	"time"

	"doa-radar.klederson.com/internal/config"
)

// Options configures one display engine. The near-identical display
// variants collapse into these toggles.
type Options struct {
	MinDistance float64 // meters at the center
	MaxDistance float64 // meters at the rim

	FrameInterval       time.Duration // delay between chained frames while running
	PauseRedrawInterval time.Duration // keep-alive redraw period while paused
	SettleDelay         time.Duration // re-measure the host this long after mount

	FallbackWidth  int
	FallbackHeight int

	SweepIncrement float64
	TrailWidth     float64
	TrailLifetime  time.Duration

	RippleEnabled  bool
	RippleInterval time.Duration
	RippleMax      int
	RippleSpeed    float64 // pixels per second
	RippleAlpha    float64
	RippleRings    int

	PulseRings  int
	PulsePeriod time.Duration
}

// DefaultOptions returns the stock radar configuration.
func DefaultOptions() Options {
	return Options{
		MinDistance:         config.MinDistance,
		MaxDistance:         config.MaxDistance,
		FrameInterval:       time.Second / config.TargetFPS,
		PauseRedrawInterval: config.PauseRedrawInterval,
		SettleDelay:         config.SettleDelay,
		FallbackWidth:       config.FallbackWidth,
		FallbackHeight:      config.FallbackHeight,
		SweepIncrement:      config.SweepIncrement,
		TrailWidth:          config.TrailWidth,
		TrailLifetime:       config.TrailLifetime,
		RippleEnabled:       config.RippleEnabled,
		RippleInterval:      config.RippleInterval,
		RippleMax:           config.RippleMax,
		RippleSpeed:         config.RippleSpeed,
		RippleAlpha:         config.RippleAlpha,
		RippleRings:         config.RippleRings,
		PulseRings:          config.PulseRings,
		PulsePeriod:         config.PulsePeriod,
	}
}

// sanitized replaces unusable values with defaults so the engine never
// divides by zero or schedules a zero-delay loop.
func (o Options) sanitized() Options {
	d := DefaultOptions()
	if !(o.MinDistance > 0) {
		o.MinDistance = d.MinDistance
	}
	if !(o.MaxDistance > o.MinDistance) {
		o.MaxDistance = o.MinDistance * 1e5
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = d.FrameInterval
	}
	if o.PauseRedrawInterval <= 0 {
		o.PauseRedrawInterval = d.PauseRedrawInterval
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = d.SettleDelay
	}
	if o.SweepIncrement <= 0 || o.SweepIncrement >= 1 {
		o.SweepIncrement = d.SweepIncrement
	}
	if o.TrailWidth <= 0 {
		o.TrailWidth = d.TrailWidth
	}
	if o.TrailLifetime <= 0 {
		o.TrailLifetime = d.TrailLifetime
	}
	if o.RippleInterval <= 0 {
		o.RippleInterval = d.RippleInterval
	}
	if o.RippleMax <= 0 {
		o.RippleMax = d.RippleMax
	}
	if o.RippleSpeed <= 0 {
		o.RippleSpeed = d.RippleSpeed
	}
	if o.RippleAlpha <= 0 || o.RippleAlpha > 1 {
		o.RippleAlpha = d.RippleAlpha
	}
	if o.RippleRings <= 0 {
		o.RippleRings = d.RippleRings
	}
	if o.PulseRings <= 0 {
		o.PulseRings = d.PulseRings
	}
	if o.PulsePeriod <= 0 {
		o.PulsePeriod = d.PulsePeriod
	}
	return o
}

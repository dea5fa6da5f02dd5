package config

import "time"

const (
	// Log-scale distance range
	MinDistance = 1.0      // meters, radar center
	MaxDistance = 100000.0 // meters, radar rim

	// Frame scheduling
	TargetFPS           = 30
	PauseRedrawInterval = 100 * time.Millisecond // keep-alive redraw while paused
	SettleDelay         = 150 * time.Millisecond // re-measure after mount

	// Surface
	FallbackWidth  = 600 // pixels, used until the host has a layout
	FallbackHeight = 600
	Supersample    = 4 // canvas pixels per half-block cell side

	// Sweep trail
	SweepIncrement = 0.005 // progress per running frame (200 frames per pass)
	TrailWidth     = 50.0  // pixels behind the sweep radius
	TrailLifetime  = 2 * time.Second

	// Ripples
	RippleEnabled  = true
	RippleInterval = 2 * time.Second
	RippleMax      = 3
	RippleSpeed    = 60.0 // pixels per second
	RippleAlpha    = 0.45
	RippleRings    = 4

	// Point pulse
	PulseRings  = 3
	PulsePeriod = 1500 * time.Millisecond

	// Feed / track store
	TrackTimeout    = 5 * time.Second // drop sources not heard from for this long
	EvictInterval   = time.Second
	PublishInterval = 250 * time.Millisecond
	SmoothingAlpha  = 0.3 // EMA smoothing factor (30% new, 70% old)
	MinConfidence   = 0.25
	MergeWithinDeg  = 40.0

	// BLE feed
	MeasuredPower = -59.0 // RSSI at 1 meter (dBm)
	PathLossExp   = 2.5

	// Demo feed
	DemoSourceMin = 4
	DemoSourceMax = 8

	// App
	AppName    = "DOA-RADAR"
	AppVersion = "1.0"
)

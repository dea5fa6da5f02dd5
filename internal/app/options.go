package app

import (
	"fmt"
	"time"

	"doa-radar.klederson.com/internal/config"
	"doa-radar.klederson.com/internal/feed"
	"doa-radar.klederson.com/internal/radar"
	"doa-radar.klederson.com/internal/timeutil"
)

// RadarOptions derives the display options from settings.
func RadarOptions(s config.RadarSettings) radar.Options {
	opts := radar.DefaultOptions()
	opts.MinDistance = s.MinDistance
	opts.MaxDistance = s.MaxDistance
	if s.FPS > 0 {
		opts.FrameInterval = time.Second / time.Duration(s.FPS)
	}
	opts.PauseRedrawInterval = s.PauseRedraw
	opts.SettleDelay = s.SettleDelay
	opts.TrailWidth = s.TrailWidth
	opts.RippleEnabled = s.Ripples
	opts.RippleInterval = s.RippleInterval
	opts.RippleMax = s.RippleMax
	return opts
}

// FeedConfig derives the shared source settings.
func FeedConfig(s config.FeedSettings, clock timeutil.Clock) feed.Config {
	return feed.Config{
		Clock:           clock,
		PublishInterval: config.PublishInterval,
		TrackTimeout:    s.TrackTimeout,
		Smoothing:       s.Smoothing,
	}
}

// NewSource creates the point source selected by s.Source.
func NewSource(s config.Settings, clock timeutil.Clock) (feed.Source, error) {
	cfg := FeedConfig(s.Feed, clock)
	switch s.Source {
	case config.SourceDemo:
		return feed.NewDemo(clock.Now().UnixNano(), cfg), nil
	case config.SourceReplay:
		return feed.OpenReplay(s.Replay.Path, feed.ReplayOptions{
			Speed:          s.Replay.Speed,
			Loop:           s.Replay.Loop,
			MinConfidence:  s.Replay.MinConfidence,
			MergeWithinDeg: s.Replay.MergeWithinDeg,
		}, cfg)
	case config.SourceBLE:
		return feed.NewBLE(feed.BLEOptions{
			MeasuredPower: s.BLE.MeasuredPower,
			PathLossExp:   s.BLE.PathLossExp,
		}, cfg), nil
	}
	return nil, fmt.Errorf("unknown source %q", s.Source)
}

package app

import (
	"testing"
	"time"

	"doa-radar.klederson.com/internal/config"
	"doa-radar.klederson.com/internal/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRadarOptions_FromSettings(t *testing.T) {
	s := config.Defaults().Radar
	s.FPS = 20
	s.MinDistance = 5
	s.MaxDistance = 5000
	s.Ripples = false
	s.RippleMax = 2

	opts := RadarOptions(s)
	assert.Equal(t, 50*time.Millisecond, opts.FrameInterval)
	assert.Equal(t, 5.0, opts.MinDistance)
	assert.Equal(t, 5000.0, opts.MaxDistance)
	assert.False(t, opts.RippleEnabled)
	assert.Equal(t, 2, opts.RippleMax)
	assert.Equal(t, config.FallbackWidth, opts.FallbackWidth)
}

func TestNewSource(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	s := config.Defaults()

	src, err := NewSource(s, clock)
	require.NoError(t, err)
	assert.Equal(t, "demo", src.Name())

	s.Source = config.SourceBLE
	src, err = NewSource(s, clock)
	require.NoError(t, err)
	assert.Equal(t, "ble", src.Name())

	s.Source = config.SourceReplay
	s.Replay.Path = "does-not-exist.jsonl"
	_, err = NewSource(s, clock)
	assert.Error(t, err)

	s.Source = "radio"
	_, err = NewSource(s, clock)
	assert.Error(t, err)
}

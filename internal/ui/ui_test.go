package ui

import (
	"strings"
	"testing"
	"time"

	"doa-radar.klederson.com/internal/palette"
	"doa-radar.klederson.com/internal/radar"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestComputeLayout(t *testing.T) {
	l := ComputeLayout(120, 40)
	assert.Equal(t, 90, l.RadarW)
	assert.Equal(t, 30, l.ListW)
	assert.Equal(t, 38, l.BodyH)
	assert.Equal(t, 86, l.RadarInnerW)
	assert.Equal(t, 35, l.RadarInnerH)

	// Narrow terminals keep a usable list.
	l = ComputeLayout(40, 10)
	assert.Equal(t, 15, l.ListW)
	assert.Equal(t, 25, l.RadarW)

	l = ComputeLayout(0, 0)
	assert.Positive(t, l.RadarInnerW)
	assert.Positive(t, l.RadarInnerH)
}

func TestComputeLayout_TinyTerminalKeepsRadarPanel(t *testing.T) {
	for _, w := range []int{0, 1, 10, 14, 15, 17} {
		l := ComputeLayout(w, 10)
		assert.GreaterOrEqual(t, l.RadarW, 3, "width %d", w)
		assert.Equal(t, 15, l.ListW, "width %d", w)
		assert.Positive(t, l.RadarInnerW, "width %d", w)

		assert.NotPanics(t, func() {
			panel := RenderRadarPanel(l.RadarW, l.BodyH, "", "")
			assert.NotEmpty(t, panel)
		}, "width %d", w)
	}
}

func TestRenderMenuBar(t *testing.T) {
	b := []key.Binding{
		key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "Run/Pause")),
		key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "Quit"), key.WithDisabled()),
	}
	bar := RenderMenuBar(120, "demo", "PAUSED", b)
	assert.Contains(t, bar, "[SPACE]")
	assert.Contains(t, bar, "Run/Pause")
	assert.NotContains(t, bar, "Quit")
	assert.Contains(t, bar, "PAUSED")
	assert.Contains(t, bar, "Feed: demo")
}

func TestRenderStatusBar(t *testing.T) {
	bar := RenderStatusBar(160, Status{
		Mode:     "RUNNING",
		Count:    3,
		Classes:  map[string]int{"tank": 1, "human": 2},
		Progress: 0.5,
		Ripples:  2,
		Legend:   "1m .. 100km (log)",
	})
	assert.Contains(t, bar, "[RUNNING]")
	assert.Contains(t, bar, "Points: 3  human: 2  tank: 1")
	assert.Contains(t, bar, "Sweep:  50%")
	assert.Contains(t, bar, "1m .. 100km (log)")

	bar = RenderStatusBar(160, Status{Mode: "RUNNING", Err: "FEED ERROR"})
	assert.Contains(t, bar, "[FEED ERROR]")
}

func TestRenderPointList(t *testing.T) {
	colors := palette.MustDefault()

	empty := RenderPointList(nil, colors, 30, 12, 0, nil)
	assert.Contains(t, empty, "SOURCES [0]")
	assert.Contains(t, empty, "Waiting for feed")
	assert.Equal(t, 12, lipgloss.Height(empty))

	points := []radar.Point{
		{ID: "a", Label: "Alpha", Class: "tank", Direction: 90, Distance: 1500, Intensity: 0.8},
		{ID: "b", Class: "human", Direction: 180, Distance: 20, Intensity: 0.4},
	}
	list := RenderPointList(points, colors, 40, 12, 1, map[string]bool{"a": true})
	assert.Contains(t, list, "SOURCES [2]")
	assert.Contains(t, list, "Alpha")
	assert.Contains(t, list, "human", "unlabelled points show their class")
	assert.Contains(t, list, "1.5km")
	assert.Contains(t, list, ">>")
	assert.Contains(t, list, "[ ]")
}

func TestRenderDetailPanel(t *testing.T) {
	p := radar.Point{
		ID: "a", Label: "Alpha", Class: "helicopter",
		Direction: 45, Distance: 850, Intensity: 0.9,
		Timestamp: time.Unix(100, 0),
	}
	out := RenderDetailPanel(p, palette.MustDefault(), 60, 30, []float64{0, 0.5, 1}, time.Unix(103, 0))
	assert.Contains(t, out, "SOURCE DETAIL")
	assert.Contains(t, out, "45° NE")
	assert.Contains(t, out, "~850m")
	assert.Contains(t, out, "3s ago")
	assert.Contains(t, out, "_-^")
}

func TestRenderSparkline(t *testing.T) {
	assert.Equal(t, "", renderSparkline(nil, 10))
	assert.Equal(t, "_-^", renderSparkline([]float64{0, 0.5, 1}, 10))
	assert.Equal(t, "-^", renderSparkline([]float64{0, 0.5, 1}, 2), "keeps the newest values")
}

func TestBearingToDir(t *testing.T) {
	cases := map[float64]string{0: "N", 44: "NE", 90: "E", 180: "S", 270: "W", 350: "N", -90: "W", 405: "NE"}
	for deg, want := range cases {
		assert.Equal(t, want, bearingToDir(deg), "bearing %v", deg)
	}
}

func TestRenderCompass(t *testing.T) {
	assert.Empty(t, RenderCompass(5, 5, 0, 1))

	out := RenderCompass(21, 9, 0, 1)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 9)
	assert.Contains(t, out, "N")
	assert.Contains(t, out, "^", "arrow tip points north")

	assert.Contains(t, RenderCompass(21, 9, 90, 1), ">")
}

func TestProximityColor(t *testing.T) {
	assert.Equal(t, "#00FF41", proximityColor(0.95))
	assert.Equal(t, "#005511", proximityColor(0.05))
}

package radar

import (
	"fmt"
	"math"
	"strconv"
)

// Overlay is the presentational summary shown next to the radar.
type Overlay struct {
	Count       int
	MinDistance float64
	MaxDistance float64
	Mode        Mode
	Progress    float64
	Ripples     int
	Frames      uint64
	Width       int
	Height      int
}

// Overlay returns the current summary.
func (d *Display) Overlay() Overlay {
	return Overlay{
		Count:       len(d.state.Points),
		MinDistance: d.opts.MinDistance,
		MaxDistance: d.opts.MaxDistance,
		Mode:        d.sched.Mode(),
		Progress:    d.state.Sweep.Progress,
		Ripples:     len(d.state.Ripples.Live),
		Frames:      d.frames,
		Width:       d.state.Width,
		Height:      d.state.Height,
	}
}

// Legend renders the distance range, e.g. "1m .. 100km (log)".
func (o Overlay) Legend() string {
	return fmt.Sprintf("%s .. %s (log)", FormatDistance(o.MinDistance), FormatDistance(o.MaxDistance))
}

// FormatDistance renders meters compactly: "850m", "1.5km", "100km".
func FormatDistance(m float64) string {
	if m >= 1000 {
		return strconv.FormatFloat(math.Round(m/100)/10, 'f', -1, 64) + "km"
	}
	if m < 10 {
		return strconv.FormatFloat(math.Round(m*10)/10, 'f', -1, 64) + "m"
	}
	return fmt.Sprintf("%.0fm", m)
}

package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"doa-radar.klederson.com/internal/canvas"
	"doa-radar.klederson.com/internal/config"
	"doa-radar.klederson.com/internal/feed"
	"doa-radar.klederson.com/internal/palette"
	"doa-radar.klederson.com/internal/radar"
	"doa-radar.klederson.com/internal/surface"
	"doa-radar.klederson.com/internal/timeutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// ErrNoSnapshotSource is returned for sources that cannot be sampled
// offline.
var ErrNoSnapshotSource = errors.New("snapshot needs the demo or replay source")

// SnapshotOptions configures a headless render.
type SnapshotOptions struct {
	Settings config.Settings
	Colors   *palette.Resolver
	Points   []radar.Point
	Width    int
	Height   int
	Frames   int // running frames before the image is taken
	Start    time.Time
}

// WriteSnapshot renders Frames frames on a vector canvas and writes the
// last one as PNG.
func WriteSnapshot(w io.Writer, o SnapshotOptions) error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("snapshot size %dx%d: %w", o.Width, o.Height, canvas.ErrInvalidSize)
	}
	if o.Start.IsZero() {
		o.Start = time.Now()
	}
	clock := timeutil.NewMockClock(o.Start)
	noTick := func(time.Duration, func(time.Time) tea.Msg) tea.Cmd { return nil }

	opts := RadarOptions(o.Settings.Radar)
	d := radar.New(opts,
		radar.WithClock(clock),
		radar.WithTick(noTick),
		radar.WithPalette(o.Colors),
	)
	d.Mount(surface.HostFunc(func() (int, int) { return o.Width, o.Height }), true)
	defer d.Unmount()
	d.SetPoints(o.Points)

	frames := max(1, o.Frames)
	for i := 0; i < frames; i++ {
		clock.Advance(opts.FrameInterval)
		if err := d.RenderFrame(true); err != nil {
			logrus.WithError(err).WithField("frame", i).Warn("snapshot frame failed")
		}
	}

	ctx, err := d.Context()
	if err != nil {
		return err
	}
	v, ok := ctx.(*canvas.Vector)
	if !ok {
		return fmt.Errorf("snapshot context is %T, want *canvas.Vector", ctx)
	}
	return v.WritePNG(w)
}

// SnapshotPoints samples the configured source at offset into its
// timeline.
func SnapshotPoints(s config.Settings, offset time.Duration, clock timeutil.Clock) ([]radar.Point, error) {
	cfg := FeedConfig(s.Feed, clock)
	var readings []feed.Reading
	switch s.Source {
	case config.SourceDemo:
		readings = feed.NewDemo(clock.Now().UnixNano(), cfg).Sample(offset.Seconds())
	case config.SourceReplay:
		f, err := os.Open(s.Replay.Path)
		if err != nil {
			return nil, fmt.Errorf("open replay: %w", err)
		}
		defer f.Close()
		l, err := feed.ReadLog(f)
		if err != nil {
			return nil, err
		}
		r := feed.NewReplay(l, feed.ReplayOptions{
			MinConfidence:  s.Replay.MinConfidence,
			MergeWithinDeg: s.Replay.MergeWithinDeg,
		}, cfg)
		frame, ok := r.FrameAt(offset)
		if !ok {
			return nil, errors.New("replay log has no frames")
		}
		readings = r.Readings(frame)
	default:
		return nil, ErrNoSnapshotSource
	}

	store := feed.NewStore(clock, 1)
	for _, rd := range readings {
		store.Upsert(rd)
	}
	return store.Snapshot(), nil
}

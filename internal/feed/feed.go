// Package feed supplies point snapshots to the radar. A Source runs in its
// own goroutine and delivers SnapshotMsg values through a Sender, usually
// the running *tea.Program.
package feed

import (
	"context"
	"time"

	"doa-radar.klederson.com/internal/config"
	"doa-radar.klederson.com/internal/radar"
	"doa-radar.klederson.com/internal/timeutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// Sender delivers messages into the UI loop. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// SnapshotMsg replaces the displayed point set.
type SnapshotMsg struct {
	Source string
	Points []radar.Point
	At     time.Time
}

// ErrorMsg reports a source failure that stopped the source.
type ErrorMsg struct {
	Source string
	Err    error
}

// Source produces point snapshots until stopped.
type Source interface {
	Name() string
	Start(ctx context.Context, out Sender) error
	Stop()
}

// Reading is one observation of a point before smoothing.
type Reading struct {
	ID        string
	Label     string
	Class     string
	Direction float64 // degrees
	Distance  float64 // meters, NaN when unknown
	Intensity float64 // [0, 1]
}

// Config holds the settings shared by all sources.
type Config struct {
	Clock           timeutil.Clock
	PublishInterval time.Duration
	TrackTimeout    time.Duration
	Smoothing       float64
}

func (c Config) withDefaults() Config {
	if c.Clock == nil {
		c.Clock = timeutil.RealClock{}
	}
	if c.PublishInterval <= 0 {
		c.PublishInterval = config.PublishInterval
	}
	if c.TrackTimeout <= 0 {
		c.TrackTimeout = config.TrackTimeout
	}
	if c.Smoothing <= 0 || c.Smoothing > 1 {
		c.Smoothing = config.SmoothingAlpha
	}
	return c
}

// publisher evicts stale tracks and sends the store snapshot.
type publisher struct {
	name  string
	store *Store
	cfg   Config
	log   *logrus.Entry
}

func newPublisher(name string, store *Store, cfg Config) *publisher {
	return &publisher{
		name:  name,
		store: store,
		cfg:   cfg,
		log:   logrus.WithFields(logrus.Fields{"component": "feed", "source": name}),
	}
}

func (p *publisher) flush(out Sender) {
	if n := p.store.Evict(p.cfg.TrackTimeout); n > 0 {
		p.log.WithField("evicted", n).Debug("stale tracks removed")
	}
	out.Send(SnapshotMsg{Source: p.name, Points: p.store.Snapshot(), At: p.cfg.Clock.Now()})
}

// loop flushes every PublishInterval until ctx is done. tick, if set, runs
// before each flush.
func (p *publisher) loop(ctx context.Context, out Sender, tick func()) {
	ticker := p.cfg.Clock.NewTicker(p.cfg.PublishInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if tick != nil {
				tick()
			}
			p.flush(out)
		}
	}
}

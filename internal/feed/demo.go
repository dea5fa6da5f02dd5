package feed

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"doa-radar.klederson.com/internal/config"
	"github.com/google/uuid"
)

var demoTemplates = []struct {
	Class            string
	MinDist, MaxDist float64 // meters
	MaxDrift         float64 // degrees per second
}{
	{"helicopter", 400, 6000, 6},
	{"tank", 150, 3000, 1.5},
	{"vehicle", 40, 1500, 4},
	{"human", 3, 150, 2},
}

type demoTrack struct {
	id        string
	class     string
	bearing   float64 // degrees at t=0
	drift     float64 // degrees per second
	distance  float64 // meters, geometric center of the swing
	swing     float64 // decades
	phase     float64
	intensity float64
	active    bool
}

// Demo generates class-labelled synthetic sound sources.
type Demo struct {
	cfg   Config
	store *Store
	pub   *publisher

	mu     sync.Mutex
	rng    *rand.Rand
	tracks []demoTrack
	start  time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDemo creates a demo source with DemoSourceMin..DemoSourceMax tracks.
func NewDemo(seed int64, cfg Config) *Demo {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(seed))

	n := config.DemoSourceMin + rng.Intn(config.DemoSourceMax-config.DemoSourceMin+1)
	tracks := make([]demoTrack, n)
	for i := range tracks {
		// Every class appears at least once before repeats.
		tmpl := demoTemplates[i%len(demoTemplates)]
		if i >= len(demoTemplates) {
			tmpl = demoTemplates[rng.Intn(len(demoTemplates))]
		}
		logMin, logMax := math.Log10(tmpl.MinDist), math.Log10(tmpl.MaxDist)
		tracks[i] = demoTrack{
			id:        uuid.NewString(),
			class:     tmpl.Class,
			bearing:   rng.Float64() * 360,
			drift:     (rng.Float64()*2 - 1) * tmpl.MaxDrift,
			distance:  math.Pow(10, (logMin+logMax)/2),
			swing:     (logMax - logMin) / 2,
			phase:     rng.Float64() * 2 * math.Pi,
			intensity: 0.3 + rng.Float64()*0.6,
			active:    true,
		}
	}

	store := NewStore(cfg.Clock, cfg.Smoothing)
	return &Demo{
		cfg:    cfg,
		store:  store,
		pub:    newPublisher("demo", store, cfg),
		rng:    rng,
		tracks: tracks,
	}
}

// Name identifies the source.
func (d *Demo) Name() string { return "demo" }

// Sample returns the readings of every active track t seconds after start.
func (d *Demo) Sample(t float64) []Reading {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Reading, 0, len(d.tracks))
	for _, tr := range d.tracks {
		if !tr.active {
			continue
		}
		swing := tr.swing * math.Sin(t*0.05+tr.phase)
		out = append(out, Reading{
			ID:        tr.id,
			Label:     tr.class,
			Class:     tr.class,
			Direction: tr.bearing + tr.drift*t,
			Distance:  tr.distance * math.Pow(10, swing),
			Intensity: math.Max(0, math.Min(1, tr.intensity+0.15*math.Sin(t*1.3+tr.phase))),
		})
	}
	return out
}

// toggle randomly hides or reveals tracks so points come and go.
func (d *Demo) toggle() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.tracks {
		if d.rng.Float64() < 0.01 {
			d.tracks[i].active = !d.tracks[i].active
		}
	}
}

func (d *Demo) emit() {
	d.toggle()
	t := d.cfg.Clock.Since(d.start).Seconds()
	for _, r := range d.Sample(t) {
		d.store.Upsert(r)
	}
}

// Start publishes snapshots until ctx is done or Stop is called.
func (d *Demo) Start(ctx context.Context, out Sender) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.start = d.cfg.Clock.Now()

	go func() {
		defer close(d.done)
		d.emit()
		d.pub.flush(out)
		d.pub.loop(ctx, out, d.emit)
	}()
	return nil
}

// Stop halts the demo and waits for its goroutine.
func (d *Demo) Stop() {
	if d.cancel == nil {
		return
	}
	d.cancel()
	<-d.done
}

package radar

import (
	"errors"
	"fmt"
	"time"

	"doa-radar.klederson.com/internal/canvas"
	"doa-radar.klederson.com/internal/palette"
	"doa-radar.klederson.com/internal/surface"
	"doa-radar.klederson.com/internal/timeutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// ErrFramePanic wraps a panic recovered while producing a frame.
var ErrFramePanic = errors.New("radar: panic while drawing frame")

// Display is one mounted radar: surface, render state and frame
// scheduler. All methods must be called from the bubbletea update loop.
type Display struct {
	opts     Options
	clock    timeutil.Clock
	engine   *timeutil.PausableClock
	surface  *surface.Manager
	renderer *Renderer
	sched    *Scheduler
	state    *RenderState

	alloc     surface.Allocator
	colors    *palette.Resolver
	tick      TickFunc
	settleTag int
	frames    uint64
	lastErr   error

	log *logrus.Entry
}

// Option customizes a Display.
type Option func(*Display)

// WithClock sets the wall clock. Tests use a timeutil.MockClock.
func WithClock(c timeutil.Clock) Option {
	return func(d *Display) { d.clock = c }
}

// WithAllocator sets how drawing contexts are created.
func WithAllocator(a surface.Allocator) Option {
	return func(d *Display) { d.alloc = a }
}

// WithTick replaces tea.Tick for scheduling frames.
func WithTick(t TickFunc) Option {
	return func(d *Display) { d.tick = t }
}

// WithPalette sets the class color resolver.
func WithPalette(r *palette.Resolver) Option {
	return func(d *Display) { d.colors = r }
}

// OnPresent registers the callback receiving every produced frame.
func OnPresent(f PresentFunc) Option {
	return func(d *Display) { d.state.Present = f }
}

// New creates an unmounted display.
func New(opts Options, options ...Option) *Display {
	opts = opts.sanitized()
	id := nextID()
	d := &Display{
		opts:  opts,
		clock: timeutil.RealClock{},
		alloc: surface.VectorAllocator,
		state: newRenderState(opts),
		log:   logrus.WithFields(logrus.Fields{"component": "radar", "display": id}),
	}
	for _, o := range options {
		o(d)
	}
	d.engine = timeutil.NewPausableClock(d.clock)
	d.surface = surface.NewManager(d.alloc, opts.FallbackWidth, opts.FallbackHeight)
	d.renderer = NewRenderer(opts, d.colors)
	d.sched = newScheduler(id, opts.FrameInterval, opts.PauseRedrawInterval, d.tick)
	return d
}

// ID identifies the display in its messages.
func (d *Display) ID() int { return d.sched.id }

// Mode returns the scheduling mode.
func (d *Display) Mode() Mode { return d.sched.Mode() }

// Options returns the effective options.
func (d *Display) Options() Options { return d.opts }

// Mount attaches the display to host and starts scheduling. A display
// that was unmounted may be mounted again; its sweep progress is kept.
func (d *Display) Mount(host surface.Host, running bool) tea.Cmd {
	if m := d.sched.Mode(); m == Running || m == Paused {
		return nil
	}
	d.surface.Mount(host)
	d.state.Running = running
	w, h := d.surface.Size()
	d.log.WithFields(logrus.Fields{"w": w, "h": h, "running": running}).Debug("display mounted")

	d.settleTag++
	id, tag := d.sched.id, d.settleTag
	settle := d.sched.tick(d.opts.SettleDelay, func(time.Time) tea.Msg {
		return SettleMsg{ID: id, tag: tag}
	})

	if running {
		d.engine.Resume()
		return tea.Batch(settle, d.sched.transition(Running))
	}
	d.engine.Pause()
	cmd := d.sched.transition(Paused)
	d.redraw(false)
	return tea.Batch(settle, cmd)
}

// Unmount stops scheduling and releases the surface. Pending ticks become
// stale immediately. Ripples are discarded; sweep progress is kept.
func (d *Display) Unmount() {
	if d.sched.Mode() == Unmounted {
		return
	}
	d.sched.transition(Unmounted)
	d.settleTag++
	d.engine.Pause()
	d.state.Ripples.Reset()
	d.surface.Unmount()
	d.log.WithField("frames", d.frames).Debug("display unmounted")
}

// SetRunning applies the run/pause control.
func (d *Display) SetRunning(running bool) tea.Cmd {
	mode := d.sched.Mode()
	if mode != Running && mode != Paused {
		d.state.Running = running
		return nil
	}
	if running == (mode == Running) {
		return nil
	}
	d.state.Running = running
	if running {
		d.engine.Resume()
		return d.sched.transition(Running)
	}
	d.engine.Pause()
	cmd := d.sched.transition(Paused)
	d.redraw(false)
	return cmd
}

// Running reports the run/pause control value.
func (d *Display) Running() bool { return d.state.Running }

// SetPoints replaces the point snapshot. The slice is not copied and must
// not be mutated afterwards.
func (d *Display) SetPoints(points []Point) {
	d.state.Points = points
}

// Points returns the current snapshot.
func (d *Display) Points() []Point { return d.state.Points }

// Resize re-measures the host. While paused the display is redrawn at
// once so the frozen frame matches the new size.
func (d *Display) Resize() {
	if !d.surface.Mounted() {
		return
	}
	d.surface.Resize()
	if d.sched.Mode() == Paused {
		d.redraw(false)
	}
}

// Update handles scheduler, settle and focus messages. Other messages
// are ignored.
func (d *Display) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case FrameMsg:
		if !d.sched.acceptFrame(msg) {
			return nil
		}
		d.redraw(true)
		return d.sched.armFrame()

	case KeepAliveMsg:
		if !d.sched.acceptKeepAlive(msg) {
			return nil
		}
		d.redraw(false)
		return d.sched.armKeepAlive()

	case SettleMsg:
		if msg.ID == d.sched.id && msg.tag == d.settleTag {
			d.Resize()
		}

	case tea.WindowSizeMsg:
		d.Resize()

	case tea.FocusMsg:
		d.surface.Invalidate()
		d.Resize()

	case tea.BlurMsg:
		d.surface.Invalidate()
	}
	return nil
}

// redraw produces one frame and logs a failure. The caller keeps the
// chain going regardless.
func (d *Display) redraw(advance bool) {
	err := d.RenderFrame(advance)
	d.lastErr = err
	switch {
	case err == nil:
	case errors.Is(err, surface.ErrContextUnavailable):
		d.log.WithError(err).Debug("frame skipped")
	default:
		d.log.WithError(err).Warn("frame failed")
	}
}

// RenderFrame produces one frame. With advance set the decay layers step
// forward first; otherwise the frozen state is drawn as is. Panics inside
// drawing are recovered and returned as ErrFramePanic.
func (d *Display) RenderFrame(advance bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrFramePanic, r)
		}
	}()

	ctx, err := d.surface.Context()
	if err != nil {
		return err
	}
	w, h := ctx.Size()
	now := d.clock.Now()
	if d.state.fit(w, h) && advance {
		d.state.advance(now, d.engine.Now(), d.opts.RippleEnabled)
	}
	d.frames++

	drawErr := d.renderer.Draw(ctx, d.state, now)
	if d.state.Present != nil {
		d.state.Present(ctx)
	}
	return drawErr
}

// LastError returns the error of the most recent frame, if any.
func (d *Display) LastError() error { return d.lastErr }

// Context exposes the current drawing context, for snapshots.
func (d *Display) Context() (canvas.Context, error) { return d.surface.Context() }

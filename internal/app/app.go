package app

import (
	"context"
	"errors"

	"doa-radar.klederson.com/internal/canvas"
	"doa-radar.klederson.com/internal/config"
	"doa-radar.klederson.com/internal/feed"
	"doa-radar.klederson.com/internal/palette"
	"doa-radar.klederson.com/internal/radar"
	"doa-radar.klederson.com/internal/surface"
	"doa-radar.klederson.com/internal/timeutil"
	"doa-radar.klederson.com/internal/ui"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	display *radar.Display
	encoder *canvas.HalfBlockEncoder
	colors  *palette.Resolver
	clock   timeutil.Clock
	history *History
	layout  ui.Layout

	source feed.Source
	cancel context.CancelFunc

	// frame is the last presented frame, encoded for the terminal.
	frame string
}

// Config wires an AppModel.
type Config struct {
	Settings config.Settings
	Colors   *palette.Resolver
	Source   feed.Source
	Clock    timeutil.Clock
	// Display options applied after the defaults, e.g. a tick function.
	Display []radar.Option
}

// AppModel is the root Bubble Tea model for the radar.
type AppModel struct {
	width  int
	height int

	startPaused bool
	cursor      int
	detail      bool
	showHelp    bool
	feedErr     error

	keys   KeyMap
	help   help.Model
	shared *shared

	// Cached snapshot, unfiltered, in source order.
	points []radar.Point
	hidden map[string]bool
}

// New creates a new AppModel.
func New(cfg Config) AppModel {
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	if cfg.Colors == nil {
		cfg.Colors = palette.MustDefault()
	}
	sh := &shared{
		encoder: canvas.NewHalfBlockEncoder(config.Supersample),
		colors:  cfg.Colors,
		clock:   cfg.Clock,
		history: NewHistory(),
		source:  cfg.Source,
	}
	opts := append([]radar.Option{
		radar.WithClock(cfg.Clock),
		radar.WithPalette(cfg.Colors),
		radar.OnPresent(sh.present),
	}, cfg.Display...)
	sh.display = radar.New(RadarOptions(cfg.Settings.Radar), opts...)

	return AppModel{
		startPaused: cfg.Settings.Radar.StartPaused,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		shared:      sh,
		hidden:      make(map[string]bool),
	}
}

// present encodes vector frames for View. Other contexts are ignored.
func (s *shared) present(ctx canvas.Context) {
	if v, ok := ctx.(*canvas.Vector); ok {
		s.frame = s.encoder.Encode(v.Image())
	}
}

// measure reports the radar panel size in canvas pixels. Zero until the
// first WindowSizeMsg.
func (s *shared) measure() (int, int) {
	if s.layout.Width == 0 {
		return 0, 0
	}
	cw, ch := s.encoder.CellSize()
	return s.layout.RadarInnerW * cw, s.layout.RadarInnerH * ch
}

// Display exposes the radar display.
func (m AppModel) Display() *radar.Display { return m.shared.display }

func (m AppModel) Init() tea.Cmd {
	return m.shared.display.Mount(surface.HostFunc(m.shared.measure), !m.startPaused)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.shared.layout = ui.ComputeLayout(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, m.shared.display.Update(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case feed.SnapshotMsg:
		m.points = msg.Points
		m.feedErr = nil
		m.record()
		m.publish()
		if m.cursor >= len(m.points) {
			m.cursor = max(0, len(m.points)-1)
		}
		return m, nil

	case feed.ErrorMsg:
		m.feedErr = msg.Err
		logrus.WithField("source", msg.Source).WithError(msg.Err).Error("feed stopped")
		return m, nil
	}

	return m, m.shared.display.Update(msg)
}

// record appends intensity history and drops points that left the feed.
func (m AppModel) record() {
	keep := make(map[string]bool, len(m.points))
	for _, p := range m.points {
		keep[p.ID] = true
		m.shared.history.Record(p.ID, p.Intensity)
	}
	m.shared.history.Prune(keep)
	for id := range m.hidden {
		if !keep[id] {
			delete(m.hidden, id)
		}
	}
}

// publish hands the visible points to the display.
func (m AppModel) publish() {
	visible := make([]radar.Point, 0, len(m.points))
	for _, p := range m.points {
		if !m.hidden[p.ID] {
			visible = append(visible, p)
		}
	}
	m.shared.display.SetPoints(visible)
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.shared.display
	switch {
	case key.Matches(msg, m.keys.Quit):
		d.Unmount()
		m.StopSource()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		return m, d.SetRunning(!d.Running())

	case key.Matches(msg, m.keys.Pause):
		return m, d.SetRunning(false)

	case key.Matches(msg, m.keys.Resume):
		return m, d.SetRunning(true)

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.points)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Home):
		m.cursor = 0

	case key.Matches(msg, m.keys.End):
		m.cursor = max(0, len(m.points)-1)

	case key.Matches(msg, m.keys.Hide):
		if p, ok := m.selected(); ok {
			m.hidden[p.ID] = !m.hidden[p.ID]
			m.publish()
		}

	case key.Matches(msg, m.keys.Detail):
		_, m.detail = m.selected()

	case key.Matches(msg, m.keys.Back):
		m.detail = false
		m.showHelp = false

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m AppModel) selected() (radar.Point, bool) {
	if m.cursor < 0 || m.cursor >= len(m.points) {
		return radar.Point{}, false
	}
	return m.points[m.cursor], true
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing " + config.AppName + "..."
	}
	l := m.shared.layout
	d := m.shared.display
	ov := d.Overlay()

	sourceName := "none"
	if m.shared.source != nil {
		sourceName = m.shared.source.Name()
	}
	menuBar := ui.RenderMenuBar(m.width, sourceName, ov.Mode.String(), m.keys.ShortHelp())

	var main string
	p, ok := m.selected()
	switch {
	case m.showHelp:
		main = ui.StylePanelActive.Width(l.RadarW - 2).Height(l.BodyH - 2).
			Render(m.help.FullHelpView(m.keys.FullHelp()))
	case m.detail && ok:
		main = ui.RenderDetailPanel(p, m.shared.colors, l.RadarW, l.BodyH,
			m.shared.history.Values(p.ID), m.shared.clock.Now())
	default:
		main = ui.RenderRadarPanel(l.RadarW, l.BodyH, m.shared.frame, ov.Legend())
	}

	list := ui.RenderPointList(m.points, m.shared.colors, l.ListW, l.BodyH, m.cursor, m.hidden)

	status := ui.Status{
		Mode:     ov.Mode.String(),
		Count:    ov.Count,
		Classes:  feed.CountByClass(d.Points()),
		Progress: ov.Progress,
		Ripples:  ov.Ripples,
		Legend:   ov.Legend(),
	}
	if m.feedErr != nil {
		status.Err = "FEED ERROR"
	}
	statusBar := ui.RenderStatusBar(m.width, status)

	return ui.ComposeLayout(menuBar, main, list, statusBar)
}

// StartSource starts the point source, delivering snapshots to p. Must be
// called before p.Run().
func (m *AppModel) StartSource(ctx context.Context, p feed.Sender) error {
	if m.shared.source == nil {
		return errors.New("no point source configured")
	}
	ctx, cancel := context.WithCancel(ctx)
	if err := m.shared.source.Start(ctx, p); err != nil {
		cancel()
		return err
	}
	m.shared.cancel = cancel
	return nil
}

// StopSource stops the point source. Safe to call more than once.
func (m AppModel) StopSource() {
	if m.shared.cancel == nil {
		return
	}
	m.shared.cancel()
	m.shared.cancel = nil
	m.shared.source.Stop()
}

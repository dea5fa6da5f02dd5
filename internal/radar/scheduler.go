package radar

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Mode is the scheduling state of a display.
type Mode int

const (
	Idle Mode = iota
	Running
	Paused
	Unmounted
)

func (m Mode) String() string {
	switch m {
	case Running:
		return "RUNNING"
	case Paused:
		return "PAUSED"
	case Unmounted:
		return "UNMOUNTED"
	default:
		return "IDLE"
	}
}

// FrameMsg drives the running frame chain.
type FrameMsg struct {
	ID   int
	Time time.Time
	tag  int
}

// KeepAliveMsg drives the low-frequency redraw while paused.
type KeepAliveMsg struct {
	ID   int
	Time time.Time
	tag  int
}

// SettleMsg asks the display to re-measure its host shortly after mount.
type SettleMsg struct {
	ID  int
	tag int
}

// TickFunc schedules fn after d. tea.Tick is the production implementation.
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// Scheduler decides which timer is armed. Pending ticks cannot be
// cancelled, so every transition bumps both generation tags and messages
// carrying an old tag are dropped when they arrive.
type Scheduler struct {
	id        int
	mode      Mode
	frameTag  int
	keepTag   int
	frameIntv time.Duration
	keepIntv  time.Duration
	tick      TickFunc
}

func newScheduler(id int, frame, keepAlive time.Duration, tick TickFunc) *Scheduler {
	if tick == nil {
		tick = tea.Tick
	}
	return &Scheduler{id: id, frameIntv: frame, keepIntv: keepAlive, tick: tick}
}

// Mode returns the current mode.
func (s *Scheduler) Mode() Mode { return s.mode }

// transition is the only place the mode changes. It invalidates every
// pending tick and arms at most one: the frame chain when running, the
// keep-alive when paused, nothing otherwise.
func (s *Scheduler) transition(to Mode) tea.Cmd {
	s.frameTag++
	s.keepTag++
	s.mode = to
	switch to {
	case Running:
		return s.armFrame()
	case Paused:
		return s.armKeepAlive()
	default:
		return nil
	}
}

func (s *Scheduler) armFrame() tea.Cmd {
	id, tag := s.id, s.frameTag
	return s.tick(s.frameIntv, func(t time.Time) tea.Msg {
		return FrameMsg{ID: id, Time: t, tag: tag}
	})
}

func (s *Scheduler) armKeepAlive() tea.Cmd {
	id, tag := s.id, s.keepTag
	return s.tick(s.keepIntv, func(t time.Time) tea.Msg {
		return KeepAliveMsg{ID: id, Time: t, tag: tag}
	})
}

func (s *Scheduler) acceptFrame(msg FrameMsg) bool {
	return msg.ID == s.id && msg.tag == s.frameTag && s.mode == Running
}

func (s *Scheduler) acceptKeepAlive(msg KeepAliveMsg) bool {
	return msg.ID == s.id && msg.tag == s.keepTag && s.mode == Paused
}

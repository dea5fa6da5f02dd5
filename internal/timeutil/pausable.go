package timeutil

import (
	"sync"
	"time"
)

// PausableClock reports time that only advances while it is running.
// Elapsed time = base clock elapsed - total paused duration.
type PausableClock struct {
	mu sync.Mutex

	base  Clock
	start time.Time

	paused      bool
	pausedAt    time.Time
	totalPaused time.Duration
}

// NewPausableClock creates a running PausableClock on top of base.
func NewPausableClock(base Clock) *PausableClock {
	return &PausableClock{
		base:  base,
		start: base.Now(),
	}
}

// Now returns the pausable time. While paused it is frozen at the pause point.
func (pc *PausableClock) Now() time.Time {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.paused {
		return pc.start.Add(pc.pausedAt.Sub(pc.start) - pc.totalPaused)
	}
	return pc.start.Add(pc.base.Now().Sub(pc.start) - pc.totalPaused)
}

// Since returns the pausable duration elapsed since t.
func (pc *PausableClock) Since(t time.Time) time.Duration {
	return pc.Now().Sub(t)
}

// Pause stops time advancement. Pausing a paused clock is a no-op.
func (pc *PausableClock) Pause() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.paused {
		return
	}
	pc.paused = true
	pc.pausedAt = pc.base.Now()
}

// Resume continues time advancement. Resuming a running clock is a no-op.
func (pc *PausableClock) Resume() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if !pc.paused {
		return
	}
	pc.totalPaused += pc.base.Now().Sub(pc.pausedAt)
	pc.paused = false
	pc.pausedAt = time.Time{}
}

// IsPaused returns the current pause state.
func (pc *PausableClock) IsPaused() bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.paused
}

// TotalPaused returns the cumulative pause duration, including a pause in progress.
func (pc *PausableClock) TotalPaused() time.Duration {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	total := pc.totalPaused
	if pc.paused {
		total += pc.base.Now().Sub(pc.pausedAt)
	}
	return total
}

package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestMockClock_Advance(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	clock.Advance(1500 * time.Millisecond)

	assert.Equal(t, start.Add(1500*time.Millisecond), clock.Now())
	assert.Equal(t, 1500*time.Millisecond, clock.Since(start))
}

func fired(ch <-chan time.Time) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestMockClock_TimerFiresOnAdvance(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	timer := clock.NewTimer(time.Second)
	assert.Equal(t, time.Second, clock.Until(start.Add(time.Second)))

	clock.Advance(999 * time.Millisecond)
	assert.False(t, fired(timer.C()))
	clock.Advance(time.Millisecond)
	assert.True(t, fired(timer.C()))

	clock.Advance(time.Hour)
	assert.False(t, fired(timer.C()), "a timer fires once")
}

func TestMockClock_TimerResetUsesCurrentTime(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	timer := clock.NewTimer(time.Second)
	clock.Advance(time.Second)
	assert.True(t, fired(timer.C()))

	clock.Advance(10 * time.Second)
	assert.False(t, timer.Reset(2*time.Second))
	clock.Advance(time.Second)
	assert.False(t, fired(timer.C()))
	clock.Advance(time.Second)
	assert.True(t, fired(timer.C()))

	timer.Reset(0)
	assert.True(t, fired(timer.C()), "an already due reset fires at once")

	timer.Reset(time.Second)
	assert.True(t, timer.Stop())
	clock.Advance(time.Minute)
	assert.False(t, fired(timer.C()))
}

func TestMockClock_ZeroTimerFiresImmediately(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, fired(clock.NewTimer(0).C()))
}

func TestMockClock_Ticker(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	ticker := clock.NewTicker(100 * time.Millisecond)
	clock.Advance(50 * time.Millisecond)
	assert.False(t, fired(ticker.C()))
	clock.Advance(50 * time.Millisecond)
	assert.True(t, fired(ticker.C()))
	clock.Advance(100 * time.Millisecond)
	assert.True(t, fired(ticker.C()))

	ticker.Stop()
	clock.Advance(time.Second)
	assert.False(t, fired(ticker.C()))

	assert.Panics(t, func() { clock.NewTicker(0) })
}

func TestRealClock_Timer(t *testing.T) {
	clock := RealClock{}
	timer := clock.NewTimer(time.Millisecond)
	select {
	case <-timer.C():
	case <-time.After(5 * time.Second):
		t.Fatal("real timer never fired")
	}
	ticker := clock.NewTicker(time.Millisecond)
	defer ticker.Stop()
	<-ticker.C()
}

func TestPausableClock_FreezesWhilePaused(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	base := NewMockClock(start)
	pc := NewPausableClock(base)

	base.Advance(time.Second)
	assert.Equal(t, start.Add(time.Second), pc.Now())

	pc.Pause()
	base.Advance(5 * time.Second)
	assert.True(t, pc.IsPaused())
	assert.Equal(t, start.Add(time.Second), pc.Now())
	assert.Equal(t, 5*time.Second, pc.TotalPaused())

	pc.Resume()
	base.Advance(time.Second)
	assert.False(t, pc.IsPaused())
	assert.Equal(t, start.Add(2*time.Second), pc.Now())
}

func TestPausableClock_RepeatedTransitionsAreNoOps(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	base := NewMockClock(start)
	pc := NewPausableClock(base)

	pc.Resume()
	pc.Pause()
	base.Advance(time.Second)
	pc.Pause()
	base.Advance(time.Second)
	pc.Resume()
	pc.Resume()

	assert.Equal(t, 2*time.Second, pc.TotalPaused())
	assert.Equal(t, start, pc.Now())
}

package feed

import (
	"context"
	"io"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"doa-radar.klederson.com/internal/timeutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// recorder collects messages sent by a source.
type recorder struct {
	mu   sync.Mutex
	msgs []tea.Msg
	ch   chan tea.Msg
}

func newRecorder() *recorder { return &recorder{ch: make(chan tea.Msg, 1024)} }

func (r *recorder) Send(msg tea.Msg) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
	select {
	case r.ch <- msg:
	default:
	}
}

func (r *recorder) next(t *testing.T) tea.Msg {
	t.Helper()
	select {
	case m := <-r.ch:
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestStore_UpsertSmooths(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	s := NewStore(clock, 0.5)

	s.Upsert(Reading{ID: "a", Direction: 350, Distance: 10, Intensity: 0.2})
	s.Upsert(Reading{ID: "a", Direction: 10, Distance: 1000, Intensity: 0.6, Label: "alpha"})

	pts := s.Snapshot()
	require.Len(t, pts, 1)
	p := pts[0]
	assert.InDelta(t, 0.4, p.Intensity, 1e-9)
	assert.InDelta(t, 0.0, math.Min(p.Direction, 360-p.Direction), 1e-9, "smoothed across north")
	assert.InDelta(t, 100.0, p.Distance, 1e-6, "geometric mean in log space")
	assert.Equal(t, "alpha", p.Label)
	assert.Equal(t, "unknown", p.Class)
	assert.Equal(t, epoch, p.Timestamp)
}

func TestStore_KeepsKnownValuesOnMissingFields(t *testing.T) {
	s := NewStore(timeutil.NewMockClock(epoch), 0.3)
	s.Upsert(Reading{ID: "a", Direction: 90, Distance: math.NaN(), Intensity: 0.5})
	s.Upsert(Reading{ID: "a", Direction: math.NaN(), Distance: 40, Intensity: math.NaN()})
	p := s.Snapshot()[0]
	assert.Equal(t, 90.0, p.Direction)
	assert.Equal(t, 40.0, p.Distance)
	assert.Equal(t, 0.5, p.Intensity)
}

func TestStore_EvictAndOrder(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	s := NewStore(clock, 0.3)
	s.Upsert(Reading{ID: "old", Intensity: 0.9})
	clock.Advance(3 * time.Second)
	s.Upsert(Reading{ID: "b", Intensity: 0.4, Class: "tank"})
	s.Upsert(Reading{ID: "a", Intensity: 0.4, Class: "tank"})
	s.Upsert(Reading{ID: "c", Intensity: 0.8, Class: "human"})

	clock.Advance(2500 * time.Millisecond)
	assert.Equal(t, 1, s.Evict(5*time.Second))
	assert.Equal(t, 3, s.Count())

	got := s.Snapshot()
	ids := make([]string, len(got))
	for i, p := range got {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
	assert.Equal(t, map[string]int{"tank": 2, "human": 1}, CountByClass(got))

	// Snapshots are independent copies.
	got[0].Intensity = 0
	assert.Equal(t, 0.8, s.Snapshot()[0].Intensity)

	s.Reset()
	assert.Zero(t, s.Count())
}

func TestEstimateDistance(t *testing.T) {
	for class, p := range propagation {
		for _, r := range []float64{5, 20, 100, 800, 4000} {
			if r < searchMin {
				continue
			}
			got, err := EstimateDistance(class, p.level(r))
			require.NoError(t, err)
			assert.InEpsilon(t, r, got, 1e-6, "%s at %vm", class, r)
		}
	}

	// Louder than the bracket allows: fall back to spreading only.
	got, err := EstimateDistance("human", 200)
	require.NoError(t, err)
	assert.InDelta(t, 5*math.Pow(10, (75.0-200)/20), got, 1e-12)

	_, err = EstimateDistance("drone", 60)
	assert.ErrorIs(t, err, ErrUnknownClass)
	_, err = EstimateDistance("tank", math.NaN())
	assert.Error(t, err)
}

func TestBLEConversions(t *testing.T) {
	b := MacToBearing("AA:BB:CC:DD:EE:FF")
	assert.Equal(t, b, MacToBearing("AA:BB:CC:DD:EE:FF"))
	assert.GreaterOrEqual(t, b, 0.0)
	assert.Less(t, b, 360.0)
	assert.NotEqual(t, b, MacToBearing("AA:BB:CC:DD:EE:00"))

	assert.InDelta(t, 1.0, RSSIToDistance(-59, -59, 2.5), 1e-9)
	assert.InDelta(t, 10.0, RSSIToDistance(-84, -59, 2.5), 1e-9)
	assert.Equal(t, 0.1, RSSIToDistance(5, -59, 2.5))

	assert.Equal(t, 0.0, RSSIToIntensity(-120))
	assert.Equal(t, 1.0, RSSIToIntensity(-20))
	assert.InDelta(t, 0.5, RSSIToIntensity(-65), 1e-9)

	assert.Equal(t, "Apple", LookupManufacturer(0x004C))
	assert.Empty(t, LookupManufacturer(0xFFFF))
}

func TestDemo_SampleCoversClasses(t *testing.T) {
	d := NewDemo(7, Config{Clock: timeutil.NewMockClock(epoch)})
	readings := d.Sample(0)
	require.GreaterOrEqual(t, len(readings), 4)
	require.LessOrEqual(t, len(readings), 8)

	classes := map[string]bool{}
	ids := map[string]bool{}
	for _, r := range readings {
		classes[r.Class] = true
		ids[r.ID] = true
		assert.GreaterOrEqual(t, r.Intensity, 0.0)
		assert.LessOrEqual(t, r.Intensity, 1.0)
		assert.Greater(t, r.Distance, 0.0)
	}
	assert.Len(t, ids, len(readings))
	for _, c := range []string{"helicopter", "tank", "vehicle", "human"} {
		assert.True(t, classes[c], c)
	}

	opts := cmpopts.EquateApprox(0, 1e-12)
	assert.True(t, cmp.Equal(readings, d.Sample(0), opts), "sampling is a pure function of time")
	assert.False(t, cmp.Equal(readings, d.Sample(30), opts))
}

func TestDemo_StartPublishesSnapshots(t *testing.T) {
	d := NewDemo(1, Config{PublishInterval: 10 * time.Millisecond})
	rec := newRecorder()
	require.NoError(t, d.Start(context.Background(), rec))

	first := rec.next(t).(SnapshotMsg)
	assert.Equal(t, "demo", first.Source)
	assert.NotEmpty(t, first.Points)

	second := rec.next(t).(SnapshotMsg)
	assert.NotEmpty(t, second.Points)
	d.Stop()

	rec.mu.Lock()
	n := len(rec.msgs)
	rec.mu.Unlock()
	time.Sleep(30 * time.Millisecond)
	rec.mu.Lock()
	assert.Equal(t, n, len(rec.msgs), "no messages after Stop")
	rec.mu.Unlock()
}

// gatedSender blocks every Send until release is closed, like a
// tea.Program whose Run loop has not started yet.
type gatedSender struct {
	release chan struct{}
	rec     *recorder
}

func (g *gatedSender) Send(msg tea.Msg) {
	<-g.release
	g.rec.Send(msg)
}

func TestDemo_StartDoesNotBlockOnSender(t *testing.T) {
	d := NewDemo(1, Config{PublishInterval: 10 * time.Millisecond})
	out := &gatedSender{release: make(chan struct{}), rec: newRecorder()}

	started := make(chan error, 1)
	go func() { started <- d.Start(context.Background(), out) }()
	select {
	case err := <-started:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start blocked on an unready sender")
	}

	close(out.release)
	first := out.rec.next(t).(SnapshotMsg)
	assert.NotEmpty(t, first.Points)
	d.Stop()
}

func TestDemo_StartBeforeProgramRuns(t *testing.T) {
	p := tea.NewProgram(nil, tea.WithInput(nil), tea.WithOutput(io.Discard))
	d := NewDemo(1, Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	started := make(chan error, 1)
	go func() { started <- d.Start(ctx, p) }()
	select {
	case err := <-started:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("Start blocked before the program ran")
	}
	p.Kill()
	d.Stop()
}

const sampleLog = `{"type": "metadata", "session_id": "sess-1", "hostname": "pi", "created_utc": "2024-05-01T12:00:00Z", "metadata": {"mics": 4}}
{"type": "frame", "frame_index": 0, "timestamp_sec": 0.0, "tracks": [{"id": 1, "theta_deg": 350, "theta_dot_deg_per_sec": 0, "age": 3, "misses": 0, "hits": 3, "confidence": 0.9, "class_label": "tank", "level_db": 85}, {"id": 2, "theta_deg": 20, "theta_dot_deg_per_sec": 0, "age": 2, "misses": 0, "hits": 2, "confidence": 0.3, "class_label": "tank"}, {"id": 3, "theta_deg": 90, "theta_dot_deg_per_sec": 0, "age": 1, "misses": 1, "hits": 1, "confidence": 0.1}]}
not json

{"type": "frame", "frame_index": 1, "timestamp_sec": 0.02, "tracks": [{"id": 4, "theta_deg": -90, "theta_dot_deg_per_sec": 0, "age": 1, "misses": 0, "hits": 1, "confidence": 0.7, "class_label": "human", "distance_m": 12.5}]}
{"type": "heartbeat"}
`

func TestReadLog(t *testing.T) {
	l, err := ReadLog(strings.NewReader(sampleLog))
	require.NoError(t, err)
	assert.Equal(t, "sess-1", l.Metadata.SessionID)
	assert.Equal(t, "pi", l.Metadata.Hostname)
	assert.Equal(t, 2, l.Skipped)
	require.Len(t, l.Frames, 2)
	assert.Equal(t, 1, l.Frames[1].Index)
	require.Len(t, l.Frames[0].Tracks, 3)
	require.NotNil(t, l.Frames[0].Tracks[0].LevelDB)
	assert.Equal(t, 85.0, *l.Frames[0].Tracks[0].LevelDB)
	assert.Nil(t, l.Frames[0].Tracks[1].DistanceM)
}

func TestMergeTracks(t *testing.T) {
	tracks := []Track{
		{ID: 1, ThetaDeg: 350, Confidence: 0.9, ClassLabel: "tank"},
		{ID: 2, ThetaDeg: 20, Confidence: 0.3, ClassLabel: "tank"},
		{ID: 3, ThetaDeg: 55, Confidence: 0.6, ClassLabel: "tank"},
		{ID: 4, ThetaDeg: 0, Confidence: 0.8, ClassLabel: "human"},
		{ID: 5, ThetaDeg: 200, Confidence: 0.5, ClassLabel: "tank"},
	}
	got := MergeTracks(tracks, 40)
	require.Len(t, got, 3)

	byID := map[int]Track{}
	for _, tr := range got {
		byID[tr.ID] = tr
	}
	merged, ok := byID[1]
	require.True(t, ok, "merged cluster keeps the most confident id")
	assert.InDelta(t, 0.6, merged.Confidence, 1e-9)
	assert.True(t, merged.ThetaDeg > 0 && merged.ThetaDeg < 30, "bearing %v", merged.ThetaDeg)
	assert.Equal(t, 0.0, byID[4].ThetaDeg, "other classes are untouched")
	assert.Equal(t, 200.0, byID[5].ThetaDeg)
}

func TestFilterTracks(t *testing.T) {
	got := FilterTracks([]Track{
		{ID: 1, ThetaDeg: -30, Confidence: 0.5},
		{ID: 2, ThetaDeg: 10, Confidence: 0.2},
		{ID: 3, ThetaDeg: math.NaN(), Confidence: 0.9},
		{ID: 4, ThetaDeg: 725, Confidence: 1.5, ClassLabel: "Human"},
	}, 0.25)
	require.Len(t, got, 2)
	assert.Equal(t, 330.0, got[0].ThetaDeg)
	assert.Equal(t, "unknown", got[0].ClassLabel)
	assert.InDelta(t, 5.0, got[1].ThetaDeg, 1e-9)
	assert.Equal(t, 1.0, got[1].Confidence)
	assert.Equal(t, "human", got[1].ClassLabel)
}

func TestReplay_PlaysFrames(t *testing.T) {
	l, err := ReadLog(strings.NewReader(sampleLog))
	require.NoError(t, err)
	r := NewReplay(l, ReplayOptions{Speed: 10, MinConfidence: 0.25, MergeWithinDeg: 40}, Config{})
	assert.Equal(t, "sess-1", r.Session())
	assert.Equal(t, 2, r.Frames())

	rec := newRecorder()
	require.NoError(t, r.Start(context.Background(), rec))
	first := rec.next(t).(SnapshotMsg)
	second := rec.next(t).(SnapshotMsg)
	r.Stop()

	require.Len(t, first.Points, 1)
	p := first.Points[0]
	assert.Equal(t, "trk-1", p.ID)
	assert.Equal(t, "tank", p.Class)
	assert.InDelta(t, 0.6, p.Intensity, 1e-9)
	want, err := EstimateDistance("tank", 85)
	require.NoError(t, err)
	assert.InDelta(t, want, p.Distance, 1e-9)

	require.Len(t, second.Points, 2)
	var human bool
	for _, p := range second.Points {
		if p.ID == "trk-4" {
			human = true
			assert.Equal(t, 270.0, p.Direction)
			assert.Equal(t, 12.5, p.Distance)
		}
	}
	assert.True(t, human)
}

// advanceUntil steps clock until rec receives a message.
func advanceUntil(t *testing.T, clock *timeutil.MockClock, step time.Duration, rec *recorder) tea.Msg {
	t.Helper()
	for i := 0; i < 200; i++ {
		clock.Advance(step)
		select {
		case m := <-rec.ch:
			return m
		case <-time.After(10 * time.Millisecond):
		}
	}
	t.Fatal("no message after advancing the clock")
	return nil
}

func TestReplay_PacedByInjectedClock(t *testing.T) {
	const log = `{"type": "frame", "frame_index": 0, "timestamp_sec": 0, "tracks": [{"id": 1, "theta_deg": 10, "confidence": 0.9, "class_label": "human", "distance_m": 20}]}
{"type": "frame", "frame_index": 1, "timestamp_sec": 3, "tracks": [{"id": 2, "theta_deg": 200, "confidence": 0.9, "class_label": "human", "distance_m": 40}]}
`
	l, err := ReadLog(strings.NewReader(log))
	require.NoError(t, err)
	clock := timeutil.NewMockClock(epoch)
	r := NewReplay(l, ReplayOptions{Speed: 1, MinConfidence: 0.25}, Config{Clock: clock, TrackTimeout: time.Hour})

	rec := newRecorder()
	require.NoError(t, r.Start(context.Background(), rec))
	defer r.Stop()

	first := rec.next(t).(SnapshotMsg)
	require.Len(t, first.Points, 1)
	assert.Equal(t, epoch, first.At)

	select {
	case m := <-rec.ch:
		t.Fatalf("second frame sent before the clock advanced: %+v", m)
	case <-time.After(50 * time.Millisecond):
	}

	second := advanceUntil(t, clock, 250*time.Millisecond, rec).(SnapshotMsg)
	assert.Len(t, second.Points, 2)
	assert.False(t, second.At.Before(epoch.Add(3*time.Second)))
}

func TestDemo_TicksFromInjectedClock(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	d := NewDemo(1, Config{Clock: clock, PublishInterval: time.Second})
	rec := newRecorder()
	require.NoError(t, d.Start(context.Background(), rec))
	defer d.Stop()

	first := rec.next(t).(SnapshotMsg)
	assert.Equal(t, epoch, first.At)

	select {
	case m := <-rec.ch:
		t.Fatalf("tick without clock advance: %+v", m)
	case <-time.After(50 * time.Millisecond):
	}

	second := advanceUntil(t, clock, time.Second, rec).(SnapshotMsg)
	assert.True(t, second.At.After(epoch))
}

func TestReplay_EmptyLogFailsToStart(t *testing.T) {
	r := NewReplay(&Log{}, ReplayOptions{}, Config{})
	assert.Error(t, r.Start(context.Background(), newRecorder()))
	assert.NotEmpty(t, r.Session(), "generated session id")
}

func TestReplay_FrameAt(t *testing.T) {
	l, err := ReadLog(strings.NewReader(sampleLog))
	require.NoError(t, err)
	r := NewReplay(l, ReplayOptions{}, Config{})

	f, ok := r.FrameAt(0)
	require.True(t, ok)
	assert.Equal(t, 0, f.Index)

	f, _ = r.FrameAt(10 * time.Millisecond)
	assert.Equal(t, 1, f.Index)

	f, _ = r.FrameAt(time.Minute)
	assert.Equal(t, 1, f.Index, "past the end yields the last frame")

	_, ok = NewReplay(&Log{}, ReplayOptions{}, Config{}).FrameAt(0)
	assert.False(t, ok)
}

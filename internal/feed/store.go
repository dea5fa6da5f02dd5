package feed

import (
	"math"
	"sort"
	"sync"
	"time"

	"doa-radar.klederson.com/internal/palette"
	"doa-radar.klederson.com/internal/radar"
	"doa-radar.klederson.com/internal/timeutil"
)

type track struct {
	Reading
	lastSeen time.Time
}

// Store is a thread-safe set of tracked points with exponential smoothing.
type Store struct {
	mu     sync.RWMutex
	tracks map[string]*track
	clock  timeutil.Clock
	alpha  float64
}

// NewStore creates an empty Store. alpha is the EMA weight of a new
// reading in (0, 1].
func NewStore(clock timeutil.Clock, alpha float64) *Store {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Store{tracks: make(map[string]*track), clock: clock, alpha: alpha}
}

// Upsert adds or updates a track. Existing tracks are smoothed: intensity
// linearly, distance in log space, direction along the shorter arc.
func (s *Store) Upsert(r Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	r.Class = palette.Normalize(r.Class)
	existing, ok := s.tracks[r.ID]
	if !ok {
		s.tracks[r.ID] = &track{Reading: r, lastSeen: now}
		return
	}

	a := s.alpha
	existing.Intensity = ema(existing.Intensity, r.Intensity, a)
	existing.Direction = emaAngle(existing.Direction, r.Direction, a)
	switch {
	case invalid(r.Distance) || r.Distance <= 0:
	case invalid(existing.Distance) || existing.Distance <= 0:
		existing.Distance = r.Distance
	default:
		existing.Distance = math.Exp(ema(math.Log(existing.Distance), math.Log(r.Distance), a))
	}
	if r.Label != "" {
		existing.Label = r.Label
	}
	existing.Class = r.Class
	existing.lastSeen = now
}

// Evict removes tracks not seen within timeout and returns how many.
func (s *Store) Evict(timeout time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock.Now().Add(-timeout)
	count := 0
	for id, t := range s.tracks {
		if t.lastSeen.Before(cutoff) {
			delete(s.tracks, id)
			count++
		}
	}
	return count
}

// Snapshot returns a new slice of points, strongest first.
func (s *Store) Snapshot() []radar.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]radar.Point, 0, len(s.tracks))
	for _, t := range s.tracks {
		result = append(result, radar.Point{
			ID:        t.ID,
			Label:     t.Label,
			Direction: t.Direction,
			Distance:  t.Distance,
			Intensity: t.Intensity,
			Class:     t.Class,
			Timestamp: t.lastSeen,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Intensity != result[j].Intensity {
			return result[i].Intensity > result[j].Intensity
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Count returns the number of tracked points.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks)
}

// Reset drops every track.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = make(map[string]*track)
}

// CountByClass returns counts broken down by class label.
func CountByClass(points []radar.Point) map[string]int {
	out := make(map[string]int)
	for _, p := range points {
		out[palette.Normalize(p.Class)]++
	}
	return out
}

func ema(prev, next, a float64) float64 {
	if invalid(next) {
		return prev
	}
	if invalid(prev) {
		return next
	}
	return prev*(1-a) + next*a
}

func emaAngle(prev, next, a float64) float64 {
	if invalid(next) {
		return prev
	}
	next = radar.NormalizeDegrees(next)
	if invalid(prev) {
		return next
	}
	delta := math.Mod(next-prev+540, 360) - 180
	return radar.NormalizeDegrees(prev + a*delta)
}

func invalid(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

package feed

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"doa-radar.klederson.com/internal/config"
	"doa-radar.klederson.com/internal/palette"
	"doa-radar.klederson.com/internal/radar"
	"doa-radar.klederson.com/internal/timeutil"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// Metadata is the header record of a DOA track log.
type Metadata struct {
	SessionID  string         `json:"session_id"`
	Hostname   string         `json:"hostname"`
	CreatedUTC string         `json:"created_utc"`
	Extra      map[string]any `json:"metadata"`
}

// Track is one tracked direction of arrival inside a frame.
type Track struct {
	ID         int      `json:"id"`
	ThetaDeg   float64  `json:"theta_deg"`
	ThetaDot   float64  `json:"theta_dot_deg_per_sec"`
	Age        int      `json:"age"`
	Misses     int      `json:"misses"`
	Hits       int      `json:"hits"`
	Confidence float64  `json:"confidence"`
	ClassLabel string   `json:"class_label,omitempty"`
	DistanceM  *float64 `json:"distance_m,omitempty"`
	LevelDB    *float64 `json:"level_db,omitempty"`
}

// Frame is one tracker output.
type Frame struct {
	Index     int     `json:"frame_index"`
	Timestamp float64 `json:"timestamp_sec"`
	Tracks    []Track `json:"tracks"`
}

// Log is a parsed track log.
type Log struct {
	Metadata Metadata
	Frames   []Frame
	Skipped  int // malformed or unknown lines
}

// ReadLog parses a JSON Lines track log. Malformed lines are counted and
// skipped; only read errors fail.
func ReadLog(r io.Reader) (*Log, error) {
	log := &Log{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			logrus.WithError(err).WithField("line", line).Warn("skipping malformed replay line")
			log.Skipped++
			continue
		}
		switch env.Type {
		case "metadata":
			if err := json.Unmarshal(raw, &log.Metadata); err != nil {
				log.Skipped++
			}
		case "frame":
			var f Frame
			if err := json.Unmarshal(raw, &f); err != nil {
				logrus.WithError(err).WithField("line", line).Warn("skipping malformed replay frame")
				log.Skipped++
				continue
			}
			log.Frames = append(log.Frames, f)
		default:
			log.Skipped++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read replay: %w", err)
	}
	return log, nil
}

// FilterTracks drops low-confidence and non-finite tracks and normalizes
// bearings to [0, 360).
func FilterTracks(tracks []Track, minConfidence float64) []Track {
	out := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if invalid(t.ThetaDeg) || invalid(t.Confidence) || t.Confidence < minConfidence {
			continue
		}
		t.ThetaDeg = radar.NormalizeDegrees(t.ThetaDeg)
		t.Confidence = math.Min(1, t.Confidence)
		t.ClassLabel = palette.Normalize(t.ClassLabel)
		out = append(out, t)
	}
	return out
}

// MergeTracks fuses same-class tracks whose bearings lie within withinDeg
// of each other, transitively. A merged track takes the id of its most
// confident member, the confidence-weighted circular mean bearing and the
// mean confidence. Merging repeats until nothing changes.
func MergeTracks(tracks []Track, withinDeg float64) []Track {
	for {
		merged := mergeOnce(tracks, withinDeg)
		if len(merged) == len(tracks) {
			return merged
		}
		tracks = merged
	}
}

func mergeOnce(tracks []Track, withinDeg float64) []Track {
	if len(tracks) <= 1 {
		return tracks
	}
	byClass := make(map[string][]Track)
	var classes []string
	for _, t := range tracks {
		c := palette.Normalize(t.ClassLabel)
		if _, ok := byClass[c]; !ok {
			classes = append(classes, c)
		}
		byClass[c] = append(byClass[c], t)
	}

	var out []Track
	for _, class := range classes {
		group := byClass[class]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Confidence > group[j].Confidence })
		used := make([]bool, len(group))
		for i := range group {
			if used[i] {
				continue
			}
			used[i] = true
			cluster := []Track{group[i]}
			for changed := true; changed; {
				changed = false
				for j := range group {
					if used[j] {
						continue
					}
					for _, c := range cluster {
						if radar.AngleDiff(c.ThetaDeg, group[j].ThetaDeg) <= withinDeg {
							cluster = append(cluster, group[j])
							used[j] = true
							changed = true
							break
						}
					}
				}
			}
			out = append(out, fuse(cluster, class))
		}
	}
	return out
}

func fuse(cluster []Track, class string) Track {
	if len(cluster) == 1 {
		return cluster[0]
	}
	angles := make([]float64, len(cluster))
	conf := make([]float64, len(cluster))
	for i, t := range cluster {
		angles[i] = t.ThetaDeg * math.Pi / 180
		conf[i] = t.Confidence
	}
	best := cluster[0]
	best.ThetaDeg = radar.NormalizeDegrees(stat.CircularMean(angles, conf) * 180 / math.Pi)
	best.Confidence = stat.Mean(conf, nil)
	best.ClassLabel = class
	return best
}

// ReplayOptions configures a Replay.
type ReplayOptions struct {
	Speed          float64
	Loop           bool
	MinConfidence  float64
	MergeWithinDeg float64
}

// Replay plays a recorded track log back in real time, scaled by Speed.
type Replay struct {
	cfg     Config
	opts    ReplayOptions
	log     *Log
	store   *Store
	pub     *publisher
	session string

	cancel context.CancelFunc
	done   chan struct{}
}

// OpenReplay reads the log at path.
func OpenReplay(path string, opts ReplayOptions, cfg Config) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()
	l, err := ReadLog(f)
	if err != nil {
		return nil, err
	}
	return NewReplay(l, opts, cfg), nil
}

// NewReplay creates a replay of an already parsed log.
func NewReplay(l *Log, opts ReplayOptions, cfg Config) *Replay {
	cfg = cfg.withDefaults()
	if opts.Speed <= 0 {
		opts.Speed = 1
	}
	if opts.MergeWithinDeg < 0 {
		opts.MergeWithinDeg = config.MergeWithinDeg
	}
	session := l.Metadata.SessionID
	if session == "" {
		session = uuid.NewString()
	}
	store := NewStore(cfg.Clock, cfg.Smoothing)
	return &Replay{
		cfg:     cfg,
		opts:    opts,
		log:     l,
		store:   store,
		pub:     newPublisher("replay", store, cfg),
		session: session,
	}
}

// Name identifies the source.
func (r *Replay) Name() string { return "replay" }

// Session returns the recorded session id, or a generated one.
func (r *Replay) Session() string { return r.session }

// Frames returns the number of frames in the log.
func (r *Replay) Frames() int { return len(r.log.Frames) }

// FrameAt returns the first frame at least offset after the start of the
// log, or the last frame when the log is shorter.
func (r *Replay) FrameAt(offset time.Duration) (Frame, bool) {
	frames := r.log.Frames
	if len(frames) == 0 {
		return Frame{}, false
	}
	target := frames[0].Timestamp + offset.Seconds()
	for _, f := range frames {
		if f.Timestamp >= target {
			return f, true
		}
	}
	return frames[len(frames)-1], true
}

// Readings converts one frame into filtered, merged readings.
func (r *Replay) Readings(f Frame) []Reading {
	tracks := MergeTracks(FilterTracks(f.Tracks, r.opts.MinConfidence), r.opts.MergeWithinDeg)
	out := make([]Reading, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, Reading{
			ID:        "trk-" + strconv.Itoa(t.ID),
			Label:     fmt.Sprintf("%s #%d", t.ClassLabel, t.ID),
			Class:     t.ClassLabel,
			Direction: t.ThetaDeg,
			Distance:  trackDistance(t),
			Intensity: t.Confidence,
		})
	}
	return out
}

func trackDistance(t Track) float64 {
	if t.DistanceM != nil && !invalid(*t.DistanceM) {
		return *t.DistanceM
	}
	if t.LevelDB != nil {
		if d, err := EstimateDistance(t.ClassLabel, *t.LevelDB); err == nil {
			return d
		}
	}
	return math.NaN()
}

// Start begins playback in a goroutine.
func (r *Replay) Start(ctx context.Context, out Sender) error {
	if len(r.log.Frames) == 0 {
		return fmt.Errorf("replay %s: no frames", r.session)
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.pub.log.WithFields(logrus.Fields{"session": r.session, "frames": len(r.log.Frames), "speed": r.opts.Speed}).Info("replay started")

	go func() {
		defer close(r.done)
		for {
			if !r.play(ctx, out) || !r.opts.Loop {
				return
			}
			r.store.Reset()
		}
	}()
	return nil
}

// play runs through the frames once, returning false if cancelled.
func (r *Replay) play(ctx context.Context, out Sender) bool {
	clock := r.cfg.Clock
	first := r.log.Frames[0].Timestamp
	start := clock.Now()
	var timer timeutil.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for _, f := range r.log.Frames {
		offset := time.Duration((f.Timestamp - first) / r.opts.Speed * float64(time.Second))
		if wait := clock.Until(start.Add(offset)); wait > 0 {
			if timer == nil {
				timer = clock.NewTimer(wait)
			} else {
				timer.Reset(wait)
			}
			select {
			case <-ctx.Done():
				return false
			case <-timer.C():
			}
		} else if ctx.Err() != nil {
			return false
		}
		for _, rd := range r.Readings(f) {
			r.store.Upsert(rd)
		}
		r.pub.flush(out)
	}
	r.pub.log.WithField("session", r.session).Info("replay finished")
	return true
}

// Stop halts playback and waits for the goroutine.
func (r *Replay) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

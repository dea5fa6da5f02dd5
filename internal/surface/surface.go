// Package surface owns the drawing surface of one mounted radar display:
// it sizes the surface from the host container, falls back to a default
// size before layout, and (re)acquires the drawing context when it is lost.
package surface

import (
	"errors"
	"fmt"

	"doa-radar.klederson.com/internal/canvas"
	"github.com/sirupsen/logrus"
)

// ErrContextUnavailable means no drawing context could be obtained for
// this frame. Callers skip drawing and retry on the next frame.
var ErrContextUnavailable = errors.New("surface: drawing context unavailable")

// Host is the container the surface lives in. It may report zero or
// negative dimensions before its first layout.
type Host interface {
	Measure() (w, h int)
}

// HostFunc adapts a function to Host.
type HostFunc func() (int, int)

// Measure calls f.
func (f HostFunc) Measure() (int, int) { return f() }

// Allocator creates a drawing context of the given pixel size.
type Allocator func(w, h int) (canvas.Context, error)

// VectorAllocator allocates vg image canvases.
func VectorAllocator(w, h int) (canvas.Context, error) {
	return canvas.NewVector(w, h)
}

// Manager tracks the surface size and its drawing context.
type Manager struct {
	alloc     Allocator
	fallbackW int
	fallbackH int

	host    Host
	mounted bool
	width   int
	height  int
	ctx     canvas.Context

	log *logrus.Entry
}

// NewManager creates an unmounted Manager. Non-positive fallback
// dimensions are replaced by 600x600.
func NewManager(alloc Allocator, fallbackW, fallbackH int) *Manager {
	if fallbackW <= 0 || fallbackH <= 0 {
		fallbackW, fallbackH = 600, 600
	}
	return &Manager{
		alloc:     alloc,
		fallbackW: fallbackW,
		fallbackH: fallbackH,
		log:       logrus.WithField("component", "surface"),
	}
}

// Mount attaches the manager to host and performs the initial sizing.
func (m *Manager) Mount(host Host) {
	m.host = host
	m.mounted = true
	m.Resize()
}

// Unmount releases the context and detaches from the host.
func (m *Manager) Unmount() {
	m.mounted = false
	m.ctx = nil
	m.host = nil
}

// Mounted reports whether the manager is attached to a host.
func (m *Manager) Mounted() bool { return m.mounted }

// Resize re-measures the host. A changed size drops the current context so
// the next frame allocates one matching the new dimensions.
func (m *Manager) Resize() (int, int) {
	if !m.mounted {
		return m.width, m.height
	}
	w, h := m.measure()
	if w != m.width || h != m.height {
		m.log.WithFields(logrus.Fields{"from_w": m.width, "from_h": m.height, "w": w, "h": h}).Debug("surface resized")
		m.width, m.height = w, h
		m.ctx = nil
	}
	return w, h
}

func (m *Manager) measure() (int, int) {
	if m.host == nil {
		return m.fallbackW, m.fallbackH
	}
	w, h := m.host.Measure()
	if w <= 0 || h <= 0 {
		return m.fallbackW, m.fallbackH
	}
	return w, h
}

// Invalidate marks the context as lost, e.g. when the host loses
// visibility. It is re-acquired lazily.
func (m *Manager) Invalidate() {
	m.ctx = nil
}

// Size returns the current surface dimensions.
func (m *Manager) Size() (int, int) { return m.width, m.height }

// Context returns the drawing context, acquiring one if needed.
func (m *Manager) Context() (canvas.Context, error) {
	if !m.mounted {
		return nil, fmt.Errorf("%w: not mounted", ErrContextUnavailable)
	}
	if m.ctx != nil {
		return m.ctx, nil
	}
	ctx, err := m.alloc(m.width, m.height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContextUnavailable, err)
	}
	if ctx == nil {
		return nil, ErrContextUnavailable
	}
	m.ctx = ctx
	return ctx, nil
}

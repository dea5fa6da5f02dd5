package app

// historyLen is how many intensity samples each point keeps.
const historyLen = 120

// IntensityRing is a circular buffer of intensity samples.
type IntensityRing struct {
	buf   []float64
	pos   int
	count int
}

// NewIntensityRing creates a new circular buffer with the given capacity.
func NewIntensityRing(capacity int) *IntensityRing {
	return &IntensityRing{buf: make([]float64, max(1, capacity))}
}

// Push adds a value to the ring buffer.
func (r *IntensityRing) Push(val float64) {
	r.buf[r.pos] = val
	r.pos = (r.pos + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Values returns all stored values in chronological order.
func (r *IntensityRing) Values() []float64 {
	if r.count == 0 {
		return nil
	}
	result := make([]float64, r.count)
	if r.count < len(r.buf) {
		copy(result, r.buf[:r.count])
	} else {
		n := copy(result, r.buf[r.pos:])
		copy(result[n:], r.buf[:r.pos])
	}
	return result
}

// Len returns the number of stored values.
func (r *IntensityRing) Len() int {
	return r.count
}

// History tracks intensity per point ID.
type History struct {
	rings map[string]*IntensityRing
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{rings: make(map[string]*IntensityRing)}
}

// Record appends a sample for id.
func (h *History) Record(id string, intensity float64) {
	r, ok := h.rings[id]
	if !ok {
		r = NewIntensityRing(historyLen)
		h.rings[id] = r
	}
	r.Push(intensity)
}

// Values returns the samples for id, oldest first.
func (h *History) Values(id string) []float64 {
	if r, ok := h.rings[id]; ok {
		return r.Values()
	}
	return nil
}

// Prune drops every ID not in keep.
func (h *History) Prune(keep map[string]bool) {
	for id := range h.rings {
		if !keep[id] {
			delete(h.rings, id)
		}
	}
}

package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntensityRing_WrapsInOrder(t *testing.T) {
	r := NewIntensityRing(3)
	assert.Nil(t, r.Values())

	for _, v := range []float64{0.1, 0.2, 0.3, 0.4} {
		r.Push(v)
	}
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []float64{0.2, 0.3, 0.4}, r.Values())
}

func TestHistory_PruneDropsMissing(t *testing.T) {
	h := NewHistory()
	h.Record("a", 0.5)
	h.Record("b", 0.7)

	h.Prune(map[string]bool{"b": true})
	assert.Nil(t, h.Values("a"))
	assert.Equal(t, []float64{0.7}, h.Values("b"))
}

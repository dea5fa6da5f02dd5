package canvas

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	transparent = color.NRGBA{R: 0, G: 255, B: 65, A: 0}
	bright      = color.NRGBA{R: 0, G: 255, B: 65, A: 255}
	black       = color.NRGBA{A: 255}
)

func TestNewRadialGradient_RejectsDegenerateRadii(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		inner, outer float64
	}{
		{"negative inner", -1, 10},
		{"inverted", 10, 5},
		{"equal", 5, 5},
		{"nan", math.NaN(), 5},
		{"inf", 0, math.Inf(1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRadialGradient(0, 0, tc.inner, tc.outer, Stop{0, transparent}, Stop{1, bright})
			require.ErrorIs(t, err, ErrDegenerateGradient)
		})
	}
}

func TestNewRadialGradient_RequiresOrderedStops(t *testing.T) {
	t.Parallel()

	_, err := NewRadialGradient(0, 0, 0, 10)
	require.ErrorIs(t, err, ErrDegenerateGradient)

	_, err = NewRadialGradient(0, 0, 0, 10, Stop{0.8, transparent}, Stop{0.2, bright})
	require.ErrorIs(t, err, ErrDegenerateGradient)
}

func TestClampRadii_AlwaysProducesValidGradient(t *testing.T) {
	t.Parallel()

	inputs := [][2]float64{
		{-50, -10}, {40, 10}, {0, 0}, {math.NaN(), 3}, {2, math.Inf(-1)}, {10, 60},
	}
	for _, in := range inputs {
		inner, outer := ClampRadii(in[0], in[1])
		assert.GreaterOrEqual(t, inner, 0.0)
		assert.Greater(t, outer, inner)
		_, err := NewRadialGradient(0, 0, inner, outer, Stop{0, transparent}, Stop{1, bright})
		assert.NoError(t, err, "input %v", in)
	}
}

func TestRadialGradient_At(t *testing.T) {
	t.Parallel()

	g, err := NewRadialGradient(0, 0, 10, 20, Stop{0, transparent}, Stop{1, bright})
	require.NoError(t, err)

	assert.Equal(t, uint8(0), g.At(5).A, "inside inner radius uses first stop")
	assert.Equal(t, uint8(255), g.At(25).A, "beyond outer radius uses last stop")
	mid := g.At(15).A
	assert.InDelta(t, 128, float64(mid), 2)
}

package canvas

import (
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVector_RejectsEmptySize(t *testing.T) {
	t.Parallel()

	_, err := NewVector(0, 10)
	require.ErrorIs(t, err, ErrInvalidSize)
	_, err = NewVector(10, -1)
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestVector_FillCircle(t *testing.T) {
	t.Parallel()

	v, err := NewVector(40, 40)
	require.NoError(t, err)
	v.Clear(black)
	v.FillCircle(20, 20, 5, bright)

	assert.Equal(t, bright, v.At(20, 20))
	assert.Equal(t, black, v.At(2, 2))
}

func TestVector_IgnoresDegenerateInput(t *testing.T) {
	t.Parallel()

	v, err := NewVector(20, 20)
	require.NoError(t, err)
	v.Clear(black)

	v.FillCircle(10, 10, -3, bright)
	v.StrokeCircle(10, 10, 0, 1, bright, nil)
	v.Line(0, 0, 20, 20, 0, bright, nil)
	v.FillGradient(nil)

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			require.Equal(t, black, v.At(x, y))
		}
	}
}

func TestVector_OffSurfaceDrawingIsClipped(t *testing.T) {
	t.Parallel()

	v, err := NewVector(10, 10)
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		v.FillCircle(-100, -100, 50, bright)
		v.Line(-20, 5, 40, 5, 2, bright, Dash{3, 3})
		v.StrokeCircle(50, 50, 45, 3, bright, nil)
	})
}

func TestVector_ImplementsContext(t *testing.T) {
	t.Parallel()

	var _ Context = (*Vector)(nil)

	v, err := NewVector(64, 64)
	require.NoError(t, err)
	w, h := v.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 64, h)
	assert.Equal(t, image.Rect(0, 0, 64, 64), v.Image().Bounds())

	var sb strings.Builder
	v.Clear(black)
	v.FillCircle(32, 32, 10, bright)
	require.NoError(t, v.WritePNG(&sb))
	assert.True(t, strings.HasPrefix(sb.String(), "\x89PNG"))
}

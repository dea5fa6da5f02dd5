package canvas

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	halfBlock    = "▀"
	maxCacheSize = 8192
)

// HalfBlockEncoder turns an image into terminal text. Each cell is one '▀'
// whose foreground is the upper half and background the lower half; each
// half averages a Scale x Scale block of pixels.
type HalfBlockEncoder struct {
	Scale int
	cache map[uint64]string
}

// NewHalfBlockEncoder creates an encoder with the given supersampling scale.
func NewHalfBlockEncoder(scale int) *HalfBlockEncoder {
	if scale < 1 {
		scale = 1
	}
	return &HalfBlockEncoder{Scale: scale, cache: make(map[uint64]string)}
}

// CellSize returns how many canvas pixels a terminal cell covers.
func (e *HalfBlockEncoder) CellSize() (w, h int) {
	return e.Scale, e.Scale * 2
}

// Encode renders img as newline separated rows of styled cells.
func (e *HalfBlockEncoder) Encode(img image.Image) string {
	if img == nil {
		return ""
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cols := w / e.Scale
	rows := h / (e.Scale * 2)
	if cols == 0 || rows == 0 {
		return ""
	}
	if len(e.cache) > maxCacheSize {
		e.cache = make(map[uint64]string)
	}

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := e.average(img, b.Min.X+col*e.Scale, b.Min.Y+row*2*e.Scale)
			bottom := e.average(img, b.Min.X+col*e.Scale, b.Min.Y+row*2*e.Scale+e.Scale)
			sb.WriteString(e.cell(top, bottom))
		}
		if row < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// average returns the mean RGB of a Scale x Scale block, quantized to 5 bits
// per channel to keep the style cache small.
func (e *HalfBlockEncoder) average(img image.Image, x0, y0 int) uint32 {
	var sr, sg, sb, n int
	rgba, fast := img.(*image.RGBA)
	for y := y0; y < y0+e.Scale; y++ {
		for x := x0; x < x0+e.Scale; x++ {
			if fast {
				i := rgba.PixOffset(x, y)
				sr += int(rgba.Pix[i])
				sg += int(rgba.Pix[i+1])
				sb += int(rgba.Pix[i+2])
			} else {
				r, g, b, _ := img.At(x, y).RGBA()
				sr += int(r >> 8)
				sg += int(g >> 8)
				sb += int(b >> 8)
			}
			n++
		}
	}
	q := func(v int) uint32 { return uint32(v/n) & 0xF8 }
	return q(sr)<<16 | q(sg)<<8 | q(sb)
}

func (e *HalfBlockEncoder) cell(top, bottom uint32) string {
	key := uint64(top)<<32 | uint64(bottom)
	if s, ok := e.cache[key]; ok {
		return s
	}
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color(hex(top))).
		Background(lipgloss.Color(hex(bottom))).
		Render(halfBlock)
	e.cache[key] = s
	return s
}

func hex(rgb uint32) string {
	return fmt.Sprintf("#%06X", rgb)
}

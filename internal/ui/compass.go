package ui

import (
	"math"
	"strings"

	"doa-radar.klederson.com/internal/radar"
	"github.com/charmbracelet/lipgloss"
)

// RenderCompass renders a compass with an arrow pointing along a bearing.
// bearing: degrees clockwise from north, intensity: [0, 1]. Louder sources
// get a longer arrow.
func RenderCompass(width, height int, bearing, intensity float64) string {
	if width < 9 || height < 5 {
		return ""
	}

	grid := make([][]byte, height)
	isArrow := make([][]bool, height)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(" ", width))
		isArrow[i] = make([]bool, width)
	}
	set := func(col, row int, ch byte, arrow bool) {
		if col >= 0 && col < width && row >= 0 && row < height {
			grid[row][col] = ch
			isArrow[row][col] = isArrow[row][col] || arrow
		}
	}

	fcx := float64(width) / 2
	fcy := float64(height) / 2
	rx := math.Max(3, fcx-2) // columns
	ry := math.Max(2, fcy-2) // rows

	// ring
	const steps = 80
	for i := 0; i < steps; i++ {
		deg := float64(i) * 360 / steps
		sin, cos := math.Sincos(deg * math.Pi / 180)
		col := int(math.Round(fcx + rx*sin))
		row := int(math.Round(fcy - ry*cos))
		if col >= 0 && col < width && row >= 0 && row < height && grid[row][col] == ' ' {
			grid[row][col] = shaftChar(deg + 90)
		}
	}

	cx := int(math.Round(fcx))
	cy := int(math.Round(fcy))
	set(cx, cy-int(math.Round(ry))-1, 'N', false)
	set(cx, cy+int(math.Round(ry))+1, 'S', false)
	set(cx+int(math.Round(rx))+1, cy, 'E', false)
	set(cx-int(math.Round(rx))-1, cy, 'W', false)

	for r := cy - int(ry) + 1; r < cy+int(ry); r++ {
		if r != cy && grid[r][cx] == ' ' {
			grid[r][cx] = ':'
		}
	}
	for c := cx - int(rx) + 1; c < cx+int(rx); c++ {
		if c != cx && grid[cy][c] == ' ' {
			grid[cy][c] = '.'
		}
	}
	set(cx, cy, '+', false)

	const minFrac, maxFrac = 0.3, 0.85
	frac := minFrac + (maxFrac-minFrac)*math.Max(0, math.Min(1, intensity))

	sin, cos := math.Sincos(radar.NormalizeDegrees(bearing) * math.Pi / 180)
	shaft := max(2, int(math.Max(rx, ry)*frac))
	tipCol, tipRow := cx, cy
	for s := 1; s <= shaft; s++ {
		t := float64(s) / float64(shaft) * frac
		tipCol = int(math.Round(fcx + t*rx*sin))
		tipRow = int(math.Round(fcy - t*ry*cos))
		set(tipCol, tipRow, shaftChar(bearing), true)
	}
	set(tipCol, tipRow, arrowTip(bearing), true)

	// wings
	for _, wing := range []float64{bearing - 144, bearing + 144} {
		ws, wc := math.Sincos(wing * math.Pi / 180)
		for w := 1; w <= 2; w++ {
			t := float64(w) * 0.8 / float64(shaft)
			set(int(math.Round(float64(tipCol)+t*rx*ws)), int(math.Round(float64(tipRow)-t*ry*wc)), shaftChar(wing), true)
		}
	}

	arrowSty := lipgloss.NewStyle().Foreground(lipgloss.Color(proximityColor(intensity))).Bold(true)
	ringSty := lipgloss.NewStyle().Foreground(ColorDimGreen)
	axisSty := lipgloss.NewStyle().Foreground(lipgloss.Color("#003300"))
	markSty := lipgloss.NewStyle().Foreground(ColorMatrixGreen).Bold(true)

	var sb strings.Builder
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			ch := grid[row][col]
			switch {
			case strings.IndexByte("NSEW+", ch) >= 0 && !isArrow[row][col]:
				sb.WriteString(markSty.Render(string(ch)))
			case isArrow[row][col]:
				sb.WriteString(arrowSty.Render(string(ch)))
			case ch == ':' || ch == '.':
				sb.WriteString(axisSty.Render(string(ch)))
			case ch != ' ':
				sb.WriteString(ringSty.Render(string(ch)))
			default:
				sb.WriteByte(' ')
			}
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// sector maps a bearing to one of 8 compass sectors, 0 = north.
func sector(deg float64) int {
	return int(math.Round(radar.NormalizeDegrees(deg)/45)) % 8
}

// shaftChar returns the line character for a bearing.
func shaftChar(deg float64) byte {
	return "|/-\\|/-\\"[sector(deg)]
}

// arrowTip returns the arrowhead character for a bearing.
func arrowTip(deg float64) byte {
	return "^/>\\v/<\\"[sector(deg)]
}

// proximityColor maps intensity to a green shade (brighter = louder).
func proximityColor(intensity float64) string {
	switch {
	case intensity > 0.8:
		return "#00FF41"
	case intensity > 0.6:
		return "#00CC33"
	case intensity > 0.4:
		return "#00AA22"
	case intensity > 0.2:
		return "#008F11"
	}
	return "#005511"
}

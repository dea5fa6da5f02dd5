package ui

import (
	"fmt"
	"strings"

	"doa-radar.klederson.com/internal/palette"
	"doa-radar.klederson.com/internal/radar"
)

// hidden point style: very dim
var hiddenPointSty = StyleHelp

// RenderPointList renders the scrollable point list panel with cursor and
// visibility markers. The header stays fixed; only the entries scroll.
func RenderPointList(points []radar.Point, colors *palette.Resolver, width, height, cursor int, hidden map[string]bool) string {
	innerW := max(10, width-4)

	title := StylePanelTitle.Render(fmt.Sprintf("SOURCES [%d]", len(points)))
	separator := StyleSeparator.Render(strings.Repeat("-", innerW))
	header := []string{title, separator}

	innerH := max(len(header)+1, height-2)
	space := innerH - len(header)

	var entries []string
	if len(points) == 0 {
		entries = append(entries, "", StyleHelp.Render(" No sources..."), StyleHelp.Render(" Waiting for feed"))
	} else {
		const linesPerPoint = 3 // 2 content + 1 blank
		visible := max(1, space/linesPerPoint)
		start := 0
		if cursor >= visible {
			start = cursor - visible + 1
		}
		for i := start; i < len(points) && len(entries) < space; i++ {
			p := points[i]
			entries = append(entries, renderPointEntry(p, colors.Hex(p.Class), innerW, i == cursor, hidden[p.ID])...)
		}
	}
	if len(entries) > space {
		entries = entries[:space]
	}
	for len(entries) < space {
		entries = append(entries, "")
	}

	content := strings.Join(append(header, entries...), "\n")
	rendered := StylePanelBorder.Width(width - 2).Height(innerH).Render(content)

	// lipgloss Height() only sets a minimum; clamp overflow.
	out := strings.Split(rendered, "\n")
	if len(out) > height {
		out = out[:height]
	}
	return strings.Join(out, "\n")
}

func renderPointEntry(p radar.Point, hex string, maxW int, isCursor, isHidden bool) []string {
	mark := "  "
	if isCursor {
		mark = ">>"
	}
	check := "[x]"
	if isHidden {
		check = "[ ]"
	}
	name := truncRaw(displayName(p), max(4, maxW-10))
	stats := fmt.Sprintf("       %s  %3.0f°  %3.0f%%",
		radar.FormatDistance(p.Distance), p.Direction, p.Intensity*100)

	raw1 := truncRaw(fmt.Sprintf("%s %s o %s", mark, check, name), maxW)
	raw2 := truncRaw(stats, maxW)

	switch {
	case isCursor:
		return []string{StyleCursorRow.Render(raw1), StyleCursorRow.Render(raw2), ""}
	case isHidden:
		return []string{hiddenPointSty.Render(raw1), hiddenPointSty.Render(raw2), ""}
	}
	line1 := fmt.Sprintf("   %s %s %s", StylePointValue.Render(check), ClassStyle(hex).Render("o"), StylePointName.Render(name))
	return []string{line1, StylePointValue.Render(raw2), ""}
}

// displayName is the label, or the class when a source has none.
func displayName(p radar.Point) string {
	if p.Label != "" {
		return p.Label
	}
	return palette.Normalize(p.Class)
}

// truncRaw truncates s to at most w runes.
func truncRaw(s string, w int) string {
	r := []rune(s)
	if len(r) > w {
		return string(r[:w])
	}
	return s
}

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderRadarPanel wraps the encoded radar frame and its legend with a
// styled border. The frame is centered horizontally.
func RenderRadarPanel(width, height int, frame, legend string) string {
	inner := max(1, width-4)
	var lines []string
	if frame == "" {
		lines = append(lines, StyleHelp.Render(" Waiting for first frame..."))
	} else {
		for _, l := range strings.Split(frame, "\n") {
			pad := max(0, (inner-lipgloss.Width(l))/2)
			lines = append(lines, strings.Repeat(" ", pad)+l)
		}
	}
	content := StyleLegend.Render(legend) + "\n" + strings.Join(lines, "\n")
	return StylePanelBorder.Width(width - 2).Height(height - 2).MaxHeight(height).Render(content)
}

package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"doa-radar.klederson.com/internal/palette"
	"doa-radar.klederson.com/internal/radar"
	"github.com/charmbracelet/lipgloss"
)

// RenderDetailPanel renders the point detail view that replaces the radar area.
func RenderDetailPanel(p radar.Point, colors *palette.Resolver, width, height int, history []float64, now time.Time) string {
	innerW := max(20, width-4)

	title := StylePanelTitle.Render("SOURCE DETAIL")
	escHint := StyleHelp.Render("[ESC]")
	titleLine := title + strings.Repeat(" ", max(0, innerW-lipgloss.Width(title)-lipgloss.Width(escHint))) + escHint
	sep := StyleSeparator.Render(strings.Repeat("-", innerW))

	lines := []string{titleLine, sep, ""}

	labelSty := lipgloss.NewStyle().Foreground(ColorMidGreen)
	valSty := lipgloss.NewStyle().Foreground(ColorMatrixGreen).Bold(true)

	fields := []struct{ label, value string }{
		{"Name", displayName(p)},
		{"ID", p.ID},
		{"Class", ClassStyle(colors.Hex(p.Class)).Render(palette.Normalize(p.Class))},
		{"Bearing", fmt.Sprintf("%.0f° %s", p.Direction, bearingToDir(p.Direction))},
		{"Distance", "~" + radar.FormatDistance(p.Distance)},
		{"Last", formatLastSeen(now.Sub(p.Timestamp))},
	}
	for _, f := range fields {
		lines = append(lines, labelSty.Render(fmt.Sprintf("  %-10s", f.label))+valSty.Render(f.value))
	}
	lines = append(lines, "")

	barWidth := max(10, innerW-22)
	lines = append(lines, labelSty.Render("  Level  ")+renderIntensityBar(p.Intensity, barWidth)+
		valSty.Render(fmt.Sprintf(" %3.0f%%", p.Intensity*100)))
	lines = append(lines, "")

	if len(history) > 0 {
		lines = append(lines, labelSty.Render("  Intensity History:"))
		spark := renderSparkline(history, max(10, innerW-4))
		lines = append(lines, "  "+lipgloss.NewStyle().Foreground(ColorGreen).Render(spark))
		lines = append(lines, "")
	}

	compassH := max(5, height-len(lines)-5)
	compassW := min(innerW, compassH*3)
	if compass := RenderCompass(compassW, compassH, p.Direction, p.Intensity); compass != "" {
		prefix := strings.Repeat(" ", max(0, (innerW-compassW)/2))
		for _, cl := range strings.Split(compass, "\n") {
			lines = append(lines, prefix+cl)
		}
	}

	label := fmt.Sprintf("~%s  %s", radar.FormatDistance(p.Distance), bearingToDir(p.Direction))
	lines = append(lines, strings.Repeat(" ", max(0, (innerW-len(label))/2))+valSty.Render(label))

	for len(lines) < height-2 {
		lines = append(lines, "")
	}
	return StylePanelActive.Width(width - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}

func renderIntensityBar(intensity float64, width int) string {
	ratio := math.Max(0, math.Min(1, intensity))
	filled := int(math.Round(ratio * float64(width)))

	bar := strings.Repeat("|", filled) + strings.Repeat("-", width-filled)
	filledPart := lipgloss.NewStyle().Foreground(lipgloss.Color(proximityColor(intensity))).Render(bar[:filled])
	emptyPart := lipgloss.NewStyle().Foreground(ColorDimGreen).Render(bar[filled:])
	return StyleHelp.Render("[") + filledPart + emptyPart + StyleHelp.Render("]")
}

func renderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}
	chars := []byte{'_', '.', '-', '~', '^'}

	if len(values) > width {
		values = values[len(values)-width:]
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int(math.Round(math.Max(0, math.Min(1, v)) * float64(len(chars)-1)))
		sb.WriteByte(chars[idx])
	}
	return sb.String()
}

// bearingToDir maps degrees clockwise from north to an 8-point compass label.
func bearingToDir(deg float64) string {
	dirs := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	idx := int(math.Round(radar.NormalizeDegrees(deg)/45)) % 8
	return dirs[idx]
}

func formatLastSeen(d time.Duration) string {
	if d < time.Second {
		return "now"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm ago", int(d.Minutes()))
}

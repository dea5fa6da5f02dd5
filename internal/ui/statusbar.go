package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Status is what the bottom bar reports.
type Status struct {
	Mode     string
	Count    int
	Classes  map[string]int
	Progress float64 // sweep progress [0, 1)
	Ripples  int
	Legend   string
	Err      string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s Status) string {
	var status string
	switch {
	case s.Err != "":
		status = StyleStatusError.Render("[" + s.Err + "]")
	case s.Mode == "RUNNING":
		status = StyleStatusRunning.Render("[RUNNING]")
	default:
		status = StyleStatusPaused.Render("[" + s.Mode + "]")
	}

	info := fmt.Sprintf(" Points: %d%s  Sweep: %3d%%  Ripples: %d  Range: %s",
		s.Count, classSummary(s.Classes), int(s.Progress*100), s.Ripples, s.Legend)

	content := status + StyleStatusBar.Render(info)
	gap := max(0, width-lipgloss.Width(content)-2)
	return StyleStatusBar.Width(width).Render(content + strings.Repeat(" ", gap))
}

// classSummary renders class counts in name order, e.g. "  human: 2  tank: 1".
func classSummary(classes map[string]int) string {
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "  %s: %d", name, classes[name])
	}
	return sb.String()
}

package ui

import (
	"fmt"
	"strings"

	"doa-radar.klederson.com/internal/config"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// RenderMenuBar renders the top menu bar: title, key hints, run state and
// feed source.
func RenderMenuBar(width int, source, mode string, bindings []key.Binding) string {
	title := fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion)

	var menu strings.Builder
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		menu.WriteString("  " + StyleMenuKey.Render("["+strings.ToUpper(h.Key)+"]") + StyleMenuLabel.Render(h.Desc))
	}

	status := StyleStatusRunning.Render(mode)
	if mode != "RUNNING" {
		status = StyleStatusPaused.Render(mode)
	}
	sourceInfo := StyleMenuLabel.Render("Feed: " + source)

	left := StyleMenuKey.Render(title) + menu.String()
	right := status + "  " + sourceInfo + " "

	gap := max(0, width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	return StyleMenuBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

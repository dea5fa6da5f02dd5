package ui

import "github.com/charmbracelet/lipgloss"

// Layout is the split of the terminal into panels, in cells.
type Layout struct {
	Width, Height int
	BodyH         int
	RadarW        int
	ListW         int
	// RadarInnerW and RadarInnerH are the cells available for the radar
	// image inside its border, below the legend line.
	RadarInnerW int
	RadarInnerH int
}

// ComputeLayout splits a terminal of width x height cells. The menu and
// status bars take one line each.
func ComputeLayout(width, height int) Layout {
	l := Layout{Width: width, Height: height}
	l.BodyH = max(5, height-2)

	l.RadarW = max(30, width*3/4)
	l.ListW = width - l.RadarW
	if l.ListW < 15 {
		l.ListW = 15
		l.RadarW = width - l.ListW
	}
	// Room for the panel border and one cell of content.
	l.RadarW = max(3, l.RadarW)
	l.RadarInnerW = max(1, l.RadarW-4)
	l.RadarInnerH = max(1, l.BodyH-3)
	return l
}

// ComposeLayout joins the radar panel and point list horizontally, with
// menu bar on top and status bar on bottom.
func ComposeLayout(menuBar, radarPanel, pointList, statusBar string) string {
	middle := lipgloss.JoinHorizontal(lipgloss.Top, radarPanel, pointList)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar)
}

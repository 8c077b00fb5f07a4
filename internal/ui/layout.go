package ui

import "github.com/charmbracelet/lipgloss"

// ComposeLayout joins the room panel and side panel horizontally,
// with menu bar on top and status bar on bottom.
func ComposeLayout(menuBar, roomPanel, sidePanel, statusBar string) string {
	middle := lipgloss.JoinHorizontal(lipgloss.Top, roomPanel, sidePanel)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar)
}

// Layout holds the panel geometry for one terminal size.
type Layout struct {
	Width, Height int
	BodyH         int
	RoomW, SideW  int
	// RoomCols and RoomRows are the cells available for the room drawing.
	RoomCols, RoomRows int
	// RoomCol and RoomRow locate the drawing's top-left cell on screen.
	RoomCol, RoomRow int
}

// ComputeLayout splits the terminal between the room panel and side panel.
func ComputeLayout(width, height int) Layout {
	l := Layout{Width: width, Height: height}

	menuH, statusH := 1, 1
	l.BodyH = height - menuH - statusH
	if l.BodyH < 5 {
		l.BodyH = 5
	}

	l.RoomW = width * 3 / 4
	if l.RoomW < 30 {
		l.RoomW = 30
	}
	l.SideW = width - l.RoomW
	if l.SideW < 15 {
		l.SideW = 15
		l.RoomW = width - l.SideW
	}

	// Border on each side, one line for the legend.
	l.RoomCols = l.RoomW - 4
	l.RoomRows = l.BodyH - 3
	if l.RoomCols < 5 {
		l.RoomCols = 5
	}
	if l.RoomRows < 3 {
		l.RoomRows = 3
	}
	l.RoomCol = 1
	l.RoomRow = menuH + 1
	return l
}

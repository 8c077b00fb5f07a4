package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"zone-radar.klederson.com/internal/config"
	"zone-radar.klederson.com/internal/radar"
	"zone-radar.klederson.com/internal/room"
)

// Cursor row style: black text on bright green = unmissable highlight
var cursorRowSty = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#000000")).
	Background(ColorMatrixGreen).
	Bold(true)

// Absent target style: very dim
var absentSty = lipgloss.NewStyle().
	Foreground(ColorDimGreen)

// RenderZoneList renders the side panel: the zone set with the cursor on the
// selected zone, followed by the target list.
func RenderZoneList(zones []room.Zone, points []room.Point, occupancy map[int]int, width, height int, cursor int) string {
	innerW := width - 4
	if innerW < 10 {
		innerW = 10
	}
	innerH := height - 2
	if innerH < 4 {
		innerH = 4
	}

	separator := StyleSeparator.Render(strings.Repeat("-", innerW))

	var lines []string
	lines = append(lines, StylePanelTitle.Render(fmt.Sprintf("ZONES [%d/%d]", len(zones), config.MaxZones)), separator)
	if len(zones) == 0 {
		lines = append(lines, StyleHelp.Render(" No zones"), StyleHelp.Render(" [N] to create one"), "")
	}
	for i, z := range zones {
		lines = append(lines, renderZoneEntry(z, occupancy[z.ID], innerW, i == cursor)...)
	}

	visible := 0
	for _, p := range points {
		if !p.Absent() {
			visible++
		}
	}
	lines = append(lines, StylePanelTitle.Render(fmt.Sprintf("TARGETS [%d/%d]", visible, len(points))), separator)
	if len(points) == 0 {
		lines = append(lines, StyleHelp.Render(" Waiting for feed"))
	}
	for _, p := range points {
		lines = append(lines, renderTargetEntry(p, innerW))
	}

	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	for len(lines) < innerH {
		lines = append(lines, "")
	}

	rendered := StylePanelBorder.Width(width - 2).Height(innerH).Render(strings.Join(lines, "\n"))

	// lipgloss Height() only sets a minimum; it won't truncate overflow.
	outLines := strings.Split(rendered, "\n")
	if len(outLines) > height {
		outLines = outLines[:height]
	}
	for len(outLines) < height {
		outLines = append(outLines, "")
	}
	return strings.Join(outLines, "\n")
}

func renderZoneEntry(z room.Zone, occupants int, maxW int, isCursor bool) []string {
	cursor := "  "
	if isCursor {
		cursor = ">>"
	}
	occ := "empty"
	if occupants > 0 {
		occ = fmt.Sprintf("%d inside", occupants)
	}

	rawLine1 := fmt.Sprintf("%s # Zone %d  %s", cursor, z.ID, occ)
	rawLine2 := fmt.Sprintf("     x %d..%d", int(z.X1), int(z.X2))
	rawLine3 := fmt.Sprintf("     y %d..%d", int(z.Y1), int(z.Y2))

	rawLine1 = truncRaw(rawLine1, maxW)
	rawLine2 = truncRaw(rawLine2, maxW)
	rawLine3 = truncRaw(rawLine3, maxW)

	if isCursor {
		return []string{
			cursorRowSty.Render(rawLine1),
			cursorRowSty.Render(rawLine2),
			cursorRowSty.Render(rawLine3),
			"",
		}
	}

	swatch := lipgloss.NewStyle().Foreground(radar.ZoneColor(z)).Render("#")
	line1 := fmt.Sprintf("   %s %s  %s", swatch, StyleZoneName.Render(fmt.Sprintf("Zone %d", z.ID)), StyleCoords.Render(occ))
	return []string{
		line1,
		StyleCoords.Render(rawLine2),
		StyleCoords.Render(rawLine3),
		"",
	}
}

func renderTargetEntry(p room.Point, maxW int) string {
	if p.Absent() {
		return absentSty.Render(truncRaw(fmt.Sprintf("  %d  --", p.ID), maxW))
	}
	return StyleTarget.Render(truncRaw(fmt.Sprintf("  %d  x=%d y=%d", p.ID, int(p.X), int(p.Y)), maxW))
}

// truncRaw pads or truncates a raw string to exactly w characters.
func truncRaw(s string, w int) string {
	if len(s) > w {
		return s[:w]
	}
	if len(s) < w {
		return s + strings.Repeat(" ", w-len(s))
	}
	return s
}

package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"zone-radar.klederson.com/internal/radar"
	"zone-radar.klederson.com/internal/room"
)

// RenderZoneDetail renders the zone detail overlay that replaces the room area.
func RenderZoneDetail(z room.Zone, d room.Domain, occupants int, latency []float64, width, height int) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}

	title := StylePanelTitle.Render(fmt.Sprintf("ZONE %d DETAIL", z.ID))
	escHint := StyleHelp.Render("[ESC]")
	titleLine := title + strings.Repeat(" ", max(0, innerW-lipgloss.Width(title)-lipgloss.Width(escHint))) + escHint

	sep := StyleSeparator.Render(strings.Repeat("-", innerW))

	lines := []string{titleLine, sep, ""}

	labelSty := lipgloss.NewStyle().Foreground(ColorMidGreen)
	valSty := lipgloss.NewStyle().Foreground(ColorMatrixGreen).Bold(true)

	occ := "empty"
	if occupants > 0 {
		occ = fmt.Sprintf("%d target(s)", occupants)
	}
	fields := []struct{ label, value string }{
		{"ID", fmt.Sprintf("%d", z.ID)},
		{"X", fmt.Sprintf("%d .. %d", int(z.X1), int(z.X2))},
		{"Y", fmt.Sprintf("%d .. %d", int(z.Y1), int(z.Y2))},
		{"Size", fmt.Sprintf("%.2fm x %.2fm", z.Width()/1000, z.Height()/1000)},
		{"Area", fmt.Sprintf("%.2fm2", z.Width()*z.Height()/1e6)},
		{"Occupied", occ},
	}
	for _, f := range fields {
		label := labelSty.Render(fmt.Sprintf("  %-10s", f.label))
		lines = append(lines, label+valSty.Render(f.value))
	}

	lines = append(lines, "")

	barWidth := innerW - 22
	if barWidth < 10 {
		barWidth = 10
	}
	share := 0.0
	if area := d.Width() * d.Height(); area > 0 {
		share = z.Width() * z.Height() / area
	}
	bar := renderCoverageBar(share, barWidth, radar.ZoneColor(z))
	lines = append(lines, labelSty.Render("  Coverage ")+bar+valSty.Render(fmt.Sprintf(" %d%%", int(math.Round(share*100)))))

	lines = append(lines, "")

	if len(latency) > 0 {
		sparkW := innerW - 4
		if sparkW < 10 {
			sparkW = 10
		}
		last := latency[len(latency)-1]
		lines = append(lines, labelSty.Render(fmt.Sprintf("  Push latency (last %.0fms):", last)))
		lines = append(lines, "  "+lipgloss.NewStyle().Foreground(ColorGreen).Render(renderSparkline(latency, sparkW)))
	} else {
		lines = append(lines, StyleHelp.Render("  No pushes yet"))
	}

	for len(lines) < height-2 {
		lines = append(lines, "")
	}

	content := strings.Join(lines, "\n")
	return StylePanelActive.Width(width - 2).Height(height - 2).Render(content)
}

// renderCoverageBar draws ratio in [0, 1] as a filled bar.
func renderCoverageBar(ratio float64, width int, color lipgloss.Color) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(math.Round(ratio * float64(width)))

	bar := strings.Repeat("|", filled) + strings.Repeat("-", width-filled)
	filledPart := lipgloss.NewStyle().Foreground(color).Render(bar[:filled])
	emptyPart := lipgloss.NewStyle().Foreground(ColorDimGreen).Render(bar[filled:])
	return StyleHelp.Render("[") + filledPart + emptyPart + StyleHelp.Render("]")
}

func renderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	chars := []byte{'_', '.', '-', '~', '^'}

	// Take last `width` values
	start := 0
	if len(values) > width {
		start = len(values) - width
	}
	values = values[start:]

	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	rng := maxV - minV
	if rng < 1 {
		rng = 1
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int((v - minV) / rng * float64(len(chars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		sb.WriteByte(chars[idx])
	}
	return sb.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

package radar

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"zone-radar.klederson.com/internal/room"
)

var (
	colorBright = lipgloss.Color("#00FF41")
	colorMid    = lipgloss.Color("#008F11")
	colorDim    = lipgloss.Color("#004A0A")
	colorTarget = lipgloss.Color("#33CCFF")

	// Zone palette, indexed by Zone.Color.
	zoneColors = []lipgloss.Color{
		lipgloss.Color("#B266FF"),
		lipgloss.Color("#33FF66"),
		lipgloss.Color("#FFCC00"),
	}

	styleSensor = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleRing   = lipgloss.NewStyle().Foreground(colorMid)
	styleDot    = lipgloss.NewStyle().Foreground(colorDim)
	styleTarget = lipgloss.NewStyle().Foreground(colorTarget).Bold(true)
)

// ringSpacing is the physical distance between range rings.
const ringSpacing = 1000.0

// Scene is everything drawn on the room surface.
type Scene struct {
	Canvas    room.Canvas
	Zones     []room.Zone
	Points    []room.Point
	Occupancy map[int]int
	Selected  int // zone id, 0 for none
	Edit      bool
	Pulse     *Pulse
}

type zoneCells struct {
	zone  room.Zone
	cells CellRect
	label string
}

// ZoneColor returns the palette color for a zone.
func ZoneColor(z room.Zone) lipgloss.Color {
	i := z.Color % len(zoneColors)
	if i < 0 {
		i = 0
	}
	return zoneColors[i]
}

// Render draws the room on a width x height cell grid. The scene's canvas
// must match the grid.
func Render(width, height int, s Scene) string {
	if width < 4 || height < 3 {
		return ""
	}

	zs := make([]zoneCells, 0, len(s.Zones))
	for _, z := range s.Zones {
		zs = append(zs, zoneCells{
			zone:  z,
			cells: ZoneCells(z.Rect, s.Canvas),
			label: fmt.Sprintf("Z%d", z.ID),
		})
	}

	targets := make(map[[2]int]room.Point)
	for _, pt := range s.Points {
		if pt.Absent() {
			continue
		}
		col, row := PointCell(pt.X, pt.Y, s.Canvas)
		targets[[2]int{col, row}] = pt
	}

	sensorCol, sensorRow := SensorCell(s.Canvas)
	spanW, spanH := CellSpan(s.Canvas)
	ringTol := math.Max(spanW, spanH) / 2

	var sb strings.Builder
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if pt, ok := targets[[2]int{col, row}]; ok {
				sb.WriteString(styleTarget.Render(targetGlyph(pt.ID)))
				continue
			}
			if col == sensorCol && row == sensorRow {
				sb.WriteString(styleSensor.Render("^"))
				continue
			}
			if cell, ok := renderZoneCell(col, row, zs, s); ok {
				sb.WriteString(cell)
				continue
			}
			sb.WriteString(renderFloorCell(col, row, s, ringTol))
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// renderZoneCell draws the topmost zone covering the cell, if any.
func renderZoneCell(col, row int, zs []zoneCells, s Scene) (string, bool) {
	for i := len(zs) - 1; i >= 0; i-- {
		zc := zs[i]
		if !zc.cells.Contains(col, row) {
			continue
		}

		color := ZoneColor(zc.zone)
		selected := zc.zone.ID == s.Selected
		occupied := s.Occupancy[zc.zone.ID] > 0

		// Label sits just inside the top-left corner.
		if row == zc.cells.R0+1 && row < zc.cells.R1 {
			off := col - (zc.cells.C0 + 1)
			if off >= 0 && off < len(zc.label) && zc.cells.C0+1+off < zc.cells.C1 {
				return lipgloss.NewStyle().Foreground(color).Bold(true).Render(string(zc.label[off])), true
			}
		}

		if zc.cells.OnBorder(col, row) {
			sty := lipgloss.NewStyle().Foreground(color)
			if selected {
				sty = sty.Bold(true)
			}
			return sty.Render(string(borderGlyph(col, row, zc.cells, selected && s.Edit))), true
		}

		if occupied {
			return lipgloss.NewStyle().Foreground(color).Render(":"), true
		}
		return lipgloss.NewStyle().Foreground(color).Faint(true).Render("."), true
	}
	return "", false
}

func borderGlyph(col, row int, cr CellRect, grabbed bool) rune {
	corner := (col == cr.C0 || col == cr.C1) && (row == cr.R0 || row == cr.R1)
	switch {
	case corner:
		return '+'
	case row == cr.R0 || row == cr.R1:
		if grabbed {
			return '='
		}
		return '-'
	default:
		if grabbed {
			return '#'
		}
		return '|'
	}
}

func renderFloorCell(col, row int, s Scene, ringTol float64) string {
	dist := SensorDistance(col, row, s.Canvas)

	intensity := 0.0
	if s.Pulse != nil {
		intensity = s.Pulse.Intensity(dist)
	}

	nearest := math.Round(dist/ringSpacing) * ringSpacing
	if nearest > 0 && math.Abs(dist-nearest) < ringTol {
		ch := string(RingChar(SensorAngle(col, row, s.Canvas)))
		if c := pulseColor(intensity); c != "" {
			return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(ch)
		}
		return styleRing.Render(ch)
	}

	if c := pulseColor(intensity); c != "" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(".")
	}
	if (col+row)%4 == 0 {
		return styleDot.Render(".")
	}
	return " "
}

func pulseColor(intensity float64) string {
	if intensity <= 0 {
		return ""
	}
	if intensity > 0.8 {
		return "#00FF41"
	}
	if intensity > 0.5 {
		return "#00CC33"
	}
	if intensity > 0.3 {
		return "#00AA22"
	}
	return "#005511"
}

func targetGlyph(id int) string {
	if id >= 0 && id <= 9 {
		return fmt.Sprintf("%d", id)
	}
	return "@"
}

// RenderLegend produces the room legend line.
func RenderLegend(width int, edit bool) string {
	legend := "   " +
		styleTarget.Render("1-9 target") +
		"  " +
		styleSensor.Render("^ sensor") +
		"  " +
		styleRing.Render("- 1m rings")
	if edit {
		legend += "  " + lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00")).Bold(true).Render("EDIT: drag body to move, edges to resize")
	}

	pad := (width - lipgloss.Width(legend)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + legend
}

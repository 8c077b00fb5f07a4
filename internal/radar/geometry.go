package radar

import (
	"math"

	"zone-radar.klederson.com/internal/config"
	"zone-radar.klederson.com/internal/room"
)

// CellRect is a rectangle's footprint on the terminal grid. Bounds are
// inclusive.
type CellRect struct {
	C0, R0, C1, R1 int
}

// Contains reports whether the cell lies inside the footprint.
func (cr CellRect) Contains(col, row int) bool {
	return col >= cr.C0 && col <= cr.C1 && row >= cr.R0 && row <= cr.R1
}

// OnBorder reports whether the cell is on the footprint's outline.
func (cr CellRect) OnBorder(col, row int) bool {
	if !cr.Contains(col, row) {
		return false
	}
	return col == cr.C0 || col == cr.C1 || row == cr.R0 || row == cr.R1
}

// CellCenter returns the canvas pixel at the middle of a cell.
func CellCenter(col, row int) (px, py float64) {
	return (float64(col) + 0.5) * config.CellWidthPx, (float64(row) + 0.5) * config.CellHeightPx
}

// PixelCell returns the cell containing a canvas pixel.
func PixelCell(px, py float64) (col, row int) {
	return int(math.Floor(px / config.CellWidthPx)), int(math.Floor(py / config.CellHeightPx))
}

// PointCell projects a physical position to its cell.
func PointCell(x, y float64, c room.Canvas) (col, row int) {
	px, py := c.ToPixel(x, y)
	col, row = PixelCell(px, py)
	// The far edges of the domain land one past the last cell.
	if cols := gridCols(c); col >= cols {
		col = cols - 1
	}
	if rows := gridRows(c); row >= rows {
		row = rows - 1
	}
	return col, row
}

// ZoneCells returns the cells covered by a physical rectangle. Every zone
// covers at least one cell.
func ZoneCells(r room.Rect, c room.Canvas) CellRect {
	left, top := c.ToPixel(r.X1, r.Y2)
	right, bottom := c.ToPixel(r.X2, r.Y1)

	cr := CellRect{
		C0: int(math.Floor(left / config.CellWidthPx)),
		R0: int(math.Floor(top / config.CellHeightPx)),
		C1: int(math.Ceil(right/config.CellWidthPx)) - 1,
		R1: int(math.Ceil(bottom/config.CellHeightPx)) - 1,
	}
	if cr.C1 < cr.C0 {
		cr.C1 = cr.C0
	}
	if cr.R1 < cr.R0 {
		cr.R1 = cr.R0
	}
	return cr
}

// SensorCell is where the sensor sits: bottom center of the room.
func SensorCell(c room.Canvas) (col, row int) {
	return PointCell(0, c.Domain.MinY, c)
}

// SensorDistance is the physical distance from the sensor to a cell center.
func SensorDistance(col, row int, c room.Canvas) float64 {
	x, y := c.ToPhysical(CellCenter(col, row))
	return math.Hypot(x, y-c.Domain.MinY)
}

// SensorAngle is the bearing of a cell seen from the sensor in radians.
// 0 is straight ahead, positive to the right.
func SensorAngle(col, row int, c room.Canvas) float64 {
	x, y := c.ToPhysical(CellCenter(col, row))
	return math.Atan2(x, y-c.Domain.MinY)
}

// RingChar picks the glyph that best follows a range ring at the given
// bearing.
func RingChar(angle float64) rune {
	sector := int(math.Round(angle / (math.Pi / 4)))
	switch sector {
	case 0:
		return '-'
	case 1:
		return '\\'
	case -1:
		return '/'
	default:
		return '|'
	}
}

// CellSpan returns the physical size of one cell.
func CellSpan(c room.Canvas) (w, h float64) {
	return c.LengthToPhysicalX(config.CellWidthPx), c.LengthToPhysicalY(config.CellHeightPx)
}

func gridCols(c room.Canvas) int {
	return int(math.Round(c.Width / config.CellWidthPx))
}

func gridRows(c room.Canvas) int {
	return int(math.Round(c.Height / config.CellHeightPx))
}

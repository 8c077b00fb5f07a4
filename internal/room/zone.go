package room

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle in physical units, (X1,Y1) the corner
// nearest the sensor's left, (X2,Y2) the far right corner.
type Rect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Width returns X2-X1.
func (r Rect) Width() float64 { return r.X2 - r.X1 }

// Height returns Y2-Y1.
func (r Rect) Height() float64 { return r.Y2 - r.Y1 }

// Normalized returns r with x1<=x2 and y1<=y2.
func (r Rect) Normalized() Rect {
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}

// Contains reports whether (x, y) lies inside r, edges included. This is the
// same test the firmware uses to decide zone presence.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X1 && x <= r.X2 && y >= r.Y1 && y <= r.Y2
}

// Rounded returns r with every coordinate rounded to the nearest integer.
func (r Rect) Rounded() Rect {
	return Rect{
		X1: math.Round(r.X1),
		Y1: math.Round(r.Y1),
		X2: math.Round(r.X2),
		Y2: math.Round(r.Y2),
	}
}

// Edge names the side of a zone being dragged.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeRight
	EdgeBottom
	EdgeLeft
)

func (e Edge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeRight:
		return "right"
	case EdgeBottom:
		return "bottom"
	case EdgeLeft:
		return "left"
	default:
		return fmt.Sprintf("edge(%d)", int(e))
	}
}

// ParseEdge converts a direction name to an Edge.
func ParseEdge(s string) (Edge, error) {
	switch s {
	case "top":
		return EdgeTop, nil
	case "right":
		return EdgeRight, nil
	case "bottom":
		return EdgeBottom, nil
	case "left":
		return EdgeLeft, nil
	}
	return 0, fmt.Errorf("unknown edge %q", s)
}

// AnchorRect builds a new zone rectangle whose lower-left corner sits at the
// physical position of the canvas center. An unlaid canvas falls back to the
// domain center.
func AnchorRect(c Canvas, size float64) Rect {
	d := c.Domain
	x := (d.MinX + d.MaxX) / 2
	y := (d.MinY + d.MaxY) / 2
	if c.Valid() {
		x = MapRange(c.Width/2, 0, c.Width, d.MinX, d.MaxX)
		y = MapRange(c.Height/2, 0, c.Height, d.MinY, d.MaxY)
	}
	x1 := d.ClampX(math.Round(x))
	y1 := d.ClampY(math.Round(y))
	return Rect{
		X1: x1,
		Y1: y1,
		X2: d.ClampX(x1 + size),
		Y2: d.ClampY(y1 + size),
	}
}

// ResizeRect drags one edge of start by a pixel delta (dx, dy measured in
// screen space, y growing downward). The opposite edge stays where it was.
// The on-canvas extent never drops below minExtentPx, and the moved edge is
// clamped to the domain and then against the fixed edge.
func ResizeRect(start Rect, edge Edge, dx, dy float64, c Canvas, minExtentPx float64) Rect {
	r := start.Normalized()
	if !c.Valid() {
		return r
	}
	d := c.Domain

	switch edge {
	case EdgeRight:
		w := math.Max(minExtentPx, c.LengthToPixelX(r.Width())+dx)
		r.X2 = math.Max(r.X1, d.ClampX(r.X1+c.LengthToPhysicalX(w)))
	case EdgeLeft:
		w := math.Max(minExtentPx, c.LengthToPixelX(r.Width())-dx)
		r.X1 = math.Min(r.X2, d.ClampX(r.X2-c.LengthToPhysicalX(w)))
	case EdgeTop:
		h := math.Max(minExtentPx, c.LengthToPixelY(r.Height())-dy)
		r.Y2 = math.Max(r.Y1, d.ClampY(r.Y1+c.LengthToPhysicalY(h)))
	case EdgeBottom:
		h := math.Max(minExtentPx, c.LengthToPixelY(r.Height())+dy)
		r.Y1 = math.Min(r.Y2, d.ClampY(r.Y2-c.LengthToPhysicalY(h)))
	}
	return r
}

// MoveRect translates start by a pixel delta. The lower corner is clamped to
// the domain; if the upper corner would then pass the domain maximum the
// whole rectangle is shifted back, so size is preserved. A rectangle larger
// than the domain cannot fit and is cut to it.
func MoveRect(start Rect, dx, dy float64, c Canvas) Rect {
	r := start.Normalized()
	if !c.Valid() {
		return r
	}
	d := c.Domain
	w, h := r.Width(), r.Height()

	x1 := d.ClampX(r.X1 + c.LengthToPhysicalX(dx))
	y1 := d.ClampY(r.Y1 + c.LengthToPhysicalY(-dy))
	x2 := x1 + w
	y2 := y1 + h

	if x2 > d.MaxX {
		x1 = d.ClampX(d.MaxX - w)
		x2 = d.MaxX
	}
	if y2 > d.MaxY {
		y1 = d.ClampY(d.MaxY - h)
		y2 = d.MaxY
	}
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

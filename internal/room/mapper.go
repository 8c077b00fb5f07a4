package room

import "zone-radar.klederson.com/internal/config"

// MapRange linearly maps value from [inMin, inMax] onto [outMin, outMax].
// inMin must differ from inMax.
func MapRange(value, inMin, inMax, outMin, outMax float64) float64 {
	return (value-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

// Domain is the physical coordinate space of the monitored room.
type Domain struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// DefaultDomain returns the room bounds the device firmware uses.
func DefaultDomain() Domain {
	return Domain{
		MinX: config.MinX,
		MaxX: config.MaxX,
		MinY: config.MinY,
		MaxY: config.MaxY,
	}
}

// Width returns the physical span of the x axis.
func (d Domain) Width() float64 { return d.MaxX - d.MinX }

// Height returns the physical span of the y axis.
func (d Domain) Height() float64 { return d.MaxY - d.MinY }

// ClampX limits x to the domain.
func (d Domain) ClampX(x float64) float64 { return clamp(x, d.MinX, d.MaxX) }

// ClampY limits y to the domain.
func (d Domain) ClampY(y float64) float64 { return clamp(y, d.MinY, d.MaxY) }

// ClampRect clamps every coordinate independently.
func (d Domain) ClampRect(r Rect) Rect {
	return Rect{
		X1: d.ClampX(r.X1),
		Y1: d.ClampY(r.Y1),
		X2: d.ClampX(r.X2),
		Y2: d.ClampY(r.Y2),
	}
}

// Canvas is the pixel surface the room is drawn on. Pixel y grows downward,
// physical y grows away from the sensor, so the two are flipped.
type Canvas struct {
	Width  float64
	Height float64
	Domain Domain
}

// NewCanvas creates a canvas over the default domain.
func NewCanvas(width, height float64) Canvas {
	return Canvas{Width: width, Height: height, Domain: DefaultDomain()}
}

// Valid reports whether the canvas has been laid out.
func (c Canvas) Valid() bool {
	return c.Width > 0 && c.Height > 0
}

// ToPixel projects a physical position to canvas pixels (origin top-left).
func (c Canvas) ToPixel(x, y float64) (px, py float64) {
	px = MapRange(x, c.Domain.MinX, c.Domain.MaxX, 0, c.Width)
	py = c.Height - MapRange(y, c.Domain.MinY, c.Domain.MaxY, 0, c.Height)
	return px, py
}

// ToPhysical is the inverse of ToPixel.
func (c Canvas) ToPhysical(px, py float64) (x, y float64) {
	x = MapRange(px, 0, c.Width, c.Domain.MinX, c.Domain.MaxX)
	y = MapRange(c.Height-py, 0, c.Height, c.Domain.MinY, c.Domain.MaxY)
	return x, y
}

// LengthToPixelX converts a physical x extent to pixels.
func (c Canvas) LengthToPixelX(l float64) float64 {
	return MapRange(l, 0, c.Domain.Width(), 0, c.Width)
}

// LengthToPixelY converts a physical y extent to pixels.
func (c Canvas) LengthToPixelY(l float64) float64 {
	return MapRange(l, 0, c.Domain.Height(), 0, c.Height)
}

// LengthToPhysicalX converts a pixel x extent (or delta) to physical units.
func (c Canvas) LengthToPhysicalX(px float64) float64 {
	return MapRange(px, 0, c.Width, 0, c.Domain.Width())
}

// LengthToPhysicalY converts a pixel y extent (or delta) to physical units.
func (c Canvas) LengthToPhysicalY(py float64) float64 {
	return MapRange(py, 0, c.Height, 0, c.Domain.Height())
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

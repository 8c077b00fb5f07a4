package input

import (
	"zone-radar.klederson.com/internal/room"
)

// Handle is the part of a zone under the pointer.
type Handle int

const (
	HandleNone Handle = iota
	HandleMove
	HandleTop
	HandleRight
	HandleBottom
	HandleLeft
)

// Edge maps an edge handle to the engine's edge. ok is false for the move
// handle and for HandleNone.
func (h Handle) Edge() (room.Edge, bool) {
	switch h {
	case HandleTop:
		return room.EdgeTop, true
	case HandleRight:
		return room.EdgeRight, true
	case HandleBottom:
		return room.EdgeBottom, true
	case HandleLeft:
		return room.EdgeLeft, true
	}
	return 0, false
}

func (h Handle) String() string {
	switch h {
	case HandleMove:
		return "move"
	case HandleTop:
		return "top"
	case HandleRight:
		return "right"
	case HandleBottom:
		return "bottom"
	case HandleLeft:
		return "left"
	}
	return "none"
}

// Hit is the zone and handle under a pointer.
type Hit struct {
	ZoneID int
	Handle Handle
}

// HitTest finds the topmost zone under (px, py). Zones later in the slice
// are drawn on top and win. A press within tolX pixels of a vertical border
// or tolY pixels of a horizontal border grabs that edge; anything else
// inside the zone grabs the move handle. When a zone is narrower than two
// tolerances on an axis, its inside belongs to the move handle and those
// edges are only grabbed from outside.
func HitTest(zones []room.Zone, c room.Canvas, px, py, tolX, tolY float64) (Hit, bool) {
	if !c.Valid() {
		return Hit{}, false
	}
	for i := len(zones) - 1; i >= 0; i-- {
		z := zones[i]
		left, top := c.ToPixel(z.X1, z.Y2)
		right, bottom := c.ToPixel(z.X2, z.Y1)

		if px < left-tolX || px > right+tolX || py < top-tolY || py > bottom+tolY {
			continue
		}

		bandX, bandY := tolX, tolY
		if right-left < 2*tolX {
			bandX = 0
		}
		if bottom-top < 2*tolY {
			bandY = 0
		}

		h := HandleMove
		switch {
		case py < top || (bandY > 0 && py <= top+bandY):
			h = HandleTop
		case py > bottom || (bandY > 0 && py >= bottom-bandY):
			h = HandleBottom
		case px < left || (bandX > 0 && px <= left+bandX):
			h = HandleLeft
		case px > right || (bandX > 0 && px >= right-bandX):
			h = HandleRight
		}
		return Hit{ZoneID: z.ID, Handle: h}, true
	}
	return Hit{}, false
}

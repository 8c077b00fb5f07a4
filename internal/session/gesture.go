package session

import "zone-radar.klederson.com/internal/room"

// GestureKind distinguishes whole-zone moves from edge drags.
type GestureKind int

const (
	GestureMove GestureKind = iota
	GestureResize
)

func (k GestureKind) String() string {
	if k == GestureResize {
		return "resize"
	}
	return "move"
}

// Gesture is one drag interaction on a zone: begin, any number of updates,
// end. Deltas are totals since the gesture began, so the zone is always
// derived from the rectangle captured at begin.
type Gesture struct {
	c      *Controller
	kind   GestureKind
	edge   room.Edge
	zoneID int
	start  room.Rect
	ended  bool
}

// Kind returns the gesture kind.
func (g *Gesture) Kind() GestureKind { return g.kind }

// Edge returns the dragged edge for resize gestures.
func (g *Gesture) Edge() room.Edge { return g.edge }

// ZoneID returns the zone being dragged.
func (g *Gesture) ZoneID() int { return g.zoneID }

// Start returns the rectangle captured at begin.
func (g *Gesture) Start() room.Rect { return g.start }

// Active reports whether the gesture still accepts updates.
func (g *Gesture) Active() bool { return !g.ended }

// Update applies the pixel delta since begin. It returns false once the
// gesture has ended or its zone is gone.
func (g *Gesture) Update(dx, dy float64) (room.Zone, bool) {
	if g.ended {
		return room.Zone{}, false
	}
	var (
		z  room.Zone
		ok bool
	)
	switch g.kind {
	case GestureResize:
		z, ok = g.c.engine.Resize(g.zoneID, g.start, g.edge, dx, dy)
	default:
		z, ok = g.c.engine.Move(g.zoneID, g.start, dx, dy)
	}
	if !ok {
		g.End()
		return room.Zone{}, false
	}
	g.c.changed()
	return z, true
}

// End releases the gesture. Safe to call more than once.
func (g *Gesture) End() {
	if g.ended {
		return
	}
	if g.c.gesture == g {
		g.c.EndGesture()
		return
	}
	g.ended = true
}

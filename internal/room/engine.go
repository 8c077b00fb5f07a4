package room

import (
	"errors"

	"zone-radar.klederson.com/internal/config"
)

var (
	// ErrZoneLimit is returned when creating a zone while MaxZones exist.
	ErrZoneLimit = errors.New("zone limit reached")
	// ErrUnknownZone is returned for operations on an id not in the set.
	ErrUnknownZone = errors.New("unknown zone")
)

// Zone is one operator-defined detection rectangle.
type Zone struct {
	ID int
	Rect
	Color int // Palette index, follows position in the set
}

// Engine owns the zone set in physical coordinates and applies geometry
// mutations to it. It is not safe for concurrent use; the session loop owns it.
type Engine struct {
	zones       []Zone
	canvas      Canvas
	policy      config.IDPolicy
	maxZones    int
	minExtentPx float64
	zoneSize    float64
}

// NewEngine creates an empty engine with the given id assignment policy.
func NewEngine(policy config.IDPolicy) *Engine {
	if !policy.Valid() {
		policy = config.IDByCount
	}
	return &Engine{
		canvas:      NewCanvas(0, 0),
		policy:      policy,
		maxZones:    config.MaxZones,
		minExtentPx: config.MinExtentPx,
		zoneSize:    config.DefaultZoneSize,
	}
}

// SetCanvas updates the pixel surface size, keeping the domain.
func (e *Engine) SetCanvas(width, height float64) {
	e.canvas.Width = width
	e.canvas.Height = height
}

// Canvas returns the current pixel surface.
func (e *Engine) Canvas() Canvas { return e.canvas }

// Domain returns the physical bounds.
func (e *Engine) Domain() Domain { return e.canvas.Domain }

// Len returns the number of zones.
func (e *Engine) Len() int { return len(e.zones) }

// Full reports whether no more zones can be created.
func (e *Engine) Full() bool { return len(e.zones) >= e.maxZones }

// Zones returns a copy of the zone set in insertion order.
func (e *Engine) Zones() []Zone {
	out := make([]Zone, len(e.zones))
	copy(out, e.zones)
	return out
}

// Zone looks up a zone by id.
func (e *Engine) Zone(id int) (Zone, bool) {
	if i := e.indexOf(id); i >= 0 {
		return e.zones[i], true
	}
	return Zone{}, false
}

// Replace discards the current set and loads rects as fetched from the
// device. Ids are assigned by position; extra entries past the limit are
// dropped. Rects are normalized and clamped to the domain, so a firmware
// default wider than the room loads as the whole room.
func (e *Engine) Replace(rects []Rect) {
	n := len(rects)
	if n > e.maxZones {
		n = e.maxZones
	}
	e.zones = make([]Zone, 0, n)
	for i := 0; i < n; i++ {
		r := e.canvas.Domain.ClampRect(rects[i].Normalized())
		e.zones = append(e.zones, Zone{ID: i + 1, Rect: r, Color: i})
	}
}

// Create appends a default-size zone anchored at the canvas center.
func (e *Engine) Create() (Zone, error) {
	if e.Full() {
		return Zone{}, ErrZoneLimit
	}
	z := Zone{
		ID:   e.nextID(),
		Rect: AnchorRect(e.canvas, e.zoneSize),
	}
	e.zones = append(e.zones, z)
	e.renumber()
	return e.zones[len(e.zones)-1], nil
}

// Resize sets zone id to start with edge dragged by (dx, dy) pixels.
// start is the rectangle captured when the drag began.
func (e *Engine) Resize(id int, start Rect, edge Edge, dx, dy float64) (Zone, bool) {
	i := e.indexOf(id)
	if i < 0 {
		return Zone{}, false
	}
	e.zones[i].Rect = ResizeRect(start, edge, dx, dy, e.canvas, e.minExtentPx)
	return e.zones[i], true
}

// Move sets zone id to start translated by (dx, dy) pixels.
func (e *Engine) Move(id int, start Rect, dx, dy float64) (Zone, bool) {
	i := e.indexOf(id)
	if i < 0 {
		return Zone{}, false
	}
	e.zones[i].Rect = MoveRect(start, dx, dy, e.canvas)
	return e.zones[i], true
}

// Delete removes zone id. Remaining ids are kept unless the policy is
// IDByPosition.
func (e *Engine) Delete(id int) bool {
	i := e.indexOf(id)
	if i < 0 {
		return false
	}
	e.zones = append(e.zones[:i], e.zones[i+1:]...)
	e.renumber()
	return true
}

// Reset removes every zone.
func (e *Engine) Reset() {
	e.zones = nil
}

func (e *Engine) indexOf(id int) int {
	for i, z := range e.zones {
		if z.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) nextID() int {
	switch e.policy {
	case config.IDByPosition:
		return len(e.zones) + 1
	case config.IDLowestFree:
		return e.lowestFree()
	default:
		id := len(e.zones) + 1
		if e.indexOf(id) >= 0 {
			return e.lowestFree()
		}
		return id
	}
}

func (e *Engine) lowestFree() int {
	for id := 1; ; id++ {
		if e.indexOf(id) < 0 {
			return id
		}
	}
}

// renumber refreshes palette indexes, and ids under IDByPosition.
// Renumbers reports whether deleting a zone can change the ids of the others.
func (e *Engine) Renumbers() bool { return e.policy == config.IDByPosition }

func (e *Engine) renumber() {
	for i := range e.zones {
		e.zones[i].Color = i
		if e.policy == config.IDByPosition {
			e.zones[i].ID = i + 1
		}
	}
}

// Package input turns terminal mouse events into pointer events in canvas
// pixels and classifies presses against zone handles.
package input

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Action is the phase of a pointer event.
type Action int

const (
	Press Action = iota
	Motion
	Release
)

func (a Action) String() string {
	switch a {
	case Press:
		return "press"
	case Motion:
		return "motion"
	default:
		return "release"
	}
}

// Pointer is a normalized pointer event. X and Y are canvas pixels with the
// origin at the top-left corner of the room surface.
type Pointer struct {
	Action Action
	X, Y   float64
}

// FromMouse converts a bubbletea mouse event. cellW and cellH give the
// virtual pixel size of one terminal cell; originCol and originRow locate the
// room surface on screen. Only left-button presses start a pointer; wheel and
// other buttons are ignored.
func FromMouse(msg tea.MouseMsg, cellW, cellH float64, originCol, originRow int) (Pointer, bool) {
	var action Action
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return Pointer{}, false
		}
		action = Press
	case tea.MouseActionMotion:
		action = Motion
	case tea.MouseActionRelease:
		action = Release
	default:
		return Pointer{}, false
	}

	// Sample the cell center so a click maps to the middle of its block.
	col := float64(msg.X-originCol) + 0.5
	row := float64(msg.Y-originRow) + 0.5
	return Pointer{Action: action, X: col * cellW, Y: row * cellH}, true
}

// Tracker converts successive pointers into deltas relative to the press.
type Tracker struct {
	active bool
	x0, y0 float64
}

// Begin records the press position.
func (t *Tracker) Begin(p Pointer) {
	t.active = true
	t.x0, t.y0 = p.X, p.Y
}

// Delta returns the total displacement since Begin. ok is false when no
// press is being tracked.
func (t *Tracker) Delta(p Pointer) (dx, dy float64, ok bool) {
	if !t.active {
		return 0, 0, false
	}
	return p.X - t.x0, p.Y - t.y0, true
}

// End stops tracking.
func (t *Tracker) End() {
	t.active = false
}

// Active reports whether a press is being tracked.
func (t *Tracker) Active() bool {
	return t.active
}

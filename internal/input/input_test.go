package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"zone-radar.klederson.com/internal/room"
)

func TestFromMouse(t *testing.T) {
	tests := []struct {
		name   string
		msg    tea.MouseMsg
		want   Pointer
		wantOK bool
	}{
		{
			name:   "left press",
			msg:    tea.MouseMsg{X: 12, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
			want:   Pointer{Action: Press, X: 10.5 * 8, Y: 3.5 * 16},
			wantOK: true,
		},
		{
			name:   "motion",
			msg:    tea.MouseMsg{X: 2, Y: 2, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
			want:   Pointer{Action: Motion, X: 0.5 * 8, Y: 0.5 * 16},
			wantOK: true,
		},
		{
			name:   "release",
			msg:    tea.MouseMsg{X: 3, Y: 2, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone},
			want:   Pointer{Action: Release, X: 1.5 * 8, Y: 0.5 * 16},
			wantOK: true,
		},
		{
			name: "wheel ignored",
			msg:  tea.MouseMsg{X: 3, Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp},
		},
		{
			name: "right button ignored",
			msg:  tea.MouseMsg{X: 3, Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonRight},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromMouse(tt.msg, 8, 16, 2, 2)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("pointer = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTracker(t *testing.T) {
	var tr Tracker
	if _, _, ok := tr.Delta(Pointer{X: 5}); ok {
		t.Error("delta without press")
	}

	tr.Begin(Pointer{Action: Press, X: 100, Y: 50})
	tr.Delta(Pointer{Action: Motion, X: 120, Y: 40})
	dx, dy, ok := tr.Delta(Pointer{Action: Motion, X: 140, Y: 30})
	if !ok || dx != 40 || dy != -20 {
		t.Errorf("delta = (%v, %v, %v), want total since press (40, -20)", dx, dy, ok)
	}

	tr.End()
	if tr.Active() {
		t.Error("tracker still active after End")
	}
}

func TestHitTest(t *testing.T) {
	c := room.NewCanvas(800, 600)
	zones := []room.Zone{
		{ID: 1, Rect: room.Rect{X1: -2000, Y1: 1, X2: 2000, Y2: 3000}},
	}

	tests := []struct {
		name   string
		x, y   float64
		want   Handle
		wantOK bool
	}{
		{"interior", 400, 450, HandleMove, true},
		{"left border", 201, 450, HandleLeft, true},
		{"right border", 599, 450, HandleRight, true},
		{"top border", 400, 302, HandleTop, true},
		{"bottom border", 400, 598, HandleBottom, true},
		{"just outside left within tolerance", 195, 450, HandleLeft, true},
		{"outside", 100, 100, HandleNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := HitTest(zones, c, tt.x, tt.y, 8, 8)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if hit.Handle != tt.want {
				t.Errorf("handle = %v, want %v", hit.Handle, tt.want)
			}
			if ok && hit.ZoneID != 1 {
				t.Errorf("zone = %d, want 1", hit.ZoneID)
			}
		})
	}
}

func TestHitTest_SmallZoneKeepsMoveHandle(t *testing.T) {
	// On a 688x560 canvas the zone is about 23px tall, under two 16px bands.
	c := room.NewCanvas(688, 560)
	zones := []room.Zone{
		{ID: 1, Rect: room.Rect{X1: -1000, Y1: 2000, X2: 1000, Y2: 2250}},
	}
	left, top := c.ToPixel(-1000, 2250)
	right, bottom := c.ToPixel(1000, 2000)
	midX, midY := (left+right)/2, (top+bottom)/2

	tests := []struct {
		name string
		x, y float64
		want Handle
	}{
		{"center", midX, midY, HandleMove},
		{"just inside top", midX, top + 1, HandleMove},
		{"just inside bottom", midX, bottom - 1, HandleMove},
		{"above", midX, top - 4, HandleTop},
		{"below", midX, bottom + 4, HandleBottom},
		{"left border still wide enough", left + 2, midY, HandleLeft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := HitTest(zones, c, tt.x, tt.y, 8, 16)
			if !ok || hit.Handle != tt.want {
				t.Errorf("hit = %+v ok=%v, want %v", hit, ok, tt.want)
			}
		})
	}
}

func TestHitTest_TopmostWins(t *testing.T) {
	c := room.NewCanvas(800, 600)
	zones := []room.Zone{
		{ID: 1, Rect: room.Rect{X1: -4000, Y1: 1, X2: 4000, Y2: 6000}},
		{ID: 2, Rect: room.Rect{X1: -1000, Y1: 1000, X2: 1000, Y2: 3000}},
	}
	hit, ok := HitTest(zones, c, 400, 400, 4, 4)
	if !ok || hit.ZoneID != 2 || hit.Handle != HandleMove {
		t.Errorf("hit = %+v, want zone 2 move", hit)
	}
}

func TestHitTest_UnlaidCanvas(t *testing.T) {
	zones := []room.Zone{{ID: 1, Rect: room.Rect{X1: 0, Y1: 1, X2: 10, Y2: 10}}}
	if _, ok := HitTest(zones, room.Canvas{}, 0, 0, 1, 1); ok {
		t.Error("hit on a canvas with no size")
	}
}

func TestHandleEdge(t *testing.T) {
	if _, ok := HandleMove.Edge(); ok {
		t.Error("move handle has no edge")
	}
	if e, ok := HandleLeft.Edge(); !ok || e != room.EdgeLeft {
		t.Errorf("left handle edge = %v, %v", e, ok)
	}
}

package room

import "testing"

func TestPoints_ApplySameIDOverwrites(t *testing.T) {
	p := NewPoints()
	if !p.Apply(Point{ID: 1, X: 100, Y: 200}) {
		t.Error("first Apply should report new")
	}
	if p.Apply(Point{ID: 1, X: 300, Y: 400}) {
		t.Error("second Apply should report update")
	}
	if p.Len() != 1 {
		t.Fatalf("Len = %d, want 1", p.Len())
	}
	if got := p.Snapshot()[0]; got.X != 300 || got.Y != 400 {
		t.Errorf("point = %+v, want updated coords", got)
	}
}

func TestPoints_KeepsFirstSeenOrder(t *testing.T) {
	p := NewPoints()
	p.Apply(Point{ID: 3, X: 1, Y: 1})
	p.Apply(Point{ID: 1, X: 2, Y: 2})
	p.Apply(Point{ID: 2, X: 3, Y: 3})
	p.Apply(Point{ID: 3, X: 9, Y: 9})

	snap := p.Snapshot()
	want := []int{3, 1, 2}
	for i, id := range want {
		if snap[i].ID != id {
			t.Fatalf("order = %+v, want ids %v", snap, want)
		}
	}
	if snap[0].X != 9 {
		t.Errorf("update lost: %+v", snap[0])
	}
}

func TestPoints_SentinelHiddenButRetained(t *testing.T) {
	p := NewPoints()
	p.Apply(Point{ID: 1, X: -500, Y: 1200})
	p.Apply(Point{ID: 2, X: 0, Y: 0})

	if p.Len() != 2 {
		t.Errorf("Len = %d, want 2", p.Len())
	}
	vis := p.Visible()
	if len(vis) != 1 || vis[0].ID != 1 {
		t.Errorf("Visible = %+v, want only id 1", vis)
	}

	p.Apply(Point{ID: 1, X: 0, Y: 0})
	if len(p.Visible()) != 0 {
		t.Error("point reporting (0,0) should become invisible")
	}
}

func TestPoints_SnapshotIsCopy(t *testing.T) {
	p := NewPoints()
	p.Apply(Point{ID: 1, X: 1, Y: 1})
	snap := p.Snapshot()
	snap[0].X = 42
	if p.Snapshot()[0].X != 1 {
		t.Error("Snapshot aliases internal storage")
	}
}

func TestPoints_Clear(t *testing.T) {
	p := NewPoints()
	p.Apply(Point{ID: 1, X: 1, Y: 1})
	p.Clear()
	if p.Len() != 0 {
		t.Fatal("Clear left points")
	}
	if !p.Apply(Point{ID: 1, X: 1, Y: 1}) {
		t.Error("id should be new after Clear")
	}
}

func TestOccupancy(t *testing.T) {
	zones := []Zone{
		{ID: 1, Rect: Rect{X1: 1, Y1: 1, X2: 4000, Y2: 4000}},
		{ID: 2, Rect: Rect{X1: -4000, Y1: 1, X2: -1, Y2: 4000}},
	}
	points := []Point{
		{ID: 1, X: 100, Y: 100},
		{ID: 2, X: 200, Y: 3000},
		{ID: 3, X: 0, Y: 0},
	}
	occ := Occupancy(zones, points)
	if occ[1] != 2 || occ[2] != 0 {
		t.Errorf("occupancy = %v", occ)
	}
}

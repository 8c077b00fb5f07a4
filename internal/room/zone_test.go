package room

import (
	"testing"
)

func TestResizeRect_RightClampsToDomain(t *testing.T) {
	c := NewCanvas(1000, 600)
	start := Rect{X1: 1, Y1: 1, X2: 4000, Y2: 4000}

	got := ResizeRect(start, EdgeRight, 500, 0, c, 20)
	if got.X2 != 4000 {
		t.Errorf("X2 = %v, want clamped 4000", got.X2)
	}
	if got.X1 != start.X1 || got.Y1 != start.Y1 || got.Y2 != start.Y2 {
		t.Errorf("other coordinates changed: %+v", got)
	}
}

func TestResizeRect_RightUnclamped(t *testing.T) {
	c := NewCanvas(1000, 600)
	start := Rect{X1: -4000, Y1: 1, X2: -2000, Y2: 3000}

	got := ResizeRect(start, EdgeRight, 100, 0, c, 20)
	if got.X2 != -1200 {
		t.Errorf("X2 = %v, want -1200 (100px = 800 units)", got.X2)
	}
}

func TestResizeRect_OppositeEdgeFixed(t *testing.T) {
	c := NewCanvas(1000, 600)
	starts := []Rect{
		{X1: 1, Y1: 1, X2: 4000, Y2: 4000},
		{X1: -3000, Y1: 2000, X2: -2500, Y2: 2100},
		{X1: -4000, Y1: 1, X2: 4000, Y2: 6000},
	}
	deltas := []float64{-2000, -300, -1, 0, 1, 37.5, 300, 2000}

	for _, s := range starts {
		for _, d := range deltas {
			r := ResizeRect(s, EdgeRight, d, d, c, 20)
			if r.X1 != s.X1 {
				t.Errorf("right drag %v moved X1: %+v -> %+v", d, s, r)
			}
			l := ResizeRect(s, EdgeLeft, d, d, c, 20)
			if l.X2 != s.X2 {
				t.Errorf("left drag %v moved X2: %+v -> %+v", d, s, l)
			}
			tp := ResizeRect(s, EdgeTop, d, d, c, 20)
			if tp.Y1 != s.Y1 {
				t.Errorf("top drag %v moved Y1: %+v -> %+v", d, s, tp)
			}
			b := ResizeRect(s, EdgeBottom, d, d, c, 20)
			if b.Y2 != s.Y2 {
				t.Errorf("bottom drag %v moved Y2: %+v -> %+v", d, s, b)
			}
			for _, got := range []Rect{r, l, tp, b} {
				if got.X1 > got.X2 || got.Y1 > got.Y2 {
					t.Errorf("inverted rect %+v from %+v drag %v", got, s, d)
				}
			}
		}
	}
}

func TestResizeRect_MinimumExtent(t *testing.T) {
	c := NewCanvas(1000, 600)
	start := Rect{X1: 0, Y1: 1000, X2: 2000, Y2: 3000}

	got := ResizeRect(start, EdgeRight, -10000, 0, c, 20)
	if px := c.LengthToPixelX(got.Width()); !almostEqual(px, 20) {
		t.Errorf("width %vpx, want minimum 20px", px)
	}
}

func TestResizeRect_TopGrowsUpward(t *testing.T) {
	c := NewCanvas(1000, 600)
	start := Rect{X1: 0, Y1: 1000, X2: 2000, Y2: 3000}

	got := ResizeRect(start, EdgeTop, 0, -60, c, 20)
	if got.Y2 <= start.Y2 {
		t.Errorf("dragging top up should grow Y2: %v -> %v", start.Y2, got.Y2)
	}
	got = ResizeRect(start, EdgeBottom, 0, 60, c, 20)
	if got.Y1 >= start.Y1 {
		t.Errorf("dragging bottom down should lower Y1: %v -> %v", start.Y1, got.Y1)
	}
}

func TestResizeRect_UnlaidCanvas(t *testing.T) {
	start := Rect{X1: 0, Y1: 1, X2: 10, Y2: 10}
	if got := ResizeRect(start, EdgeRight, 50, 0, NewCanvas(0, 0), 20); got != start {
		t.Errorf("unlaid canvas changed rect: %+v", got)
	}
}

func TestMoveRect_ClampsTranslationAtMax(t *testing.T) {
	c := NewCanvas(1000, 600)
	start := Rect{X1: 2000, Y1: 1000, X2: 3000, Y2: 2000}

	got := MoveRect(start, 187.5, 0, c) // 1500 units would put X2 at 4500
	if got.X2 != 4000 {
		t.Errorf("X2 = %v, want 4000", got.X2)
	}
	if got.Width() != start.Width() {
		t.Errorf("width %v, want %v", got.Width(), start.Width())
	}
	if got.X1 != 3000 {
		t.Errorf("X1 = %v, want 3000", got.X1)
	}
}

func TestMoveRect_PreservesSize(t *testing.T) {
	c := NewCanvas(1000, 600)
	start := Rect{X1: -1000, Y1: 1500, X2: 500, Y2: 2500}
	deltas := [][2]float64{{-50, 30}, {10, -10}, {0, 0}, {120, 45}, {-3.5, 7.25}}

	for _, d := range deltas {
		got := MoveRect(start, d[0], d[1], c)
		if !almostEqual(got.Width(), start.Width()) || !almostEqual(got.Height(), start.Height()) {
			t.Errorf("delta %v changed size: %+v -> %+v", d, start, got)
		}
	}
}

func TestMoveRect_InvertsY(t *testing.T) {
	c := NewCanvas(1000, 600)
	start := Rect{X1: 0, Y1: 1000, X2: 1000, Y2: 2000}
	got := MoveRect(start, 0, -60, c)
	if got.Y1 <= start.Y1 {
		t.Errorf("moving up on screen should raise Y: %v -> %v", start.Y1, got.Y1)
	}
}

func TestMoveRect_ClampsAtMin(t *testing.T) {
	c := NewCanvas(1000, 600)
	start := Rect{X1: -3500, Y1: 100, X2: -2500, Y2: 600}
	got := MoveRect(start, -500, 500, c)
	if got.X1 != -4000 || got.Y1 != 1 {
		t.Errorf("lower corner = (%v,%v), want (-4000,1)", got.X1, got.Y1)
	}
	if got.Width() != 1000 || got.Height() != 500 {
		t.Errorf("size changed: %+v", got)
	}
}

func TestMoveRect_OversizedStaysInDomain(t *testing.T) {
	c := NewCanvas(688, 560)
	start := Rect{X1: -4001, Y1: 4001, X2: 4001, Y2: 8000}

	for _, d := range [][2]float64{{8, 0}, {-8, 0}, {0, -16}, {0, 16}} {
		got := MoveRect(start, d[0], d[1], c)
		if got.X1 < -4000 || got.X2 > 4000 || got.Y1 < 1 || got.Y2 > 6000 {
			t.Errorf("delta %v left the domain: %+v", d, got)
		}
	}

	got := MoveRect(start, 8, 0, c)
	if got.X1 != -4000 || got.X2 != 4000 {
		t.Errorf("x span = [%v,%v], want the full room width", got.X1, got.X2)
	}
}

func TestAnchorRect(t *testing.T) {
	got := AnchorRect(NewCanvas(1000, 600), 2000)
	want := Rect{X1: 0, Y1: 3001, X2: 2000, Y2: 5001}
	if got != want {
		t.Errorf("AnchorRect = %+v, want %+v", got, want)
	}
}

func TestRect_Contains(t *testing.T) {
	r := Rect{X1: -4000, Y1: 1, X2: -1, Y2: 4000}
	if !r.Contains(-1, 4000) {
		t.Error("edges should be inside")
	}
	if r.Contains(0, 100) {
		t.Error("x=0 is outside")
	}
}

func TestParseEdge(t *testing.T) {
	for _, e := range []Edge{EdgeTop, EdgeRight, EdgeBottom, EdgeLeft} {
		got, err := ParseEdge(e.String())
		if err != nil || got != e {
			t.Errorf("ParseEdge(%q) = %v, %v", e.String(), got, err)
		}
	}
	if _, err := ParseEdge("diagonal"); err == nil {
		t.Error("expected error")
	}
}

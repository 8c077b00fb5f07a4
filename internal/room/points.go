package room

// Point is one live target position reported by the device.
type Point struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Absent reports whether p is the (0,0) "no detection" sentinel.
func (p Point) Absent() bool {
	return p.X == 0 && p.Y == 0
}

// Points reconciles the live feed into an ordered list keyed by id.
// Order is first-seen; updates keep a point's position in the list.
type Points struct {
	list  []Point
	index map[int]int
}

// NewPoints creates an empty point list.
func NewPoints() *Points {
	return &Points{index: make(map[int]int)}
}

// Apply merges one feed event. Returns true when the id was new.
func (p *Points) Apply(pt Point) bool {
	if i, ok := p.index[pt.ID]; ok {
		p.list[i] = pt
		return false
	}
	p.index[pt.ID] = len(p.list)
	p.list = append(p.list, pt)
	return true
}

// Snapshot returns a copy of every point, sentinels included.
func (p *Points) Snapshot() []Point {
	out := make([]Point, len(p.list))
	copy(out, p.list)
	return out
}

// Visible returns the points that should be plotted.
func (p *Points) Visible() []Point {
	out := make([]Point, 0, len(p.list))
	for _, pt := range p.list {
		if !pt.Absent() {
			out = append(out, pt)
		}
	}
	return out
}

// Len returns the number of tracked slots.
func (p *Points) Len() int { return len(p.list) }

// Clear forgets every point.
func (p *Points) Clear() {
	p.list = nil
	p.index = make(map[int]int)
}

// Occupancy counts visible points inside each zone, keyed by zone id.
func Occupancy(zones []Zone, points []Point) map[int]int {
	occ := make(map[int]int, len(zones))
	for _, z := range zones {
		occ[z.ID] = 0
		for _, pt := range points {
			if !pt.Absent() && z.Contains(pt.X, pt.Y) {
				occ[z.ID]++
			}
		}
	}
	return occ
}

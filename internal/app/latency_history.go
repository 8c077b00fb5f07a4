package app

import (
	"math"
	"slices"
	"time"
)

// LatencyRing keeps the last push round-trip times for the status bar and
// the detail sparkline.
type LatencyRing struct {
	buf   []time.Duration
	pos   int
	count int
}

// NewLatencyRing creates a ring holding the last capacity samples.
func NewLatencyRing(capacity int) *LatencyRing {
	return &LatencyRing{
		buf: make([]time.Duration, capacity),
	}
}

// Push records one push duration.
func (r *LatencyRing) Push(d time.Duration) {
	r.buf[r.pos] = d
	r.pos = (r.pos + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

func (r *LatencyRing) samples() []time.Duration {
	out := make([]time.Duration, 0, r.count)
	if r.count < len(r.buf) {
		return append(out, r.buf[:r.count]...)
	}
	out = append(out, r.buf[r.pos:]...)
	return append(out, r.buf[:r.pos]...)
}

// Values returns the samples in milliseconds, oldest first.
func (r *LatencyRing) Values() []float64 {
	if r.count == 0 {
		return nil
	}
	s := r.samples()
	ms := make([]float64, len(s))
	for i, d := range s {
		ms[i] = float64(d) / float64(time.Millisecond)
	}
	return ms
}

// Last returns the most recent sample, or 0 if empty.
func (r *LatencyRing) Last() time.Duration {
	if r.count == 0 {
		return 0
	}
	return r.buf[(r.pos-1+len(r.buf))%len(r.buf)]
}

// Percentile returns the nearest-rank q-th percentile (0 < q <= 100) of the
// stored samples, or 0 if empty.
func (r *LatencyRing) Percentile(q float64) time.Duration {
	if r.count == 0 {
		return 0
	}
	s := r.samples()
	slices.Sort(s)
	rank := int(math.Ceil(q / 100 * float64(len(s))))
	rank = max(1, min(rank, len(s)))
	return s[rank-1]
}

// Len returns the number of stored samples.
func (r *LatencyRing) Len() int {
	return r.count
}

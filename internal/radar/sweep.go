package radar

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"zone-radar.klederson.com/internal/config"
)

// pulseTrail is the physical width of the glowing band behind a wavefront.
const pulseTrail = 700.0

// Pulse animates a wavefront spreading out from the sensor. A new wave
// starts every config.PulseInterval while the feed keeps delivering.
type Pulse struct {
	clock    clockwork.Clock
	start    time.Time
	lastBeat time.Time
	maxRange float64

	// Radius is the current wavefront distance from the sensor.
	Radius float64
}

// NewPulse creates an idle pulse. A nil clock uses the real clock.
func NewPulse(clock clockwork.Clock) *Pulse {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pulse{
		clock:    clock,
		start:    clock.Now(),
		maxRange: math.Hypot(config.MaxX, config.MaxY-config.MinY),
	}
}

// Beat records feed activity.
func (p *Pulse) Beat() {
	p.lastBeat = p.clock.Now()
}

// Active reports whether the feed delivered within the last two intervals.
func (p *Pulse) Active() bool {
	if p.lastBeat.IsZero() {
		return false
	}
	return p.clock.Since(p.lastBeat) <= 2*config.PulseInterval
}

// Update advances the wavefront.
func (p *Pulse) Update() {
	elapsed := p.clock.Since(p.start)
	frac := float64(elapsed%config.PulseInterval) / float64(config.PulseInterval)
	p.Radius = frac * p.maxRange
}

// Intensity returns the glow [0, 1] at a physical distance from the sensor.
// It is 0 while the feed is idle.
func (p *Pulse) Intensity(dist float64) float64 {
	if !p.Active() {
		return 0
	}
	behind := p.Radius - dist
	if behind < 0 || behind > pulseTrail {
		return 0
	}
	return 1.0 - behind/pulseTrail
}

// Frame returns a small spinner index for the feed indicator.
func (p *Pulse) Frame() int {
	if !p.Active() {
		return 0
	}
	return int(p.clock.Since(p.start)/(config.PulseInterval/4)) % 4
}

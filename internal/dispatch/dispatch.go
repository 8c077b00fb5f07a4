// Package dispatch decides when the local zone set is pushed to the device
// and formats the outbound payload.
package dispatch

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"zone-radar.klederson.com/internal/config"
	"zone-radar.klederson.com/internal/room"
)

// ZonePayload is the wire form of one zone: display attributes stripped,
// coordinates rounded to whole device units.
type ZonePayload struct {
	ID int `json:"id"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect converts the payload back to a physical rectangle.
func (p ZonePayload) Rect() room.Rect {
	return room.Rect{X1: float64(p.X1), Y1: float64(p.Y1), X2: float64(p.X2), Y2: float64(p.Y2)}
}

// Payload reduces a zone set to its wire form. The result is never nil so an
// empty set is sent as [] rather than null.
func Payload(zones []room.Zone) []ZonePayload {
	out := make([]ZonePayload, 0, len(zones))
	for _, z := range zones {
		out = append(out, ZonePayload{
			ID: z.ID,
			X1: int(math.Round(z.X1)),
			Y1: int(math.Round(z.Y1)),
			X2: int(math.Round(z.X2)),
			Y2: int(math.Round(z.Y2)),
		})
	}
	return out
}

// Pusher transmits a full replacement zone set to the device.
type Pusher interface {
	Push(ctx context.Context, zones []ZonePayload) error
}

// Kind tells live pushes from the commit on leaving edit mode.
type Kind int

const (
	KindLive Kind = iota
	KindFinal
)

func (k Kind) String() string {
	if k == KindFinal {
		return "final"
	}
	return "live"
}

// Result describes one completed push.
type Result struct {
	ID       uuid.UUID
	Kind     Kind
	Zones    int
	Duration time.Duration
	Err      error
}

// Dispatcher sends zone sets fire-and-forget: every push runs in its own
// goroutine, nothing is retried, coalesced or cancelled.
type Dispatcher struct {
	pusher   Pusher
	timeout  time.Duration
	clock    clockwork.Clock
	onResult func(Result)
	wg       sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout bounds each push.
func WithTimeout(d time.Duration) Option {
	return func(ds *Dispatcher) { ds.timeout = d }
}

// WithClock overrides the clock used to time pushes.
func WithClock(c clockwork.Clock) Option {
	return func(ds *Dispatcher) { ds.clock = c }
}

// WithResultHandler registers a callback invoked from the push goroutine.
func WithResultHandler(fn func(Result)) Option {
	return func(ds *Dispatcher) { ds.onResult = fn }
}

// New creates a Dispatcher. A nil pusher disables transmission until
// SetPusher is called.
func New(p Pusher, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		pusher:  p,
		timeout: config.PushTimeout,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetPusher swaps the target, e.g. after a device address change. In-flight
// pushes keep the pusher they started with.
func (d *Dispatcher) SetPusher(p Pusher) {
	d.pusher = p
}

// Live pushes zones after a gesture unless edit mode is on. It reports
// whether a push was started.
func (d *Dispatcher) Live(zones []room.Zone, editMode bool) bool {
	if editMode {
		log.Debug().Int("zones", len(zones)).Msg("live push suppressed in edit mode")
		return false
	}
	return d.send(KindLive, zones)
}

// Final unconditionally pushes zones. Called once when edit mode is left.
func (d *Dispatcher) Final(zones []room.Zone) bool {
	return d.send(KindFinal, zones)
}

// Wait blocks until every started push has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) send(kind Kind, zones []room.Zone) bool {
	p := d.pusher
	if p == nil {
		log.Warn().Str("kind", kind.String()).Msg("no zone endpoint configured, push dropped")
		return false
	}

	payload := Payload(zones)
	id := uuid.New()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		start := d.clock.Now()
		err := p.Push(ctx, payload)
		res := Result{
			ID:       id,
			Kind:     kind,
			Zones:    len(payload),
			Duration: d.clock.Since(start),
			Err:      err,
		}

		if err != nil {
			log.Error().
				Err(err).
				Str("push_id", id.String()).
				Str("kind", kind.String()).
				Msg("zone push failed")
		} else {
			log.Debug().
				Str("push_id", id.String()).
				Str("kind", kind.String()).
				Int("zones", len(payload)).
				Dur("took", res.Duration).
				Msg("zones pushed")
		}

		if d.onResult != nil {
			d.onResult(res)
		}
	}()
	return true
}

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"zone-radar.klederson.com/internal/config"
	"zone-radar.klederson.com/internal/dispatch"
	"zone-radar.klederson.com/internal/room"
)

var (
	// ErrNotEditing is returned when a gesture starts outside edit mode.
	ErrNotEditing = errors.New("edit mode is off")
	// ErrNoDevice is returned when fetching before a device is selected.
	ErrNoDevice = errors.New("no device selected")
)

// State is the device connection state.
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// ZoneEndpoint reads and replaces the zone set held by a device.
type ZoneEndpoint interface {
	dispatch.Pusher
	Fetch(ctx context.Context) ([]room.Rect, error)
}

// EndpointFactory builds the endpoint for a device address.
type EndpointFactory func(addr string) ZoneEndpoint

// Fetch is a pending zone fetch for one device generation. Run it off the
// event loop and hand the result back through Controller.ApplyFetch.
type Fetch struct {
	Gen    int
	Device string
	ep     ZoneEndpoint
}

// FetchResult is the outcome of Fetch.Run.
type FetchResult struct {
	Gen   int
	Rects []room.Rect
	Err   error
}

// Run performs the fetch with the configured timeout.
func (f Fetch) Run(ctx context.Context) FetchResult {
	if f.ep == nil {
		return FetchResult{Gen: f.Gen, Err: ErrNoDevice}
	}
	ctx, cancel := context.WithTimeout(ctx, config.FetchTimeout)
	defer cancel()

	rects, err := f.ep.Fetch(ctx)
	if err != nil {
		err = fmt.Errorf("fetch zones from %s: %w", f.Device, err)
	}
	return FetchResult{Gen: f.Gen, Rects: rects, Err: err}
}

// Controller is the room session: it owns zones, points, edit mode and the
// connection state, and routes gestures to the geometry engine and zone
// changes to the dispatcher. All methods must be called from one goroutine.
type Controller struct {
	engine      *room.Engine
	points      *room.Points
	disp        *dispatch.Dispatcher
	newEndpoint EndpointFactory

	device   string
	gen      int
	state    State
	feedUp   bool
	feedLost bool
	editMode bool
	gesture  *Gesture
}

// New creates a disconnected controller.
func New(engine *room.Engine, disp *dispatch.Dispatcher, factory EndpointFactory) *Controller {
	return &Controller{
		engine:      engine,
		points:      room.NewPoints(),
		disp:        disp,
		newEndpoint: factory,
	}
}

// SetDevice selects a device, discarding all state from the previous one,
// and returns the fetch that loads its zones.
func (c *Controller) SetDevice(addr string) Fetch {
	c.Teardown()
	c.gen++
	c.device = addr
	c.state = Disconnected
	c.feedUp = false
	c.feedLost = false
	c.engine.Reset()
	c.points.Clear()

	var ep ZoneEndpoint
	if addr != "" && c.newEndpoint != nil {
		ep = c.newEndpoint(addr)
	}
	if ep != nil {
		c.disp.SetPusher(ep)
	} else {
		c.disp.SetPusher(nil)
	}

	log.Info().Str("device", addr).Int("gen", c.gen).Msg("device selected")
	return Fetch{Gen: c.gen, Device: addr, ep: ep}
}

// ApplyFetch installs fetched zones, replacing the local set. Results from
// an earlier device selection are ignored; it reports whether res was applied.
// A fetch that lands after the feed for the same selection closed leaves the
// session disconnected.
func (c *Controller) ApplyFetch(res FetchResult) bool {
	if res.Gen != c.gen {
		log.Debug().Int("gen", res.Gen).Int("current", c.gen).Msg("stale fetch result ignored")
		return false
	}
	if res.Err != nil {
		log.Error().Err(res.Err).Str("device", c.device).Msg("zone fetch failed")
		c.disconnect()
		return true
	}
	if c.feedLost {
		log.Warn().Str("device", c.device).Msg("zones fetched after feed loss, staying disconnected")
		c.disconnect()
		return true
	}
	c.engine.Replace(res.Rects)
	c.state = Connected
	log.Info().Str("device", c.device).Int("zones", c.engine.Len()).Msg("zones loaded")
	return true
}

// FeedOpened records that the live feed for gen is up.
func (c *Controller) FeedOpened(gen int) {
	if gen != c.gen {
		return
	}
	c.feedUp = true
}

// FeedClosed handles loss of the live feed: the session drops to
// disconnected and clears its zones. Zones are not refetched automatically.
func (c *Controller) FeedClosed(gen int, err error) {
	if gen != c.gen {
		return
	}
	c.feedUp = false
	c.feedLost = true
	if err != nil {
		log.Warn().Err(err).Str("device", c.device).Msg("live feed lost")
	}
	c.disconnect()
}

// ApplyPoint merges one live position. Points from a stale feed are ignored.
func (c *Controller) ApplyPoint(gen int, pt room.Point) bool {
	if gen != c.gen {
		return false
	}
	c.points.Apply(pt)
	return true
}

// SetCanvas updates the pixel size of the room surface.
func (c *Controller) SetCanvas(width, height float64) {
	c.engine.SetCanvas(width, height)
}

// SetEditMode switches edit mode. Leaving edit mode commits the zone set
// with a final push and releases any gesture in progress.
func (c *Controller) SetEditMode(on bool) {
	if c.editMode == on {
		return
	}
	c.editMode = on
	if on {
		return
	}
	c.EndGesture()
	if c.state != Connected {
		log.Warn().Str("device", c.device).Msg("final push skipped while disconnected")
		return
	}
	c.disp.Final(c.engine.Zones())
}

// ToggleEditMode flips edit mode.
func (c *Controller) ToggleEditMode() {
	c.SetEditMode(!c.editMode)
}

// CreateZone adds a zone at the canvas center.
func (c *Controller) CreateZone() (room.Zone, error) {
	z, err := c.engine.Create()
	if err != nil {
		return z, err
	}
	c.changed()
	return z, nil
}

// DeleteZone removes zone id. A gesture on the deleted zone ends, and so
// does any gesture when the delete renumbers the remaining zones.
func (c *Controller) DeleteZone(id int) error {
	if g := c.gesture; g != nil && (g.zoneID == id || c.engine.Renumbers()) {
		c.EndGesture()
	}
	if !c.engine.Delete(id) {
		return fmt.Errorf("delete zone %d: %w", id, room.ErrUnknownZone)
	}
	c.changed()
	return nil
}

// ResetZones removes every zone.
func (c *Controller) ResetZones() {
	c.EndGesture()
	c.engine.Reset()
	c.changed()
}

// BeginResize starts dragging one edge of zone id.
func (c *Controller) BeginResize(id int, edge room.Edge) (*Gesture, error) {
	return c.begin(GestureResize, id, edge)
}

// BeginMove starts dragging zone id as a whole.
func (c *Controller) BeginMove(id int) (*Gesture, error) {
	return c.begin(GestureMove, id, room.EdgeTop)
}

func (c *Controller) begin(kind GestureKind, id int, edge room.Edge) (*Gesture, error) {
	if !c.editMode {
		return nil, ErrNotEditing
	}
	z, ok := c.engine.Zone(id)
	if !ok {
		return nil, fmt.Errorf("begin %s on zone %d: %w", kind, id, room.ErrUnknownZone)
	}
	c.EndGesture()
	c.gesture = &Gesture{
		c:      c,
		kind:   kind,
		edge:   edge,
		zoneID: id,
		start:  z.Rect,
	}
	return c.gesture, nil
}

// ActiveGesture returns the gesture in progress, or nil.
func (c *Controller) ActiveGesture() *Gesture {
	return c.gesture
}

// EndGesture releases the active gesture, if any.
func (c *Controller) EndGesture() {
	if c.gesture != nil {
		c.gesture.ended = true
		c.gesture = nil
	}
}

// Teardown releases everything scoped to the current interaction.
func (c *Controller) Teardown() {
	c.EndGesture()
}

// Zones returns the current zone set.
func (c *Controller) Zones() []room.Zone { return c.engine.Zones() }

// Points returns the reconciled point list, sentinels included.
func (c *Controller) Points() []room.Point { return c.points.Snapshot() }

// Canvas returns the current room surface.
func (c *Controller) Canvas() room.Canvas { return c.engine.Canvas() }

// CanCreate reports whether another zone fits.
func (c *Controller) CanCreate() bool { return !c.engine.Full() }

// State returns the connection state.
func (c *Controller) State() State { return c.state }

// Connected reports whether zones were loaded from the current device.
func (c *Controller) Connected() bool { return c.state == Connected }

// FeedUp reports whether the live feed is open.
func (c *Controller) FeedUp() bool { return c.feedUp }

// EditMode reports whether edits are being staged.
func (c *Controller) EditMode() bool { return c.editMode }

// Device returns the selected device address.
func (c *Controller) Device() string { return c.device }

// Generation identifies the current device selection.
func (c *Controller) Generation() int { return c.gen }

func (c *Controller) disconnect() {
	c.EndGesture()
	c.state = Disconnected
	c.engine.Reset()
}

// changed runs after every zone mutation.
func (c *Controller) changed() {
	if c.state != Connected {
		log.Debug().Msg("zone change kept local while disconnected")
		return
	}
	c.disp.Live(c.engine.Zones(), c.editMode)
}

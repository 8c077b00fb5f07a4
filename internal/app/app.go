package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"zone-radar.klederson.com/internal/config"
	"zone-radar.klederson.com/internal/device"
	"zone-radar.klederson.com/internal/dispatch"
	"zone-radar.klederson.com/internal/gateway"
	"zone-radar.klederson.com/internal/input"
	"zone-radar.klederson.com/internal/radar"
	"zone-radar.klederson.com/internal/room"
	"zone-radar.klederson.com/internal/session"
	"zone-radar.klederson.com/internal/ui"
)

const minPercentileSamples = 5

// Options configures the root model.
type Options struct {
	Device   string
	Gateway  string // optional zone gateway base URL
	IDPolicy config.IDPolicy
	Clock    clockwork.Clock

	// Endpoint overrides how zone endpoints are built.
	Endpoint session.EndpointFactory
	// FeedOptions are passed to every live feed.
	FeedOptions []device.FeedOption
}

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	ctrl    *session.Controller
	disp    *dispatch.Dispatcher
	pulse   *radar.Pulse
	latency *LatencyRing

	mu     sync.Mutex
	sender device.Sender
	feed   *device.Feed
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *shared) send(msg tea.Msg) {
	s.mu.Lock()
	sender := s.sender
	s.mu.Unlock()
	if sender != nil {
		sender.Send(msg)
	}
}

// AppModel is the root Bubble Tea model for ZONE-RADAR.
type AppModel struct {
	width  int
	height int

	opts    Options
	shared  *shared
	tracker input.Tracker
	prompt  ui.AddressInput

	selected int // zone id, 0 for none
	detail   bool
	pushErr  bool
	message  string
}

// New creates a new AppModel.
func New(opts Options) AppModel {
	if opts.IDPolicy == "" {
		opts.IDPolicy = config.IDByCount
	}
	if opts.Endpoint == nil {
		opts.Endpoint = endpointFactory(opts.Gateway)
	}

	s := &shared{
		pulse:   radar.NewPulse(opts.Clock),
		latency: NewLatencyRing(config.LatencyWindow),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	dispOpts := []dispatch.Option{
		dispatch.WithResultHandler(func(r dispatch.Result) { s.send(PushResultMsg(r)) }),
	}
	if opts.Clock != nil {
		dispOpts = append(dispOpts, dispatch.WithClock(opts.Clock))
	}
	s.disp = dispatch.New(nil, dispOpts...)
	s.ctrl = session.New(room.NewEngine(opts.IDPolicy), s.disp, opts.Endpoint)

	return AppModel{opts: opts, shared: s}
}

// endpointFactory talks to the device directly, or through the gateway when
// one is configured.
func endpointFactory(gatewayAddr string) session.EndpointFactory {
	hc := &http.Client{Timeout: config.FetchTimeout}
	if gatewayAddr != "" {
		return func(addr string) session.ZoneEndpoint {
			return gateway.NewClient(gatewayAddr, addr, hc)
		}
	}
	return func(addr string) session.ZoneEndpoint {
		return device.NewClient(addr, hc)
	}
}

// Attach routes background events (feed, push results) to p. Must be called
// before p.Run(); without it the model runs with no live feed.
func (m *AppModel) Attach(p device.Sender) {
	m.shared.mu.Lock()
	m.shared.sender = p
	m.shared.mu.Unlock()
}

// Controller exposes the room session.
func (m AppModel) Controller() *session.Controller {
	return m.shared.ctrl
}

// Shutdown releases the session and waits for in-flight pushes. Call it
// after the program has exited; push results sent while the event loop is
// busy would otherwise block.
func (m AppModel) Shutdown() {
	m.release()
	m.shared.cancel()
	m.shared.disp.Wait()
}

// release ends the active gesture and stops the live feed.
func (m AppModel) release() {
	m.shared.ctrl.Teardown()
	m.stopFeed()
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		selectDeviceCmd(m.opts.Device),
	)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ctrl := m.shared.ctrl

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		l := ui.ComputeLayout(m.width, m.height)
		ctrl.SetCanvas(float64(l.RoomCols*config.CellWidthPx), float64(l.RoomRows*config.CellHeightPx))
		return m, nil

	case tea.KeyMsg:
		if m.prompt.Active {
			return m.handlePrompt(msg)
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case TickMsg:
		m.shared.pulse.Update()
		return m, tickCmd()

	case SelectDeviceMsg:
		return m.selectDevice(msg.Addr)

	case ZonesFetchedMsg:
		res := session.FetchResult(msg)
		if ctrl.ApplyFetch(res) {
			switch {
			case res.Err != nil:
				m.message = "Fetch failed, [C] to retry"
			case !ctrl.Connected():
				m.message = "Feed lost, [C] to reconnect"
			default:
				m.message = fmt.Sprintf("Loaded %d zone(s)", len(ctrl.Zones()))
			}
			m.fixSelection()
		}
		return m, nil

	case device.PointMsg:
		if ctrl.ApplyPoint(msg.Gen, msg.Point) {
			m.shared.pulse.Beat()
		}
		return m, nil

	case device.FeedOpenedMsg:
		ctrl.FeedOpened(msg.Gen)
		return m, nil

	case device.FeedClosedMsg:
		if msg.Gen == ctrl.Generation() {
			ctrl.FeedClosed(msg.Gen, msg.Err)
			m.tracker.End()
			m.fixSelection()
			m.message = "Feed lost, [C] to reconnect"
		}
		return m, nil

	case PushResultMsg:
		m.pushErr = msg.Err != nil
		if msg.Err != nil {
			m.message = "Push failed"
		} else {
			m.shared.latency.Push(msg.Duration)
		}
		return m, nil
	}

	return m, nil
}

func (m AppModel) selectDevice(addr string) (tea.Model, tea.Cmd) {
	m.stopFeed()
	m.tracker.End()
	m.selected = 0
	m.detail = false
	m.pushErr = false

	f := m.shared.ctrl.SetDevice(addr)
	if addr == "" {
		m.message = "No device, [I] to set one"
		return m, nil
	}
	m.startFeed(addr, f.Gen)
	m.message = "Connecting to " + addr
	return m, fetchCmd(m.shared.ctx, f)
}

func (m AppModel) startFeed(addr string, gen int) {
	s := m.shared
	s.mu.Lock()
	sender := s.sender
	s.mu.Unlock()
	if sender == nil {
		log.Debug().Str("device", addr).Msg("no program attached, live feed not started")
		return
	}

	feed := device.NewFeed(addr, gen, sender, m.opts.FeedOptions...)
	feed.Start(s.ctx)

	s.mu.Lock()
	s.feed = feed
	s.mu.Unlock()
}

func (m AppModel) stopFeed() {
	s := m.shared
	s.mu.Lock()
	feed := s.feed
	s.feed = nil
	s.mu.Unlock()
	if feed != nil {
		feed.Stop()
	}
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.shared.ctrl

	switch msg.String() {
	case "q", "Q", "ctrl+c":
		m.release()
		m.tracker.End()
		return m, tea.Quit

	case "e", "E":
		ctrl.ToggleEditMode()
		m.tracker.End()
		if ctrl.EditMode() {
			m.message = "Editing: drag edges to resize, interior to move"
		} else {
			m.message = "Zones committed"
		}

	case "n", "N":
		z, err := ctrl.CreateZone()
		if err != nil {
			m.message = fmt.Sprintf("Cannot create zone: %v", err)
			break
		}
		m.selected = z.ID
		m.message = fmt.Sprintf("Zone %d created", z.ID)

	case "d", "D", "x", "delete":
		if m.selected == 0 {
			break
		}
		if err := ctrl.DeleteZone(m.selected); err != nil {
			m.message = err.Error()
		} else {
			m.message = fmt.Sprintf("Zone %d deleted", m.selected)
		}
		m.detail = false
		m.fixSelection()

	case "R":
		ctrl.ResetZones()
		m.tracker.End()
		m.selected = 0
		m.detail = false
		m.message = "All zones removed"

	case "c", "C":
		return m, selectDeviceCmd(ctrl.Device())

	case "i", "I":
		m.prompt.Open(ctrl.Device())

	case "tab":
		m.cycleSelection(1)

	case "shift+tab":
		m.cycleSelection(-1)

	case "up", "k":
		m.nudge(0, -config.CellHeightPx)
	case "down", "j":
		m.nudge(0, config.CellHeightPx)
	case "left", "h":
		m.nudge(-config.CellWidthPx, 0)
	case "right", "l":
		m.nudge(config.CellWidthPx, 0)

	case "shift+up":
		m.stretch(room.EdgeTop, 0, -config.CellHeightPx)
	case "shift+down":
		m.stretch(room.EdgeTop, 0, config.CellHeightPx)
	case "shift+left":
		m.stretch(room.EdgeRight, -config.CellWidthPx, 0)
	case "shift+right":
		m.stretch(room.EdgeRight, config.CellWidthPx, 0)

	case "enter":
		if zoneIndex(ctrl.Zones(), m.selected) >= 0 {
			m.detail = !m.detail
		}

	case "esc":
		m.detail = false
	}

	return m, nil
}

func (m AppModel) handlePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		addr := m.prompt.Submit()
		if addr == "" {
			return m, nil
		}
		return m, selectDeviceCmd(addr)
	case tea.KeyEsc, tea.KeyCtrlC:
		m.prompt.Cancel()
	case tea.KeyBackspace:
		m.prompt.Backspace()
	case tea.KeyRunes:
		m.prompt.Type(string(msg.Runes))
	}
	return m, nil
}

// handleMouse drives zone gestures. Presses select a zone in any mode; only
// edit mode turns a press into a move or resize.
func (m AppModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.detail || m.width == 0 {
		return m, nil
	}
	ctrl := m.shared.ctrl
	l := ui.ComputeLayout(m.width, m.height)
	p, ok := input.FromMouse(msg, config.CellWidthPx, config.CellHeightPx, l.RoomCol, l.RoomRow)
	if !ok {
		return m, nil
	}

	switch p.Action {
	case input.Press:
		if p.X < 0 || p.Y < 0 || p.X > float64(l.RoomCols*config.CellWidthPx) || p.Y > float64(l.RoomRows*config.CellHeightPx) {
			return m, nil
		}
		hit, ok := input.HitTest(ctrl.Zones(), ctrl.Canvas(), p.X, p.Y, config.CellWidthPx, config.CellHeightPx)
		if !ok {
			return m, nil
		}
		m.selected = hit.ZoneID
		if !ctrl.EditMode() {
			return m, nil
		}
		var err error
		if edge, isEdge := hit.Handle.Edge(); isEdge {
			_, err = ctrl.BeginResize(hit.ZoneID, edge)
		} else {
			_, err = ctrl.BeginMove(hit.ZoneID)
		}
		if err != nil {
			log.Debug().Err(err).Int("zone", hit.ZoneID).Msg("gesture rejected")
			return m, nil
		}
		m.tracker.Begin(p)

	case input.Motion, input.Release:
		if g := ctrl.ActiveGesture(); g != nil {
			if dx, dy, ok := m.tracker.Delta(p); ok {
				g.Update(dx, dy)
			}
			if p.Action == input.Release {
				g.End()
			}
		}
		if p.Action == input.Release {
			m.tracker.End()
		}
	}
	return m, nil
}

// nudge moves the selected zone by a pixel delta as a one-step gesture.
func (m *AppModel) nudge(dx, dy float64) {
	if m.selected == 0 {
		return
	}
	g, err := m.shared.ctrl.BeginMove(m.selected)
	if err != nil {
		m.gestureRejected(err)
		return
	}
	g.Update(dx, dy)
	g.End()
}

// stretch drags one edge of the selected zone as a one-step gesture.
func (m *AppModel) stretch(edge room.Edge, dx, dy float64) {
	if m.selected == 0 {
		return
	}
	g, err := m.shared.ctrl.BeginResize(m.selected, edge)
	if err != nil {
		m.gestureRejected(err)
		return
	}
	g.Update(dx, dy)
	g.End()
}

func (m *AppModel) gestureRejected(err error) {
	if errors.Is(err, session.ErrNotEditing) {
		m.message = "Press [E] to edit zones"
		return
	}
	m.message = err.Error()
}

// cycleSelection moves the cursor through the zone list.
func (m *AppModel) cycleSelection(step int) {
	zones := m.shared.ctrl.Zones()
	if len(zones) == 0 {
		m.selected = 0
		return
	}
	idx := zoneIndex(zones, m.selected)
	if idx < 0 {
		idx = 0
		if step < 0 {
			idx = len(zones) - 1
		}
	} else {
		idx = (idx + step + len(zones)) % len(zones)
	}
	m.selected = zones[idx].ID
}

// p95 is the push latency percentile shown once a few samples exist.
func (m AppModel) p95() time.Duration {
	if m.shared.latency.Len() < minPercentileSamples {
		return 0
	}
	return m.shared.latency.Percentile(95)
}

// fixSelection drops a selection whose zone no longer exists.
func (m *AppModel) fixSelection() {
	if zoneIndex(m.shared.ctrl.Zones(), m.selected) < 0 {
		m.selected = 0
		m.detail = false
	}
}

func zoneIndex(zones []room.Zone, id int) int {
	for i, z := range zones {
		if z.ID == id {
			return i
		}
	}
	return -1
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing ZONE-RADAR..."
	}

	ctrl := m.shared.ctrl
	l := ui.ComputeLayout(m.width, m.height)
	zones := ctrl.Zones()
	points := ctrl.Points()
	occupancy := room.Occupancy(zones, points)
	edit := ctrl.EditMode()

	menuBar := ui.RenderMenuBar(m.width, ctrl.Device(), edit)

	var roomPanel string
	if idx := zoneIndex(zones, m.selected); m.detail && idx >= 0 {
		z := zones[idx]
		roomPanel = ui.RenderZoneDetail(z, ctrl.Canvas().Domain, occupancy[z.ID],
			m.shared.latency.Values(), l.RoomW, l.BodyH)
	} else {
		content := radar.Render(l.RoomCols, l.RoomRows, radar.Scene{
			Canvas:    ctrl.Canvas(),
			Zones:     zones,
			Points:    points,
			Occupancy: occupancy,
			Selected:  m.selected,
			Edit:      edit,
			Pulse:     m.shared.pulse,
		})
		legend := radar.RenderLegend(l.RoomCols, edit)
		roomPanel = ui.RenderRoomPanel(l.RoomW, l.BodyH, content, legend, edit)
	}

	sidePanel := ui.RenderZoneList(zones, points, occupancy, l.SideW, l.BodyH, zoneIndex(zones, m.selected))

	targets := 0
	for _, p := range points {
		if !p.Absent() {
			targets++
		}
	}
	prompt := m.prompt
	statusBar := ui.RenderStatusBar(m.width, ui.Status{
		Connected: ctrl.Connected(),
		FeedUp:    ctrl.FeedUp(),
		Frame:     m.shared.pulse.Frame(),
		Zones:     len(zones),
		MaxZones:  config.MaxZones,
		Targets:   targets,
		LastPush:  m.shared.latency.Last(),
		P95Push:   m.p95(),
		PushErr:   m.pushErr,
		Message:   m.message,
		Input:     &prompt,
	})

	return ui.ComposeLayout(menuBar, roomPanel, sidePanel, statusBar)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(config.TargetFPS), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func selectDeviceCmd(addr string) tea.Cmd {
	return func() tea.Msg {
		return SelectDeviceMsg{Addr: addr}
	}
}

// fetchCmd runs the zone fetch off the event loop.
func fetchCmd(ctx context.Context, f session.Fetch) tea.Cmd {
	return func() tea.Msg {
		return ZonesFetchedMsg(f.Run(ctx))
	}
}

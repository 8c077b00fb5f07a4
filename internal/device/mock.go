package device

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"zone-radar.klederson.com/internal/config"
	"zone-radar.klederson.com/internal/dispatch"
	"zone-radar.klederson.com/internal/room"
)

// Motion patterns for simulated targets.
var mockTargetTemplates = []struct {
	Name   string
	SpeedX float64
	SpeedY float64
}{
	{"walker", 0.35, 0.22},
	{"pacer", 0.9, 0.05},
	{"sitter", 0.04, 0.03},
}

type mockTarget struct {
	id     int
	name   string
	cx, cy float64
	ax, ay float64
	speedX float64
	speedY float64
	phase  float64
	active bool
}

// Mock simulates the presence sensor: it stores zones like the firmware and
// streams wandering targets to every connected websocket client.
type Mock struct {
	clock    clockwork.Clock
	rng      *rand.Rand
	domain   room.Domain
	interval time.Duration
	upgrader websocket.Upgrader

	mu        sync.Mutex
	zones     []dispatch.ZonePayload
	targets   []mockTarget
	clients   map[*websocket.Conn]struct{}
	occupancy map[int]int
	t         float64
}

// MockOption configures a Mock.
type MockOption func(*Mock)

// WithMockClock overrides the clock driving the simulation.
func WithMockClock(c clockwork.Clock) MockOption {
	return func(m *Mock) { m.clock = c }
}

// WithSeed makes target motion reproducible.
func WithSeed(seed int64) MockOption {
	return func(m *Mock) { m.rng = rand.New(rand.NewSource(seed)) }
}

// NewMock creates a simulated device with config.MockTargets targets.
func NewMock(opts ...MockOption) *Mock {
	m := &Mock{
		clock:    clockwork.NewRealClock(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		domain:   room.DefaultDomain(),
		interval: config.MockTickInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		zones:     []dispatch.ZonePayload{},
		clients:   make(map[*websocket.Conn]struct{}),
		occupancy: make(map[int]int),
	}
	for _, opt := range opts {
		opt(m)
	}

	d := m.domain
	for i := 0; i < config.MockTargets; i++ {
		tmpl := mockTargetTemplates[i%len(mockTargetTemplates)]
		m.targets = append(m.targets, mockTarget{
			id:     i + 1,
			name:   tmpl.Name,
			cx:     d.MinX + d.Width()*(0.25+0.5*m.rng.Float64()),
			cy:     d.MinY + d.Height()*(0.25+0.5*m.rng.Float64()),
			ax:     d.Width() * (0.1 + 0.15*m.rng.Float64()),
			ay:     d.Height() * (0.1 + 0.15*m.rng.Float64()),
			speedX: tmpl.SpeedX,
			speedY: tmpl.SpeedY,
			phase:  m.rng.Float64() * 2 * math.Pi,
			active: true,
		})
	}
	return m
}

// Handler returns the device's HTTP surface.
func (m *Mock) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get(config.DeviceZonesPath, m.handleZones)
	r.Post(config.DeviceUpdatePath, m.handleUpdate)
	r.Get(config.DeviceFeedPath, m.handleFeed)
	return r
}

// Run advances the simulation until ctx is cancelled.
func (m *Mock) Run(ctx context.Context) {
	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeClients()
			return
		case <-ticker.Chan():
			m.Step()
		}
	}
}

// Step advances every target by one tick and broadcasts its position.
// Inactive targets report the (0,0) sentinel.
func (m *Mock) Step() []room.Point {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.t += m.interval.Seconds()
	points := make([]room.Point, 0, len(m.targets))
	for i := range m.targets {
		tg := &m.targets[i]

		// Targets occasionally leave and re-enter the field of view.
		if m.rng.Float64() < 0.005 {
			tg.active = !tg.active
		}
		if !tg.active {
			points = append(points, room.Point{ID: tg.id})
			continue
		}

		x := tg.cx + tg.ax*math.Sin(m.t*tg.speedX+tg.phase) + (m.rng.Float64()-0.5)*40
		y := tg.cy + tg.ay*math.Cos(m.t*tg.speedY+tg.phase) + (m.rng.Float64()-0.5)*40
		points = append(points, room.Point{
			ID: tg.id,
			X:  math.Round(m.domain.ClampX(x)),
			Y:  math.Round(m.domain.ClampY(y)),
		})
	}

	m.broadcast(points)
	m.trackOccupancy(points)
	return points
}

// Zones returns the stored zone set.
func (m *Mock) Zones() []dispatch.ZonePayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]dispatch.ZonePayload(nil), m.zones...)
}

// Clients returns the number of connected feed clients.
func (m *Mock) Clients() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

func (m *Mock) handleZones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, m.Zones())
}

func (m *Mock) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var zones []dispatch.ZonePayload
	if err := json.NewDecoder(r.Body).Decode(&zones); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if len(zones) > config.MaxZones {
		zones = zones[:config.MaxZones]
	}
	if zones == nil {
		zones = []dispatch.ZonePayload{}
	}

	m.mu.Lock()
	m.zones = zones
	m.occupancy = make(map[int]int)
	m.mu.Unlock()

	log.Info().Int("zones", len(zones)).Msg("mock device zones updated")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (m *Mock) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("mock feed upgrade failed")
		return
	}

	m.mu.Lock()
	m.clients[conn] = struct{}{}
	n := len(m.clients)
	m.mu.Unlock()
	log.Info().Str("remote", r.RemoteAddr).Int("clients", n).Msg("mock feed client connected")

	// Drain until the client goes away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		m.mu.Lock()
		delete(m.clients, conn)
		m.mu.Unlock()
		conn.Close()
		log.Info().Str("remote", r.RemoteAddr).Msg("mock feed client disconnected")
	}()
}

// broadcast writes one message per point to every client. Caller holds mu.
func (m *Mock) broadcast(points []room.Point) {
	for conn := range m.clients {
		for _, pt := range points {
			conn.SetWriteDeadline(time.Now().Add(time.Second))
			if err := conn.WriteJSON(pt); err != nil {
				log.Warn().Err(err).Msg("mock feed write failed, dropping client")
				delete(m.clients, conn)
				conn.Close()
				break
			}
		}
	}
}

// trackOccupancy logs zone occupancy changes using the firmware's inclusive
// hit test. Caller holds mu.
func (m *Mock) trackOccupancy(points []room.Point) {
	zones := make([]room.Zone, len(m.zones))
	for i, z := range m.zones {
		zones[i] = room.Zone{ID: z.ID, Rect: z.Rect()}
	}
	occ := room.Occupancy(zones, points)
	for _, z := range zones {
		if occ[z.ID] != m.occupancy[z.ID] {
			log.Info().Int("zone", z.ID).Int("targets", occ[z.ID]).Msg("zone occupancy changed")
		}
	}
	m.occupancy = occ
}

func (m *Mock) closeClients() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
		conn.Close()
		delete(m.clients, conn)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

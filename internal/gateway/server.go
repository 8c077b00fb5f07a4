// Package gateway is the local intermediary between browser or terminal
// clients and the sensor: it clamps zone updates to the room and forwards
// them, and remembers the last zone set per device.
package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"zone-radar.klederson.com/internal/config"
	"zone-radar.klederson.com/internal/device"
	"zone-radar.klederson.com/internal/dispatch"
	"zone-radar.klederson.com/internal/room"
)

// Upstream is the device side of the gateway.
type Upstream interface {
	Fetch(ctx context.Context) ([]room.Rect, error)
	Push(ctx context.Context, zones []dispatch.ZonePayload) error
}

// UpstreamFactory builds the upstream for a device address.
type UpstreamFactory func(addr string) Upstream

// Server serves the zone API.
type Server struct {
	store         *Store
	upstream      UpstreamFactory
	defaultDevice string
	domain        room.Domain
}

// Option configures a Server.
type Option func(*Server)

// WithUpstream overrides how device clients are built.
func WithUpstream(f UpstreamFactory) Option {
	return func(s *Server) { s.upstream = f }
}

// WithStore shares a store with the caller.
func WithStore(st *Store) Option {
	return func(s *Server) { s.store = st }
}

// NewServer creates a gateway. Requests without a device parameter go to
// defaultDevice.
func NewServer(defaultDevice string, opts ...Option) *Server {
	s := &Server{
		store:         NewStore(),
		defaultDevice: defaultDevice,
		domain:        room.DefaultDomain(),
		upstream: func(addr string) Upstream {
			return device.NewClient(addr, &http.Client{Timeout: config.FetchTimeout})
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the server's zone store.
func (s *Server) Store() *Store { return s.store }

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get(config.GatewayZonesPath, s.handleGetZones)
	r.Post(config.GatewayZonesPath, s.handlePostZones)

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// requestLogger logs one line per request with zerolog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"zone-radar.klederson.com/internal/config"
	"zone-radar.klederson.com/internal/dispatch"
	"zone-radar.klederson.com/internal/room"
)

// envelope is the JSON body of every non-list response.
type envelope struct {
	Message string                 `json:"message"`
	Error   string                 `json:"error,omitempty"`
	Zones   []dispatch.ZonePayload `json:"zones,omitempty"`
}

// zoneIn is one zone as posted by a client. Coordinates may be fractional
// and out of range; they are clamped and rounded before forwarding.
type zoneIn struct {
	ID int `json:"id"`
	room.Rect
}

var errNoDevice = errors.New("no device address")

// sanitize limits zones to the room and to config.MaxZones entries and
// rounds every coordinate. Zones without an id get their position.
func sanitize(zones []zoneIn, d room.Domain) []dispatch.ZonePayload {
	if len(zones) > config.MaxZones {
		zones = zones[:config.MaxZones]
	}
	out := make([]room.Zone, 0, len(zones))
	for i, z := range zones {
		id := z.ID
		if id == 0 {
			id = i + 1
		}
		out = append(out, room.Zone{ID: id, Rect: d.ClampRect(z.Rect).Rounded()})
	}
	return dispatch.Payload(out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"devices": s.store.Devices(),
	})
}

func (s *Server) handleGetZones(w http.ResponseWriter, r *http.Request) {
	addr, err := s.deviceFor(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "device required", Error: err.Error()})
		return
	}

	rects, err := s.upstream(addr).Fetch(r.Context())
	if err != nil {
		log.Error().Err(err).Str("device", addr).Msg("fetch zones from device failed")
		writeJSON(w, http.StatusInternalServerError, envelope{
			Message: "failed to fetch zones from device",
			Error:   err.Error(),
			Zones:   s.store.Get(addr),
		})
		return
	}

	in := make([]zoneIn, len(rects))
	for i, rc := range rects {
		in[i] = zoneIn{Rect: rc}
	}
	zones := sanitize(in, s.domain)
	s.store.Replace(addr, zones)
	writeJSON(w, http.StatusOK, zones)
}

func (s *Server) handlePostZones(w http.ResponseWriter, r *http.Request) {
	addr, err := s.deviceFor(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "device required", Error: err.Error()})
		return
	}

	var in []zoneIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid zone list", Error: err.Error()})
		return
	}

	zones := sanitize(in, s.domain)
	s.store.Replace(addr, zones)

	if err := s.upstream(addr).Push(r.Context(), zones); err != nil {
		log.Error().Err(err).Str("device", addr).Int("zones", len(zones)).Msg("forward zones to device failed")
		writeJSON(w, http.StatusInternalServerError, envelope{
			Message: "failed to update device",
			Error:   err.Error(),
			Zones:   zones,
		})
		return
	}

	log.Info().Str("device", addr).Int("zones", len(zones)).Msg("zones forwarded")
	writeJSON(w, http.StatusOK, envelope{Message: fmt.Sprintf("%d zones updated", len(zones))})
}

func (s *Server) deviceFor(r *http.Request) (string, error) {
	if addr := r.URL.Query().Get("device"); addr != "" {
		return addr, nil
	}
	if s.defaultDevice != "" {
		return s.defaultDevice, nil
	}
	return "", errNoDevice
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

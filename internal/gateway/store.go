package gateway

import (
	"sync"

	"zone-radar.klederson.com/internal/dispatch"
)

// Store holds the last known zone set per device address.
type Store struct {
	mu    sync.RWMutex
	zones map[string][]dispatch.ZonePayload
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{zones: make(map[string][]dispatch.ZonePayload)}
}

// Get returns a copy of the zones last seen for device. Never nil.
func (s *Store) Get(device string) []dispatch.ZonePayload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]dispatch.ZonePayload{}, s.zones[device]...)
}

// Replace records zones as the last known set for device.
func (s *Store) Replace(device string, zones []dispatch.ZonePayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zones[device] = append([]dispatch.ZonePayload(nil), zones...)
}

// Devices returns the number of devices with a recorded zone set.
func (s *Store) Devices() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.zones)
}

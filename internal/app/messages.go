package app

import (
	"time"

	"zone-radar.klederson.com/internal/dispatch"
	"zone-radar.klederson.com/internal/session"
)

// TickMsg triggers a frame update for animation.
type TickMsg time.Time

// SelectDeviceMsg switches the session to a device address.
type SelectDeviceMsg struct {
	Addr string
}

// ZonesFetchedMsg carries the outcome of a zone fetch.
type ZonesFetchedMsg session.FetchResult

// PushResultMsg reports a finished zone push.
type PushResultMsg dispatch.Result

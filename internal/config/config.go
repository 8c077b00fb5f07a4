package config

import "time"

const (
	// Physical room domain (device units, millimetres)
	MinX = -4000.0
	MaxX = 4000.0
	MinY = 1.0
	MaxY = 6000.0 // Y axis points away from the sensor

	// Zones
	MaxZones        = 3
	DefaultZoneSize = 2000.0 // Physical units per side for new zones
	MinExtentPx     = 20.0   // Smallest on-canvas zone extent during resize

	// Terminal canvas: each cell is treated as a block of virtual pixels
	CellWidthPx  = 8
	CellHeightPx = 16

	// Display
	TargetFPS     = 30
	PulseInterval = 500 * time.Millisecond // Feed indicator animation step
	LatencyWindow = 32                     // Push round-trip samples kept for the sparkline

	// Network
	PushTimeout      = 5 * time.Second
	FetchTimeout     = 5 * time.Second
	FeedDialTimeout  = 5 * time.Second
	FeedBackoffMin   = 500 * time.Millisecond
	FeedBackoffMax   = 10 * time.Second
	FeedReadLimit    = 4096
	MockTickInterval = 200 * time.Millisecond
	MockTargets      = 3

	// Device endpoints
	DeviceZonesPath  = "/zones"
	DeviceUpdatePath = "/updateZones"
	DeviceFeedPath   = "/ws"
	GatewayZonesPath = "/api/zones"

	// App
	AppName    = "ZONE-RADAR"
	AppVersion = "1.0"
)

// IDPolicy selects how a newly created zone gets its identifier.
type IDPolicy string

const (
	// IDByCount assigns count+1, falling back to the lowest free id on collision.
	IDByCount IDPolicy = "count"
	// IDByPosition renumbers every zone as index+1 after each set mutation.
	IDByPosition IDPolicy = "position"
	// IDLowestFree assigns the smallest unused positive id.
	IDLowestFree IDPolicy = "lowest-free"
)

// Valid reports whether p is one of the known policies.
func (p IDPolicy) Valid() bool {
	switch p {
	case IDByCount, IDByPosition, IDLowestFree:
		return true
	}
	return false
}

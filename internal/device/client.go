// Package device talks to the presence sensor: its zone endpoints over HTTP,
// its live target feed over a websocket, and a simulated device for demos.
package device

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"zone-radar.klederson.com/internal/config"
	"zone-radar.klederson.com/internal/dispatch"
	"zone-radar.klederson.com/internal/room"
)

// BaseURL normalizes a device address. A bare host or host:port gets the
// http scheme; a trailing slash is dropped.
func BaseURL(addr string) string {
	addr = strings.TrimRight(strings.TrimSpace(addr), "/")
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	return "http://" + addr
}

// FeedURL returns the websocket URL of the device's live target feed.
func FeedURL(addr string) string {
	base := BaseURL(addr)
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	default:
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + config.DeviceFeedPath
}

// Client reads and replaces the zone set stored on a device.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the device at addr. A nil httpClient uses
// http.DefaultClient; request deadlines come from the caller's context.
func NewClient(addr string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: BaseURL(addr), http: httpClient}
}

// Fetch returns the zones currently stored on the device.
func (c *Client) Fetch(ctx context.Context) ([]room.Rect, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+config.DeviceZonesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build zones request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var rects []room.Rect
	if err := json.NewDecoder(resp.Body).Decode(&rects); err != nil {
		return nil, fmt.Errorf("decode zones: %w", err)
	}
	return rects, nil
}

// Push replaces the device's zone set.
func (c *Client) Push(ctx context.Context, zones []dispatch.ZonePayload) error {
	return postJSON(ctx, c.http, c.base+config.DeviceUpdatePath, zones)
}

func postJSON(ctx context.Context, hc *http.Client, url string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode zones: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("device answered %d", e.Code)
	}
	return fmt.Sprintf("device answered %d: %s", e.Code, e.Body)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}

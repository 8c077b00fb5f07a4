package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"zone-radar.klederson.com/internal/config"
	"zone-radar.klederson.com/internal/device"
	"zone-radar.klederson.com/internal/dispatch"
	"zone-radar.klederson.com/internal/room"
)

// Client reaches a device's zones through a gateway.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for deviceAddr behind the gateway at
// gatewayAddr. A nil httpClient uses http.DefaultClient.
func NewClient(gatewayAddr, deviceAddr string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	q := url.Values{"device": []string{deviceAddr}}
	return &Client{
		endpoint: device.BaseURL(gatewayAddr) + config.GatewayZonesPath + "?" + q.Encode(),
		http:     httpClient,
	}
}

// Fetch returns the device's zones as reported by the gateway.
func (c *Client) Fetch(ctx context.Context) ([]room.Rect, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build zones request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeFailure(resp)
	}
	var rects []room.Rect
	if err := json.NewDecoder(resp.Body).Decode(&rects); err != nil {
		return nil, fmt.Errorf("decode zones: %w", err)
	}
	return rects, nil
}

// Push sends a replacement zone set through the gateway.
func (c *Client) Push(ctx context.Context, zones []dispatch.ZonePayload) error {
	body, err := json.Marshal(zones)
	if err != nil {
		return fmt.Errorf("encode zones: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeFailure(resp)
	}
	return nil
}

// decodeFailure turns a gateway error envelope into a StatusError.
func decodeFailure(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var env envelope
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &env) == nil && env.Message != "" {
		msg = env.Message
		if env.Error != "" {
			msg += ": " + env.Error
		}
	}
	return &device.StatusError{Code: resp.StatusCode, Body: msg}
}

package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"zone-radar.klederson.com/internal/config"
	"zone-radar.klederson.com/internal/room"
)

// Sender receives feed events. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// PointMsg carries one target position from the feed.
type PointMsg struct {
	Gen   int
	Point room.Point
}

// FeedOpenedMsg is sent when the websocket connects.
type FeedOpenedMsg struct {
	Gen int
}

// FeedClosedMsg is sent when the websocket drops or cannot be reached.
type FeedClosedMsg struct {
	Gen int
	Err error
}

// ErrMalformedPoint is returned by DecodePoint for messages that are not a
// complete {id, x, y} object.
var ErrMalformedPoint = errors.New("malformed point message")

// DecodePoint parses one feed message.
func DecodePoint(data []byte) (room.Point, error) {
	var raw struct {
		ID *float64 `json:"id"`
		X  *float64 `json:"x"`
		Y  *float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return room.Point{}, fmt.Errorf("%w: %v", ErrMalformedPoint, err)
	}
	if raw.ID == nil || raw.X == nil || raw.Y == nil {
		return room.Point{}, ErrMalformedPoint
	}
	return room.Point{ID: int(*raw.ID), X: *raw.X, Y: *raw.Y}, nil
}

// Feed keeps a websocket to the device open and forwards target positions.
// It reconnects with capped exponential backoff until stopped. Every event
// carries the generation it was created with so a receiver can drop events
// from a previous device.
type Feed struct {
	url    string
	gen    int
	sender Sender
	clock  clockwork.Clock
	dialer *websocket.Dialer

	backoffMin time.Duration
	backoffMax time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithFeedClock overrides the clock used for backoff.
func WithFeedClock(c clockwork.Clock) FeedOption {
	return func(f *Feed) { f.clock = c }
}

// WithBackoff overrides the reconnect delay bounds.
func WithBackoff(min, max time.Duration) FeedOption {
	return func(f *Feed) {
		f.backoffMin = min
		f.backoffMax = max
	}
}

// NewFeed creates a feed for the device at addr. Call Start to connect.
func NewFeed(addr string, gen int, sender Sender, opts ...FeedOption) *Feed {
	f := &Feed{
		url:        FeedURL(addr),
		gen:        gen,
		sender:     sender,
		clock:      clockwork.NewRealClock(),
		dialer:     &websocket.Dialer{HandshakeTimeout: config.FeedDialTimeout},
		backoffMin: config.FeedBackoffMin,
		backoffMax: config.FeedBackoffMax,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL returns the websocket URL the feed dials.
func (f *Feed) URL() string { return f.url }

// Start runs the feed in the background.
func (f *Feed) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	f.mu.Lock()
	f.cancel = cancel
	f.done = make(chan struct{})
	f.mu.Unlock()

	go f.loop(ctx)
}

// Stop closes the connection. It does not wait for the feed goroutine,
// which may be blocked handing an event to the Sender; such late events carry
// the old generation.
func (f *Feed) Stop() {
	f.mu.Lock()
	cancel := f.cancel
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the feed goroutine has exited.
func (f *Feed) Wait() {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (f *Feed) loop(ctx context.Context) {
	defer close(f.done)

	backoff := f.backoffMin
	reported := false
	for {
		err := f.session(ctx)
		if ctx.Err() != nil {
			return
		}

		if err != nil && !errors.Is(err, errFeedDial) {
			// Connection was up and dropped.
			backoff = f.backoffMin
			reported = false
		}
		if !reported {
			f.send(FeedClosedMsg{Gen: f.gen, Err: err})
			reported = true
		}

		log.Debug().Err(err).Str("url", f.url).Dur("retry_in", backoff).Msg("feed reconnect scheduled")
		select {
		case <-ctx.Done():
			return
		case <-f.clock.After(backoff):
		}

		backoff *= 2
		if backoff > f.backoffMax {
			backoff = f.backoffMax
		}
	}
}

var errFeedDial = errors.New("feed dial failed")

// session dials once and reads until the connection fails.
func (f *Feed) session(ctx context.Context) error {
	conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", errFeedDial, err)
	}
	conn.SetReadLimit(config.FeedReadLimit)

	defer conn.Close()

	// Unblock ReadMessage when the feed is stopped.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	log.Info().Str("url", f.url).Int("gen", f.gen).Msg("feed connected")
	f.send(FeedOpenedMsg{Gen: f.gen})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read feed: %w", err)
		}
		pt, err := DecodePoint(data)
		if err != nil {
			log.Warn().Err(err).Str("payload", string(data)).Msg("feed message dropped")
			continue
		}
		f.send(PointMsg{Gen: f.gen, Point: pt})
	}
}

func (f *Feed) send(msg tea.Msg) {
	if f.sender != nil {
		f.sender.Send(msg)
	}
}

package device

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"zone-radar.klederson.com/internal/dispatch"
	"zone-radar.klederson.com/internal/room"
)

type chanSender struct {
	ch chan tea.Msg
}

func newChanSender() *chanSender {
	return &chanSender{ch: make(chan tea.Msg, 64)}
}

func (s *chanSender) Send(msg tea.Msg) { s.ch <- msg }

func (s *chanSender) next(t *testing.T) tea.Msg {
	t.Helper()
	select {
	case msg := <-s.ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed event")
		return nil
	}
}

func TestURLs(t *testing.T) {
	tests := []struct {
		addr, base, feed string
	}{
		{"192.168.178.145", "http://192.168.178.145", "ws://192.168.178.145/ws"},
		{"10.0.0.2:8080/", "http://10.0.0.2:8080", "ws://10.0.0.2:8080/ws"},
		{"https://sensor.local", "https://sensor.local", "wss://sensor.local/ws"},
	}
	for _, tt := range tests {
		if got := BaseURL(tt.addr); got != tt.base {
			t.Errorf("BaseURL(%q) = %q, want %q", tt.addr, got, tt.base)
		}
		if got := FeedURL(tt.addr); got != tt.feed {
			t.Errorf("FeedURL(%q) = %q, want %q", tt.addr, got, tt.feed)
		}
	}
}

func TestClient_FetchAndPush(t *testing.T) {
	var pushed []dispatch.ZonePayload
	mux := http.NewServeMux()
	mux.HandleFunc("/zones", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"x1":-100,"y1":1,"x2":100,"y2":2000},{"id":7,"x1":0,"y1":5,"x2":10,"y2":50}]`))
	})
	mux.HandleFunc("/updateZones", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		json.NewDecoder(r.Body).Decode(&pushed)
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	rects, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []room.Rect{{X1: -100, Y1: 1, X2: 100, Y2: 2000}, {X1: 0, Y1: 5, X2: 10, Y2: 50}}
	if len(rects) != 2 || rects[0] != want[0] || rects[1] != want[1] {
		t.Errorf("rects = %+v, want %+v", rects, want)
	}

	payload := []dispatch.ZonePayload{{ID: 1, X1: 1, Y1: 1, X2: 4000, Y2: 4000}}
	if err := c.Push(context.Background(), payload); err != nil {
		t.Fatal(err)
	}
	if len(pushed) != 1 || pushed[0] != payload[0] {
		t.Errorf("device received %+v", pushed)
	}
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	_, err := c.Fetch(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable || se.Body != "busy" {
		t.Errorf("err = %v, want StatusError 503 busy", err)
	}
	if err := c.Push(context.Background(), nil); !errors.As(err, &se) {
		t.Errorf("push err = %v, want StatusError", err)
	}
}

func TestDecodePoint(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    room.Point
		wantErr bool
	}{
		{"complete", `{"id":2,"x":-350.5,"y":1200}`, room.Point{ID: 2, X: -350.5, Y: 1200}, false},
		{"sentinel", `{"id":3,"x":0,"y":0}`, room.Point{ID: 3}, false},
		{"missing y", `{"id":1,"x":5}`, room.Point{}, true},
		{"not json", `garbage`, room.Point{}, true},
		{"wrong type", `{"id":"a","x":1,"y":1}`, room.Point{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodePoint([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedPoint) {
				t.Errorf("err = %v, want ErrMalformedPoint", err)
			}
			if got != tt.want {
				t.Errorf("point = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFeed_StreamsFromMock(t *testing.T) {
	m := NewMock(WithSeed(1))
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	s := newChanSender()
	f := NewFeed(srv.URL, 4, s)
	f.Start(context.Background())
	defer func() {
		f.Stop()
		f.Wait()
	}()

	if msg, ok := s.next(t).(FeedOpenedMsg); !ok || msg.Gen != 4 {
		t.Fatalf("first event = %#v, want FeedOpenedMsg gen 4", msg)
	}

	deadline := time.Now().Add(2 * time.Second)
	for m.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("mock never registered the feed client")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sent := m.Step()
	for i, want := range sent {
		msg, ok := s.next(t).(PointMsg)
		if !ok {
			t.Fatalf("event %d is not a point", i)
		}
		if msg.Gen != 4 || msg.Point != want {
			t.Errorf("event %d = %+v, want %+v", i, msg, want)
		}
	}
}

func TestFeed_DropsMalformedMessages(t *testing.T) {
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"id":1}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		conn.WriteJSON(room.Point{ID: 1, X: 10, Y: 20})
		conn.ReadMessage()
	}))
	defer srv.Close()

	s := newChanSender()
	f := NewFeed(srv.URL, 1, s)
	f.Start(context.Background())
	defer func() {
		f.Stop()
		f.Wait()
	}()

	if _, ok := s.next(t).(FeedOpenedMsg); !ok {
		t.Fatal("expected FeedOpenedMsg")
	}
	msg, ok := s.next(t).(PointMsg)
	if !ok || msg.Point != (room.Point{ID: 1, X: 10, Y: 20}) {
		t.Errorf("event = %#v, want the one valid point", msg)
	}
}

func TestFeed_ReportsUnreachableOnce(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	clock := clockwork.NewFakeClock()
	s := newChanSender()
	f := NewFeed(addr, 2, s, WithFeedClock(clock), WithBackoff(time.Second, 4*time.Second))
	f.Start(context.Background())

	msg, ok := s.next(t).(FeedClosedMsg)
	if !ok || msg.Gen != 2 || msg.Err == nil {
		t.Fatalf("event = %#v, want FeedClosedMsg with error", msg)
	}

	clock.BlockUntil(1)
	clock.Advance(time.Second)
	clock.BlockUntil(1)

	select {
	case extra := <-s.ch:
		t.Errorf("unexpected second event %#v while still unreachable", extra)
	default:
	}

	f.Stop()
	f.Wait()
}

func TestMock_UpdateZones(t *testing.T) {
	m := NewMock(WithSeed(2))
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	rects, err := c.Fetch(context.Background())
	if err != nil || len(rects) != 0 {
		t.Fatalf("initial zones = %v, %v", rects, err)
	}

	payload := []dispatch.ZonePayload{
		{ID: 1, X1: -4000, Y1: 1, X2: 4000, Y2: 6000},
		{ID: 2}, {ID: 3}, {ID: 4},
	}
	if err := c.Push(context.Background(), payload); err != nil {
		t.Fatal(err)
	}
	if got := m.Zones(); len(got) != 3 {
		t.Errorf("stored %d zones, want 3", len(got))
	}

	pts := m.Step()
	if len(pts) != 3 {
		t.Fatalf("step produced %d points", len(pts))
	}
	d := room.DefaultDomain()
	for _, p := range pts {
		if p.Absent() {
			continue
		}
		if p.X < d.MinX || p.X > d.MaxX || p.Y < d.MinY || p.Y > d.MaxY {
			t.Errorf("point %+v outside the room", p)
		}
	}
}

func TestMock_RunStopsOnCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMock(WithSeed(3), WithMockClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	clock.BlockUntil(1)
	clock.Advance(time.Second)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

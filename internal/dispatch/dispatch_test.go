package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"zone-radar.klederson.com/internal/room"
)

type recordingPusher struct {
	mu    sync.Mutex
	calls [][]ZonePayload
	err   error
}

func (r *recordingPusher) Push(_ context.Context, zones []ZonePayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, zones)
	return r.err
}

func (r *recordingPusher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestPayload_RoundsAndStrips(t *testing.T) {
	zones := []room.Zone{
		{ID: 1, Rect: room.Rect{X1: 0.4, Y1: 1.5, X2: 3999.6, Y2: 4000}, Color: 2},
	}
	got := Payload(zones)
	want := ZonePayload{ID: 1, X1: 0, Y1: 2, X2: 4000, Y2: 4000}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Payload = %+v, want %+v", got, want)
	}

	data, err := json.Marshal(got[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"id":1,"x1":0,"y1":2,"x2":4000,"y2":4000}` {
		t.Errorf("json = %s", data)
	}
}

func TestPayload_EmptyIsArray(t *testing.T) {
	data, _ := json.Marshal(Payload(nil))
	if string(data) != "[]" {
		t.Errorf("empty payload = %s, want []", data)
	}
}

func TestLive_SuppressedInEditMode(t *testing.T) {
	p := &recordingPusher{}
	d := New(p)

	if d.Live([]room.Zone{{ID: 1}}, true) {
		t.Error("Live reported a push in edit mode")
	}
	d.Wait()
	if p.count() != 0 {
		t.Errorf("pusher called %d times, want 0", p.count())
	}
}

func TestLive_OnePushPerMutation(t *testing.T) {
	p := &recordingPusher{}
	d := New(p)

	for i := 0; i < 5; i++ {
		d.Live([]room.Zone{{ID: 1, Rect: room.Rect{X1: float64(i)}}}, false)
	}
	d.Wait()
	if p.count() != 5 {
		t.Errorf("pusher called %d times, want 5", p.count())
	}
}

func TestFinal_AlwaysPushes(t *testing.T) {
	p := &recordingPusher{}
	var mu sync.Mutex
	var results []Result
	d := New(p, WithResultHandler(func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}))

	if !d.Final(nil) {
		t.Fatal("Final did not push")
	}
	d.Wait()

	if p.count() != 1 {
		t.Fatalf("pusher called %d times, want 1", p.count())
	}
	if len(results) != 1 || results[0].Kind != KindFinal || results[0].Err != nil {
		t.Errorf("results = %+v", results)
	}
}

func TestPushErrorReported(t *testing.T) {
	boom := errors.New("device unreachable")
	p := &recordingPusher{err: boom}
	done := make(chan Result, 1)
	d := New(p, WithResultHandler(func(r Result) { done <- r }))

	d.Live(nil, false)
	d.Wait()
	if r := <-done; !errors.Is(r.Err, boom) {
		t.Errorf("result err = %v, want %v", r.Err, boom)
	}
}

func TestNilPusherDrops(t *testing.T) {
	d := New(nil)
	if d.Final(nil) {
		t.Error("push started without a pusher")
	}
	p := &recordingPusher{}
	d.SetPusher(p)
	d.Final(nil)
	d.Wait()
	if p.count() != 1 {
		t.Errorf("pusher called %d times after SetPusher", p.count())
	}
}

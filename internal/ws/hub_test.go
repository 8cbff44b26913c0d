package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestHubStopsBlockingAfterShutdown(t *testing.T) {
	h := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	returned := make(chan bool, 1)
	go func() {
		h.Disconnect(nil)
		returned <- h.Connect(nil)
	}()
	select {
	case ok := <-returned:
		if ok {
			t.Fatal("Connect accepted a client after shutdown")
		}
	case <-time.After(time.Second):
		t.Fatal("Disconnect blocked after shutdown")
	}
	if n := h.Count(); n != 0 {
		t.Fatalf("clients = %d", n)
	}
}

func TestPublishDropsWhenQueueFull(t *testing.T) {
	h := NewHub(zerolog.Nop())
	for i := 0; i < cap(h.Broadcast)+5; i++ {
		h.Publish(Event{Type: "sale_created", Action: "create"})
	}
	if len(h.Broadcast) != cap(h.Broadcast) {
		t.Fatalf("queued = %d", len(h.Broadcast))
	}

	var evt Event
	if err := json.Unmarshal(<-h.Broadcast, &evt); err != nil {
		t.Fatal(err)
	}
	if evt.Type != "sale_created" || evt.At.IsZero() {
		t.Fatalf("event = %+v", evt)
	}
}

package ws

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHubBroadcastReachesClients(t *testing.T) {
	hub := NewHub()
	stop := make(chan struct{})
	defer close(stop)
	go hub.Run(stop)

	client := &Client{hub: hub, send: make(chan Event, 1)}
	hub.register <- client

	// Wait for registration to land
	deadline := time.After(time.Second)
	for hub.ClientCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("client never registered")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	hub.Broadcast(Event{Type: "stats_complete", Payload: json.RawMessage(`{"success":true}`)})

	select {
	case ev := <-client.send:
		if ev.Type != "stats_complete" {
			t.Errorf("event type = %s, want stats_complete", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast never reached client")
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	stop := make(chan struct{})
	defer close(stop)
	go hub.Run(stop)

	client := &Client{hub: hub, send: make(chan Event, 1)}
	hub.register <- client
	hub.unregister <- client

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel never closed")
	}

	if hub.ClientCount() != 0 {
		t.Errorf("client count = %d, want 0", hub.ClientCount())
	}
}

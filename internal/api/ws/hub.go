package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event is one pipeline run update pushed to connected dashboards
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Hub maintains the set of active clients and fans pipeline events out to
// them
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run drives the hub until the stop channel closes
func (h *Hub) Run(stop <-chan struct{}) {
	log.Println("[ws-hub] ✓ Started")

	for {
		select {
		case <-stop:
			h.shutdown()
			return
		case c := <-h.register:
			h.registerClient(c)
		case c := <-h.unregister:
			h.unregisterClient(c)
		case ev := <-h.broadcast:
			h.broadcastEvent(ev)
		}
	}
}

// Broadcast queues an event for all clients. Drops when the buffer is full
// rather than blocking the publisher.
func (h *Hub) Broadcast(ev Event) {
	select {
	case h.broadcast <- ev:
	default:
		log.Println("[ws-hub] ⚠ Broadcast buffer full, dropping event")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true
	log.Printf("[ws-hub] Client connected (total: %d)", len(h.clients))
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		log.Printf("[ws-hub] Client disconnected (total: %d)", len(h.clients))
	}
}

func (h *Hub) broadcastEvent(ev Event) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- ev:
		default:
			// Slow consumer; cut it loose instead of backing everyone up
			log.Println("[ws-hub] ⚠ Client buffer full, disconnecting")
			go func(slow *Client) { h.unregister <- slow }(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	log.Printf("[ws-hub] Shutting down (%d active clients)", len(h.clients))
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

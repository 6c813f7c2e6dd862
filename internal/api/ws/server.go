package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/publisher"
)

const streamBlock = 2 * time.Second

// Server bridges the pipeline's Redis streams to websocket clients. Each
// instance tails the streams independently, so every connected dashboard
// sees every run event.
type Server struct {
	port   string
	hub    *Hub
	redis  *redis.Client
	server *http.Server
	stop   chan struct{}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Run events carry no secrets; dashboards connect from anywhere
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewServer creates a websocket server over an existing Redis client
func NewServer(port string, redisClient *redis.Client) *Server {
	hub := NewHub()

	mux := http.NewServeMux()
	s := &Server{
		port:  port,
		hub:   hub,
		redis: redisClient,
		stop:  make(chan struct{}),
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/ws/health", s.serveHealth)

	return s
}

// Start runs the hub, the stream tails and the HTTP listener. Blocks until
// the listener exits.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(s.stop)

	streams := map[string]string{
		publisher.StreamIngest:  "ingest_complete",
		publisher.StreamProcess: "process_complete",
		publisher.StreamStats:   "stats_complete",
	}
	for stream, eventType := range streams {
		go s.tailStream(ctx, stream, eventType)
	}

	log.Printf("[ws] Listening on :%s", s.port)
	return s.server.ListenAndServe()
}

// Shutdown stops the hub and the HTTP listener
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stop)
	return s.server.Shutdown(ctx)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] ⚠ Upgrade failed: %v", err)
		return
	}

	client := newClient(s.hub, conn)
	s.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"clients": s.hub.ClientCount(),
	})
}

// tailStream follows one Redis stream from its tail and rebroadcasts each
// entry to the hub
func (s *Server) tailStream(ctx context.Context, stream, eventType string) {
	log.Printf("[ws] Tailing stream %s", stream)

	lastID := "$"
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		default:
		}

		results, err := s.redis.XRead(ctx, &redis.XReadArgs{
			Streams: []string{stream, lastID},
			Count:   100,
			Block:   streamBlock,
		}).Result()

		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			log.Printf("[ws] ⚠ Stream read error (%s): %v", stream, err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		for _, res := range results {
			for _, msg := range res.Messages {
				lastID = msg.ID
				data, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}
				s.hub.Broadcast(Event{
					Type:      eventType,
					Payload:   json.RawMessage(data),
					Timestamp: time.Now(),
				})
			}
		}
	}
}

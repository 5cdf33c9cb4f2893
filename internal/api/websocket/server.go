package websocket

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/fortuna/courtside/internal/predictions"
	"github.com/fortuna/courtside/internal/publisher"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ResolverFunc returns the team resolver current for a request.
type ResolverFunc func(ctx context.Context) predictions.Resolver

// Snapshot is the message pushed to prediction subscribers.
type Snapshot struct {
	Type     string                 `json:"type"`
	Source   string                 `json:"source"`
	Metadata predictions.Metadata   `json:"metadata"`
	Next     *predictions.Matchup   `json:"next,omitempty"`
	Table    []predictions.TableRow `json:"table"`
	SentAt   time.Time              `json:"sent_at"`
}

// Server represents the WebSocket server
type Server struct {
	server    *http.Server
	hub       *Hub
	store     *predictions.Store
	resolver  ResolverFunc
	publisher publisher.Publisher
	now       func() time.Time
}

// NewServer creates a new WebSocket server. pub may be nil.
func NewServer(store *predictions.Store, resolver ResolverFunc, pub publisher.Publisher) *Server {
	if pub == nil {
		pub = publisher.Nop{}
	}
	s := &Server{
		hub:       NewHub(),
		store:     store,
		resolver:  resolver,
		publisher: pub,
		now:       time.Now,
	}
	return s
}

// Handler returns the websocket routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/predictions", s.handlePredictions)
	mux.HandleFunc("/ws/health", s.handleHealth)
	return mux
}

// Run starts the hub and relays feed reloads until ctx ends.
func (s *Server) Run(ctx context.Context) {
	updates := s.store.Subscribe()
	defer s.store.Unsubscribe(updates)
	go s.hub.Run()
	defer s.hub.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case feed := <-updates:
			s.publishFeed(ctx, feed)
		}
	}
}

func (s *Server) publishFeed(ctx context.Context, feed predictions.Feed) {
	msg, err := s.snapshot(ctx, feed)
	if err != nil {
		log.Printf("⚠️  encoding predictions snapshot: %v", err)
		return
	}
	s.hub.Broadcast(msg)

	if err := s.publisher.PublishPredictionFeed(ctx, map[string]interface{}{
		"source":   feed.Source,
		"metadata": feed.Metadata,
	}); err != nil {
		log.Printf("⚠️  Failed to publish prediction feed: %v", err)
	}
}

func (s *Server) snapshot(ctx context.Context, feed predictions.Feed) ([]byte, error) {
	r := s.resolver(ctx)
	return json.Marshal(Snapshot{
		Type:     "predictions",
		Source:   feed.Source,
		Metadata: feed.Metadata,
		Next:     predictions.NextMatchup(feed, s.now(), r),
		Table:    predictions.Table(feed, r),
		SentAt:   s.now().UTC(),
	})
}

// Start starts the WebSocket server
func (s *Server) Start(port string) error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: s.Handler(),
	}

	log.Printf("WebSocket server listening on :%s", port)
	return s.server.ListenAndServe()
}

// handlePredictions streams prediction snapshots: one on connect, then
// one per feed reload.
func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 16),
	}

	// The current feed goes out first. It is built here, off the hub
	// goroutine, since resolving logos may hit the cache or database.
	if msg, err := s.snapshot(r.Context(), s.store.Current()); err != nil {
		log.Printf("⚠️  encoding predictions snapshot: %v", err)
	} else {
		client.offer(msg)
	}

	if !s.hub.Register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

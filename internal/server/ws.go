package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// feedClient wraps a websocket connection with a write lock. Writes come
// from both the HTTP goroutine (initial message) and the pipeline goroutine
// (broadcasts), and gorilla/websocket forbids concurrent writers on one
// connection.
type feedClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *feedClient) send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// FeedHandler pushes the displayed gesture to WebSocket clients whenever it
// changes.
type FeedHandler struct {
	app     *app.App
	clients map[*feedClient]bool
	mu      sync.RWMutex
}

// NewFeedHandler creates a FeedHandler subscribed to the application's
// gesture changes.
func NewFeedHandler(a *app.App) *FeedHandler {
	h := &FeedHandler{
		app:     a,
		clients: make(map[*feedClient]bool),
	}
	a.Subscribe(h.broadcast)
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	client := &feedClient{conn: conn}

	// New clients immediately learn the current gesture. Sent before the
	// client is registered so a concurrent broadcast cannot interleave.
	if err := client.send(feedMessage(h.app.CurrentGesture())); err != nil {
		return
	}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast sends the new gesture to all connected clients. Clients whose
// write fails are dropped; their read loop unblocks when the connection
// closes.
func (h *FeedHandler) broadcast(gesture string) {
	msg := feedMessage(gesture)

	h.mu.RLock()
	clients := make([]*feedClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	var dead []*feedClient
	for _, c := range clients {
		if err := c.send(msg); err != nil {
			dead = append(dead, c)
		}
	}

	if len(dead) == 0 {
		return
	}

	h.mu.Lock()
	for _, c := range dead {
		delete(h.clients, c)
		c.conn.Close()
	}
	h.mu.Unlock()
}

func feedMessage(gesture string) []byte {
	msg, _ := json.Marshal(map[string]any{
		"gesture":   gesture,
		"timestamp": time.Now().UnixMilli(),
	})
	return msg
}

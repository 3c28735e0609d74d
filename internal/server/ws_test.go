package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/classify"
)

func newFeedFixture(t *testing.T) (*FeedHandler, *websocket.Conn) {
	t.Helper()

	a := app.New(app.Config{})
	h := NewFeedHandler(a)

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return h, conn
}

func readGesture(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}

	var msg struct {
		Gesture string `json:"gesture"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	return msg.Gesture
}

func (h *FeedHandler) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func waitForClients(t *testing.T, h *FeedHandler, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for h.clientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", h.clientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFeedHandler_InitialMessage(t *testing.T) {
	h, conn := newFeedFixture(t)

	// The current gesture arrives before the client is registered for
	// broadcasts, so broadcasts can never interleave with it.
	if got := readGesture(t, conn); got != classify.LabelNoHand {
		t.Errorf("initial gesture = %q, want %q", got, classify.LabelNoHand)
	}
	waitForClients(t, h, 1)

	h.broadcast(classify.LabelOpenHand)
	if got := readGesture(t, conn); got != classify.LabelOpenHand {
		t.Errorf("broadcast gesture = %q, want %q", got, classify.LabelOpenHand)
	}
}

func TestFeedHandler_ConcurrentBroadcasts(t *testing.T) {
	h, conn := newFeedFixture(t)

	readGesture(t, conn)
	waitForClients(t, h, 1)

	// Broadcasts arrive from the pipeline goroutine while the HTTP
	// goroutine may also be writing. Concurrent sends on one connection
	// must serialize rather than panic.
	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.broadcast(classify.LabelFist)
		}()
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if got := readGesture(t, conn); got != classify.LabelFist {
			t.Fatalf("message %d = %q, want %q", i, got, classify.LabelFist)
		}
	}
}

func TestFeedHandler_DropsDeadClients(t *testing.T) {
	h, conn := newFeedFixture(t)

	readGesture(t, conn)
	waitForClients(t, h, 1)

	// Kill the server side of the connection so the next write fails.
	h.mu.RLock()
	for c := range h.clients {
		c.conn.Close()
	}
	h.mu.RUnlock()

	h.broadcast(classify.LabelOpenHand)

	waitForClients(t, h, 0)
}

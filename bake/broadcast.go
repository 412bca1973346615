package bake

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/oceantracer/driftmap/engine"
)

// FrameFromEngine captures eng's current active ensemble into a Frame,
// the live equivalent of a recorded Snapshot.
func FrameFromEngine(eng *engine.Engine) Frame {
	snap := captureSnapshot(eng.SimDay(), eng)
	return Frame{Day: snap.Day, Particles: snap.Particles}
}

// Hub pushes Frames to every connected websocket client, the live push
// API behind "driftctl serve". Grounded on the teacher's own web-facing
// subsystem pattern of upgrading a connection once and then holding it
// open for server-initiated pushes.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub creates an empty Hub. AllowCORS controls whether the upgrader
// accepts connections from any origin, which a browser-based client
// running on a different port needs during local development.
func NewHub(allowCORS bool) *Hub {
	h := &Hub{clients: make(map[*websocket.Conn]bool)}
	if allowCORS {
		h.upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return h
}

// ServeHTTP upgrades the request to a websocket and registers the
// connection for future broadcasts. It blocks, discarding incoming
// messages, until the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends frame as JSON to every connected client, dropping any
// client whose write fails.
func (h *Hub) Broadcast(frame Frame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

package gateway

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/c360/secwatch/monitor"
)

const (
	writeTimeout = 10 * time.Second

	// streamEventCheckResult tags the events pushed to consoles.
	streamEventCheckResult = "check_result"
)

// streamEvent is the envelope written to WebSocket clients.
type streamEvent struct {
	Event   string         `json:"event"`
	Payload monitor.Result `json:"payload"`
}

// client is one connected console. The write mutex serializes all writes
// to the connection: gorilla/websocket panics on concurrent writes, and
// broadcasts arrive from multiple goroutines (scheduled checks, manual
// runs).
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) writeEvent(event streamEvent) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(event)
}

func (c *client) writeClose() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(time.Second))
}

// hub tracks connected WebSocket consoles and fans check results out to
// them. Slow or broken clients are dropped rather than blocking the
// broadcast.
type hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]*client
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Consoles connect from their own origin; auth happens upstream.
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*client),
	}
}

func (h *hub) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	h.mu.Lock()
	h.clients[conn] = &client{conn: conn}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("console connected", "remote", r.RemoteAddr, "clients", count)

	// Reader goroutine: consume control frames and detect disconnects.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// broadcast writes one check result to every connected console.
func (h *hub) broadcast(res monitor.Result) {
	event := streamEvent{Event: streamEventCheckResult, Payload: res}

	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.writeEvent(event); err != nil {
			h.logger.Warn("dropping console client", "error", err)
			h.drop(c.conn)
		}
	}
}

func (h *hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, exists := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()

	if exists {
		_ = conn.Close()
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.clients = make(map[*websocket.Conn]*client)
	h.mu.Unlock()

	for _, c := range targets {
		c.writeClose()
		_ = c.conn.Close()
	}
}

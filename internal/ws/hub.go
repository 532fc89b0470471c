// Package ws pushes timetable change signals to connected browser
// sessions over websockets. Clients treat each message as a cue to
// re-fetch display state; no request/response semantics exist on this
// channel.
package ws

import (
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/net/websocket"

	"millbook/internal/events"
	"millbook/internal/metrics"
)

const sendBuffer = 8

type client struct {
	id    string
	admin bool
	send  chan string
}

// Hub tracks connected sessions and fans change signals out to them.
// Sends never block: a slow client misses a signal rather than stalling
// the mutation that produced it.
type Hub struct {
	logger  zerolog.Logger
	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub constructs an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger:  logger.With().Str("component", "ws").Logger(),
		clients: make(map[string]*client),
	}
}

// Bind subscribes the hub to the event bus so committed mutations reach
// connected clients.
func (h *Hub) Bind(bus *events.Bus) {
	bus.Subscribe(events.TopicUpdate, h.Broadcast)
	bus.Subscribe(events.TopicAdminUpdate, h.Broadcast)
}

// Broadcast delivers a topic to every eligible client. The admin topic
// only reaches admin sessions; everything else reaches all sessions.
func (h *Hub) Broadcast(topic string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if topic == events.TopicAdminUpdate && !c.admin {
			continue
		}
		select {
		case c.send <- topic:
		default:
			// Client is not draining; it will re-sync on its next fetch.
		}
	}
}

// ClientCount returns the number of connected sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler upgrades requests to websocket sessions. Admin pages connect
// with ?role=admin to also receive the admin signal.
func (h *Hub) Handler() http.Handler {
	return websocket.Handler(h.serve)
}

func (h *Hub) serve(conn *websocket.Conn) {
	defer conn.Close()

	admin := false
	if req := conn.Request(); req != nil {
		admin = req.URL.Query().Get("role") == "admin"
	}

	c := &client{
		id:    uuid.NewString(),
		admin: admin,
		send:  make(chan string, sendBuffer),
	}
	h.add(c)
	defer h.remove(c)

	// Drain (and discard) anything the client writes, and use EOF to
	// detect disconnect.
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, conn)
		close(done)
	}()

	for {
		select {
		case topic := <-c.send:
			if err := websocket.Message.Send(conn, topic); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	metrics.IncConnectedClients()
	h.logger.Debug().Str("client", c.id).Bool("admin", c.admin).Msg("client connected")
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()

	metrics.DecConnectedClients()
	h.logger.Debug().Str("client", c.id).Msg("client disconnected")
}

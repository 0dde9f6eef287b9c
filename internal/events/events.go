// Package events fans accepted location updates out to connected WebSocket
// observers. Delivery is best-effort and at-most-once: a slow or dead
// observer is evicted, never allowed to block ingestion or other observers.
package events

import (
	"sync"
	"time"

	"github.com/fieldtrack/fieldtrack/internal/logger"
	"github.com/fieldtrack/fieldtrack/internal/model"
)

// Message types sent over the live channel
const (
	MessageTypeHello    = "hello"
	MessageTypeLocation = "location"
)

// Message is one frame on the live channel.
type Message struct {
	Type    string `json:"type"`
	TS      int64  `json:"ts,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// NewLocationMessage builds the frame broadcast for one committed report.
func NewLocationMessage(loc *model.CurrentLocation) Message {
	return Message{
		Type:    MessageTypeLocation,
		Payload: loc,
	}
}

func helloMessage() Message {
	return Message{
		Type: MessageTypeHello,
		TS:   time.Now().UnixMilli(),
	}
}

// Hub owns the set of connected clients and broadcasts messages to them.
// Register, Unregister and Publish all serialize on one mutex, so every
// client sees messages in global publish order; the per-client buffered
// channel keeps the scan itself non-blocking.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]bool
	log     *logger.Logger
}

// NewHub creates a new Hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		log:     log,
	}
}

// Register adds a client and immediately queues the hello handshake so the
// observer can detect liveness. The hello is the first frame the client
// receives: its channel is fresh and no publish can interleave while the
// hub lock is held.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	c.send <- helloMessage()
	total := len(h.clients)
	h.mu.Unlock()

	h.log.Info("websocket client connected", "client_id", c.id, "total_clients", total)
}

// Unregister removes a client. Safe to call more than once; a client already
// evicted by Publish is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.log.Info("websocket client disconnected", "client_id", c.id, "total_clients", total)
	}
}

// Publish queues msg for every connected client. A client whose buffer is
// full is dropped from future broadcasts; failures never propagate to the
// caller.
func (h *Hub) Publish(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var evicted []*Client
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Buffer full: the observer stopped draining. Evict it rather
			// than stall the broadcast.
			evicted = append(evicted, c)
		}
	}

	for _, c := range evicted {
		delete(h.clients, c)
		close(c.send)
		h.log.Warn("evicting unresponsive websocket client", "client_id", c.id, "total_clients", len(h.clients))
	}
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client. Called on server shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

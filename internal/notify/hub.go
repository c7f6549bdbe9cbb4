// Package notify implements the geo-filtered fan-out hub for the notifier
// service. Connected clients register with a location and radius; event
// announcements are delivered only to clients whose circle contains the
// event location.
package notify

import (
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/buzzy/events-app/internal/geo"
)

// Connection represents a single WebSocket client connection with a write
// mutex for serializing outbound frames.
type Connection struct {
	ID      string   // subscriber ID (UUID)
	Conn    net.Conn // underlying TCP connection
	writeMu sync.Mutex
}

// WriteMessage sends a WebSocket text frame to this connection. The write
// mutex ensures that concurrent goroutines do not interleave frame bytes.
func (c *Connection) WriteMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsutil.WriteServerMessage(c.Conn, ws.OpText, data)
}

// Close closes the underlying network connection.
func (c *Connection) Close() error {
	return c.Conn.Close()
}

// Subscriber is a registered notifier client with its notification circle.
type Subscriber struct {
	Conn   *Connection
	Lat    float64
	Lng    float64
	Radius float64 // meters, already clamped
}

// Hub is a thread-safe registry of subscribers keyed by subscriber ID.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber
}

// NewHub creates an empty Hub ready for use.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]*Subscriber)}
}

// Add registers a subscriber under its connection ID. The radius is clamped
// to the allowed range.
func (h *Hub) Add(sub *Subscriber) {
	sub.Radius = geo.ClampRadius(sub.Radius)
	h.mu.Lock()
	h.subs[sub.Conn.ID] = sub
	h.mu.Unlock()
}

// Remove unregisters a subscriber by ID and closes its connection. Returns
// true if the subscriber was found and removed.
func (h *Hub) Remove(id string) bool {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()

	if ok {
		sub.Conn.Close()
	}
	return ok
}

// Count returns the current number of subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	n := len(h.subs)
	h.mu.RUnlock()
	return n
}

// BroadcastAll delivers msg to every subscriber regardless of location.
// Used for removal notices, which carry no coordinates.
func (h *Hub) BroadcastAll(msg []byte) int {
	h.mu.RLock()
	targets := make([]*Subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, sub := range targets {
		if err := sub.Conn.WriteMessage(msg); err != nil {
			h.Remove(sub.Conn.ID)
			continue
		}
		delivered++
	}
	return delivered
}

// Broadcast delivers msg to every subscriber whose circle contains the
// given coordinates. Subscribers whose write fails are removed; a dead
// connection stays dead.
func (h *Hub) Broadcast(lat, lng float64, msg []byte) int {
	h.mu.RLock()
	targets := make([]*Subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		if geo.Distance(lat, lng, sub.Lat, sub.Lng) <= sub.Radius {
			targets = append(targets, sub)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, sub := range targets {
		if err := sub.Conn.WriteMessage(msg); err != nil {
			h.Remove(sub.Conn.ID)
			continue
		}
		delivered++
	}
	return delivered
}

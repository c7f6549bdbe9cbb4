// Package client provides a reusable WebSocket load test client for the
// Buzzy notifier service. It connects using gobwas/ws (the same library the
// notifier uses), sends the location subscription frame, and tracks
// per-connection performance metrics.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Subscription is the frame sent after connecting to register the client's
// notification circle.
type Subscription struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Radius float64 `json:"radius"`
}

// Announcement mirrors the event.created payload the notifier fans out.
type Announcement struct {
	EventID  string  `json:"event_id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	StartsAt int64   `json:"starts_at"`
}

// Metrics tracks per-connection performance data.
type Metrics struct {
	ConnectLatency        time.Duration
	AnnouncementsReceived int
	Errors                int
}

// Client represents a single simulated subscriber connected to the notifier.
// It manages the WebSocket lifecycle and dispatches incoming announcements
// to a registered handler.
type Client struct {
	conn      net.Conn
	mu        sync.Mutex
	metrics   Metrics
	handler   func(Announcement, []byte)
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new load test client connected to the given WebSocket URL
// and subscribed at the given location. A background goroutine begins
// reading announcements immediately.
func New(ctx context.Context, url string, sub Subscription) (*Client, error) {
	start := time.Now()
	conn, _, _, err := ws.Dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	c := &Client{
		conn: conn,
		done: make(chan struct{}),
	}
	c.metrics.ConnectLatency = time.Since(start)

	if err := c.Send(sub); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	go c.readLoop()

	return c, nil
}

// Send sends a JSON message to the notifier. It is goroutine-safe.
func (c *Client) Send(msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return wsutil.WriteClientMessage(c.conn, ws.OpText, data)
}

// OnAnnouncement registers a handler invoked for each received announcement.
// The handler runs on the read loop goroutine so it should not block for
// extended periods. Registering a second handler replaces the first.
func (c *Client) OnAnnouncement(handler func(Announcement, []byte)) {
	c.handler = handler
}

// Close closes the connection and stops the read loop. It is safe to call
// multiple times.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// GetMetrics returns a copy of the client's metrics.
func (c *Client) GetMetrics() Metrics {
	return c.metrics
}

// readLoop continuously reads WebSocket frames from the notifier and
// dispatches announcements to the registered handler. It runs until the
// connection is closed or an unrecoverable error occurs.
func (c *Client) readLoop() {
	for {
		select {
		case <-c.done:
			return
		default:
		}

		data, err := wsutil.ReadServerText(c.conn)
		if err != nil {
			select {
			case <-c.done:
				// Connection was intentionally closed; do not count as error.
				return
			default:
			}
			c.metrics.Errors++
			return
		}

		var ann Announcement
		if err := json.Unmarshal(data, &ann); err != nil || ann.EventID == "" {
			// Error frames and removal notices are not announcements.
			continue
		}

		c.metrics.AnnouncementsReceived++

		if c.handler != nil {
			c.handler(ann, data)
		}
	}
}

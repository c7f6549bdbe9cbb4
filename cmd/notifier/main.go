package main

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"

	"github.com/buzzy/events-app/internal/event"
	"github.com/buzzy/events-app/internal/messaging"
	"github.com/buzzy/events-app/internal/metrics"
	"github.com/buzzy/events-app/internal/notify"
	"github.com/buzzy/events-app/internal/validation"
)

// subscribeRequest is the first frame a client sends after connecting,
// and may be re-sent later to move the notification circle.
type subscribeRequest struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Radius float64 `json:"radius"`
}

func main() {
	log.Println("Starting Buzzy notifier service...")

	listenAddr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		listenAddr = v
	}

	// NATS setup.
	natsConfig := messaging.DefaultNATSConfig()
	if v := os.Getenv("NATS_URL"); v != "" {
		natsConfig.URL = v
	}
	natsConfig.Name = "buzzy-notifier"

	natsClient, err := messaging.NewNATSClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	hub := notify.NewHub()

	// Fan out new events to subscribers whose circle contains them.
	err = natsClient.SubscribeEventCreated(func(data []byte) {
		var ann event.Announcement
		if err := json.Unmarshal(data, &ann); err != nil {
			log.Printf("[notifier] unmarshal announcement: %v", err)
			return
		}
		n := hub.Broadcast(ann.Lat, ann.Lng, data)
		log.Printf("[notifier] event=%s delivered to %d subscribers", ann.EventID, n)
	})
	if err != nil {
		log.Fatalf("failed to subscribe to event.created: %v", err)
	}

	// Removals carry no coordinates, so every subscriber gets them and
	// drops the pin client-side if it has one.
	err = natsClient.SubscribeEventRemoved(func(data []byte) {
		hub.BroadcastAll(data)
	})
	if err != nil {
		log.Fatalf("failed to subscribe to event.removed: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			log.Printf("[notifier] upgrade failed: %v", err)
			return
		}
		go serveClient(hub, conn)
	})

	go func() {
		log.Printf("Buzzy notifier service running")
		log.Printf("  listen_addr: %s", listenAddr)
		log.Printf("  nats_url:    %s", natsConfig.URL)
		if err := http.ListenAndServe(listenAddr, mux); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	natsClient.Close()
}

// serveClient reads subscription frames from a single client until the
// connection drops. The first frame must be a valid subscription; later
// frames move the circle.
func serveClient(hub *notify.Hub, conn net.Conn) {
	id := uuid.New().String()
	registered := false

	defer func() {
		if registered {
			hub.Remove(id)
			metrics.NotifierSubscribers.Dec()
		} else {
			conn.Close()
		}
		log.Printf("[notifier] subscriber %s disconnected (%d active)", id, hub.Count())
	}()

	wsConn := &notify.Connection{ID: id, Conn: conn}

	for {
		data, op, err := wsutil.ReadClientData(conn)
		if err != nil {
			return
		}
		if op != ws.OpText {
			continue
		}

		var req subscribeRequest
		if err := json.Unmarshal(data, &req); err != nil {
			writeError(wsConn, "Invalid subscription")
			if !registered {
				return
			}
			continue
		}
		if res := validation.ValidateLocation(req.Lat, req.Lng); !res.IsValid {
			writeError(wsConn, res.Error)
			if !registered {
				return
			}
			continue
		}

		hub.Add(&notify.Subscriber{
			Conn:   wsConn,
			Lat:    req.Lat,
			Lng:    req.Lng,
			Radius: req.Radius,
		})
		if !registered {
			registered = true
			metrics.NotifierSubscribers.Inc()
			log.Printf("[notifier] subscriber %s joined (%d active)", id, hub.Count())
		}
	}
}

func writeError(c *notify.Connection, msg string) {
	data, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return
	}
	if err := c.WriteMessage(data); err != nil {
		log.Printf("[notifier] write error frame: %v", err)
	}
}

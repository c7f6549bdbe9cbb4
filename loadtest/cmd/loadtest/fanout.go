package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/buzzy/events-app/loadtest/client"
	"github.com/buzzy/events-app/loadtest/stats"
)

// runFanout measures publish-to-delivery latency. It opens a pool of
// subscribers around a center point, then creates events through the API at
// a fixed rate and records how long each announcement takes to reach each
// subscriber.
func runFanout(args []string) {
	fs := flag.NewFlagSet("fanout", flag.ExitOnError)
	wsURL := fs.String("url", "ws://localhost:8081/ws", "Notifier WebSocket URL")
	apiURL := fs.String("api", "http://localhost:8080", "API base URL for creating events")
	subscribers := fs.Int("subscribers", 100, "Number of subscribers to open")
	events := fs.Int("events", 20, "Number of events to publish")
	rate := fs.Duration("rate", 500*time.Millisecond, "Delay between event publications")
	lat := fs.Float64("lat", 40.7128, "Center latitude")
	lng := fs.Float64("lng", -74.0060, "Center longitude")
	settle := fs.Duration("settle", 3*time.Second, "Wait after the last publish for stragglers")
	metricsURL := fs.String("metrics", "", "Prometheus metrics URL (optional)")
	fs.Parse(args)

	fmt.Printf("Fanout test: %d subscribers, %d events via %s\n",
		*subscribers, *events, *apiURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()

	if *metricsURL != "" {
		scraper := stats.NewScraper(*metricsURL, 2*time.Second)
		scraper.Start(ctx)
		defer scraper.Stop()
		collector.SetScraper(scraper)
	}

	// Publish times keyed by event ID, shared with all subscriber handlers.
	var publishMu sync.Mutex
	publishTimes := make(map[string]time.Time)

	// -----------------------------------------------------------------------
	// Open subscribers
	// -----------------------------------------------------------------------
	fmt.Println("\n--- Opening subscribers ---")

	clients := make([]*client.Client, 0, *subscribers)
	for i := 0; i < *subscribers; i++ {
		connCtx, connCancel := context.WithTimeout(ctx, 10*time.Second)
		c, err := client.New(connCtx, *wsURL, client.Subscription{
			Lat:    *lat,
			Lng:    *lng,
			Radius: 5000,
		})
		connCancel()
		if err != nil {
			collector.AddError()
			continue
		}
		c.OnAnnouncement(func(ann client.Announcement, _ []byte) {
			publishMu.Lock()
			published, ok := publishTimes[ann.EventID]
			publishMu.Unlock()
			if ok {
				collector.AddNotifyLatency(time.Since(published))
			}
		})
		collector.AddConnect(c.GetMetrics().ConnectLatency)
		clients = append(clients, c)
	}
	fmt.Printf("Opened %d/%d subscribers (%d errors)\n",
		len(clients), *subscribers, collector.ErrorCount())

	// -----------------------------------------------------------------------
	// Publish events
	// -----------------------------------------------------------------------
	fmt.Println("\n--- Publishing events ---")

	httpClient := &http.Client{Timeout: 10 * time.Second}
	published := 0

	for i := 0; i < *events; i++ {
		select {
		case <-ctx.Done():
			fmt.Println("\nInterrupted during publish phase.")
			i = *events
			continue
		default:
		}

		id, err := createEvent(ctx, httpClient, *apiURL, i, *lat, *lng)
		if err != nil {
			fmt.Printf("  [publish] event %d failed: %v\n", i+1, err)
			collector.AddError()
		} else {
			publishMu.Lock()
			publishTimes[id] = time.Now()
			publishMu.Unlock()
			published++
		}

		time.Sleep(*rate)
	}

	fmt.Printf("Published %d/%d events, settling for %s...\n", published, *events, *settle)
	time.Sleep(*settle)

	// -----------------------------------------------------------------------
	// Cleanup and report
	// -----------------------------------------------------------------------
	received := 0
	for _, c := range clients {
		received += c.GetMetrics().AnnouncementsReceived
		c.Close()
	}

	expected := published * len(clients)
	fmt.Printf("\nDeliveries: %d/%d expected\n", received, expected)
	collector.Report()
}

// createEvent posts a synthetic event to the API and returns its ID. Each
// event uses a distinct fingerprint so the per-creator rate limit does not
// throttle the test.
func createEvent(ctx context.Context, httpClient *http.Client, apiURL string, n int, lat, lng float64) (string, error) {
	starts := time.Now().Add(2 * time.Hour)
	body, err := json.Marshal(map[string]any{
		"title":     fmt.Sprintf("Pop-up gathering number %d", n+1),
		"category":  "other",
		"lat":       lat,
		"lng":       lng,
		"starts_at": starts.Format(time.RFC3339),
		"ends_at":   starts.Add(2 * time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL+"/v1/events", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-Fingerprint", fmt.Sprintf("loadtest-%d", n))

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", err
	}
	return created.ID, nil
}

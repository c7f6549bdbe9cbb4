package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/buzzy/events-app/internal/messaging"
	"github.com/buzzy/events-app/internal/metrics"
	"github.com/buzzy/events-app/internal/moderation"
)

func main() {
	log.Println("Starting Buzzy moderation service...")

	// NATS setup.
	natsConfig := messaging.DefaultNATSConfig()
	if v := os.Getenv("NATS_URL"); v != "" {
		natsConfig.URL = v
	}
	natsConfig.Name = "buzzy-moderator"

	natsClient, err := messaging.NewNATSClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	engine := moderation.NewEngine()

	// Subscribe to moderation check requests.
	err = natsClient.SubscribeModerationCheck(func(data []byte) {
		var req moderation.ModerationRequest
		if err := json.Unmarshal(data, &req); err != nil {
			log.Printf("[moderator] failed to unmarshal request: %v", err)
			return
		}

		start := time.Now()
		result := check(engine, &req)
		metrics.ModerationCheckLatency.Observe(time.Since(start).Seconds())

		if result.Flagged {
			metrics.ModerationChecksTotal.WithLabelValues("flagged").Inc()
			log.Printf("[moderator] FLAGGED submission=%s kind=%s reason=%q confidence=%.2f",
				req.SubmissionID, req.Kind, result.Reason, result.Confidence)
		} else {
			metrics.ModerationChecksTotal.WithLabelValues("clean").Inc()
			log.Printf("[moderator] CLEAN submission=%s kind=%s", req.SubmissionID, req.Kind)
		}

		respData, err := json.Marshal(result)
		if err != nil {
			log.Printf("[moderator] failed to marshal result: %v", err)
			return
		}
		if err := natsClient.PublishModerationResult(req.SubmissionID, respData); err != nil {
			log.Printf("[moderator] failed to publish result: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("failed to subscribe to moderation checks: %v", err)
	}

	// Metrics endpoint.
	metricsAddr := ":9093"
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		metricsAddr = v
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Printf("[moderator] metrics server: %v", err)
		}
	}()

	log.Printf("Buzzy moderation service running")
	log.Printf("  nats_url:     %s", natsConfig.URL)
	log.Printf("  metrics_addr: %s", metricsAddr)

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	natsClient.Close()
}

// check runs the moderation pass appropriate for the submission kind.
// Titles get the strict profanity check; feedback gets the weighted spam
// scorer.
func check(engine *moderation.Engine, req *moderation.ModerationRequest) moderation.ModerationResult {
	switch req.Kind {
	case moderation.KindFeedback:
		assessment := engine.IsLikelySpam(req.Text)
		reason := ""
		if len(assessment.Reasons) > 0 {
			reason = assessment.Reasons[0]
		}
		return moderation.ModerationResult{
			SubmissionID: req.SubmissionID,
			Flagged:      assessment.IsSpam,
			Reason:       reason,
			Confidence:   assessment.Confidence,
		}
	default:
		res := engine.CheckProfanity(req.Text)
		result := moderation.ModerationResult{
			SubmissionID: req.SubmissionID,
			Flagged:      !res.IsClean,
			Reason:       res.Reason,
		}
		if result.Flagged {
			result.Confidence = 1
		}
		return result
	}
}

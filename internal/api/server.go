// Package api implements the public HTTP API: event submission and
// discovery, RSVPs, abuse reports, and beta feedback. Every write path runs
// through validation, moderation, suspension, and rate limit checks before
// it touches storage.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/buzzy/events-app/internal/event"
	"github.com/buzzy/events-app/internal/feedback"
	"github.com/buzzy/events-app/internal/geo"
	"github.com/buzzy/events-app/internal/metrics"
	"github.com/buzzy/events-app/internal/moderation"
	"github.com/buzzy/events-app/internal/ratelimit"
	"github.com/buzzy/events-app/internal/report"
	"github.com/buzzy/events-app/internal/validation"
)

// fingerprintHeader carries the anonymous client fingerprint. The app
// generates it client-side; there are no accounts.
const fingerprintHeader = "X-Client-Fingerprint"

// maxFeedbackChars caps feedback submissions before any moderation runs.
const maxFeedbackChars = 5000

// EventStore is the subset of the event store the API uses.
type EventStore interface {
	Create(ctx context.Context, ev *event.Event) error
	Get(ctx context.Context, id string) (*event.Event, error)
	FindNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]event.Event, error)
	Hide(ctx context.Context, id string) error
	UpsertRSVP(ctx context.Context, eventID, userFp, status string) error
	CountRSVPs(ctx context.Context, eventID string) (int, error)
}

// ReportStore records abuse reports and counts recent ones per event.
type ReportStore interface {
	Create(ctx context.Context, r *report.Report) error
	CountRecent(ctx context.Context, eventID string, window time.Duration) (int, error)
}

// FeedbackStore persists beta feedback entries.
type FeedbackStore interface {
	Create(ctx context.Context, e *feedback.Entry) error
}

// Limiter throttles submissions per fingerprint.
type Limiter interface {
	Allow(ctx context.Context, identifier string, rule ratelimit.Rule) (bool, error)
}

// Standing tracks suspensions and strikes for creator fingerprints.
type Standing interface {
	IsSuspended(ctx context.Context, fingerprint string) (bool, int, string, error)
	Strike(ctx context.Context, fingerprint string, reason string) (bool, time.Duration, error)
}

// Publisher announces accepted and removed events to downstream services
// and queues submissions for async content review.
type Publisher interface {
	PublishEventCreated(data []byte) error
	PublishEventRemoved(data []byte) error
	PublishModerationRequest(data []byte) error
}

// Server wires the HTTP handlers to their dependencies.
type Server struct {
	events   EventStore
	reports  ReportStore
	feedback FeedbackStore
	limiter  Limiter
	standing Standing
	pub      Publisher
	engine   *moderation.Engine
	mux      *http.ServeMux
}

// NewServer constructs the API server and registers its routes.
func NewServer(events EventStore, reports ReportStore, fb FeedbackStore, limiter Limiter, standing Standing, pub Publisher) *Server {
	s := &Server{
		events:   events,
		reports:  reports,
		feedback: fb,
		limiter:  limiter,
		standing: standing,
		pub:      pub,
		engine:   moderation.NewEngine(),
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /v1/events", s.handleCreateEvent)
	s.mux.HandleFunc("GET /v1/events", s.handleNearbyEvents)
	s.mux.HandleFunc("GET /v1/events/{id}", s.handleGetEvent)
	s.mux.HandleFunc("POST /v1/events/{id}/rsvp", s.handleRSVP)
	s.mux.HandleFunc("POST /v1/events/{id}/report", s.handleReport)
	s.mux.HandleFunc("POST /v1/feedback", s.handleFeedback)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fingerprint extracts the client fingerprint header, writing a 400 response
// if it is missing.
func fingerprint(w http.ResponseWriter, r *http.Request) (string, bool) {
	fp := r.Header.Get(fingerprintHeader)
	if fp == "" {
		writeError(w, http.StatusBadRequest, "Missing client fingerprint")
		return "", false
	}
	return fp, true
}

type createEventRequest struct {
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Lat      float64   `json:"lat"`
	Lng      float64   `json:"lng"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	PhotoURL string    `json:"photo_url"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	fp, ok := fingerprint(w, r)
	if !ok {
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	suspended, remaining, _, err := s.standing.IsSuspended(ctx, fp)
	if err != nil {
		// Fail open: a Redis outage should not block legitimate posting.
		log.Printf("[api] suspension check: %v", err)
	}
	if suspended {
		metrics.SubmissionsTotal.WithLabelValues("event", "suspended").Inc()
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error":            "Posting is temporarily suspended",
			"retry_after_secs": remaining,
		})
		return
	}

	allowed, err := s.limiter.Allow(ctx, fp, ratelimit.RuleCreateEvent)
	if err != nil {
		log.Printf("[api] rate limit check: %v", err)
	}
	if !allowed {
		metrics.SubmissionsTotal.WithLabelValues("event", "rate_limited").Inc()
		writeError(w, http.StatusTooManyRequests, "Too many events created, try again later")
		return
	}

	title := moderation.SanitizeText(req.Title)

	checks := []validation.ValidationResult{
		validation.ValidateEventTitle(title),
		validation.ValidateCategory(req.Category),
		validation.ValidateLocation(req.Lat, req.Lng),
		validation.ValidateEventTimes(req.StartsAt, req.EndsAt),
	}
	for _, res := range checks {
		if !res.IsValid {
			metrics.SubmissionsTotal.WithLabelValues("event", "rejected").Inc()
			writeError(w, http.StatusUnprocessableEntity, res.Error)
			return
		}
	}

	start := time.Now()
	check := s.engine.CheckProfanity(title)
	metrics.ModerationCheckLatency.Observe(time.Since(start).Seconds())
	if !check.IsClean {
		metrics.ModerationChecksTotal.WithLabelValues("flagged").Inc()
		metrics.SubmissionsTotal.WithLabelValues("event", "rejected").Inc()
		if _, _, err := s.standing.Strike(ctx, fp, check.Reason); err != nil {
			log.Printf("[api] strike: %v", err)
		}
		writeError(w, http.StatusUnprocessableEntity, check.Reason)
		return
	}
	metrics.ModerationChecksTotal.WithLabelValues("clean").Inc()

	ev := &event.Event{
		Title:     title,
		Category:  req.Category,
		Lat:       req.Lat,
		Lng:       req.Lng,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		PhotoURL:  req.PhotoURL,
		CreatorFp: fp,
	}
	if err := s.events.Create(ctx, ev); err != nil {
		log.Printf("[api] create event: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	s.announce(ev)

	metrics.SubmissionsTotal.WithLabelValues("event", "accepted").Inc()
	writeJSON(w, http.StatusCreated, ev)
}

// announce publishes the event.created announcement. Publish failures are
// logged, not surfaced: the event is already stored and discoverable.
func (s *Server) announce(ev *event.Event) {
	data, err := json.Marshal(event.Announcement{
		EventID:  ev.ID,
		Title:    ev.Title,
		Category: ev.Category,
		Lat:      ev.Lat,
		Lng:      ev.Lng,
		StartsAt: ev.StartsAt.Unix(),
	})
	if err != nil {
		log.Printf("[api] marshal announcement: %v", err)
		return
	}
	if err := s.pub.PublishEventCreated(data); err != nil {
		log.Printf("[api] publish event.created: %v", err)
	}
}

func (s *Server) handleNearbyEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(w, http.StatusBadRequest, "lat and lng query parameters are required")
		return
	}
	if res := validation.ValidateLocation(lat, lng); !res.IsValid {
		writeError(w, http.StatusUnprocessableEntity, res.Error)
		return
	}

	radius := float64(geo.DefaultRadiusMeters)
	if raw := q.Get("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid radius")
			return
		}
		radius = geo.ClampRadius(parsed)
	}

	events, err := s.events.FindNearby(r.Context(), lat, lng, radius)
	if err != nil {
		log.Printf("[api] find nearby: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load events")
		return
	}
	if events == nil {
		events = []event.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "radius": radius})
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	ev, err := s.events.Get(ctx, id)
	if errors.Is(err, event.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		log.Printf("[api] get event: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load event")
		return
	}
	if ev.Hidden {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}

	going, err := s.events.CountRSVPs(ctx, id)
	if err != nil {
		log.Printf("[api] count rsvps: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{"event": ev, "going": going})
}

type rsvpRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleRSVP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	fp, ok := fingerprint(w, r)
	if !ok {
		return
	}

	var req rsvpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status != event.RSVPGoing && req.Status != event.RSVPMaybe {
		writeError(w, http.StatusUnprocessableEntity, "Status must be going or maybe")
		return
	}

	ev, err := s.events.Get(ctx, id)
	if errors.Is(err, event.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		log.Printf("[api] get event: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load event")
		return
	}
	if ev.Hidden {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}

	if err := s.events.UpsertRSVP(ctx, id, fp, req.Status); err != nil {
		log.Printf("[api] upsert rsvp: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save RSVP")
		return
	}

	going, err := s.events.CountRSVPs(ctx, id)
	if err != nil {
		log.Printf("[api] count rsvps: %v", err)
	}

	metrics.SubmissionsTotal.WithLabelValues("rsvp", "accepted").Inc()
	writeJSON(w, http.StatusOK, map[string]any{"status": req.Status, "going": going})
}

type reportRequest struct {
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	fp, ok := fingerprint(w, r)
	if !ok {
		return
	}

	allowed, err := s.limiter.Allow(ctx, fp, ratelimit.RuleReport)
	if err != nil {
		log.Printf("[api] rate limit check: %v", err)
	}
	if !allowed {
		metrics.SubmissionsTotal.WithLabelValues("report", "rate_limited").Inc()
		writeError(w, http.StatusTooManyRequests, "Too many reports, try again later")
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !report.ValidReason(req.Reason) {
		writeError(w, http.StatusUnprocessableEntity, "Invalid report reason")
		return
	}

	ev, err := s.events.Get(ctx, id)
	if errors.Is(err, event.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		log.Printf("[api] get event: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load event")
		return
	}

	if err := s.reports.Create(ctx, &report.Report{
		EventID:    id,
		ReporterFp: fp,
		Reason:     req.Reason,
		Details:    req.Details,
	}); err != nil {
		log.Printf("[api] create report: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to file report")
		return
	}

	count, err := s.reports.CountRecent(ctx, id, report.AutoHideWindow)
	if err != nil {
		log.Printf("[api] count reports: %v", err)
	}
	if count >= report.AutoHideThreshold && !ev.Hidden {
		s.autoHide(ctx, ev)
	}

	metrics.SubmissionsTotal.WithLabelValues("report", "accepted").Inc()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "received"})
}

// autoHide takes a repeatedly reported event off the map, announces the
// removal, and strikes the creator.
func (s *Server) autoHide(ctx context.Context, ev *event.Event) {
	if err := s.events.Hide(ctx, ev.ID); err != nil {
		log.Printf("[api] auto-hide %s: %v", ev.ID, err)
		return
	}
	metrics.EventsHiddenTotal.Inc()
	log.Printf("[api] event %s hidden after reports", ev.ID)

	data, err := json.Marshal(event.Removal{EventID: ev.ID, Cause: "reported"})
	if err == nil {
		if err := s.pub.PublishEventRemoved(data); err != nil {
			log.Printf("[api] publish event.removed: %v", err)
		}
	}

	if _, _, err := s.standing.Strike(ctx, ev.CreatorFp, "event reported and hidden"); err != nil {
		log.Printf("[api] strike creator: %v", err)
	}
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
	Type     string `json:"feedback_type"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	fp, ok := fingerprint(w, r)
	if !ok {
		return
	}

	allowed, err := s.limiter.Allow(ctx, fp, ratelimit.RuleFeedback)
	if err != nil {
		log.Printf("[api] rate limit check: %v", err)
	}
	if !allowed {
		metrics.SubmissionsTotal.WithLabelValues("feedback", "rate_limited").Inc()
		writeError(w, http.StatusTooManyRequests, "Too much feedback, try again later")
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Feedback == "" {
		writeError(w, http.StatusUnprocessableEntity, "Feedback is required")
		return
	}
	if len(req.Feedback) > maxFeedbackChars {
		writeError(w, http.StatusUnprocessableEntity, "Feedback is too long")
		return
	}
	if !feedback.ValidType(req.Type) {
		writeError(w, http.StatusUnprocessableEntity, "Invalid feedback type")
		return
	}

	start := time.Now()
	assessment := s.engine.IsLikelySpam(req.Feedback)
	metrics.ModerationCheckLatency.Observe(time.Since(start).Seconds())
	if assessment.IsSpam {
		metrics.ModerationChecksTotal.WithLabelValues("spam").Inc()
		metrics.SubmissionsTotal.WithLabelValues("feedback", "rejected").Inc()
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "Feedback looks like spam",
			"reasons": assessment.Reasons,
		})
		return
	}
	metrics.ModerationChecksTotal.WithLabelValues("clean").Inc()

	entry := &feedback.Entry{
		UserFp:         fp,
		Feedback:       req.Feedback,
		Type:           req.Type,
		SpamConfidence: assessment.Confidence,
		SpamReasons:    assessment.Reasons,
	}
	if err := s.feedback.Create(ctx, entry); err != nil {
		log.Printf("[api] create feedback: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save feedback")
		return
	}

	// Feedback that scored any spam signal but passed the threshold gets
	// queued for a second async pass by the moderator service.
	if assessment.Confidence > 0 {
		s.queueReview(entry)
	}

	metrics.SubmissionsTotal.WithLabelValues("feedback", "accepted").Inc()
	writeJSON(w, http.StatusCreated, map[string]any{"id": entry.ID, "status": "received"})
}

// queueReview publishes a moderation request for a stored feedback entry.
// Failures are logged only; the entry is already persisted with its score.
func (s *Server) queueReview(entry *feedback.Entry) {
	data, err := json.Marshal(moderation.ModerationRequest{
		SubmissionID: fmt.Sprintf("feedback-%d", entry.ID),
		Kind:         moderation.KindFeedback,
		Text:         entry.Feedback,
		Ts:           time.Now().Unix(),
	})
	if err != nil {
		log.Printf("[api] marshal moderation request: %v", err)
		return
	}
	if err := s.pub.PublishModerationRequest(data); err != nil {
		log.Printf("[api] publish moderation.check: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

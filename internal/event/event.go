// Package event provides PostgreSQL-backed storage for micro-events and
// their RSVPs. Events are short-lived: rows are purged a few hours after the
// event window closes.
package event

import "time"

// RSVP statuses accepted by UpsertRSVP.
const (
	RSVPGoing = "going"
	RSVPMaybe = "maybe"
)

// ExpiryGracePeriod is how long an event row is kept after its window ends,
// so late attendees still see what they just left.
const ExpiryGracePeriod = 6 * time.Hour

// Event is a single micro-event posting.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	CreatorFp string    `json:"-"` // creator fingerprint, never serialized out
	Hidden    bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Announcement is published on event.created when a submission is accepted,
// and consumed by the notifier for nearby fan-out.
type Announcement struct {
	EventID  string  `json:"event_id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	StartsAt int64   `json:"starts_at"`
}

// Removal is published on event.removed when an event is hidden or purged.
type Removal struct {
	EventID string `json:"event_id"`
	Cause   string `json:"cause"` // "expired" or "reported"
}

package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an event ID does not exist (or is hidden).
var ErrNotFound = errors.New("event: not found")

// Store manages events and RSVPs in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a new event store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts a new event and fills in its generated ID and creation time.
func (s *Store) Create(ctx context.Context, ev *Event) error {
	ev.ID = uuid.New().String()

	const query = `
		INSERT INTO events (id, title, category, lat, lng, starts_at, ends_at, photo_url, creator_fp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
		RETURNING created_at`

	err := s.db.QueryRowContext(ctx, query,
		ev.ID, ev.Title, ev.Category, ev.Lat, ev.Lng,
		ev.StartsAt, ev.EndsAt, ev.PhotoURL, ev.CreatorFp,
	).Scan(&ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("event: insert: %w", err)
	}
	return nil
}

// Get returns a single event by ID, hidden or not. Callers deciding what to
// expose should check Hidden themselves.
func (s *Store) Get(ctx context.Context, id string) (*Event, error) {
	const query = `
		SELECT id, title, category, lat, lng, starts_at, ends_at,
		       COALESCE(photo_url, ''), creator_fp, hidden, created_at
		FROM events
		WHERE id = $1`

	var ev Event
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&ev.ID, &ev.Title, &ev.Category, &ev.Lat, &ev.Lng,
		&ev.StartsAt, &ev.EndsAt, &ev.PhotoURL, &ev.CreatorFp,
		&ev.Hidden, &ev.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("event: get: %w", err)
	}
	return &ev, nil
}

// FindNearby returns visible, not-yet-ended events within radiusMeters of
// the given point, soonest first. The haversine distance is computed in SQL
// so the filter runs close to the data.
func (s *Store) FindNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]Event, error) {
	const query = `
		SELECT id, title, category, lat, lng, starts_at, ends_at,
		       COALESCE(photo_url, ''), created_at
		FROM events
		WHERE hidden = FALSE
		  AND ends_at > NOW()
		  AND 6371000 * acos(least(1.0,
		        cos(radians($1)) * cos(radians(lat)) * cos(radians(lng) - radians($2))
		        + sin(radians($1)) * sin(radians(lat)))) <= $3
		ORDER BY starts_at`

	rows, err := s.db.QueryContext(ctx, query, lat, lng, radiusMeters)
	if err != nil {
		return nil, fmt.Errorf("event: find nearby: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(
			&ev.ID, &ev.Title, &ev.Category, &ev.Lat, &ev.Lng,
			&ev.StartsAt, &ev.EndsAt, &ev.PhotoURL, &ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("event: find nearby scan: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("event: find nearby rows: %w", err)
	}
	return events, nil
}

// Hide marks an event invisible to discovery without deleting it, so
// moderators can still inspect reported content.
func (s *Store) Hide(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE events SET hidden = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("event: hide: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountRecentByCreator returns how many events a creator posted within the
// window. Used for the per-creator posting rate limit backstop.
func (s *Store) CountRecentByCreator(ctx context.Context, creatorFp string, window time.Duration) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM events
		WHERE creator_fp = $1
		  AND created_at >= NOW() - $2::interval`

	var count int
	err := s.db.QueryRowContext(ctx, query, creatorFp, window.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("event: count recent: %w", err)
	}
	return count, nil
}

// DeleteExpired removes events whose window ended more than grace ago,
// together with their RSVPs and reports (ON DELETE CASCADE). It returns the
// IDs of the deleted events so callers can announce the removals.
func (s *Store) DeleteExpired(ctx context.Context, grace time.Duration) ([]string, error) {
	const query = `
		DELETE FROM events
		WHERE ends_at < NOW() - $1::interval
		RETURNING id`

	rows, err := s.db.QueryContext(ctx, query, grace.String())
	if err != nil {
		return nil, fmt.Errorf("event: delete expired: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("event: delete expired scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("event: delete expired rows: %w", err)
	}
	return ids, nil
}

// UpsertRSVP records or updates a user's RSVP for an event.
func (s *Store) UpsertRSVP(ctx context.Context, eventID, userFp, status string) error {
	if status != RSVPGoing && status != RSVPMaybe {
		return fmt.Errorf("event: invalid rsvp status %q", status)
	}

	const query = `
		INSERT INTO event_rsvps (event_id, user_fp, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, user_fp) DO UPDATE SET status = EXCLUDED.status`

	if _, err := s.db.ExecContext(ctx, query, eventID, userFp, status); err != nil {
		return fmt.Errorf("event: upsert rsvp: %w", err)
	}
	return nil
}

// CountRSVPs returns the number of "going" RSVPs for an event.
func (s *Store) CountRSVPs(ctx context.Context, eventID string) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM event_rsvps
		WHERE event_id = $1 AND status = $2`

	var count int
	if err := s.db.QueryRowContext(ctx, query, eventID, RSVPGoing).Scan(&count); err != nil {
		return 0, fmt.Errorf("event: count rsvps: %w", err)
	}
	return count, nil
}

// Package report provides PostgreSQL-backed storage for abuse reports filed
// against events. Reports drive the auto-hide flow: enough reports against
// one event within a day takes it off the map pending review.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AutoHideThreshold is the number of distinct reporters within
// AutoHideWindow that hides an event from discovery.
const (
	AutoHideThreshold = 3
	AutoHideWindow    = 24 * time.Hour
)

// validReasons is the set of allowed reason values, matching the CHECK
// constraint on the event_reports table.
var validReasons = map[string]bool{
	"spam":          true,
	"inappropriate": true,
	"fake":          true,
	"other":         true,
}

// ValidReason reports whether reason is in the accepted set.
func ValidReason(reason string) bool {
	return validReasons[reason]
}

// Report represents a single abuse report to be persisted.
type Report struct {
	EventID    string
	ReporterFp string
	Reason     string
	Details    string
}

// Store manages abuse reports in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a new report store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts an abuse report. The reason is validated against the
// allowed set before insertion.
func (s *Store) Create(ctx context.Context, r *Report) error {
	if !validReasons[r.Reason] {
		return fmt.Errorf("report: invalid reason %q", r.Reason)
	}

	const query = `
		INSERT INTO event_reports (event_id, reporter_fp, reason, details)
		VALUES ($1, $2, $3, NULLIF($4, ''))`

	_, err := s.db.ExecContext(ctx, query, r.EventID, r.ReporterFp, r.Reason, r.Details)
	if err != nil {
		return fmt.Errorf("report: insert: %w", err)
	}
	return nil
}

// CountRecent returns the number of reports filed against an event within
// the given window. Distinct reporters only, so one user mashing the report
// button cannot hide an event alone.
func (s *Store) CountRecent(ctx context.Context, eventID string, window time.Duration) (int, error) {
	const query = `
		SELECT COUNT(DISTINCT reporter_fp)
		FROM event_reports
		WHERE event_id = $1
		  AND created_at >= NOW() - $2::interval`

	var count int
	err := s.db.QueryRowContext(ctx, query, eventID, window.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("report: count recent: %w", err)
	}
	return count, nil
}

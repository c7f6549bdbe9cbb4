// Package feedback persists beta feedback submissions along with the spam
// assessment they received at submission time.
package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Valid feedback types.
const (
	TypeBug     = "bug"
	TypeFeature = "feature"
	TypeGeneral = "general"
)

var validTypes = map[string]bool{
	TypeBug:     true,
	TypeFeature: true,
	TypeGeneral: true,
}

// ValidType reports whether t is an accepted feedback type.
func ValidType(t string) bool {
	return validTypes[t]
}

// Entry is a single piece of beta feedback.
type Entry struct {
	ID             int64     `json:"id"`
	UserFp         string    `json:"-"`
	Feedback       string    `json:"feedback"`
	Type           string    `json:"feedback_type"`
	SpamConfidence float64   `json:"spam_confidence"`
	SpamReasons    []string  `json:"spam_reasons,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store provides PostgreSQL-backed persistence for beta feedback.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts a feedback entry and fills in its ID and creation time.
// The spam reasons slice is stored as JSON; a nil or empty slice is stored
// as SQL NULL.
func (s *Store) Create(ctx context.Context, e *Entry) error {
	if !ValidType(e.Type) {
		return fmt.Errorf("feedback: invalid type %q", e.Type)
	}

	var reasons sql.NullString
	if len(e.SpamReasons) > 0 {
		data, err := json.Marshal(e.SpamReasons)
		if err != nil {
			return fmt.Errorf("feedback: marshal reasons: %w", err)
		}
		reasons = sql.NullString{String: string(data), Valid: true}
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO beta_feedback (user_fp, feedback, feedback_type, spam_confidence, spam_reasons)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		e.UserFp, e.Feedback, e.Type, e.SpamConfidence, reasons,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("feedback: insert: %w", err)
	}
	return nil
}

// Recent returns the most recent feedback entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_fp, feedback, feedback_type, spam_confidence, spam_reasons, created_at
		FROM beta_feedback
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("feedback: query recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var reasons sql.NullString
		if err := rows.Scan(&e.ID, &e.UserFp, &e.Feedback, &e.Type, &e.SpamConfidence, &reasons, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("feedback: scan: %w", err)
		}
		if reasons.Valid {
			if err := json.Unmarshal([]byte(reasons.String), &e.SpamReasons); err != nil {
				return nil, fmt.Errorf("feedback: unmarshal reasons: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

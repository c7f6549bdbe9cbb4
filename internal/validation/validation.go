// Package validation holds the field-level rules applied to event
// submissions: title length, time-window legality, coordinate bounds and
// category membership. Each validator is an independent pure function; they
// share no state and may run in any order.
package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	TitleMinLen = 3
	TitleMaxLen = 80

	// StartGracePeriod tolerates clock skew and submission latency before a
	// start time counts as "in the past".
	StartGracePeriod = 5 * time.Minute

	MaxEventDuration = 24 * time.Hour
)

// Categories is the closed set of event categories. Matching is
// case-sensitive: "MUSIC" is not a valid category.
var Categories = []string{"music", "cafe", "yard", "food", "wellness", "art", "sports", "other"}

var categorySet = func() map[string]bool {
	set := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		set[c] = true
	}
	return set
}()

// ValidationResult reports whether a field passed its rule. Error is set iff
// IsValid is false. Callers match on substrings of Error ("future", "after",
// "24 hours"), so the wording is a contract.
type ValidationResult struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
}

func valid() ValidationResult {
	return ValidationResult{IsValid: true}
}

func invalid(err string) ValidationResult {
	return ValidationResult{Error: err}
}

// ValidateEventTitle checks the title against the length bounds, after
// trimming surrounding whitespace.
func ValidateEventTitle(title string) ValidationResult {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return invalid("Title is required")
	}

	length := utf8.RuneCountInString(trimmed)
	if length < TitleMinLen {
		return invalid(fmt.Sprintf("Title must be at least %d characters", TitleMinLen))
	}
	if length > TitleMaxLen {
		return invalid(fmt.Sprintf("Title must be less than %d characters", TitleMaxLen))
	}
	return valid()
}

// ValidateEventTimes checks that the event window starts no earlier than the
// grace period allows, ends after it starts, and runs at most 24 hours.
func ValidateEventTimes(startsAt, endsAt time.Time) ValidationResult {
	if startsAt.Before(time.Now().Add(-StartGracePeriod)) {
		return invalid("Event must start in the future")
	}
	if !endsAt.After(startsAt) {
		return invalid("Event must end after it starts")
	}
	if endsAt.Sub(startsAt) > MaxEventDuration {
		return invalid("Event duration cannot exceed 24 hours")
	}
	return valid()
}

// ValidateLocation checks coordinate bounds. The boundaries themselves
// (±90, ±180) are valid.
func ValidateLocation(latitude, longitude float64) ValidationResult {
	if latitude < -90 || latitude > 90 {
		return invalid("Invalid latitude")
	}
	if longitude < -180 || longitude > 180 {
		return invalid("Invalid longitude")
	}
	return valid()
}

// ValidateCategory checks case-sensitive membership in Categories.
func ValidateCategory(category string) ValidationResult {
	if !categorySet[category] {
		return invalid("Invalid category")
	}
	return valid()
}

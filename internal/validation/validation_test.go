package validation

import (
	"strings"
	"testing"
	"time"
)

func TestValidateEventTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		valid   bool
		errPart string
	}{
		{"normal title", "Jazz Concert in the Park", true, ""},
		{"punctuation and numbers", "BBQ & Potluck @ 5pm", true, ""},
		{"minimum length", "abc", true, ""},
		{"maximum length", strings.Repeat("a", 80), true, ""},
		{"empty", "", false, "required"},
		{"whitespace only", "   ", false, "required"},
		{"too short", "Hi", false, "at least"},
		{"too short after trim", "  ab  ", false, "at least"},
		{"too long", strings.Repeat("a", 81), false, "less than"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateEventTitle(tt.title)
			if result.IsValid != tt.valid {
				t.Fatalf("ValidateEventTitle(%q).IsValid = %v, want %v (error=%q)",
					tt.title, result.IsValid, tt.valid, result.Error)
			}
			if tt.valid && result.Error != "" {
				t.Errorf("valid result carries error %q", result.Error)
			}
			if !tt.valid && !strings.Contains(result.Error, tt.errPart) {
				t.Errorf("Error = %q, want substring %q", result.Error, tt.errPart)
			}
		})
	}
}

func TestValidateEventTimes(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		starts  time.Time
		ends    time.Time
		valid   bool
		errPart string
	}{
		{"future window", now.Add(1 * time.Hour), now.Add(2 * time.Hour), true, ""},
		{"starts within grace period", now.Add(-4 * time.Minute), now.Add(1 * time.Hour), true, ""},
		{"exactly 24 hours", now.Add(1 * time.Hour), now.Add(25 * time.Hour), true, ""},
		{"starts in the past", now.Add(-1 * time.Hour), now.Add(1 * time.Hour), false, "future"},
		{"ends before start", now.Add(2 * time.Hour), now.Add(1 * time.Hour), false, "after"},
		{"ends exactly at start", now.Add(1 * time.Hour), now.Add(1 * time.Hour), false, "after"},
		{"longer than 24 hours", now.Add(1 * time.Hour), now.Add(26 * time.Hour), false, "24 hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateEventTimes(tt.starts, tt.ends)
			if result.IsValid != tt.valid {
				t.Fatalf("IsValid = %v, want %v (error=%q)", result.IsValid, tt.valid, result.Error)
			}
			if !tt.valid && !strings.Contains(result.Error, tt.errPart) {
				t.Errorf("Error = %q, want substring %q", result.Error, tt.errPart)
			}
		})
	}
}

func TestValidateLocation(t *testing.T) {
	tests := []struct {
		name  string
		lat   float64
		lng   float64
		valid bool
	}{
		{"san francisco", 37.7749, -122.4194, true},
		{"null island", 0, 0, true},
		{"north east extreme", 90, 180, true},
		{"south west extreme", -90, -180, true},
		{"latitude too high", 91, 0, false},
		{"latitude too low", -91, 0, false},
		{"longitude too high", 0, 181, false},
		{"longitude too low", 0, -181, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateLocation(tt.lat, tt.lng)
			if result.IsValid != tt.valid {
				t.Errorf("ValidateLocation(%v, %v).IsValid = %v, want %v",
					tt.lat, tt.lng, result.IsValid, tt.valid)
			}
		})
	}
}

func TestValidateCategory(t *testing.T) {
	for _, c := range Categories {
		if result := ValidateCategory(c); !result.IsValid {
			t.Errorf("ValidateCategory(%q) invalid, want valid", c)
		}
	}

	invalid := []string{"invalid", "", "MUSIC", "Music", "music ", "concert"}
	for _, c := range invalid {
		result := ValidateCategory(c)
		if result.IsValid {
			t.Errorf("ValidateCategory(%q) valid, want invalid", c)
		}
		if result.Error == "" {
			t.Errorf("ValidateCategory(%q) missing error", c)
		}
	}
}

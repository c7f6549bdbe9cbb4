package moderation

import "testing"

func TestCompilePhrases_WordBoundaries(t *testing.T) {
	re := compilePhrases([]string{"ass", "get rich quick"})

	tests := []struct {
		input string
		want  bool
	}{
		{"ass", true},
		{"you ass!", true},
		{"ASS", true},
		{"class", false},
		{"assess", false},
		{"get rich quick", true},
		{"a get rich quick scheme", true},
		{"GET RICH QUICK", true},
		{"get rich very quick", false},
		{"rich quick", false},
	}

	for _, tt := range tests {
		if got := re.MatchString(tt.input); got != tt.want {
			t.Errorf("MatchString(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLibrary_BannedCategories(t *testing.T) {
	lib := NewLibrary()
	if len(lib.banned) != 5 {
		t.Fatalf("got %d banned categories, want 5", len(lib.banned))
	}

	// A representative phrase from each category must be matched.
	samples := map[string]string{
		"spam":          "classic pyramid scheme",
		"commercial":    "buy now while you can",
		"inappropriate": "selling prescription drugs",
		"violent":       "explosives on site",
		"hate":          "pure discrimination",
	}

	for _, cat := range lib.banned {
		sample, ok := samples[cat.name]
		if !ok {
			t.Errorf("unexpected category %q", cat.name)
			continue
		}
		if !cat.re.MatchString(sample) {
			t.Errorf("category %q did not match sample %q", cat.name, sample)
		}
	}
}

func TestPIIPatterns(t *testing.T) {
	lib := NewLibrary()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"dashed phone", "555-123-4567", true},
		{"dotted phone", "555.123.4567", true},
		{"bare phone", "5551234567", true},
		{"ssn", "123-45-6789", true},
		{"card number", "1234567812345678", true},
		{"short number", "42", false},
		{"year", "2025", false},
		{"time", "11:45", false},
		{"price", "$20", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := false
			for _, p := range lib.pii {
				if p.re.MatchString(tt.input) {
					got = true
					break
				}
			}
			if got != tt.want {
				t.Errorf("PII match for %q = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAllowedPatterns(t *testing.T) {
	lib := NewLibrary()

	matchAny := func(s string) bool {
		for _, re := range lib.allowed {
			if re.MatchString(s) {
				return true
			}
		}
		return false
	}

	tests := []struct {
		input string
		want  bool
	}{
		{"doors at 5pm", true},
		{"starts 11AM sharp", true},
		{"meet at 11:45", true},
		{"entry is $20", true},
		{"roughly 2 hours", true},
		{"about 30 min", true},
		{"no numbers here", false},
		{"$5000 prize", false}, // four digits: outside the bounded price shape
	}

	for _, tt := range tests {
		if got := matchAny(tt.input); got != tt.want {
			t.Errorf("allowed match for %q = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestHasCharFlood(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"hellooooooo", true},
		{"AAAAAA", true},
		{"wow!!!!!", true},
		{"aaaa", false},
		{"heeeel no", false},
		{"", false},
		{"normal text", false},
	}

	for _, tt := range tests {
		if got := hasCharFlood(tt.input); got != tt.want {
			t.Errorf("hasCharFlood(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestHasWordFlood(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"buy buy buy", true},
		{"hey buy buy buy now", true},
		{"BUY buy Buy", true},
		{"go go", false},
		{"yeah yeah whatever", false},
		{"", false},
		{"one two three", false},
	}

	for _, tt := range tests {
		if got := hasWordFlood(tt.input); got != tt.want {
			t.Errorf("hasWordFlood(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

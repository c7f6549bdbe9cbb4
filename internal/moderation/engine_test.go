package moderation

import (
	"fmt"
	"strings"
	"testing"
)

func TestCheckProfanity_CleanContent(t *testing.T) {
	e := NewEngine()

	clean := []struct {
		name  string
		input string
	}{
		{"event title", "Jazz concert in the park at 7pm"},
		{"price range with allow-list", "Garage sale - items from $5 to $20"},
		{"empty string", ""},
		{"whitespace only", "   \t\n  "},
		{"suppressed by clock time", "Hurry over at 5pm for snacks"},
		{"suppressed by duration", "Urgent yoga session, 2 hours"},
		{"banned substring inside word", "Chateau wine tasting"},
		{"singular of banned plural", "Discussion about drug policy"},
		{"short numeric string", "42"},
		{"ordinary sentence", "Pickup basketball behind the library"},
	}

	for _, tt := range clean {
		t.Run(tt.name, func(t *testing.T) {
			result := e.CheckProfanity(tt.input)
			if !result.IsClean {
				t.Errorf("CheckProfanity(%q).IsClean = false (reason=%q), want clean", tt.input, result.Reason)
			}
			if result.Reason != "" {
				t.Errorf("CheckProfanity(%q).Reason = %q on a clean result, want empty", tt.input, result.Reason)
			}
		})
	}
}

func TestCheckProfanity_Violations(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{"banned spam phrase", "Free bitcoin giveaway tonight", ReasonBannedContent},
		{"banned commercial phrase", "BUY NOW!!! Limited time offer!!!", ReasonBannedContent},
		{"banned inappropriate phrase", "Escort service available", ReasonBannedContent},
		{"banned violent phrase", "Guns for sale cheap", ReasonBannedContent},
		{"banned hate phrase", "Racist jokes all evening", ReasonBannedContent},
		{"phone number", "Call me at 555-123-4567", ReasonPersonalInfo},
		{"unsuppressed urgency", "Don't miss this, hurry", ReasonSpamPattern},
		{"link shortener", "Details at bit.ly somewhere", ReasonSpamPattern},
		{"special character soup", "a@b#c$d%e^f@g#h$", ReasonSpecialChars},
		{"digit heavy", "123456789012345678901234567890", ReasonDigitHeavy},
		{"excessive caps", "HELLO EVERYONE COME", ReasonExcessiveCaps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := e.CheckProfanity(tt.input)
			if result.IsClean {
				t.Fatalf("CheckProfanity(%q).IsClean = true, want violation %q", tt.input, tt.reason)
			}
			if result.Reason != tt.reason {
				t.Errorf("CheckProfanity(%q).Reason = %q, want %q", tt.input, result.Reason, tt.reason)
			}
		})
	}
}

// TestCheckProfanity_PIIIgnoresAllowList verifies that a PII hit is not
// suppressed even when an allow-list pattern also matches the input.
func TestCheckProfanity_PIIIgnoresAllowList(t *testing.T) {
	e := NewEngine()

	result := e.CheckProfanity("Meet at 5pm, call 555-123-4567")
	if result.IsClean {
		t.Fatal("expected PII violation, got clean")
	}
	if result.Reason != ReasonPersonalInfo {
		t.Errorf("Reason = %q, want %q", result.Reason, ReasonPersonalInfo)
	}
}

// TestCheckProfanity_Ordering verifies that a definite violation wins over a
// heuristic one when both apply: banned phrases are reported before density
// signals.
func TestCheckProfanity_Ordering(t *testing.T) {
	e := NewEngine()

	// Contains a banned phrase AND would fail the caps-density check.
	result := e.CheckProfanity("BUY NOW EVERYBODY LISTEN")
	if result.Reason != ReasonBannedContent {
		t.Errorf("Reason = %q, want %q", result.Reason, ReasonBannedContent)
	}
}

func TestCheckProfanity_Totality(t *testing.T) {
	e := NewEngine()

	inputs := []string{
		"",
		" ",
		strings.Repeat("a", 10000),
		strings.Repeat("word ", 5000),
		strings.Repeat("!", 10000),
		"héllo wörld \x00 \uFFFD",
		strings.Repeat("1234567890", 2000),
	}

	for _, input := range inputs {
		result := e.CheckProfanity(input)
		if result.IsClean && result.Reason != "" {
			t.Errorf("clean result carries reason %q", result.Reason)
		}
		if !result.IsClean && result.Reason == "" {
			t.Error("violation result missing reason")
		}
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapse spaces", "Hello    World", "Hello World"},
		{"trim", "  Hello World  ", "Hello World"},
		{"strip specials", "Hello <world> & such", "Hello world such"},
		{"keep basic punctuation", "Wait - really?! (yes, it's on.)", "Wait - really?! (yes, it's on.)"},
		{"tabs and newlines", "one\ttwo\nthree", "one two three"},
		{"empty", "", ""},
		{"only stripped chars", "@#$%^&", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeText(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeText_LengthBound(t *testing.T) {
	inputs := []string{
		strings.Repeat("a", 300),
		strings.Repeat("word ", 100),
		strings.Repeat("x", 199) + "  tail words here",
	}
	for _, input := range inputs {
		if got := SanitizeText(input); len(got) > 200 {
			t.Errorf("SanitizeText output length = %d, want <= 200", len(got))
		}
	}
}

func TestSanitizeText_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello    World",
		"a @ b",
		"  spaced @@@ out  ",
		strings.Repeat("ab ", 200),
		"héllo 😀 wörld",
		"",
		"already clean text.",
	}
	for _, input := range inputs {
		once := SanitizeText(input)
		twice := SanitizeText(once)
		if once != twice {
			t.Errorf("SanitizeText not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestContainsURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Check out http://example.com", true},
		{"secure https://example.net/page", true},
		{"Visit www.example.com", true},
		{"Go to example.com", true},
		{"my site example.org", true},
		{"app.io is great", true},
		{"CASE WWW.LOUD.COM", true},
		{"Jazz concert at the park", false},
		{"lovely evening for a walk", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ContainsURL(tt.input); got != tt.want {
			t.Errorf("ContainsURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsLikelySpam_ObviousSpam(t *testing.T) {
	e := NewEngine()

	result := e.IsLikelySpam("BUY NOW!!! FREE MONEY!!! http://scam.com")
	if !result.IsSpam {
		t.Fatalf("expected spam, got confidence %.2f (reasons %v)", result.Confidence, result.Reasons)
	}
	if result.Confidence < spamThreshold {
		t.Errorf("Confidence = %.2f, want >= %.2f", result.Confidence, spamThreshold)
	}
	if len(result.Reasons) == 0 {
		t.Error("expected at least one reason")
	}
}

func TestIsLikelySpam_CleanFeedback(t *testing.T) {
	e := NewEngine()

	result := e.IsLikelySpam("Community BBQ at Main Street Park, 5pm Saturday")
	if result.IsSpam {
		t.Fatalf("expected clean, got spam (confidence %.2f, reasons %v)", result.Confidence, result.Reasons)
	}
	if result.Confidence != 0 {
		t.Errorf("Confidence = %.2f, want 0", result.Confidence)
	}
	if len(result.Reasons) != 0 {
		t.Errorf("Reasons = %v, want empty", result.Reasons)
	}
}

func TestIsLikelySpam_WordRepetition(t *testing.T) {
	e := NewEngine()

	result := e.IsLikelySpam("sale sale sale sale sale sale sale")
	if !result.IsSpam {
		t.Fatalf("expected spam, got confidence %.2f (reasons %v)", result.Confidence, result.Reasons)
	}

	found := false
	for _, r := range result.Reasons {
		if r == "Excessive word repetition" {
			found = true
		}
	}
	if !found {
		t.Errorf("Reasons = %v, want to include %q", result.Reasons, "Excessive word repetition")
	}
}

func TestIsLikelySpam_LengthSignals(t *testing.T) {
	e := NewEngine()

	short := e.IsLikelySpam("ok")
	if short.IsSpam {
		t.Errorf("short input marked spam (confidence %.2f)", short.Confidence)
	}
	if len(short.Reasons) != 1 || short.Reasons[0] != "Too short" {
		t.Errorf("short Reasons = %v, want [Too short]", short.Reasons)
	}

	// Distinct words so the repetition signal stays quiet.
	var b strings.Builder
	for i := 0; b.Len() < 220; i++ {
		fmt.Fprintf(&b, "word%d ", i)
	}
	long := e.IsLikelySpam(b.String())
	if long.IsSpam {
		t.Errorf("long input marked spam (confidence %.2f, reasons %v)", long.Confidence, long.Reasons)
	}
	if len(long.Reasons) != 1 || long.Reasons[0] != "Unusually long" {
		t.Errorf("long Reasons = %v, want [Unusually long]", long.Reasons)
	}
}

// TestIsLikelySpam_Monotonic verifies that concatenating two flagged inputs
// never yields a confidence below either input alone.
func TestIsLikelySpam_Monotonic(t *testing.T) {
	e := NewEngine()

	a := "check http://spam.com today"
	b := "sale sale sale sale sale sale sale"

	confA := e.IsLikelySpam(a).Confidence
	confB := e.IsLikelySpam(b).Confidence
	combined := e.IsLikelySpam(a + " " + b).Confidence

	if combined < confA || combined < confB {
		t.Errorf("combined confidence %.2f below parts (%.2f, %.2f)", combined, confA, confB)
	}
}

func TestIsLikelySpam_ConfidenceCapped(t *testing.T) {
	e := NewEngine()

	// Stacks profanity, URL, length and repetition signals.
	text := strings.Repeat("free money http://scam.com ", 20)
	result := e.IsLikelySpam(text)
	if result.Confidence > 1.0 {
		t.Errorf("Confidence = %.2f, want <= 1.0", result.Confidence)
	}
	if !result.IsSpam {
		t.Error("expected spam for stacked signals")
	}
}

// BenchmarkCheckProfanity measures gate performance on a typical clean title.
func BenchmarkCheckProfanity(b *testing.B) {
	e := NewEngine()
	title := "Jazz concert in the park at 7pm with food trucks"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.CheckProfanity(title)
	}
}

// BenchmarkIsLikelySpam measures scorer performance on realistic feedback.
func BenchmarkIsLikelySpam(b *testing.B) {
	e := NewEngine()
	feedback := strings.Repeat("the map screen is great but event pins sometimes overlap. ", 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.IsLikelySpam(feedback)
	}
}

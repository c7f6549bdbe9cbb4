// Package moderation provides content filtering for user-submitted text.
// It screens event titles and free-text feedback for prohibited content,
// spam signals and personal information before a submission is accepted.
//
// Everything here is a pure function of its input plus the static pattern
// Library: no I/O, no shared mutable state, safe for concurrent use.
package moderation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Reason labels surfaced to callers. The wording is a contract: callers
// match on substrings like "personal information" and "digits".
const (
	ReasonBannedContent = "Contains inappropriate or prohibited content"
	ReasonPersonalInfo  = "Contains personal information"
	ReasonSpamPattern   = "Content appears to be spam or promotional"
	ReasonSpecialChars  = "Too many special characters"
	ReasonDigitHeavy    = "Suspicious number of digits"
	ReasonExcessiveCaps = "Excessive use of capital letters"
)

// Density thresholds for the heuristic checks in CheckProfanity.
const (
	specialCharMaxRatio = 0.30
	digitMaxRatio       = 0.50
	digitMinLen         = 10 // digit-density rule only applies above this length
	capsMinLetters      = 10
	capsMaxRatio        = 0.70
)

// Additive weights and threshold for IsLikelySpam.
const (
	spamThreshold    = 0.6
	weightProfanity  = 0.5
	weightURL        = 0.3
	weightLength     = 0.2
	weightRepetition = 0.3

	minFeedbackLen      = 10
	maxFeedbackLen      = 200
	repetitionMinWords  = 5
	repetitionMaxUnique = 0.5
)

const maxSanitizedLen = 200

const specialChars = `!@#$%^&*()_+={}[]|\:";'<>?,./`

var defaultLibrary = NewLibrary()

// Engine runs moderation checks against a pattern Library. The default
// engine shares the package-wide library; a custom Library can be injected
// for alternate rule sets.
type Engine struct {
	lib *Library
}

// NewEngine returns an Engine backed by the default pattern library.
func NewEngine() *Engine {
	return &Engine{lib: defaultLibrary}
}

// NewEngineWithLibrary returns an Engine backed by the given library.
func NewEngineWithLibrary(lib *Library) *Engine {
	return &Engine{lib: lib}
}

// CheckProfanity is the strict accept/reject gate for event titles. Checks
// run in order from definite violations (banned phrases, PII) to heuristic
// signals (density ratios) and short-circuit on the first failure, so the
// most actionable reason is the one reported.
func (e *Engine) CheckProfanity(text string) ProfanityCheckResult {
	if strings.TrimSpace(text) == "" {
		return ProfanityCheckResult{IsClean: true}
	}

	for _, cat := range e.lib.banned {
		if cat.re.MatchString(text) {
			return ProfanityCheckResult{Reason: ReasonBannedContent}
		}
	}

	// PII is unconditional: the allow-list never overrides it.
	for _, p := range e.lib.pii {
		if p.re.MatchString(text) {
			return ProfanityCheckResult{Reason: ReasonPersonalInfo}
		}
	}

	// A single allow-list hit (a clock time, a small price, a duration)
	// suppresses suspicious-pattern findings for the whole input.
	if !e.allowed(text) {
		for _, sc := range e.lib.suspicious {
			if sc.match(text) {
				return ProfanityCheckResult{Reason: ReasonSpamPattern}
			}
		}
	}

	total := utf8.RuneCountInString(text)
	special, digits, letters, upper := 0, 0, 0, 0
	for _, r := range text {
		switch {
		case strings.ContainsRune(specialChars, r):
			special++
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r):
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}

	if float64(special) > float64(total)*specialCharMaxRatio {
		return ProfanityCheckResult{Reason: ReasonSpecialChars}
	}

	// The length guard keeps short legitimate strings like "42" clean.
	if total > digitMinLen && float64(digits) > float64(total)*digitMaxRatio {
		return ProfanityCheckResult{Reason: ReasonDigitHeavy}
	}

	// Letters only in the denominator — digits and symbols don't dilute it.
	if letters >= capsMinLetters && float64(upper)/float64(letters) > capsMaxRatio {
		return ProfanityCheckResult{Reason: ReasonExcessiveCaps}
	}

	return ProfanityCheckResult{IsClean: true}
}

// allowed reports whether any allow-list pattern matches the input.
func (e *Engine) allowed(text string) bool {
	for _, re := range e.lib.allowed {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// IsLikelySpam scores longer free text (feedback) by summing independent
// weak signals instead of short-circuiting, so no single heuristic
// dominates. Confidence is capped at 1.0; IsSpam fires at 0.6.
func (e *Engine) IsLikelySpam(text string) SpamAssessment {
	var confidence float64
	reasons := []string{}

	if res := e.CheckProfanity(text); !res.IsClean {
		confidence += weightProfanity
		reasons = append(reasons, res.Reason)
	}

	if ContainsURL(text) {
		confidence += weightURL
		reasons = append(reasons, "Contains URLs")
	}

	// At most one length signal fires.
	switch length := utf8.RuneCountInString(text); {
	case length < minFeedbackLen:
		confidence += weightLength
		reasons = append(reasons, "Too short")
	case length > maxFeedbackLen:
		confidence += weightLength
		reasons = append(reasons, "Unusually long")
	}

	words := strings.Fields(strings.ToLower(text))
	if len(words) > repetitionMinWords {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		if float64(len(unique))/float64(len(words)) < repetitionMaxUnique {
			confidence += weightRepetition
			reasons = append(reasons, "Excessive word repetition")
		}
	}

	if confidence > 1.0 {
		confidence = 1.0
	}

	return SpamAssessment{
		IsSpam:     confidence >= spamThreshold,
		Confidence: confidence,
		Reasons:    reasons,
	}
}

var (
	disallowedChars = regexp.MustCompile(`[^\w\s\-.,!?()']`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// SanitizeText normalizes text for display and storage: strips characters
// outside word characters and basic punctuation, collapses whitespace runs,
// trims, and truncates to 200 characters. It is a hygiene step, not a
// moderation decision, and is idempotent.
func SanitizeText(text string) string {
	cleaned := disallowedChars.ReplaceAllString(text, "")
	cleaned = whitespaceRuns.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if len(cleaned) > maxSanitizedLen {
		// Everything left is ASCII after the strip, so byte slicing is safe.
		cleaned = strings.TrimSpace(cleaned[:maxSanitizedLen])
	}
	return cleaned
}

// urlIndicators are matched as plain case-insensitive substrings.
// Deliberately permissive: a bare ".com" mention counts. For free text like
// feedback a false positive is cheaper than a missed link drop.
var urlIndicators = []string{"http://", "https://", "www.", ".com", ".net", ".org", ".io"}

// ContainsURL reports whether text appears to contain a URL or domain name.
func ContainsURL(text string) bool {
	lower := strings.ToLower(text)
	for _, ind := range urlIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

package moderation

import (
	"regexp"
	"strings"
	"unicode"
)

// Banned phrase lists, grouped by category. Phrases are stored lowercase and
// matched with word boundaries at check time, so "class" never trips on "ass"
// and multi-word phrases ("get rich quick") only match as a contiguous
// sequence.

var spamPhrases = []string{
	"spam", "scam", "fake", "fraud", "phishing", "ponzi", "pyramid scheme",
	"mlm", "multi-level marketing", "get rich quick", "work from home",
	"bitcoin giveaway", "crypto scam", "investment opportunity",
	"guaranteed profit", "double your money",
}

var commercialPhrases = []string{
	"buy now", "click here now", "limited offer", "act fast", "don't miss out",
	"exclusive deal", "make money fast", "earn cash", "free trial",
	"no credit card", "risk free", "satisfaction guaranteed",
}

var inappropriatePhrases = []string{
	"drugs", "cocaine", "heroin", "meth", "marijuana sale", "weed for sale",
	"pills", "prescription drugs", "adult content", "escort", "sex work",
	"prostitution",
}

var violentPhrases = []string{
	"weapon", "guns for sale", "ammunition", "explosives", "bomb", "violence",
	"fight club", "illegal fighting",
}

var hatePhrases = []string{
	"hate", "racist", "discrimination", "supremacy",
}

// bannedCategory pairs a category name with its compiled phrase matcher.
type bannedCategory struct {
	name string
	re   *regexp.Regexp
}

// compilePhrases builds a single case-insensitive, word-boundary alternation
// from a phrase list.
func compilePhrases(phrases []string) *regexp.Regexp {
	escaped := make([]string, 0, len(phrases))
	for _, p := range phrases {
		escaped = append(escaped, regexp.QuoteMeta(p))
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
}

// suspiciousCheck pairs a detection function with a name used for reporting
// and metrics. The same entries back both the strict gate and the additive
// spam scorer so the two entry points cannot drift apart.
type suspiciousCheck struct {
	name  string
	match func(string) bool
}

// Compiled regex patterns for the suspicious-pattern checks. Evaluated
// against the raw input — several rely on case (ALL-CAPS runs).
var (
	urgencyPattern        = regexp.MustCompile(`(?i)\b(buy now|click here|urgent|limited time|act now|don't miss|hurry)\b`)
	moneyScamPattern      = regexp.MustCompile(`(?i)\b(money back|guaranteed|free money|get rich|earn \$\d+|make \$\d+)\b`)
	exclaimRunPattern     = regexp.MustCompile(`!{3,}`)
	questionRunPattern    = regexp.MustCompile(`\?{3,}`)
	capsRunPattern        = regexp.MustCompile(`[A-Z]{10,}`)
	emojiFloodPattern     = regexp.MustCompile(`[\x{1F300}-\x{1F9FF}]{5,}`)
	linkShortenerPattern  = regexp.MustCompile(`(?i)\b(bit\.ly|tinyurl|goo\.gl)\b`)
	cryptoGiveawayPattern = regexp.MustCompile(`(?i)\b(bitcoin|crypto|ethereum|nft).*(giveaway|free|airdrop)\b`)
	contactSolicitPattern = regexp.MustCompile(`(?i)\b(whatsapp|telegram|signal|dm me|text me)\b`)
)

func matchRegexp(re *regexp.Regexp) func(string) bool {
	return re.MatchString
}

// hasCharFlood returns true if text contains 5 or more consecutive identical
// characters. Go's regexp package (RE2) does not support backreferences, so
// this is a linear scan.
func hasCharFlood(text string) bool {
	const threshold = 5

	count := 1
	prev := rune(-1)
	for _, r := range text {
		if r == prev {
			count++
			if count >= threshold {
				return true
			}
		} else {
			count = 1
			prev = r
		}
	}
	return false
}

// hasWordFlood returns true if the same word appears 3 or more times
// consecutively (case-insensitive). Words are delimited by whitespace.
func hasWordFlood(text string) bool {
	const threshold = 3

	words := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	if len(words) < threshold {
		return false
	}

	count := 1
	prev := ""
	for _, w := range words {
		lower := strings.ToLower(w)
		if lower == prev {
			count++
			if count >= threshold {
				return true
			}
		} else {
			count = 1
			prev = lower
		}
	}
	return false
}

// piiCheck pairs a PII-shaped pattern with a name used for reporting.
// A PII match is an unconditional rejection — the allow-list never applies.
type piiCheck struct {
	name string
	re   *regexp.Regexp
}

// Library is the static pattern set consumed by the Engine: banned phrase
// matchers, ordered suspicious-pattern checks, allow-list patterns that veto
// suspicious hits, and PII patterns. It is built once and never mutated, so
// a single Library is safe to share across any number of goroutines.
type Library struct {
	banned     []bannedCategory
	suspicious []suspiciousCheck
	allowed    []*regexp.Regexp
	pii        []piiCheck
}

// NewLibrary builds the default pattern library.
func NewLibrary() *Library {
	return &Library{
		banned: []bannedCategory{
			{name: "spam", re: compilePhrases(spamPhrases)},
			{name: "commercial", re: compilePhrases(commercialPhrases)},
			{name: "inappropriate", re: compilePhrases(inappropriatePhrases)},
			{name: "violent", re: compilePhrases(violentPhrases)},
			{name: "hate", re: compilePhrases(hatePhrases)},
		},
		// Ordered: the first match wins and its name is what gets logged.
		suspicious: []suspiciousCheck{
			{name: "urgency", match: matchRegexp(urgencyPattern)},
			{name: "money_scam", match: matchRegexp(moneyScamPattern)},
			{name: "exclamation_run", match: matchRegexp(exclaimRunPattern)},
			{name: "question_run", match: matchRegexp(questionRunPattern)},
			{name: "caps_run", match: matchRegexp(capsRunPattern)},
			{name: "char_flood", match: hasCharFlood},
			{name: "emoji_flood", match: matchRegexp(emojiFloodPattern)},
			{name: "link_shortener", match: matchRegexp(linkShortenerPattern)},
			{name: "crypto_giveaway", match: matchRegexp(cryptoGiveawayPattern)},
			{name: "contact_solicit", match: matchRegexp(contactSolicitPattern)},
			{name: "word_flood", match: hasWordFlood},
		},
		// Legitimate numeric content that should not read as spam: clock
		// times, small prices, durations. An allowed match vetoes
		// suspicious-pattern hits for the whole input.
		allowed: []*regexp.Regexp{
			regexp.MustCompile(`\b\d{1,2}(am|pm|AM|PM)\b`),
			regexp.MustCompile(`\b\d{1,2}:\d{2}\b`),
			regexp.MustCompile(`\$\d{1,3}\b`),
			regexp.MustCompile(`(?i)\b\d{1,2}\s*(hour|hr|min|mins|minute)s?\b`),
		},
		pii: []piiCheck{
			{name: "phone", re: regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)},
			{name: "ssn", re: regexp.MustCompile(`\b\d{3}[-.]?\d{2}[-.]?\d{4}\b`)},
			{name: "credit_card", re: regexp.MustCompile(`\b\d{16}\b`)},
		},
	}
}

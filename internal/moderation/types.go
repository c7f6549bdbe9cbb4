package moderation

// ProfanityCheckResult is the verdict of the strict content gate applied to
// event titles. Reason is a stable category label, never the matched text,
// so banned content is not echoed back to the submitter. Reason is set iff
// IsClean is false.
type ProfanityCheckResult struct {
	IsClean bool   `json:"is_clean"`
	Reason  string `json:"reason,omitempty"`
}

// SpamAssessment is the graded verdict of the additive spam scorer applied
// to longer free text (feedback). Confidence is a deterministic weighted sum
// in [0, 1], not a probability. Reasons lists every contributing signal in
// evaluation order and is empty on a fully clean pass.
type SpamAssessment struct {
	IsSpam     bool     `json:"is_spam"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

// Submission kinds carried on moderation.check.
const (
	KindTitle    = "title"
	KindFeedback = "feedback"
)

// ModerationRequest is published to moderation.check when a submission
// needs async content review.
type ModerationRequest struct {
	SubmissionID string `json:"submission_id"`
	Kind         string `json:"kind"` // "title" or "feedback"
	Text         string `json:"text"`
	Ts           int64  `json:"ts"`
}

// ModerationResult is published back with the review outcome.
type ModerationResult struct {
	SubmissionID string  `json:"submission_id"`
	Flagged      bool    `json:"flagged"`
	Reason       string  `json:"reason,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
}

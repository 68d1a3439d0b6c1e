package models

import (
	"time"
)

type Verdict string

const (
	VerdictSafe    Verdict = "Safe"
	VerdictFlagged Verdict = "Flagged"
	VerdictBlocked Verdict = "Blocked"
)

// severity returns the position of v in the Safe < Flagged < Blocked order.
func (v Verdict) severity() int {
	switch v {
	case VerdictBlocked:
		return 2
	case VerdictFlagged:
		return 1
	default:
		return 0
	}
}

// Escalate returns the more severe of v and to. Escalation is monotonic:
// once a run reaches Blocked nothing can bring it back down.
func (v Verdict) Escalate(to Verdict) Verdict {
	if to.severity() > v.severity() {
		return to
	}
	return v
}

type FindingKind string

const (
	FindingKeywordFlagged FindingKind = "keyword"
	FindingKeywordBlocked FindingKind = "blocked"
	FindingPII            FindingKind = "pii"
	FindingToxic          FindingKind = "toxic"
	FindingLengthWarning  FindingKind = "warning"
	FindingAnalysisError  FindingKind = "error"
)

// Finding is one discrete observation contributing to a verdict.
// Findings are append-only within a run; order is detection order
// (keyword checks, then PII, then toxicity).
type Finding struct {
	Kind       FindingKind `json:"type"`
	Message    string      `json:"message"`
	EntityType string      `json:"entity_type,omitempty"`
	Label      string      `json:"label,omitempty"`
	Score      float64     `json:"score,omitempty"`
}

// PIISpan is a half-open byte range [Start, End) within the original prompt.
// Detectors do not guarantee spans are sorted or non-overlapping.
type PIISpan struct {
	Start      int    `json:"start"`
	End        int    `json:"end"`
	EntityType string `json:"entity_type"`
}

// PIIEntity is one detection reported by a PII capability provider.
type PIIEntity struct {
	Span       PIISpan `json:"span"`
	Confidence float64 `json:"confidence"`
}

// Input message

type PromptRequest struct {
	Text string `json:"text" jsonschema:"required,description=Prompt text to screen"`
}

type ModeUpdate struct {
	Mode string `json:"mode" jsonschema:"required,description=Compliance mode name"`
}

// AnalysisResult is the finalized output of one pipeline run. It is
// immutable after construction and cached by exact prompt text.
// RedactedPrompt is set only when it differs from the input prompt.
type AnalysisResult struct {
	Prompt             string    `json:"prompt"`
	Status             Verdict   `json:"status"`
	Reasons            []Finding `json:"reasons"`
	RedactedPrompt     string    `json:"redacted_prompt,omitempty"`
	DownstreamResponse string    `json:"downstream_response,omitempty"`
}

// LogRecord is the persisted projection of an AnalysisResult. Records are
// append-only; the only delete path is the bulk clear operation.
type LogRecord struct {
	ID                 int64     `json:"id"`
	Prompt             string    `json:"prompt"`
	Status             Verdict   `json:"status"`
	Reasons            []Finding `json:"reasons"`
	Timestamp          time.Time `json:"timestamp"`
	RedactedPrompt     *string   `json:"redacted_prompt"`
	DownstreamResponse *string   `json:"downstream_response"`
}

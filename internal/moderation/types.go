package moderation

import "github.com/tanglechat/moderation/internal/rules"

// Detector names reported in ViolationTypes.
const (
	DetectorProfanity  = "profanity"
	DetectorSpam       = "spam"
	DetectorHarassment = "harassment"
	DetectorCustom     = "custom"
)

// Finding is one detector's partial verdict on a message. A detector that
// finds nothing (or fails internally) reports a neutral finding with
// Violation=false rather than an error, keeping the pipeline total.
type Finding struct {
	Detector   string
	Violation  bool
	Severity   rules.Severity
	Confidence float64
	RuleIDs    []string

	// Spans are matched byte ranges in the original text, recorded by the
	// profanity detector so the content filter can redact them in place.
	Spans [][2]int
}

// Result is the engine's verdict on one message. It is computed per call
// and never persisted; only its side effects on the reputation ledger are.
type Result struct {
	IsViolation     bool           `json:"is_violation"`
	Severity        rules.Severity `json:"severity,omitempty"`
	ViolationTypes  []string       `json:"violation_types,omitempty"`
	Confidence      float64        `json:"confidence"`
	Action          rules.Action   `json:"action"`
	FilteredContent string         `json:"filtered_content,omitempty"`
	Reason          string         `json:"reason,omitempty"`
	RuleIDs         []string       `json:"rule_ids,omitempty"`
}

// Allowed is the neutral result for a message with no confirmed violation.
func Allowed() Result {
	return Result{Action: rules.ActionAllow}
}

// neutral returns a no-violation finding for the named detector.
func neutral(detector string) Finding {
	return Finding{Detector: detector, Severity: rules.SeverityLow}
}

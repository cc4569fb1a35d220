// Package rules holds the moderation rule catalog: the built-in detector
// rules seeded at startup plus operator-added custom rules. The catalog is
// read on every detection call and mutated only by rare administrative
// add/remove operations, so it is guarded by a plain RWMutex and hands out
// snapshot slices to readers.
package rules

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Severity classifies how serious a detected violation is. The values form
// a total order: low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityRank maps severities onto their position in the total order.
var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the ordinal position of s. Unknown severities rank below low.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// Max returns the more severe of s and other.
func (s Severity) Max(other Severity) Severity {
	if other.Rank() > s.Rank() {
		return other
	}
	return s
}

// Valid reports whether s is one of the four known severities.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// Action is the enforcement outcome of a moderation decision.
type Action string

const (
	ActionAllow  Action = "allow"
	ActionWarn   Action = "warn"
	ActionFilter Action = "filter"
	ActionBlock  Action = "block"
	ActionReport Action = "report"
)

// Rule types. The three built-in types correspond to the fixed detectors;
// custom rules are matched by the custom-rule detector.
const (
	TypeProfanity  = "profanity"
	TypeSpam       = "spam"
	TypeHarassment = "harassment"
	TypeCustom     = "custom"
)

// MaxPatternLength caps operator-supplied regex patterns. Go's RE2 engine
// matches in linear time, so a length cap on the pattern (and the compile
// check in Add) is the complexity guard for the evaluation path.
const MaxPatternLength = 512

// Rule is a single moderation rule. Built-in rules carry no pattern or
// keywords; they exist so the fixed detectors have a stable rule id to
// attribute findings to. Custom rules carry a pattern and/or keyword set.
type Rule struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Severity   Severity  `json:"severity"`
	ActionHint Action    `json:"action_hint,omitempty"`
	Pattern    string    `json:"pattern,omitempty"`
	Keywords   []string  `json:"keywords,omitempty"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// re is the pattern compiled once at add time (case-insensitive).
	// Nil when the rule has no pattern.
	re *regexp.Regexp
}

// Regexp returns the compiled pattern, or nil if the rule has none.
func (r *Rule) Regexp() *regexp.Regexp { return r.re }

// validTypes is the set of accepted rule types.
var validTypes = map[string]bool{
	TypeProfanity:  true,
	TypeSpam:       true,
	TypeHarassment: true,
	TypeCustom:     true,
}

// validate checks an operator-supplied rule definition before it enters the
// catalog. Custom rules must carry at least one of pattern or keywords, and
// any pattern must compile and respect the complexity cap.
func validate(r *Rule) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("rules: rule name is empty")
	}
	if !validTypes[r.Type] {
		return fmt.Errorf("rules: invalid rule type %q", r.Type)
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("rules: invalid severity %q", r.Severity)
	}
	if r.Type == TypeCustom && r.Pattern == "" && len(r.Keywords) == 0 {
		return fmt.Errorf("rules: custom rule %q needs a pattern or keywords", r.Name)
	}
	if len(r.Pattern) > MaxPatternLength {
		return fmt.Errorf("rules: pattern exceeds %d character limit", MaxPatternLength)
	}
	return nil
}

// compile builds the case-insensitive regex for a rule pattern.
func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("rules: compile pattern: %w", err)
	}
	return re, nil
}

// newID generates a fresh rule id.
func newID() string {
	return "rule-" + uuid.New().String()
}

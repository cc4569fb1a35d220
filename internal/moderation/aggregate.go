package moderation

import (
	"sort"

	"github.com/tanglechat/moderation/internal/rules"
)

// Aggregate is the merged verdict across all detectors for one message.
type Aggregate struct {
	Violation  bool
	Severity   rules.Severity
	Confidence float64
	Types      []string
	RuleIDs    []string
	Spans      [][2]int
}

// Merge folds partial findings into one aggregate: maximum severity,
// maximum confidence (each detector already caps its own at 1.0), and the
// union of violation types and rule ids across detectors that fired.
// The merge is associative and order-independent; type and rule-id slices
// are sorted so equal inputs produce equal outputs regardless of order.
func Merge(findings []Finding) Aggregate {
	agg := Aggregate{Severity: rules.SeverityLow}

	seenRules := make(map[string]bool)
	for _, f := range findings {
		if !f.Violation {
			continue
		}
		agg.Violation = true
		agg.Severity = agg.Severity.Max(f.Severity)
		if f.Confidence > agg.Confidence {
			agg.Confidence = f.Confidence
		}
		agg.Types = append(agg.Types, f.Detector)
		for _, id := range f.RuleIDs {
			if !seenRules[id] {
				seenRules[id] = true
				agg.RuleIDs = append(agg.RuleIDs, id)
			}
		}
		agg.Spans = append(agg.Spans, f.Spans...)
	}

	sort.Strings(agg.Types)
	sort.Strings(agg.RuleIDs)
	return agg
}

// HasType reports whether detector is among the aggregate's violation types.
func (a Aggregate) HasType(detector string) bool {
	for _, t := range a.Types {
		if t == detector {
			return true
		}
	}
	return false
}

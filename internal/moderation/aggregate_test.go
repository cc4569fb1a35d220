package moderation

import (
	"reflect"
	"testing"

	"github.com/tanglechat/moderation/internal/rules"
)

func TestMerge_OrderIndependent(t *testing.T) {
	a := Finding{Detector: DetectorProfanity, Violation: true, Severity: rules.SeverityMedium, Confidence: 0.6, RuleIDs: []string{rules.BuiltinProfanityID}}
	b := Finding{Detector: DetectorSpam, Violation: true, Severity: rules.SeverityLow, Confidence: 0.55, RuleIDs: []string{rules.BuiltinSpamID}}
	c := Finding{Detector: DetectorHarassment, Violation: true, Severity: rules.SeverityCritical, Confidence: 1.0, RuleIDs: []string{rules.BuiltinHarassmentID}}

	forward := Merge([]Finding{a, b, c})
	reverse := Merge([]Finding{c, b, a})

	if !reflect.DeepEqual(forward, reverse) {
		t.Errorf("merge is order-dependent:\n forward: %+v\n reverse: %+v", forward, reverse)
	}
	if forward.Severity != rules.SeverityCritical {
		t.Errorf("Severity = %s, want critical", forward.Severity)
	}
	if forward.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want max (1.0)", forward.Confidence)
	}
	if want := []string{DetectorHarassment, DetectorProfanity, DetectorSpam}; !reflect.DeepEqual(forward.Types, want) {
		t.Errorf("Types = %v, want %v", forward.Types, want)
	}
}

func TestMerge_IgnoresNeutralFindings(t *testing.T) {
	agg := Merge([]Finding{
		neutral(DetectorProfanity),
		{Detector: DetectorSpam, Violation: true, Severity: rules.SeverityLow, Confidence: 0.55, RuleIDs: []string{rules.BuiltinSpamID}},
		neutral(DetectorCustom),
	})

	if !agg.Violation {
		t.Fatal("expected aggregate violation")
	}
	if !reflect.DeepEqual(agg.Types, []string{DetectorSpam}) {
		t.Errorf("Types = %v, want [spam]", agg.Types)
	}
}

func TestMerge_AllNeutral(t *testing.T) {
	agg := Merge([]Finding{neutral(DetectorProfanity), neutral(DetectorSpam)})
	if agg.Violation {
		t.Error("aggregate violation with no firing detectors")
	}
	if agg.Severity != rules.SeverityLow {
		t.Errorf("Severity = %s, want low", agg.Severity)
	}
}

func TestMerge_DedupesRuleIDs(t *testing.T) {
	agg := Merge([]Finding{
		{Detector: DetectorCustom, Violation: true, Severity: rules.SeverityLow, Confidence: 0.5, RuleIDs: []string{"r1", "r2"}},
		{Detector: DetectorProfanity, Violation: true, Severity: rules.SeverityLow, Confidence: 0.3, RuleIDs: []string{"r1"}},
	})

	if want := []string{"r1", "r2"}; !reflect.DeepEqual(agg.RuleIDs, want) {
		t.Errorf("RuleIDs = %v, want %v", agg.RuleIDs, want)
	}
}

func TestRedact(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		spans [][2]int
		want  string
	}{
		{"no spans", "hello world", nil, "hello world"},
		{"single span", "you stupid fool", [][2]int{{4, 10}}, "you ****** fool"},
		{"two spans", "aa bb cc", [][2]int{{0, 2}, {6, 8}}, "** bb **"},
		{"overlapping spans", "abcdef", [][2]int{{0, 4}, {2, 6}}, "******"},
		{"span past end clamped", "abc", [][2]int{{1, 99}}, "a**"},
		{"whole text", "bad", [][2]int{{0, 3}}, "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Redact(tt.text, tt.spans); got != tt.want {
				t.Errorf("Redact(%q, %v) = %q, want %q", tt.text, tt.spans, got, tt.want)
			}
		})
	}
}

func TestRedact_EqualLengthMask(t *testing.T) {
	text := "you stupid fool"
	f := detectProfanity(text)
	got := Redact(text, f.Spans)
	if len(got) != len(text) {
		t.Errorf("redacted length %d, want %d", len(got), len(text))
	}
	if got != "you ****** fool" {
		t.Errorf("Redact = %q, want %q", got, "you ****** fool")
	}
}

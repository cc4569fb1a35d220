package moderation

import (
	"testing"

	"github.com/tanglechat/moderation/internal/rules"
)

func TestProfanity_Matches(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fires    bool
		severity rules.Severity
	}{
		{"clean message", "hello, how are you?", false, rules.SeverityLow},
		{"single term", "this is stupid", true, rules.SeverityLow},
		{"two terms", "you stupid idiot", true, rules.SeverityMedium},
		{"repeated term", "stupid stupid stupid", true, rules.SeverityMedium},
		{"four terms", "stupid idiot moron jerk", true, rules.SeverityHigh},
		{"case insensitive", "STUPID", true, rules.SeverityLow},
		{"leet digits", "stup1d", true, rules.SeverityLow},
		{"leet mid-word", "1d1ot", true, rules.SeverityLow},
		{"substring no match", "assessment class", false, rules.SeverityLow},
		{"empty", "", false, rules.SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := detectProfanity(tt.input)
			if f.Violation != tt.fires {
				t.Fatalf("detectProfanity(%q).Violation = %v, want %v", tt.input, f.Violation, tt.fires)
			}
			if tt.fires && f.Severity != tt.severity {
				t.Errorf("Severity = %s, want %s", f.Severity, tt.severity)
			}
		})
	}
}

func TestProfanity_Confidence(t *testing.T) {
	f := detectProfanity("this is stupid")
	if f.Confidence < 0.29 || f.Confidence > 0.31 {
		t.Errorf("one match: Confidence = %v, want 0.3", f.Confidence)
	}

	f = detectProfanity("stupid idiot moron jerk loser")
	if f.Confidence != 1.0 {
		t.Errorf("five matches: Confidence = %v, want capped at 1.0", f.Confidence)
	}
}

func TestProfanity_Spans(t *testing.T) {
	f := detectProfanity("you stupid fool")
	if len(f.Spans) != 1 {
		t.Fatalf("Spans = %v, want one span", f.Spans)
	}
	span := f.Spans[0]
	if got := "you stupid fool"[span[0]:span[1]]; got != "stupid" {
		t.Errorf("span covers %q, want %q", got, "stupid")
	}

	if ids := f.RuleIDs; len(ids) != 1 || ids[0] != rules.BuiltinProfanityID {
		t.Errorf("RuleIDs = %v, want [%s]", ids, rules.BuiltinProfanityID)
	}
}

package moderation

import (
	"testing"

	"github.com/tanglechat/moderation/internal/rules"
)

func TestCustom_PatternMatch(t *testing.T) {
	catalog := rules.NewCatalog()
	id, err := catalog.Add(rules.Rule{
		Name:     "shouting",
		Type:     rules.TypeCustom,
		Severity: rules.SeverityHigh,
		Pattern:  "^[A-Z]{10,}$",
		Enabled:  true,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	f := detectCustom("ABCDEFGHIJKLMNO", catalog)
	if !f.Violation {
		t.Fatal("expected violation for 15 uppercase letters")
	}
	if f.Severity != rules.SeverityHigh {
		t.Errorf("Severity = %s, want high (rule severity)", f.Severity)
	}
	if f.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", f.Confidence)
	}
	if len(f.RuleIDs) != 1 || f.RuleIDs[0] != id {
		t.Errorf("RuleIDs = %v, want [%s]", f.RuleIDs, id)
	}

	if f := detectCustom("not shouting at all", catalog); f.Violation {
		t.Error("clean message flagged")
	}
}

func TestCustom_KeywordMatch(t *testing.T) {
	catalog := rules.NewCatalog()
	id, err := catalog.Add(rules.Rule{
		Name:     "crypto scams",
		Type:     rules.TypeCustom,
		Severity: rules.SeverityMedium,
		Keywords: []string{"free bitcoin", "crypto giveaway"},
		Enabled:  true,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	f := detectCustom("claim your FREE BITCOIN today", catalog)
	if !f.Violation {
		t.Fatal("expected violation for keyword substring")
	}
	if f.RuleIDs[0] != id {
		t.Errorf("RuleIDs = %v, want [%s]", f.RuleIDs, id)
	}
}

func TestCustom_SeverityFold(t *testing.T) {
	catalog := rules.NewCatalog()
	if _, err := catalog.Add(rules.Rule{
		Name: "mild", Type: rules.TypeCustom, Severity: rules.SeverityLow, Keywords: []string{"aaa"}, Enabled: true,
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := catalog.Add(rules.Rule{
		Name: "severe", Type: rules.TypeCustom, Severity: rules.SeverityCritical, Keywords: []string{"bbb"}, Enabled: true,
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	f := detectCustom("aaa and bbb", catalog)
	if !f.Violation {
		t.Fatal("expected violation")
	}
	if f.Severity != rules.SeverityCritical {
		t.Errorf("Severity = %s, want critical (max fold)", f.Severity)
	}
	if f.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0 (two matches)", f.Confidence)
	}
	if len(f.RuleIDs) != 2 {
		t.Errorf("RuleIDs = %v, want both rule ids", f.RuleIDs)
	}
}

func TestCustom_NoRules(t *testing.T) {
	f := detectCustom("anything", rules.NewCatalog())
	if f.Violation {
		t.Error("violation with no custom rules in the catalog")
	}
}

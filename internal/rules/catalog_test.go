package rules

import (
	"testing"
)

func TestNewCatalog_SeedsBuiltins(t *testing.T) {
	c := NewCatalog()

	for _, id := range []string{BuiltinProfanityID, BuiltinSpamID, BuiltinHarassmentID} {
		r := c.Get(id)
		if r == nil {
			t.Fatalf("builtin rule %s not seeded", id)
		}
		if !r.Enabled {
			t.Errorf("builtin rule %s not enabled", id)
		}
	}

	if got := len(c.List()); got != 3 {
		t.Errorf("List() returned %d rules, want 3", got)
	}
}

func TestAdd_Valid(t *testing.T) {
	c := NewCatalog()

	id, err := c.Add(Rule{
		Name:     "caps flood",
		Type:     TypeCustom,
		Severity: SeverityHigh,
		Pattern:  "^[A-Z]{10,}$",
		Enabled:  true,
	})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if id == "" {
		t.Fatal("Add returned empty id")
	}

	r := c.Get(id)
	if r == nil {
		t.Fatal("added rule not found")
	}
	if !r.Enabled {
		t.Error("added rule not enabled")
	}
	if r.Regexp() == nil {
		t.Error("pattern was not compiled at add time")
	}
	if r.CreatedAt.IsZero() || r.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestAdd_Invalid(t *testing.T) {
	c := NewCatalog()

	tests := []struct {
		name string
		rule Rule
	}{
		{"empty name", Rule{Type: TypeCustom, Severity: SeverityLow, Pattern: "x"}},
		{"bad type", Rule{Name: "r", Type: "regex", Severity: SeverityLow, Pattern: "x"}},
		{"bad severity", Rule{Name: "r", Type: TypeCustom, Severity: "extreme", Pattern: "x"}},
		{"custom without pattern or keywords", Rule{Name: "r", Type: TypeCustom, Severity: SeverityLow}},
		{"malformed pattern", Rule{Name: "r", Type: TypeCustom, Severity: SeverityLow, Pattern: "(["}},
		{"oversized pattern", Rule{Name: "r", Type: TypeCustom, Severity: SeverityLow, Pattern: string(make([]byte, MaxPatternLength+1))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Add(tt.rule); err == nil {
				t.Errorf("Add(%+v) succeeded, want error", tt.rule)
			}
		})
	}
}

func TestRemove(t *testing.T) {
	c := NewCatalog()

	id, err := c.Add(Rule{Name: "kw", Type: TypeCustom, Severity: SeverityLow, Keywords: []string{"junk"}})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if !c.Remove(id) {
		t.Error("Remove(custom) = false, want true")
	}
	if c.Remove(id) {
		t.Error("Remove(already removed) = true, want false")
	}
	if c.Remove(BuiltinProfanityID) {
		t.Error("Remove(builtin) = true, want false")
	}
	if c.Get(BuiltinProfanityID) == nil {
		t.Error("builtin rule disappeared")
	}
}

func TestEnabledCustom(t *testing.T) {
	c := NewCatalog()

	idA, _ := c.Add(Rule{Name: "a", Type: TypeCustom, Severity: SeverityLow, Keywords: []string{"a"}, Enabled: true})
	idB, _ := c.Add(Rule{Name: "b", Type: TypeCustom, Severity: SeverityLow, Keywords: []string{"b"}, Enabled: true})
	if err := c.SetEnabled(idB, false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}

	enabled := c.EnabledCustom()
	if len(enabled) != 1 {
		t.Fatalf("EnabledCustom returned %d rules, want 1", len(enabled))
	}
	if enabled[0].ID != idA {
		t.Errorf("EnabledCustom returned %s, want %s", enabled[0].ID, idA)
	}
}

func TestAdd_DisabledStaysDisabled(t *testing.T) {
	c := NewCatalog()

	id, err := c.Add(Rule{Name: "staged", Type: TypeCustom, Severity: SeverityLow, Keywords: []string{"draft"}})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if c.Get(id).Enabled {
		t.Error("rule added without Enabled should stay disabled")
	}
	if len(c.EnabledCustom()) != 0 {
		t.Errorf("disabled rule leaked into EnabledCustom: %v", c.EnabledCustom())
	}

	if err := c.SetEnabled(id, true); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if got := c.EnabledCustom(); len(got) != 1 || got[0].ID != id {
		t.Errorf("EnabledCustom after SetEnabled = %v, want [%s]", got, id)
	}
}

func TestSeverityOrdering(t *testing.T) {
	ordered := []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Errorf("%s should rank above %s", ordered[i], ordered[i-1])
		}
	}

	if got := SeverityMedium.Max(SeverityHigh); got != SeverityHigh {
		t.Errorf("medium.Max(high) = %s, want high", got)
	}
	if got := SeverityCritical.Max(SeverityLow); got != SeverityCritical {
		t.Errorf("critical.Max(low) = %s, want critical", got)
	}
}

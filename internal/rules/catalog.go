package rules

import (
	"fmt"
	"sync"
	"time"
)

// Built-in rule ids. These are seeded at catalog construction and are not
// removable through the custom-rule path.
const (
	BuiltinProfanityID  = "builtin-profanity"
	BuiltinSpamID       = "builtin-spam"
	BuiltinHarassmentID = "builtin-harassment"
)

// Catalog holds the active rule set keyed by rule id. Reads (every
// detection call) take the read lock only long enough to copy out a
// snapshot slice, so they never block on a concurrent writer beyond the
// duration of the swap.
type Catalog struct {
	mu    sync.RWMutex
	rules map[string]*Rule
}

// NewCatalog creates a catalog seeded with the three built-in detector
// rules, all enabled.
func NewCatalog() *Catalog {
	c := &Catalog{rules: make(map[string]*Rule)}
	now := time.Now()
	for _, b := range []struct {
		id, name, typ string
		severity      Severity
		hint          Action
	}{
		{BuiltinProfanityID, "Profanity Filter", TypeProfanity, SeverityMedium, ActionFilter},
		{BuiltinSpamID, "Spam Detection", TypeSpam, SeverityMedium, ActionWarn},
		{BuiltinHarassmentID, "Harassment Detection", TypeHarassment, SeverityHigh, ActionBlock},
	} {
		c.rules[b.id] = &Rule{
			ID:         b.id,
			Name:       b.name,
			Type:       b.typ,
			Severity:   b.severity,
			ActionHint: b.hint,
			Enabled:    true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}
	return c
}

// Add validates and inserts an operator-supplied rule, compiling its
// pattern once. The rule's id is generated here and returned. The Enabled
// field is stored as submitted, so a rule can be staged disabled and
// switched on later with SetEnabled.
func (c *Catalog) Add(r Rule) (string, error) {
	if err := validate(&r); err != nil {
		return "", err
	}
	if r.Pattern != "" {
		re, err := compile(r.Pattern)
		if err != nil {
			return "", err
		}
		r.re = re
	}

	r.ID = newID()
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now

	c.mu.Lock()
	c.rules[r.ID] = &r
	c.mu.Unlock()
	return r.ID, nil
}

// Remove deletes a custom rule by id. Built-in rules cannot be removed;
// attempting to do so returns false, as does removing an unknown id.
func (c *Catalog) Remove(id string) bool {
	switch id {
	case BuiltinProfanityID, BuiltinSpamID, BuiltinHarassmentID:
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.rules[id]; !ok {
		return false
	}
	delete(c.rules, id)
	return true
}

// Get returns the rule with the given id, or nil if absent.
func (c *Catalog) Get(id string) *Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rules[id]
}

// List returns a snapshot of every rule in the catalog.
func (c *Catalog) List() []Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Rule, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, *r)
	}
	return out
}

// EnabledCustom returns a snapshot of the enabled rules that carry a
// pattern or keyword set, i.e. the rules the custom-rule detector should
// evaluate. Built-in rules carry neither and are skipped.
func (c *Catalog) EnabledCustom() []*Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Rule, 0, len(c.rules))
	for _, r := range c.rules {
		if !r.Enabled {
			continue
		}
		if r.re == nil && len(r.Keywords) == 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SetEnabled toggles a rule on or off. Returns an error for unknown ids.
func (c *Catalog) SetEnabled(id string, enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rules[id]
	if !ok {
		return fmt.Errorf("rules: unknown rule id %q", id)
	}
	r.Enabled = enabled
	r.UpdatedAt = time.Now()
	return nil
}

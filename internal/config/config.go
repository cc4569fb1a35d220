// Package config holds the moderation feature toggles. The set of toggles
// is closed: a strongly typed struct enumerates every flag the engine
// understands, so there is no way to set an unknown key. The live config is
// swapped atomically, making reads on the hot detection path lock-free.
package config

import (
	"os"
	"strings"
	"sync/atomic"
)

// Config enumerates the moderation feature toggles.
type Config struct {
	// EnableProfanityFilter runs the profanity detector on every message.
	EnableProfanityFilter bool `json:"enable_profanity_filter"`

	// EnableSpamDetection runs the structural spam heuristics.
	EnableSpamDetection bool `json:"enable_spam_detection"`

	// EnableHarassmentDetection runs the harassment keyword detector.
	EnableHarassmentDetection bool `json:"enable_harassment_detection"`

	// AutoModerationEnabled allows the report processor to auto-resolve
	// spam-category reports and apply the associated reputation penalty.
	AutoModerationEnabled bool `json:"auto_moderation_enabled"`

	// StrictMode lowers the spam and harassment confidence thresholds and
	// disables the first-offense leniency in the action policy.
	StrictMode bool `json:"strict_mode"`

	// CustomRulesEnabled runs operator-added rules from the catalog.
	CustomRulesEnabled bool `json:"custom_rules_enabled"`

	// ReportingEnabled accepts user-submitted abuse reports.
	ReportingEnabled bool `json:"reporting_enabled"`

	// AppealProcessEnabled accepts appeals against resolved reports.
	AppealProcessEnabled bool `json:"appeal_process_enabled"`
}

// Default returns the startup configuration: every workflow on except
// strict mode.
func Default() Config {
	return Config{
		EnableProfanityFilter:     true,
		EnableSpamDetection:       true,
		EnableHarassmentDetection: true,
		AutoModerationEnabled:     true,
		StrictMode:                false,
		CustomRulesEnabled:        true,
		ReportingEnabled:          true,
		AppealProcessEnabled:      true,
	}
}

// FromEnv seeds a config from MOD_* environment variables, starting from
// Default. Unset variables keep their default; values "0", "false" and
// "off" (any casing) disable, anything else enables.
func FromEnv() Config {
	c := Default()
	envBool("MOD_PROFANITY_FILTER", &c.EnableProfanityFilter)
	envBool("MOD_SPAM_DETECTION", &c.EnableSpamDetection)
	envBool("MOD_HARASSMENT_DETECTION", &c.EnableHarassmentDetection)
	envBool("MOD_AUTO_MODERATION", &c.AutoModerationEnabled)
	envBool("MOD_STRICT_MODE", &c.StrictMode)
	envBool("MOD_CUSTOM_RULES", &c.CustomRulesEnabled)
	envBool("MOD_REPORTING", &c.ReportingEnabled)
	envBool("MOD_APPEALS", &c.AppealProcessEnabled)
	return c
}

func envBool(name string, dst *bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	switch strings.ToLower(v) {
	case "0", "false", "off", "no":
		*dst = false
	default:
		*dst = true
	}
}

// Patch is a partial config update. Nil fields leave the current value
// untouched. Because the fields mirror Config exactly, an update cannot
// introduce keys the engine does not understand.
type Patch struct {
	EnableProfanityFilter     *bool `json:"enable_profanity_filter,omitempty"`
	EnableSpamDetection       *bool `json:"enable_spam_detection,omitempty"`
	EnableHarassmentDetection *bool `json:"enable_harassment_detection,omitempty"`
	AutoModerationEnabled     *bool `json:"auto_moderation_enabled,omitempty"`
	StrictMode                *bool `json:"strict_mode,omitempty"`
	CustomRulesEnabled        *bool `json:"custom_rules_enabled,omitempty"`
	ReportingEnabled          *bool `json:"reporting_enabled,omitempty"`
	AppealProcessEnabled      *bool `json:"appeal_process_enabled,omitempty"`
}

// Store holds the live configuration. Get returns a consistent snapshot;
// Update swaps in a new config built from the current one plus a patch.
type Store struct {
	current atomic.Pointer[Config]
}

// NewStore creates a config store seeded with the given configuration.
func NewStore(c Config) *Store {
	s := &Store{}
	s.current.Store(&c)
	return s
}

// Get returns the current configuration snapshot.
func (s *Store) Get() Config {
	return *s.current.Load()
}

// Update applies a partial update and swaps the result in atomically.
// Detection calls already in flight keep the snapshot they started with.
func (s *Store) Update(p Patch) Config {
	c := s.Get()
	apply(&c.EnableProfanityFilter, p.EnableProfanityFilter)
	apply(&c.EnableSpamDetection, p.EnableSpamDetection)
	apply(&c.EnableHarassmentDetection, p.EnableHarassmentDetection)
	apply(&c.AutoModerationEnabled, p.AutoModerationEnabled)
	apply(&c.StrictMode, p.StrictMode)
	apply(&c.CustomRulesEnabled, p.CustomRulesEnabled)
	apply(&c.ReportingEnabled, p.ReportingEnabled)
	apply(&c.AppealProcessEnabled, p.AppealProcessEnabled)
	s.current.Store(&c)
	return c
}

func apply(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

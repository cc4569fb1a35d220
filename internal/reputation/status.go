// Package reputation maintains the per-user moderation ledger: warning and
// violation counters, trust score, and time-bounded mute/ban state. Records
// are keyed by user id and mutated only through atomic per-key
// read-modify-write updates, so two messages from the same sender racing
// through the engine can never lose a penalty.
package reputation

import "time"

// Trust score bounds. Scores are clamped to this range on every write.
const (
	TrustMin     = 0
	TrustMax     = 100
	TrustDefault = 100
)

// Status is one user's reputation record. A mute or ban with a past expiry
// is treated as inactive, but the flag itself is not auto-cleared until the
// next write: callers must use ActivelyMuted/ActivelyBanned rather than
// trusting the flag alone.
type Status struct {
	UserID         string     `json:"user_id"`
	WarningCount   int        `json:"warning_count"`
	ViolationCount int        `json:"violation_count"`
	LastViolation  *time.Time `json:"last_violation,omitempty"`
	IsMuted        bool       `json:"is_muted"`
	MuteExpiry     *time.Time `json:"mute_expiry,omitempty"`
	IsBanned       bool       `json:"is_banned"`
	BanExpiry      *time.Time `json:"ban_expiry,omitempty"`
	TrustScore     int        `json:"trust_score"`
}

// DefaultStatus returns the record a user has before their first violation.
func DefaultStatus(userID string) Status {
	return Status{UserID: userID, TrustScore: TrustDefault}
}

// ActivelyMuted reports whether the user's mute is in effect at now.
// A mute with no expiry is indefinite.
func (s *Status) ActivelyMuted(now time.Time) bool {
	if !s.IsMuted {
		return false
	}
	return s.MuteExpiry == nil || s.MuteExpiry.After(now)
}

// ActivelyBanned reports whether the user's ban is in effect at now.
// A ban with no expiry is indefinite.
func (s *Status) ActivelyBanned(now time.Time) bool {
	if !s.IsBanned {
		return false
	}
	return s.BanExpiry == nil || s.BanExpiry.After(now)
}

// AdjustTrust applies a trust-score delta, clamping the result to
// [TrustMin, TrustMax].
func (s *Status) AdjustTrust(delta int) {
	s.TrustScore += delta
	if s.TrustScore < TrustMin {
		s.TrustScore = TrustMin
	}
	if s.TrustScore > TrustMax {
		s.TrustScore = TrustMax
	}
}

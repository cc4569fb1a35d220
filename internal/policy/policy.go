// Package policy decides the enforcement action for an aggregated
// moderation verdict and applies the resulting reputation penalty. The
// decision reads the sender's current ledger record; the penalty is a
// single atomic per-user update so racing messages from one sender never
// lose a violation.
package policy

import (
	"context"
	"log"
	"time"

	"github.com/tanglechat/moderation/internal/reputation"
	"github.com/tanglechat/moderation/internal/rules"
)

// Restriction durations applied by the escalation rules.
const (
	MuteDuration = 24 * time.Hour
	BanDuration  = 7 * 24 * time.Hour
)

// Escalation thresholds.
const (
	// repeatOffenderCount is the violation count above which the repeat-
	// offender rule kicks in.
	repeatOffenderCount = 5

	// muteAfterCount mutes a blocked sender whose violation count (after
	// the current increment) exceeds this.
	muteAfterCount = 3

	// banAfterCount bans a sender whose violation count exceeds this.
	banAfterCount = 10

	// lowTrust is the trust score below which a high-severity violation is
	// blocked outright.
	lowTrust = 30
)

// Decide maps an aggregated severity, the sender's current reputation, and
// the set of detectors that fired onto an enforcement action. The rules
// are evaluated in order; the first that applies wins. When strict is set
// the first-offense leniency is skipped and such senders fall through to
// the default severity tier.
func Decide(severity rules.Severity, status reputation.Status, violationTypes []string, strict bool) rules.Action {
	profanity := contains(violationTypes, "profanity")

	switch {
	case severity == rules.SeverityCritical:
		return rules.ActionBlock

	case severity == rules.SeverityHigh && status.TrustScore < lowTrust:
		return rules.ActionBlock

	case status.ViolationCount > repeatOffenderCount:
		if severity == rules.SeverityHigh {
			return rules.ActionBlock
		}
		return rules.ActionFilter

	case status.ViolationCount == 0 && !strict:
		// First offense: lead with a warning or a redaction, not a block.
		if severity == rules.SeverityHigh {
			return rules.ActionWarn
		}
		if profanity {
			return rules.ActionFilter
		}
		return rules.ActionAllow
	}

	switch severity {
	case rules.SeverityHigh:
		return rules.ActionFilter
	case rules.SeverityMedium:
		if profanity {
			return rules.ActionFilter
		}
		return rules.ActionWarn
	default:
		return rules.ActionAllow
	}
}

// PenaltyFor returns the trust-score cost of a violation at the given
// severity.
func PenaltyFor(severity rules.Severity) int {
	switch severity {
	case rules.SeverityCritical:
		return 20
	case rules.SeverityHigh:
		return 15
	case rules.SeverityMedium:
		return 10
	default:
		return 5
	}
}

// Apply records a confirmed violation on the sender's ledger record in one
// transactional update: trust decrement, violation count increment,
// last-violation timestamp, and the mute/ban escalations keyed off the
// post-increment count. Returns the updated record.
func Apply(ctx context.Context, store reputation.Store, userID string, severity rules.Severity, action rules.Action) (reputation.Status, error) {
	now := time.Now()
	return store.Update(ctx, userID, func(s *reputation.Status) {
		s.AdjustTrust(-PenaltyFor(severity))
		s.ViolationCount++
		t := now
		s.LastViolation = &t

		if action == rules.ActionBlock && s.ViolationCount > muteAfterCount {
			s.IsMuted = true
			exp := now.Add(MuteDuration)
			s.MuteExpiry = &exp
		}
		if s.ViolationCount > banAfterCount || severity == rules.SeverityCritical {
			s.IsBanned = true
			exp := now.Add(BanDuration)
			s.BanExpiry = &exp
		}
	})
}

// ApplyBestEffort is Apply with the error swallowed into a missed-penalty
// log line. The moderation result already computed is still valid for the
// caller; the ledger write is not retried.
func ApplyBestEffort(ctx context.Context, store reputation.Store, userID string, severity rules.Severity, action rules.Action, onMiss func()) (reputation.Status, bool) {
	updated, err := Apply(ctx, store, userID, severity, action)
	if err != nil {
		log.Printf("[policy] missed penalty for user=%s severity=%s: %v", userID, severity, err)
		if onMiss != nil {
			onMiss()
		}
		return updated, false
	}
	return updated, true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Package engine is the facade of the moderation subsystem. It wires the
// detection pipeline, the action policy, the reputation ledger, and the
// report processor behind the function contract the message-send and
// report-intake paths call. The engine holds no hidden globals: every
// dependency is injected at construction so the same logic runs against
// in-memory test doubles or the real Redis/PostgreSQL stores.
package engine

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/tanglechat/moderation/internal/config"
	"github.com/tanglechat/moderation/internal/metrics"
	"github.com/tanglechat/moderation/internal/moderation"
	"github.com/tanglechat/moderation/internal/policy"
	"github.com/tanglechat/moderation/internal/report"
	"github.com/tanglechat/moderation/internal/reputation"
	"github.com/tanglechat/moderation/internal/rules"
)

// Short-circuit reasons for restricted senders.
const (
	ReasonBanned     = "User is currently banned"
	ReasonMuted      = "User is currently muted"
	ReasonCheckError = "Moderation check failed"
)

// MessageContext carries optional conversation context for a message.
// Detectors currently ignore it; it is accepted so call sites don't need
// to change if per-conversation policy lands later.
type MessageContext struct {
	ConversationID string
	RecipientID    string
}

// Engine evaluates messages and manages the surrounding moderation state.
type Engine struct {
	rules    *rules.Catalog
	cfg      *config.Store
	ledger   reputation.Store
	reports  *report.Processor
	pipeline *moderation.Pipeline
}

// New constructs an engine from its dependencies.
func New(catalog *rules.Catalog, cfg *config.Store, ledger reputation.Store, reports *report.Processor) *Engine {
	return &Engine{
		rules:    catalog,
		cfg:      cfg,
		ledger:   ledger,
		reports:  reports,
		pipeline: moderation.NewPipeline(catalog),
	}
}

// ModerateMessage inspects one outgoing message and returns the verdict.
// It never fails closed: any internal error or panic degrades to an
// "allow" result with ReasonCheckError, because availability of the chat
// system outranks a missed detection.
func (e *Engine) ModerateMessage(ctx context.Context, text, senderID string, _ *MessageContext) (result moderation.Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[engine] moderation panic for sender=%s: %v (failing open)", senderID, r)
			result = moderation.Allowed()
			result.Reason = ReasonCheckError
		}
		metrics.EvalDuration.Observe(time.Since(start).Seconds())
		metrics.Decisions.WithLabelValues(string(result.Action)).Inc()
	}()

	status, err := e.ledger.Get(ctx, senderID)
	if err != nil {
		log.Printf("[engine] ledger read failed for sender=%s: %v (using defaults)", senderID, err)
		status = reputation.DefaultStatus(senderID)
	}

	// Active restrictions short-circuit detection entirely.
	now := time.Now()
	if status.ActivelyBanned(now) {
		return blocked(ReasonBanned)
	}
	if status.ActivelyMuted(now) {
		return blocked(ReasonMuted)
	}

	cfg := e.cfg.Get()
	agg := moderation.Merge(e.pipeline.Evaluate(text, status, cfg))
	if !agg.Violation {
		return moderation.Allowed()
	}

	for _, detector := range agg.Types {
		metrics.DetectorFirings.WithLabelValues(detector).Inc()
	}

	action := policy.Decide(agg.Severity, status, agg.Types, cfg.StrictMode)
	policy.ApplyBestEffort(ctx, e.ledger, senderID, agg.Severity, action, func() {
		metrics.MissedPenalties.Inc()
	})

	result = moderation.Result{
		IsViolation:    true,
		Severity:       agg.Severity,
		ViolationTypes: agg.Types,
		Confidence:     agg.Confidence,
		Action:         action,
		Reason:         "Message flagged for " + strings.Join(agg.Types, ", "),
		RuleIDs:        agg.RuleIDs,
	}
	if action == rules.ActionFilter && agg.HasType(moderation.DetectorProfanity) {
		result.FilteredContent = moderation.Redact(text, agg.Spans)
	}
	return result
}

func blocked(reason string) moderation.Result {
	return moderation.Result{
		IsViolation: true,
		Confidence:  1.0,
		Action:      rules.ActionBlock,
		Reason:      reason,
	}
}

// ReportMessage files an abuse report and returns its id. Store failures
// propagate: a report that silently disappears is worse than a visible
// failure the caller can retry.
func (e *Engine) ReportMessage(ctx context.Context, messageID, reporterID, reportedUserID, reason, category, description string) (string, error) {
	id, status, err := e.reports.Submit(ctx, messageID, reporterID, reportedUserID, reason, category, description)
	if err != nil {
		return "", err
	}
	metrics.ReportsTotal.WithLabelValues(category, status).Inc()
	return id, nil
}

// AppealReport reopens a resolved report for manual review, when the
// appeal process is enabled.
func (e *Engine) AppealReport(ctx context.Context, reportID, userID string) error {
	return e.reports.Appeal(ctx, reportID, userID)
}

// GetUserStatus returns the sender's reputation record. It never fails:
// on a ledger error the default-safe record is returned.
func (e *Engine) GetUserStatus(ctx context.Context, userID string) reputation.Status {
	status, err := e.ledger.Get(ctx, userID)
	if err != nil {
		log.Printf("[engine] status read failed for user=%s: %v (using defaults)", userID, err)
		return reputation.DefaultStatus(userID)
	}
	return status
}

// GetConfig returns the current moderation configuration snapshot.
func (e *Engine) GetConfig() config.Config {
	return e.cfg.Get()
}

// UpdateConfig applies a partial config update and returns the result.
func (e *Engine) UpdateConfig(p config.Patch) config.Config {
	updated := e.cfg.Update(p)
	log.Printf("[engine] config updated: %+v", updated)
	return updated
}

// AddCustomRule validates and installs an operator-supplied rule,
// returning its generated id. Invalid definitions are rejected here, with
// a defensive skip-and-warn at evaluation time for anything that slips
// through.
func (e *Engine) AddCustomRule(r rules.Rule) (string, error) {
	id, err := e.rules.Add(r)
	if err != nil {
		return "", err
	}
	log.Printf("[engine] custom rule added id=%s name=%q type=%s severity=%s", id, r.Name, r.Type, r.Severity)
	return id, nil
}

// RemoveCustomRule deletes a custom rule. Built-in rules are not
// removable; removing them (or an unknown id) returns false.
func (e *Engine) RemoveCustomRule(id string) bool {
	removed := e.rules.Remove(id)
	if removed {
		log.Printf("[engine] custom rule removed id=%s", id)
	}
	return removed
}

// ListRules returns a snapshot of the rule catalog.
func (e *Engine) ListRules() []rules.Rule {
	return e.rules.List()
}

// GetReports returns reports filtered by status (empty = all reports).
// Read failures degrade to an empty list.
func (e *Engine) GetReports(ctx context.Context, status string) []report.Report {
	return e.reports.List(ctx, status)
}

package report

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tanglechat/moderation/internal/config"
	"github.com/tanglechat/moderation/internal/ratelimit"
	"github.com/tanglechat/moderation/internal/reputation"
)

// AutoResolution is the resolution string written onto auto-resolved spam
// reports.
const AutoResolution = "Auto-resolved: spam report processed by automated moderation"

// autoReviewer is recorded as the reviewer of auto-resolved reports.
const autoReviewer = "auto-moderation"

// Penalties applied to the reported user when a spam report auto-resolves.
const (
	autoResolveTrustPenalty = 5
	autoResolveWarnings     = 1
)

// Processor handles report intake and auto-resolution. Besides the action
// policy this is the only path that mutates the reputation ledger.
type Processor struct {
	store   Store
	ledger  reputation.Store
	cfg     *config.Store
	limiter *ratelimit.Limiter // optional; nil disables throttling
}

// NewProcessor creates a report processor. limiter may be nil, in which
// case report submissions are not throttled.
func NewProcessor(store Store, ledger reputation.Store, cfg *config.Store, limiter *ratelimit.Limiter) *Processor {
	return &Processor{store: store, ledger: ledger, cfg: cfg, limiter: limiter}
}

// Submit validates and persists a new report, returning its id and the
// status it was stored with. When auto moderation is on and the category
// is spam, the report resolves in the same call: status becomes resolved,
// and the reported user's ledger record takes a warning and a trust
// penalty. Store failures on create propagate to the caller.
func (p *Processor) Submit(ctx context.Context, messageID, reporterID, reportedUserID, reason, category, description string) (string, string, error) {
	cfg := p.cfg.Get()
	if !cfg.ReportingEnabled {
		return "", "", fmt.Errorf("report: reporting is disabled")
	}
	if !validCategories[category] {
		return "", "", fmt.Errorf("report: invalid category %q", category)
	}
	if strings.TrimSpace(reason) == "" {
		return "", "", fmt.Errorf("report: reason is empty")
	}
	if reporterID == reportedUserID {
		return "", "", fmt.Errorf("report: cannot report yourself")
	}

	if p.limiter != nil {
		allowed, _ := p.limiter.Allow(ctx, reporterID, ratelimit.RuleReport)
		if !allowed {
			return "", "", fmt.Errorf("report: rate limit exceeded for reporter %s", reporterID)
		}
	}

	r := &Report{
		ID:             uuid.New().String(),
		MessageID:      messageID,
		ReporterID:     reporterID,
		ReportedUserID: reportedUserID,
		Reason:         reason,
		Category:       category,
		Description:    description,
		Status:         StatusPending,
		CreatedAt:      time.Now(),
	}
	if err := p.store.Create(ctx, r); err != nil {
		return "", "", fmt.Errorf("report: create: %w", err)
	}

	if cfg.AutoModerationEnabled && category == CategorySpam {
		if err := p.autoResolve(ctx, r); err != nil {
			// The report itself was stored; auto-resolution is best effort
			// and the report stays pending for manual review.
			log.Printf("[report] auto-resolve failed for report=%s: %v", r.ID, err)
		}
	}

	return r.ID, r.Status, nil
}

// autoResolve marks a spam report resolved and applies the reputation
// penalty to the reported user, synchronously with intake. When the store
// write fails, r is rolled back to pending so it mirrors the stored row.
func (p *Processor) autoResolve(ctx context.Context, r *Report) error {
	now := time.Now()
	r.Status = StatusResolved
	r.ReviewedAt = &now
	r.ReviewedBy = autoReviewer
	r.Resolution = AutoResolution
	if err := p.store.Update(ctx, r); err != nil {
		r.Status = StatusPending
		r.ReviewedAt = nil
		r.ReviewedBy = ""
		r.Resolution = ""
		return err
	}

	_, err := p.ledger.Update(ctx, r.ReportedUserID, func(s *reputation.Status) {
		s.WarningCount += autoResolveWarnings
		s.AdjustTrust(-autoResolveTrustPenalty)
	})
	if err != nil {
		log.Printf("[report] missed penalty for reported user=%s report=%s: %v", r.ReportedUserID, r.ID, err)
	}
	return nil
}

// Appeal reopens a resolved or dismissed report for manual review. The
// manual-review workflow itself is out of scope; an appeal only moves the
// report back into the reviewed state.
func (p *Processor) Appeal(ctx context.Context, reportID, userID string) error {
	if !p.cfg.Get().AppealProcessEnabled {
		return fmt.Errorf("report: appeals are disabled")
	}

	if p.limiter != nil {
		allowed, _ := p.limiter.Allow(ctx, userID, ratelimit.RuleAppeal)
		if !allowed {
			return fmt.Errorf("report: appeal rate limit exceeded for user %s", userID)
		}
	}

	r, err := p.store.Get(ctx, reportID)
	if err != nil {
		return fmt.Errorf("report: appeal: %w", err)
	}
	if r.ReportedUserID != userID {
		return fmt.Errorf("report: user %s cannot appeal report %s", userID, reportID)
	}
	if r.Status != StatusResolved && r.Status != StatusDismissed {
		return fmt.Errorf("report: report %s is not in an appealable state (%s)", reportID, r.Status)
	}

	r.Status = StatusReviewed
	if err := p.store.Update(ctx, r); err != nil {
		return fmt.Errorf("report: appeal update: %w", err)
	}
	return nil
}

// List returns reports filtered by status (empty = all). Per the engine's
// fail-open contract for reads, errors degrade to an empty list.
func (p *Processor) List(ctx context.Context, status string) []Report {
	out, err := p.store.List(ctx, status)
	if err != nil {
		log.Printf("[report] list failed (status=%q): %v", status, err)
		return []Report{}
	}
	return out
}

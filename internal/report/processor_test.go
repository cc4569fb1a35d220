package report

import (
	"context"
	"errors"
	"testing"

	"github.com/tanglechat/moderation/internal/config"
	"github.com/tanglechat/moderation/internal/reputation"
)

func newTestProcessor() (*Processor, *MemStore, *reputation.MemStore, *config.Store) {
	store := NewMemStore()
	ledger := reputation.NewMemStore()
	cfg := config.NewStore(config.Default())
	return NewProcessor(store, ledger, cfg, nil), store, ledger, cfg
}

func TestSubmit_SpamAutoResolves(t *testing.T) {
	p, store, ledger, _ := newTestProcessor()
	ctx := context.Background()

	id, status, err := p.Submit(ctx, "m1", "reporter", "target", "keeps posting links", CategorySpam, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if status != StatusResolved {
		t.Errorf("Submit returned status %s, want resolved", status)
	}

	r, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if r.Status != StatusResolved {
		t.Errorf("Status = %s, want resolved", r.Status)
	}
	if r.Resolution != AutoResolution {
		t.Errorf("Resolution = %q, want %q", r.Resolution, AutoResolution)
	}
	if r.ReviewedAt == nil || r.ReviewedBy != "auto-moderation" {
		t.Errorf("reviewer fields not set: %+v", r)
	}

	target, _ := ledger.Get(ctx, "target")
	if target.WarningCount != 1 {
		t.Errorf("WarningCount = %d, want 1", target.WarningCount)
	}
	if target.TrustScore != 95 {
		t.Errorf("TrustScore = %d, want 95", target.TrustScore)
	}
}

func TestSubmit_TrustFloorOnRepeatedReports(t *testing.T) {
	p, _, ledger, _ := newTestProcessor()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if _, _, err := p.Submit(ctx, "m1", "reporter", "target", "spam", CategorySpam, ""); err != nil {
			t.Fatalf("Submit #%d: %v", i, err)
		}
	}

	target, _ := ledger.Get(ctx, "target")
	if target.TrustScore != reputation.TrustMin {
		t.Errorf("TrustScore = %d, want floor %d", target.TrustScore, reputation.TrustMin)
	}
	if target.WarningCount != 25 {
		t.Errorf("WarningCount = %d, want 25", target.WarningCount)
	}
}

func TestSubmit_OtherCategoriesStayPending(t *testing.T) {
	p, store, ledger, _ := newTestProcessor()
	ctx := context.Background()

	for _, category := range []string{CategoryHarassment, CategoryInappropriate, CategoryOther} {
		id, status, err := p.Submit(ctx, "m1", "reporter", "target", "reason", category, "details")
		if err != nil {
			t.Fatalf("Submit(%s): %v", category, err)
		}
		if status != StatusPending {
			t.Errorf("Submit(%s) returned status %s, want pending", category, status)
		}
		r, _ := store.Get(ctx, id)
		if r.Status != StatusPending {
			t.Errorf("Submit(%s): Status = %s, want pending", category, r.Status)
		}
	}

	target, _ := ledger.Get(ctx, "target")
	if target.WarningCount != 0 || target.TrustScore != reputation.TrustDefault {
		t.Errorf("non-spam reports touched the ledger: %+v", target)
	}
}

func TestSubmit_AutoModerationOff(t *testing.T) {
	p, store, ledger, cfg := newTestProcessor()
	ctx := context.Background()

	off := false
	cfg.Update(config.Patch{AutoModerationEnabled: &off})

	id, status, err := p.Submit(ctx, "m1", "reporter", "target", "spam", CategorySpam, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if status != StatusPending {
		t.Errorf("Submit returned status %s, want pending when auto moderation is off", status)
	}
	r, _ := store.Get(ctx, id)
	if r.Status != StatusPending {
		t.Errorf("Status = %s, want pending when auto moderation is off", r.Status)
	}
	target, _ := ledger.Get(ctx, "target")
	if target.WarningCount != 0 {
		t.Errorf("WarningCount = %d, want 0", target.WarningCount)
	}
}

func TestSubmit_Rejections(t *testing.T) {
	p, _, _, cfg := newTestProcessor()
	ctx := context.Background()

	tests := []struct {
		name                         string
		reporter, reported, category string
		reason                       string
		setup                        func()
	}{
		{"invalid category", "a", "b", "nonsense", "reason", nil},
		{"empty reason", "a", "b", CategorySpam, "   ", nil},
		{"self report", "a", "a", CategorySpam, "reason", nil},
		{"reporting disabled", "a", "b", CategorySpam, "reason", func() {
			off := false
			cfg.Update(config.Patch{ReportingEnabled: &off})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			if _, _, err := p.Submit(ctx, "m1", tt.reporter, tt.reported, tt.reason, tt.category, ""); err == nil {
				t.Error("Submit succeeded, want error")
			}
		})
	}
}

// failingStore errors on create, to verify store failures propagate.
type failingStore struct{ Store }

func (f *failingStore) Create(ctx context.Context, r *Report) error {
	return errors.New("store unavailable")
}

func TestSubmit_StoreFailurePropagates(t *testing.T) {
	store := &failingStore{Store: NewMemStore()}
	p := NewProcessor(store, reputation.NewMemStore(), config.NewStore(config.Default()), nil)

	if _, _, err := p.Submit(context.Background(), "m1", "a", "b", "reason", CategorySpam, ""); err == nil {
		t.Error("Submit succeeded despite store failure")
	}
}

// updateFailingStore accepts the initial create but errors on update, so
// auto-resolution fails after the report has been stored.
type updateFailingStore struct{ Store }

func (f *updateFailingStore) Update(ctx context.Context, r *Report) error {
	return errors.New("store unavailable")
}

func TestSubmit_AutoResolveFailureStaysPending(t *testing.T) {
	store := &updateFailingStore{Store: NewMemStore()}
	ledger := reputation.NewMemStore()
	p := NewProcessor(store, ledger, config.NewStore(config.Default()), nil)
	ctx := context.Background()

	id, status, err := p.Submit(ctx, "m1", "reporter", "target", "spam", CategorySpam, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if status != StatusPending {
		t.Errorf("Submit returned status %s, want pending when auto-resolve fails", status)
	}

	r, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if r.Status != StatusPending {
		t.Errorf("stored Status = %s, want pending", r.Status)
	}

	target, _ := ledger.Get(ctx, "target")
	if target.WarningCount != 0 {
		t.Errorf("WarningCount = %d, want 0 when auto-resolve fails", target.WarningCount)
	}
}

func TestAppeal(t *testing.T) {
	p, store, _, cfg := newTestProcessor()
	ctx := context.Background()

	id, _, err := p.Submit(ctx, "m1", "reporter", "target", "spam", CategorySpam, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Only the reported user may appeal.
	if err := p.Appeal(ctx, id, "someone-else"); err == nil {
		t.Error("appeal by a third party succeeded")
	}

	if err := p.Appeal(ctx, id, "target"); err != nil {
		t.Fatalf("Appeal: %v", err)
	}
	r, _ := store.Get(ctx, id)
	if r.Status != StatusReviewed {
		t.Errorf("Status = %s, want reviewed after appeal", r.Status)
	}

	// A pending report is not appealable.
	pendingID, _, _ := p.Submit(ctx, "m2", "reporter", "target", "mean words", CategoryHarassment, "")
	if err := p.Appeal(ctx, pendingID, "target"); err == nil {
		t.Error("appeal of a pending report succeeded")
	}

	// Appeals can be switched off.
	off := false
	cfg.Update(config.Patch{AppealProcessEnabled: &off})
	if err := p.Appeal(ctx, id, "target"); err == nil {
		t.Error("appeal succeeded while appeals are disabled")
	}
}

func TestList_FiltersByStatus(t *testing.T) {
	p, _, _, _ := newTestProcessor()
	ctx := context.Background()

	if _, _, err := p.Submit(ctx, "m1", "a", "b", "spam", CategorySpam, ""); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, _, err := p.Submit(ctx, "m2", "a", "b", "mean", CategoryHarassment, ""); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if got := p.List(ctx, StatusPending); len(got) != 1 {
		t.Errorf("List(pending) = %d reports, want 1", len(got))
	}
	if got := p.List(ctx, StatusResolved); len(got) != 1 {
		t.Errorf("List(resolved) = %d reports, want 1", len(got))
	}
	if got := p.List(ctx, ""); len(got) != 2 {
		t.Errorf("List(all) = %d reports, want 2", len(got))
	}
}

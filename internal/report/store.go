package report

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Store is the persistence boundary for reports. Unlike the detection
// path, store failures here propagate to the caller: a report that
// silently disappears is worse than a visible failure the caller can
// retry.
type Store interface {
	Create(ctx context.Context, r *Report) error
	Update(ctx context.Context, r *Report) error
	Get(ctx context.Context, id string) (*Report, error)
	List(ctx context.Context, status string) ([]Report, error)
}

// MemStore is an in-process Store used by tests and by deployments
// without PostgreSQL.
type MemStore struct {
	mu      sync.RWMutex
	reports map[string]Report
}

// NewMemStore creates an empty in-memory report store.
func NewMemStore() *MemStore {
	return &MemStore{reports: make(map[string]Report)}
}

func (m *MemStore) Create(ctx context.Context, r *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[r.ID]; ok {
		return fmt.Errorf("report: duplicate id %q", r.ID)
	}
	m.reports[r.ID] = *r
	return nil
}

func (m *MemStore) Update(ctx context.Context, r *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[r.ID]; !ok {
		return fmt.Errorf("report: unknown id %q", r.ID)
	}
	m.reports[r.ID] = *r
	return nil
}

func (m *MemStore) Get(ctx context.Context, id string) (*Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, fmt.Errorf("report: unknown id %q", id)
	}
	return &r, nil
}

// List returns reports with the given status, or all reports when status
// is empty, newest first.
func (m *MemStore) List(ctx context.Context, status string) ([]Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Report, 0, len(m.reports))
	for _, r := range m.reports {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

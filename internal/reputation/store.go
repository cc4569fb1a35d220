package reputation

import (
	"context"
	"sync"
)

// Store is the persistence boundary for reputation records. Get creates no
// record: absent users read back as DefaultStatus and nothing is written
// until the first mutation. Update is an atomic per-key read-modify-write;
// implementations must serialize concurrent updates for the same user while
// leaving different users fully independent.
type Store interface {
	Get(ctx context.Context, userID string) (Status, error)
	Update(ctx context.Context, userID string, mutate func(*Status)) (Status, error)
}

// MemStore is an in-process Store used by tests and by deployments without
// Redis. Each record carries its own mutex, so same-user updates serialize
// on the record while cross-user updates proceed without contention; the
// outer lock only guards the map itself.
type MemStore struct {
	mu   sync.RWMutex
	recs map[string]*memRecord
}

type memRecord struct {
	mu     sync.Mutex
	status Status
}

// NewMemStore creates an empty in-memory reputation store.
func NewMemStore() *MemStore {
	return &MemStore{recs: make(map[string]*memRecord)}
}

func (m *MemStore) Get(ctx context.Context, userID string) (Status, error) {
	m.mu.RLock()
	rec, ok := m.recs[userID]
	m.mu.RUnlock()
	if !ok {
		return DefaultStatus(userID), nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.status, nil
}

func (m *MemStore) Update(ctx context.Context, userID string, mutate func(*Status)) (Status, error) {
	m.mu.Lock()
	rec, ok := m.recs[userID]
	if !ok {
		rec = &memRecord{status: DefaultStatus(userID)}
		m.recs[userID] = rec
	}
	m.mu.Unlock()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	mutate(&rec.status)
	rec.status.UserID = userID
	rec.status.AdjustTrust(0) // re-clamp in case the mutator wrote out of range
	return rec.status, nil
}

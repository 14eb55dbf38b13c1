package storage

import (
	"context"
	"sort"
	"sync"

	v1 "github.com/dates-lab/dates-manager/internal/api/v1"
)

// MemoryStore is an in-memory implementation of Store.
// Useful for testing and development.
type MemoryStore struct {
	mu         sync.RWMutex
	defs       map[int64]*v1.EventRecord
	milestones map[string]*v1.MilestoneRecord // keyed by ExternalKey
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		defs:       make(map[int64]*v1.EventRecord),
		milestones: make(map[string]*v1.MilestoneRecord),
	}
}

func (m *MemoryStore) SaveDefinition(ctx context.Context, rec *v1.EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.defs[rec.UID]; exists {
		return ErrDuplicate
	}
	cp := *rec
	m.defs[rec.UID] = &cp
	return nil
}

func (m *MemoryStore) UpdateDefinition(ctx context.Context, rec *v1.EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.defs[rec.UID]; !exists {
		return ErrNotFound
	}
	cp := *rec
	m.defs[rec.UID] = &cp
	return nil
}

func (m *MemoryStore) DeleteDefinition(ctx context.Context, uid int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.defs[uid]; !exists {
		return ErrNotFound
	}
	delete(m.defs, uid)

	// Mirror the SQL cascade.
	for key, ms := range m.milestones {
		if ms.EventbaseUID == uid {
			delete(m.milestones, key)
		}
	}
	return nil
}

func (m *MemoryStore) ListDefinitions(ctx context.Context) ([]*v1.EventRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := make([]*v1.EventRecord, 0, len(m.defs))
	for _, rec := range m.defs {
		cp := *rec
		recs = append(recs, &cp)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].UID < recs[j].UID })
	return recs, nil
}

func (m *MemoryStore) ReplaceMilestone(ctx context.Context, rec *v1.MilestoneRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *rec
	m.milestones[rec.ExternalKey()] = &cp
	return nil
}

func (m *MemoryStore) DeleteMilestone(ctx context.Context, year int, uid int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := (&v1.MilestoneRecord{DateYear: year, EventbaseUID: uid}).ExternalKey()
	if _, exists := m.milestones[key]; !exists {
		return ErrNotFound
	}
	delete(m.milestones, key)
	return nil
}

func (m *MemoryStore) ListMilestones(ctx context.Context) ([]*v1.MilestoneRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := make([]*v1.MilestoneRecord, 0, len(m.milestones))
	for _, rec := range m.milestones {
		cp := *rec
		recs = append(recs, &cp)
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].DateYear != recs[j].DateYear {
			return recs[i].DateYear < recs[j].DateYear
		}
		return recs[i].EventbaseUID < recs[j].EventbaseUID
	})
	return recs, nil
}

package repository

import (
	"context"
	"sync"

	"github.com/notifyhub/ms-notification-kafka/internal/domain"
)

// DefaultMemoryCapacity is used when NewMemoryDispatchRepository is given a
// non-positive capacity.
const DefaultMemoryCapacity = 10000

// MemoryDispatchRepository keeps the most recent dispatches in process
// memory, in a fixed-size ring. Once full, each Record evicts the oldest
// entry. It backs unit tests and deployments that run without DATABASE_URL.
type MemoryDispatchRepository struct {
	mu    sync.RWMutex
	ring  []*domain.Dispatch
	head  int // index of the oldest entry
	size  int
	byKey map[string]*domain.Dispatch

	// Optional error override, set in tests to simulate failure paths.
	RecordErr error
}

func NewMemoryDispatchRepository(capacity int) *MemoryDispatchRepository {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryDispatchRepository{
		ring:  make([]*domain.Dispatch, capacity),
		byKey: make(map[string]*domain.Dispatch),
	}
}

func (m *MemoryDispatchRepository) Record(_ context.Context, d *domain.Dispatch) error {
	if m.RecordErr != nil {
		return m.RecordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *d
	if m.size == len(m.ring) {
		m.evictOldest()
	}
	m.ring[(m.head+m.size)%len(m.ring)] = &clone
	m.size++
	if clone.MessageKey != nil {
		m.byKey[*clone.MessageKey] = &clone
	}
	return nil
}

func (m *MemoryDispatchRepository) GetByMessageKey(_ context.Context, key string) (*domain.Dispatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.byKey[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *d
	return &clone, nil
}

// List returns matching dispatches newest first. Entries are recorded in
// time order, so ring order is creation order.
func (m *MemoryDispatchRepository) List(_ context.Context, f domain.DispatchFilter) ([]*domain.Dispatch, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start := (f.Page - 1) * f.Limit
	var (
		page  []*domain.Dispatch
		total int
	)
	for i := m.size - 1; i >= 0; i-- {
		d := m.ring[(m.head+i)%len(m.ring)]
		if f.Destination != nil && d.Destination != *f.Destination {
			continue
		}
		if f.Outcome != nil && d.Outcome != *f.Outcome {
			continue
		}
		if start >= 0 && total >= start && len(page) < f.Limit {
			clone := *d
			page = append(page, &clone)
		}
		total++
	}
	return page, total, nil
}

// Len reports how many dispatches are currently held.
func (m *MemoryDispatchRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

func (m *MemoryDispatchRepository) evictOldest() {
	old := m.ring[m.head]
	if old.MessageKey != nil && m.byKey[*old.MessageKey] == old {
		delete(m.byKey, *old.MessageKey)
	}
	m.ring[m.head] = nil
	m.head = (m.head + 1) % len(m.ring)
	m.size--
}

var _ DispatchRepository = (*MemoryDispatchRepository)(nil)

package store

import (
	"context"
	"sync"
	"time"

	"github.com/Himess/delreg/internal/core"
)

var _ core.DelegationStore = (*InMemoryDelegationStore)(nil)

type InMemoryDelegationStore struct {
	mu      sync.RWMutex
	records map[core.DelegationKey]core.DelegationRecord
}

func NewInMemoryDelegationStore() *InMemoryDelegationStore {
	return &InMemoryDelegationStore{
		records: make(map[core.DelegationKey]core.DelegationRecord),
	}
}

func (s *InMemoryDelegationStore) Put(_ context.Context, record core.DelegationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Key] = record
	return nil
}

func (s *InMemoryDelegationStore) Get(_ context.Context, key core.DelegationKey) (core.DelegationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key]
	return record, ok, nil
}

func (s *InMemoryDelegationStore) Delete(_ context.Context, key core.DelegationKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

func (s *InMemoryDelegationStore) ListActive(_ context.Context, now time.Time) ([]core.DelegationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]core.DelegationRecord, 0)
	for _, record := range s.records {
		if record.ActiveAt(now) {
			active = append(active, record)
		}
	}

	return active, nil
}

func (s *InMemoryDelegationStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deletedCount int64
	for key, record := range s.records {
		if !record.ActiveAt(now) {
			delete(s.records, key)
			deletedCount++
		}
	}

	return deletedCount, nil
}

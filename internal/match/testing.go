package match

import (
	"context"
	"sync"
)

// MemoryInterestStore is an in-memory InterestStore used in tests.
type MemoryInterestStore struct {
	mu     sync.Mutex
	byUser map[string][]Interest
}

func NewMemoryInterestStore() *MemoryInterestStore {
	return &MemoryInterestStore{byUser: make(map[string][]Interest)}
}

func (s *MemoryInterestStore) InterestsOf(_ context.Context, userID string) ([]Interest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Interest(nil), s.byUser[userID]...), nil
}

func (s *MemoryInterestStore) SetInterests(_ context.Context, userID string, interests []Interest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[userID] = append([]Interest(nil), interests...)
	return nil
}

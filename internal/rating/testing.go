package rating

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests.
type MemoryStore struct {
	mu         sync.Mutex
	users      map[string]bool
	aggregates map[string]Aggregate
	marks      map[string]bool // assignmentID + "/" + raterID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]bool),
		aggregates: make(map[string]Aggregate),
		marks:      make(map[string]bool),
	}
}

// AddUser registers a user with the zero aggregate the users-row defaults
// give in SQL.
func (s *MemoryStore) AddUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = true
}

// Seed installs a user with an existing aggregate.
func (s *MemoryStore) Seed(userID string, avg float64, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = true
	s.aggregates[userID] = Aggregate{UserID: userID, Average: avg, Count: count}
}

func (s *MemoryStore) ApplyRating(_ context.Context, assignmentID, raterID, rateeID string, score int, _ time.Time) (Aggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := assignmentID + "/" + raterID
	if s.marks[key] {
		return Aggregate{}, ErrAlreadyRated
	}
	s.marks[key] = true

	s.users[rateeID] = true
	agg, ok := s.aggregates[rateeID]
	if !ok {
		agg = Aggregate{UserID: rateeID}
	}
	agg.Average, agg.Count = fold(agg.Average, agg.Count, score)
	s.aggregates[rateeID] = agg
	return agg, nil
}

func (s *MemoryStore) AggregateOf(_ context.Context, userID string) (Aggregate, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.users[userID] {
		return Aggregate{}, false, nil
	}
	if agg, ok := s.aggregates[userID]; ok {
		return agg, true, nil
	}
	return Aggregate{UserID: userID}, true, nil
}

package assignment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/worklink-dev/worklink/internal/payment"
)

// MemoryStore is an in-memory Store used in tests. Completion payments are
// delivered to Payments when set, mirroring the transactional insert.
type MemoryStore struct {
	mu          sync.Mutex
	assignments map[string]Assignment

	Payments *payment.MemoryStore
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{assignments: make(map[string]Assignment)}
}

func (s *MemoryStore) Create(_ context.Context, a Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.ID] = a
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Assignment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	return a, ok, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id string, from, to Status, startedAt *time.Time, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	a.UpdatedAt = at
	if startedAt != nil {
		a.StartedAt = startedAt
	}
	s.assignments[id] = a
	return true, nil
}

func (s *MemoryStore) Complete(ctx context.Context, id string, from Status, completedAt, expiresAt time.Time, pay *payment.Payment) (bool, error) {
	s.mu.Lock()
	a, ok := s.assignments[id]
	if !ok || a.Status != from {
		s.mu.Unlock()
		return false, nil
	}
	a.Status = StatusCompleted
	a.CompletedAt = &completedAt
	a.ExpiresAt = &expiresAt
	a.UpdatedAt = completedAt
	s.assignments[id] = a
	s.mu.Unlock()

	if pay != nil && s.Payments != nil {
		if err := s.Payments.Create(ctx, *pay); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *MemoryStore) Update(_ context.Context, a Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[a.ID]; ok {
		s.assignments[a.ID] = a
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[id]; !ok {
		return false, nil
	}
	delete(s.assignments, id)
	return true, nil
}

func (s *MemoryStore) ListByPosting(_ context.Context, postingID string) ([]Assignment, error) {
	return s.filter(func(a Assignment) bool { return a.PostingID == postingID }), nil
}

func (s *MemoryStore) ListByWorker(_ context.Context, workerID string) ([]Assignment, error) {
	return s.filter(func(a Assignment) bool { return a.WorkerID == workerID }), nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]Assignment, error) {
	return s.filter(func(a Assignment) bool { return a.OwnerID == ownerID }), nil
}

func (s *MemoryStore) DeleteByPosting(_ context.Context, postingID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, a := range s.assignments {
		if a.PostingID == postingID {
			ids = append(ids, id)
			delete(s.assignments, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) filter(keep func(Assignment) bool) []Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Assignment
	for _, a := range s.assignments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

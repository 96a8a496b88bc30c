package payment

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests.
type MemoryStore struct {
	mu       sync.Mutex
	payments map[string]Payment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payments: make(map[string]Payment)}
}

func (s *MemoryStore) Create(_ context.Context, p Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = p
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Payment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	return p, ok, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id string, from, to Status, paidAt *time.Time, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	p.UpdatedAt = at
	if paidAt != nil {
		p.PaidAt = paidAt
	}
	s.payments[id] = p
	return true, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[id]; !ok {
		return false, nil
	}
	delete(s.payments, id)
	return true, nil
}

func (s *MemoryStore) ListByAssignment(_ context.Context, assignmentID string) ([]Payment, error) {
	return s.filter(func(p Payment) bool { return p.AssignmentID == assignmentID }), nil
}

func (s *MemoryStore) ListByPayer(_ context.Context, payerID string) ([]Payment, error) {
	return s.filter(func(p Payment) bool { return p.PayerID == payerID }), nil
}

func (s *MemoryStore) DeleteByAssignment(_ context.Context, assignmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.payments {
		if p.AssignmentID == assignmentID {
			delete(s.payments, id)
		}
	}
	return nil
}

func (s *MemoryStore) filter(keep func(Payment) bool) []Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Payment
	for _, p := range s.payments {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

package application

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests.
type MemoryStore struct {
	mu   sync.Mutex
	apps map[string]Application
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{apps: make(map[string]Application)}
}

func (s *MemoryStore) Create(_ context.Context, a Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.apps {
		if cur.PostingID == a.PostingID && cur.ApplicantID == a.ApplicantID {
			return ErrDuplicate
		}
	}
	s.apps[a.ID] = a
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Application, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	return a, ok, nil
}

func (s *MemoryStore) Decide(_ context.Context, id string, to Status, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok || a.Status != StatusPending {
		return false, nil
	}
	a.stamp(to, at)
	s.apps[id] = a
	return true, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[id]; !ok {
		return false, nil
	}
	delete(s.apps, id)
	return true, nil
}

func (s *MemoryStore) ListByPosting(_ context.Context, postingID string) ([]Application, error) {
	return s.filter(func(a Application) bool { return a.PostingID == postingID }), nil
}

func (s *MemoryStore) ListByApplicant(_ context.Context, applicantID string) ([]Application, error) {
	return s.filter(func(a Application) bool { return a.ApplicantID == applicantID }), nil
}

func (s *MemoryStore) DeletePending(_ context.Context, postingID string) ([]string, error) {
	return s.deleteWhere(func(a Application) bool {
		return a.PostingID == postingID && a.Status == StatusPending
	}), nil
}

func (s *MemoryStore) DeleteAll(_ context.Context, postingID string) ([]string, error) {
	return s.deleteWhere(func(a Application) bool { return a.PostingID == postingID }), nil
}

func (s *MemoryStore) filter(keep func(Application) bool) []Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Application
	for _, a := range s.apps {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *MemoryStore) deleteWhere(match func(Application) bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, a := range s.apps {
		if match(a) {
			ids = append(ids, id)
			delete(s.apps, id)
		}
	}
	sort.Strings(ids)
	return ids
}

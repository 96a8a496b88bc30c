package posting

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests.
type MemoryStore struct {
	mu       sync.Mutex
	postings map[string]Posting

	// Overridable counts for capacity checks. When the Count*Fn hooks are
	// set they take precedence, letting a wired test stack report live
	// counts from its application and assignment stores.
	Applications      map[string]int
	ActiveAssignments map[string]int

	CountAppsFn        func(postingID string) int
	CountAssignmentsFn func(postingID string) int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		postings:          make(map[string]Posting),
		Applications:      make(map[string]int),
		ActiveAssignments: make(map[string]int),
	}
}

func (s *MemoryStore) Create(_ context.Context, p Posting) (Posting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postings[p.ID] = p
	return p, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Posting, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.postings[id]
	if !ok || p.DeletedAt != nil {
		return Posting{}, false, nil
	}
	return p, true, nil
}

func (s *MemoryStore) Update(_ context.Context, p Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.postings[p.ID]
	if !ok || cur.DeletedAt != nil {
		return nil
	}
	s.postings[p.ID] = p
	return nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id string, from, to Status, publishAt *time.Time, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.postings[id]
	if !ok || p.DeletedAt != nil || p.Status != from {
		return false, nil
	}
	p.Status = to
	p.UpdatedAt = at
	if publishAt != nil {
		p.PublishAt = publishAt
	}
	s.postings[id] = p
	return true, nil
}

func (s *MemoryStore) SoftDelete(_ context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.postings[id]
	if !ok || p.DeletedAt != nil {
		return false, nil
	}
	p.DeletedAt = &at
	s.postings[id] = p
	return true, nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]Posting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Posting
	for _, p := range s.postings {
		if p.DeletedAt != nil && !f.IncludeDeleted {
			continue
		}
		if f.OwnerID != "" && p.OwnerID != f.OwnerID {
			continue
		}
		if f.PublicOnly && (!p.IsPublic || p.Status != StatusPublished) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) OwnerOf(_ context.Context, id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.postings[id]
	if !ok || p.DeletedAt != nil {
		return "", false, nil
	}
	return p.OwnerID, true, nil
}

func (s *MemoryStore) CountApplications(_ context.Context, postingID string) (int, error) {
	if s.CountAppsFn != nil {
		return s.CountAppsFn(postingID), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Applications[postingID], nil
}

func (s *MemoryStore) CountActiveAssignments(_ context.Context, postingID string) (int, error) {
	if s.CountAssignmentsFn != nil {
		return s.CountAssignmentsFn(postingID), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ActiveAssignments[postingID], nil
}

package comment

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests.
type MemoryStore struct {
	mu       sync.Mutex
	comments map[string]Comment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{comments: make(map[string]Comment)}
}

func (s *MemoryStore) Create(_ context.Context, c Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[c.ID] = c
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Comment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	return c, ok, nil
}

func (s *MemoryStore) Update(_ context.Context, id, content string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok || c.DeletedAt != nil {
		return false, nil
	}
	c.Content = content
	c.UpdatedAt = at
	s.comments[id] = c
	return true, nil
}

func (s *MemoryStore) SoftDelete(_ context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok || c.DeletedAt != nil {
		return false, nil
	}
	c.DeletedAt = &at
	s.comments[id] = c
	return true, nil
}

func (s *MemoryStore) ListByPosting(_ context.Context, postingID string) ([]Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Comment
	for _, c := range s.comments {
		if c.PostingID == postingID && c.DeletedAt == nil {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) SoftDeleteByPosting(_ context.Context, postingID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.comments {
		if c.PostingID == postingID && c.DeletedAt == nil {
			c.DeletedAt = &at
			s.comments[id] = c
		}
	}
	return nil
}

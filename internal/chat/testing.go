package chat

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests.
type MemoryStore struct {
	mu           sync.Mutex
	threads      map[string]Thread
	participants map[string]map[string]Participant // threadID -> userID
	messages     map[string][]Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		threads:      make(map[string]Thread),
		participants: make(map[string]map[string]Participant),
		messages:     make(map[string][]Message),
	}
}

func (s *MemoryStore) CreateThread(_ context.Context, t Thread, participants []Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[t.ID] = t
	members := make(map[string]Participant, len(participants))
	for _, p := range participants {
		members[p.UserID] = p
	}
	s.participants[t.ID] = members
	return nil
}

func (s *MemoryStore) GetThread(_ context.Context, id string) (Thread, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[id]
	return t, ok, nil
}

func (s *MemoryStore) GetThreadByContext(_ context.Context, kind, contextID string) (Thread, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.threads {
		if t.Kind == kind && t.ContextID == contextID {
			return t, true, nil
		}
	}
	return Thread{}, false, nil
}

func (s *MemoryStore) Participant(_ context.Context, threadID, userID string) (Participant, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[threadID][userID]
	return p, ok, nil
}

func (s *MemoryStore) MarkLeft(_ context.Context, threadID, userID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[threadID][userID]
	if !ok || p.LeftAt != nil {
		return false, nil
	}
	p.LeftAt = &at
	s.participants[threadID][userID] = p
	return true, nil
}

func (s *MemoryStore) MarkRead(_ context.Context, threadID, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.participants[threadID][userID]; ok {
		p.LastReadAt = &at
		s.participants[threadID][userID] = p
	}
	return nil
}

func (s *MemoryStore) CreateMessage(_ context.Context, m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[m.ThreadID] = append(s.messages[m.ThreadID], m)
	return nil
}

func (s *MemoryStore) ListMessages(_ context.Context, threadID string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]Message(nil), s.messages[threadID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) ListThreadsByUser(_ context.Context, userID string) ([]Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Thread
	for id, t := range s.threads {
		if p, ok := s.participants[id][userID]; ok && p.LeftAt == nil {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) DeleteThread(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, id)
	delete(s.participants, id)
	delete(s.messages, id)
	return nil
}

package media

import (
	"context"
	"strconv"
	"sync"
)

// MemoryStore is an in-memory Store used in tests.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]Object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]Object)}
}

func (s *MemoryStore) Insert(_ context.Context, o Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[o.ID] = o
	return nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, category, ownerID string) ([]Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var objs []Object
	for _, o := range s.rows {
		if o.Category == category && o.OwnerID == ownerID {
			objs = append(objs, o)
		}
	}
	return objs, nil
}

func (s *MemoryStore) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.rows, id)
	}
	return nil
}

// Len reports the number of rows, for assertions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// MemoryBackend is an in-memory Backend used in tests.
type MemoryBackend struct {
	mu      sync.Mutex
	seq     int
	objects map[string][]byte // key: category/id.ext
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{objects: make(map[string][]byte)}
}

func key(category, id, ext string) string { return category + "/" + id + "." + ext }

func (b *MemoryBackend) Store(data []byte, category, ext string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	tempID := "tmp-" + strconv.Itoa(b.seq)
	b.objects[key(category, tempID, ext)] = data
	return tempID, nil
}

func (b *MemoryBackend) Finalize(category, tempID, finalID, ext string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := key(category, tempID, ext)
	data := b.objects[k]
	delete(b.objects, k)
	fk := key(category, finalID, ext)
	b.objects[fk] = data
	return fk, nil
}

func (b *MemoryBackend) Delete(category, id, ext string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key(category, id, ext))
	return nil
}

// Len reports the number of stored objects, for assertions.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

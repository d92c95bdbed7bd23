package storage

import (
	"context"
	"io"
	"sync"
)

// MemoryObjectStore keeps objects in-process for tests. It records deletes so
// callers can assert best-effort cleanup was attempted.
type MemoryObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

// NewMemoryObjectStore initializes an empty in-memory object store.
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{objects: make(map[string][]byte)}
}

// Put buffers the object in memory.
func (m *MemoryObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return nil
}

// Delete removes the object and records the attempt.
func (m *MemoryObjectStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	m.mu.Unlock()
	return nil
}

// PublicURL returns a deterministic fake URL.
func (m *MemoryObjectStore) PublicURL(key string) string {
	return "https://objects.test/bucket/" + key
}

// Has reports whether an object is stored.
func (m *MemoryObjectStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Deleted returns the keys passed to Delete, in order.
func (m *MemoryObjectStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.deleted))
	copy(out, m.deleted)
	return out
}

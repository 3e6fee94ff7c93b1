package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of the Store interface,
// useful for testing. It records every delete so tests can assert
// cascade behavior, and FailDeletes forces Delete errors to exercise
// best-effort paths.
type MemoryStore struct {
	FailDeletes bool

	blobs   map[string][]byte
	deletes []string
	mu      sync.Mutex
}

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Upload stores the blob in memory under a mem:// URL.
func (m *MemoryStore) Upload(_ context.Context, domain, itemID, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read blob: %w", err)
	}

	url := "mem://" + path.Join(domain, itemID, uuid.New().String()+"-"+sanitizeFilename(filename))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[url] = data
	return url, nil
}

// Delete removes the blob, recording the attempt.
func (m *MemoryStore) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deletes = append(m.deletes, url)
	if m.FailDeletes {
		return fmt.Errorf("forced delete failure for %s", url)
	}
	if _, ok := m.blobs[url]; !ok {
		return fmt.Errorf("blob not found: %s", url)
	}
	delete(m.blobs, url)
	return nil
}

// Ping always succeeds for the in-memory store.
func (m *MemoryStore) Ping(_ context.Context) error { return nil }

func (m *MemoryStore) Backend() string { return "memory" }

// Deletes returns the URLs passed to Delete, in order.
func (m *MemoryStore) Deletes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletes...)
}

// Get returns the stored blob bytes for url.
func (m *MemoryStore) Get(url string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[url]
	return data, ok
}

// Compile-time check that MemoryStore implements the Store interface
var _ Store = (*MemoryStore)(nil)

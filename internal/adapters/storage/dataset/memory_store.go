// Package dataset stores uploaded datasets in memory, keyed by session
// token. A new upload for the same session replaces the old dataset, and
// logging out drops it entirely. Nothing here survives a restart, which is
// the intended lifecycle for uploaded analytics data.
package dataset

import (
	"sync"

	domain "fitinsight/internal/domain/dataset"
)

// MemoryStore holds one dataset per session token.
type MemoryStore struct {
	mu       sync.RWMutex
	datasets map[string]*domain.Dataset
}

// NewMemoryStore creates an empty in-memory dataset store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		datasets: make(map[string]*domain.Dataset),
	}
}

// Put stores a dataset for a session, replacing any previous one.
// PRE: token is non-empty, ds is non-nil
// POST: Get(token) returns ds until replaced or deleted
func (s *MemoryStore) Put(token string, ds *domain.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[token] = ds
}

// Get returns the dataset for a session, if one has been uploaded.
func (s *MemoryStore) Get(token string) (*domain.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[token]
	return ds, ok
}

// Delete removes a session's dataset. Safe to call for unknown tokens.
func (s *MemoryStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.datasets, token)
}

package storage

import (
	"context"
	"sync"
	"time"

	"github.com/rfpforge/rfpforge/internal/domain"
)

// MemoryObjectStore is an in-process ObjectStore used by tests and local
// experiments. It honors the same contract as the real backends.
type MemoryObjectStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryObjectStore returns an empty in-memory object store.
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{blobs: make(map[string][]byte)}
}

// PutBlob stores a copy of data under key, overwriting any previous blob.
func (s *MemoryObjectStore) PutBlob(_ context.Context, key string, data []byte, _ string, _ map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[key] = cp
	return nil
}

// GetBlob returns a copy of the blob stored under key.
func (s *MemoryObjectStore) GetBlob(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// MemorySessionStore is an in-process SessionStore used by tests and local
// experiments.
type MemorySessionStore struct {
	mu    sync.RWMutex
	snaps map[string]*domain.Snapshot
}

// NewMemorySessionStore returns an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{snaps: make(map[string]*domain.Snapshot)}
}

// PutSession replaces the snapshot stored for a session id.
func (s *MemorySessionStore) PutSession(_ context.Context, sessionID string, snap *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.UpdatedAt == "" {
		snap.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	cp := *snap
	cp.SessionID = sessionID
	cp.ProposalState = copyMap(snap.ProposalState)
	cp.ContentKeys = copyMap(snap.ContentKeys)
	s.snaps[sessionID] = &cp
	return nil
}

// GetSession returns the snapshot stored for a session id.
func (s *MemorySessionStore) GetSession(_ context.Context, sessionID string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *snap
	cp.ProposalState = copyMap(snap.ProposalState)
	cp.ContentKeys = copyMap(snap.ContentKeys)
	return &cp, nil
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

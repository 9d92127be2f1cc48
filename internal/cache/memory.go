package cache

import (
	"context"
	"sync"
	"time"

	"github.com/satriawan/awardsearch/internal/models"
)

// MemoryStore keeps snapshots for the life of the process. It backs the
// cache-disabled server mode, the CLI, and tests. Fallback across restarts
// needs the redis store.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]Snapshot),
	}
}

func (s *MemoryStore) Get(ctx context.Context, providerCode, fingerprint string) (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[buildKey(providerCode, fingerprint)]
	if !ok {
		return nil, false
	}
	return &snapshot, true
}

func (s *MemoryStore) Put(ctx context.Context, providerCode, fingerprint string, offers []models.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[buildKey(providerCode, fingerprint)] = Snapshot{
		ProviderCode: providerCode,
		Offers:       offers,
		CapturedAt:   time.Now(),
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

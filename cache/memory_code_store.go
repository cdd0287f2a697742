package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/ledgerkeep/auth/domain"
)

// MemoryCodeStore implements CodeStore using ttlcache. It is a single-process
// backend for tests and local development; production deployments share codes
// between server instances through the Redis store instead.
type MemoryCodeStore struct {
	cache *ttlcache.Cache[string, *domain.AuthCodeRecord]
}

// NewMemoryCodeStore creates an in-memory code store with automatic
// expired-entry cleanup.
func NewMemoryCodeStore() *MemoryCodeStore {
	cache := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, *domain.AuthCodeRecord](),
	)

	// Start the cleanup process
	go cache.Start()

	return &MemoryCodeStore{cache: cache}
}

// Put implements CodeStore.Put.
func (s *MemoryCodeStore) Put(_ context.Context, code string, record *domain.AuthCodeRecord, ttl time.Duration) bool {
	s.cache.Set(code, record, ttl)
	return true
}

// Get implements CodeStore.Get.
func (s *MemoryCodeStore) Get(_ context.Context, code string) (*domain.AuthCodeRecord, bool) {
	item := s.cache.Get(code)
	if item == nil || item.IsExpired() {
		return nil, false
	}
	return item.Value(), true
}

// Delete implements CodeStore.Delete.
func (s *MemoryCodeStore) Delete(_ context.Context, code string) int64 {
	if _, present := s.cache.GetAndDelete(code); present {
		return 1
	}
	return 0
}

// Take implements CodeStore.Take. ttlcache's GetAndDelete runs under the
// cache lock, so concurrent Takes for the same code see exactly one winner.
func (s *MemoryCodeStore) Take(_ context.Context, code string) (*domain.AuthCodeRecord, bool) {
	item, present := s.cache.GetAndDelete(code)
	if !present || item == nil || item.IsExpired() {
		return nil, false
	}
	return item.Value(), true
}

// Stop halts the background cleanup goroutine.
func (s *MemoryCodeStore) Stop() {
	s.cache.Stop()
}

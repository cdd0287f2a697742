package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ledgerkeep/auth/domain"
)

// DefaultKeyPrefix namespaces authorization-code keys in the shared store.
const DefaultKeyPrefix = "auth"

// CodeStore implements the cache.CodeStore interface using Redis. The store
// is the single source of truth for issued codes, so multiple server
// instances behind a load balancer redeem against the same state.
//
// All backend errors are logged and degraded to the interface's safe zero
// results; no transport error ever reaches the caller.
type CodeStore struct {
	client redis.UniversalClient
	prefix string
}

// NewCodeStore creates a CodeStore with a pre-configured client. Taking the
// client rather than connection options keeps the store testable against
// miniredis and lets the caller own pool sizing.
func NewCodeStore(client redis.UniversalClient, prefix string) *CodeStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &CodeStore{
		client: client,
		prefix: prefix,
	}
}

// redisKey returns the Redis key for a given authorization code.
func (s *CodeStore) redisKey(code string) string {
	return fmt.Sprintf("%s:%s", s.prefix, code)
}

// Put serializes the record and writes it under the code's key with the
// given TTL. Returns false when the record could not be durably stored.
func (s *CodeStore) Put(ctx context.Context, code string, record *domain.AuthCodeRecord, ttl time.Duration) bool {
	data, err := json.Marshal(record)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal auth code record")
		return false
	}

	if err := s.client.Set(ctx, s.redisKey(code), data, ttl).Err(); err != nil {
		log.Error().Err(err).Msg("failed to store auth code in redis")
		return false
	}

	return true
}

// Get returns the record if present and unexpired. Redis owns expiry, so a
// key past its TTL is simply absent.
func (s *CodeStore) Get(ctx context.Context, code string) (*domain.AuthCodeRecord, bool) {
	data, err := s.client.Get(ctx, s.redisKey(code)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Error().Err(err).Msg("failed to read auth code from redis")
		}
		return nil, false
	}

	return s.decode(data)
}

// Delete removes the record unconditionally and returns the removed count.
func (s *CodeStore) Delete(ctx context.Context, code string) int64 {
	removed, err := s.client.Del(ctx, s.redisKey(code)).Result()
	if err != nil {
		log.Error().Err(err).Msg("failed to delete auth code from redis")
		return 0
	}
	return removed
}

// Take retrieves and removes the record as one indivisible operation using
// the native GETDEL command. Redis executes commands for a key serially, so
// of any number of concurrent Takes exactly one receives the value and the
// rest receive nil.
func (s *CodeStore) Take(ctx context.Context, code string) (*domain.AuthCodeRecord, bool) {
	data, err := s.client.GetDel(ctx, s.redisKey(code)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Error().Err(err).Msg("failed to take auth code from redis")
		}
		return nil, false
	}

	return s.decode(data)
}

func (s *CodeStore) decode(data []byte) (*domain.AuthCodeRecord, bool) {
	var record domain.AuthCodeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal auth code record")
		return nil, false
	}
	return &record, true
}

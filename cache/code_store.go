package cache

import (
	"context"
	"time"

	"github.com/ledgerkeep/auth/domain"
)

// CodeStore is the durability and concurrency substrate for authorization
// codes. Implementations are safe for use from any number of concurrent
// request handlers across multiple server processes sharing one backing
// store.
//
// Every operation degrades backend failures (unreachable store, timeout) to
// its safe zero result instead of returning a transport error: Put reports
// false, Get and Take report absence, Delete reports zero removed. Callers
// must treat "store unreachable" and "code genuinely absent" identically.
//
//go:generate mockgen -source=$GOFILE -destination=../mocks/mock_$GOPACKAGE/mock_$GOFILE -package=mock_$GOPACKAGE
type CodeStore interface {
	// Put writes the record under the given code with the given TTL.
	Put(ctx context.Context, code string, record *domain.AuthCodeRecord, ttl time.Duration) bool

	// Get returns the record if present and unexpired. It never deletes.
	Get(ctx context.Context, code string) (*domain.AuthCodeRecord, bool)

	// Delete removes the record unconditionally and returns the number of
	// records removed (0 or 1). Idempotent.
	Delete(ctx context.Context, code string) int64

	// Take atomically returns and removes the record. Of any number of
	// concurrent Take calls for the same code, exactly one observes the
	// record; the rest observe absence. The token endpoint must redeem
	// codes through Take and nothing else.
	Take(ctx context.Context, code string) (*domain.AuthCodeRecord, bool)
}

package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkeep/auth/domain"
)

func newTestStore(t *testing.T) *MemoryCodeStore {
	t.Helper()
	store := NewMemoryCodeStore()
	t.Cleanup(store.Stop)
	return store
}

func record(clientID string) *domain.AuthCodeRecord {
	return &domain.AuthCodeRecord{
		ClientID:      clientID,
		RedirectURI:   "https://app.example.com/callback",
		CodeChallenge: "challenge",
		CreatedAt:     time.Now().UTC(),
	}
}

func TestMemoryCodeStore_PutGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.True(t, store.Put(ctx, "code-1", record("client-1"), time.Minute))

	got, ok := store.Get(ctx, "code-1")
	require.True(t, ok)
	assert.Equal(t, "client-1", got.ClientID)

	// Reads do not consume.
	_, ok = store.Get(ctx, "code-1")
	assert.True(t, ok)
}

func TestMemoryCodeStore_Expiry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.True(t, store.Put(ctx, "code-1", record("client-1"), 10*time.Millisecond))

	time.Sleep(30 * time.Millisecond)

	_, ok := store.Get(ctx, "code-1")
	assert.False(t, ok)
	_, ok = store.Take(ctx, "code-1")
	assert.False(t, ok)
}

func TestMemoryCodeStore_DeleteIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.True(t, store.Put(ctx, "code-1", record("client-1"), time.Minute))

	assert.Equal(t, int64(1), store.Delete(ctx, "code-1"))
	assert.Equal(t, int64(0), store.Delete(ctx, "code-1"))
}

func TestMemoryCodeStore_TakeConsumes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.True(t, store.Put(ctx, "code-1", record("client-1"), time.Minute))

	got, ok := store.Take(ctx, "code-1")
	require.True(t, ok)
	assert.Equal(t, "client-1", got.ClientID)

	_, ok = store.Take(ctx, "code-1")
	assert.False(t, ok)
}

func TestMemoryCodeStore_TakeConcurrent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const attempts = 100

	require.True(t, store.Put(ctx, "code-1", record("client-1"), time.Minute))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	start := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok := store.Take(ctx, "code-1"); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, 1, wins)
}

package nonce

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ahwlsqja/lti-tool-provider/pkg/oauth1"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisStore(t *testing.T, consumerKey string) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, consumerKey, zap.NewNop())
	store.now = func() time.Time { return fixedNow }
	return store, mr
}

func TestRedisStore_CheckNonce(t *testing.T) {
	store, mr := newTestRedisStore(t, "fooBar")
	ctx := context.Background()

	require.NoError(t, store.CheckNonce(ctx, "n1", ts(0)))

	key := buildKey("fooBar", "n1")
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(fixedNow.Unix(), 10), got)
	assert.Equal(t, RetentionTTL, mr.TTL(key))

	err = store.CheckNonce(ctx, "n1", ts(0))
	assert.True(t, errors.Is(err, oauth1.ErrNonceReused))
}

func TestRedisStore_Rejections(t *testing.T) {
	store, mr := newTestRedisStore(t, "fooBar")
	ctx := context.Background()

	assert.True(t, errors.Is(store.CheckNonce(ctx, "", ts(0)), oauth1.ErrInvalidNonce))
	assert.True(t, errors.Is(store.CheckNonce(ctx, "n", "soon"), oauth1.ErrInvalidTimestamp))
	assert.True(t, errors.Is(store.CheckNonce(ctx, "old", ts(-Timeout-time.Second)), oauth1.ErrTimestampExpired))
	assert.True(t, errors.Is(store.CheckNonce(ctx, "new", ts(Timeout+time.Second)), oauth1.ErrTimestampExpired))
	require.NoError(t, store.CheckNonce(ctx, "edge", ts(Timeout)))

	assert.False(t, mr.Exists(buildKey("fooBar", "old")))
}

func TestRedisStore_ScopedByConsumerKey(t *testing.T) {
	store, mr := newTestRedisStore(t, "consumer-a")
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	other := NewRedisStore(client, "consumer-b", zap.NewNop())
	other.now = store.now

	require.NoError(t, store.CheckNonce(ctx, "shared", ts(0)))
	require.NoError(t, other.CheckNonce(ctx, "shared", ts(0)))
}

func TestRedisStore_ExpireNonce(t *testing.T) {
	store, mr := newTestRedisStore(t, "fooBar")
	ctx := context.Background()

	require.NoError(t, store.ExpireNonce(ctx, "blocked", fixedNow.Unix()))
	assert.True(t, mr.Exists(buildKey("fooBar", "blocked")))
	assert.True(t, errors.Is(store.CheckNonce(ctx, "blocked", ts(0)), oauth1.ErrNonceReused))
}

func TestRedisStore_TTLReleasesKey(t *testing.T) {
	store, mr := newTestRedisStore(t, "fooBar")
	ctx := context.Background()

	require.NoError(t, store.CheckNonce(ctx, "n1", ts(0)))
	mr.FastForward(RetentionTTL + time.Second)
	assert.False(t, mr.Exists(buildKey("fooBar", "n1")))
}

func TestRedisStore_BackendFailure(t *testing.T) {
	store, mr := newTestRedisStore(t, "fooBar")
	mr.SetError("LOADING dataset in memory")

	err := store.CheckNonce(context.Background(), "n1", ts(0))
	require.Error(t, err)
	assert.False(t, oauth1.IsValidationError(err))
}

func TestRedisStore_ConcurrentSameNonce(t *testing.T) {
	store, _ := newTestRedisStore(t, "fooBar")
	ctx := context.Background()

	const workers = 100
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.CheckNonce(ctx, "same", ts(0)); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestRedisStore_KeysDoNotCollideAcrossConsumers(t *testing.T) {
	store, mr := newTestRedisStore(t, "tenant")
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	other := NewRedisStore(client, "tenant:x", zap.NewNop())
	other.now = store.now

	require.NoError(t, store.CheckNonce(ctx, "x:abc", ts(0)))
	require.NoError(t, other.CheckNonce(ctx, "abc", ts(0)))
	assert.NotEqual(t, buildKey("tenant", "x:abc"), buildKey("tenant:x", "abc"))
}

func TestRedisStore_StaleReplayReportsExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t, "fooBar")
	ctx := context.Background()

	require.NoError(t, store.CheckNonce(ctx, "abc", ts(0)))
	err := store.CheckNonce(ctx, "abc", ts(-time.Hour))
	assert.True(t, errors.Is(err, oauth1.ErrTimestampExpired), "got %v", err)
	assert.True(t, mr.Exists(buildKey("fooBar", "abc")))
}

func TestRedisStore_NilLogger(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, "fooBar", nil)
	assert.NotPanics(t, func() {
		err := store.CheckNonce(context.Background(), "n1", "1")
		assert.True(t, errors.Is(err, oauth1.ErrTimestampExpired))
	})
}

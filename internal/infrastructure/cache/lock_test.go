package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLock_AcquireRelease(t *testing.T) {
	l := NewInMemoryLock(0)
	defer l.Close()
	ctx := context.Background()

	token, ok, err := l.Acquire(ctx, "super-aki:482931", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = l.Acquire(ctx, "super-aki:482931", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "held key must not be acquired twice")

	other, ok, err := l.Acquire(ctx, "super-aki:482932", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "other keys are independent")
	assert.NotEqual(t, token, other)

	require.NoError(t, l.Release(ctx, "super-aki:482931", token))
	_, ok, err = l.Acquire(ctx, "super-aki:482931", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.Release(ctx, "never-held", "nobody"))
}

func TestInMemoryLock_Expiry(t *testing.T) {
	l := NewInMemoryLock(0)
	defer l.Close()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, ok, _ := l.Acquire(ctx, "k", time.Minute)
	require.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = l.Acquire(ctx, "k", time.Minute)
	assert.True(t, ok, "expired holder loses the key")
}

func TestInMemoryLock_ExpiredHolderCannotReleaseNewHolder(t *testing.T) {
	l := NewInMemoryLock(0)
	defer l.Close()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	first, ok, _ := l.Acquire(ctx, "super-aki:482931", time.Minute)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	second, ok, _ := l.Acquire(ctx, "super-aki:482931", time.Minute)
	require.True(t, ok)

	require.NoError(t, l.Release(ctx, "super-aki:482931", first))
	_, ok, _ = l.Acquire(ctx, "super-aki:482931", time.Minute)
	assert.False(t, ok, "stale release must leave the new hold in place")

	require.NoError(t, l.Release(ctx, "super-aki:482931", second))
	_, ok, _ = l.Acquire(ctx, "super-aki:482931", time.Minute)
	assert.True(t, ok)
}

func TestInMemoryLock_Cleanup(t *testing.T) {
	l := NewInMemoryLock(0)
	defer l.Close()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, _, _ = l.Acquire(ctx, "short", time.Second)
	_, _, _ = l.Acquire(ctx, "long", time.Hour)
	require.Equal(t, 2, l.Size())

	now = now.Add(time.Minute)
	l.cleanup()
	assert.Equal(t, 1, l.Size())
}

func TestInMemoryLock_ConcurrentAcquire(t *testing.T) {
	l := NewInMemoryLock(0)
	defer l.Close()

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := l.Acquire(context.Background(), "k", time.Minute)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, won)
}

func TestInMemoryLock_CloseIsIdempotent(t *testing.T) {
	l := NewInMemoryLock(time.Millisecond)
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}

func TestRedisLock_ConnectionError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	l := NewRedisLock(client, "")

	token, ok, err := l.Acquire(context.Background(), "k", time.Minute)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Empty(t, token)
	assert.Error(t, l.Release(context.Background(), "k", "token"))
}

func TestNewRedisLock_DefaultPrefix(t *testing.T) {
	l := NewRedisLock(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "")
	assert.Equal(t, defaultLockPrefix, l.keyPrefix)
}

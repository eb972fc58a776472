package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockPrefix = "facturasnap:lock:"

// releaseScript deletes the key only while it still carries the holder's
// token. A hold that expired and was re-taken is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock shares keyed locks across instances through SET NX.
type RedisLock struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisLock wraps an existing client. An empty keyPrefix uses
// "facturasnap:lock:".
func NewRedisLock(client redis.UniversalClient, keyPrefix string) *RedisLock {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisLock{client: client, keyPrefix: keyPrefix}
}

// Acquire takes key for ttl and returns the token stored under it.
func (l *RedisLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees key if token still holds it.
func (l *RedisLock) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.keyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}

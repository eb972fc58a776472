// Package cache holds short-lived coordination state shared by request
// handlers: in-process for a single instance, Redis-backed otherwise.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryLock is a keyed lock with expiry for single-instance
// deployments and tests.
type InMemoryLock struct {
	mu        sync.Mutex
	entries   map[string]lockEntry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type lockEntry struct {
	token     string
	expiresAt time.Time
}

// NewInMemoryLock creates an empty lock table and starts the goroutine
// that evicts expired keys every sweep interval.
func NewInMemoryLock(sweep time.Duration) *InMemoryLock {
	l := &InMemoryLock{
		entries:  make(map[string]lockEntry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	if sweep > 0 {
		l.wg.Add(1)
		go l.cleanupLoop(sweep)
	}
	return l
}

// Acquire takes key for ttl and returns the hold's token. It returns false
// while an unexpired holder owns the key.
func (l *InMemoryLock) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if entry, held := l.entries[key]; held && now.Before(entry.expiresAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.entries[key] = lockEntry{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// Release frees key if token still holds it. Releasing a free key, or one
// re-taken by another holder, is a no-op.
func (l *InMemoryLock) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry, held := l.entries[key]; held && entry.token == token {
		delete(l.entries, key)
	}
	return nil
}

// Close stops the eviction goroutine. Safe to call multiple times.
func (l *InMemoryLock) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

// Size returns the number of tracked keys, expired ones included.
func (l *InMemoryLock) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *InMemoryLock) cleanupLoop(every time.Duration) {
	defer l.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *InMemoryLock) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, entry := range l.entries {
		if !now.Before(entry.expiresAt) {
			delete(l.entries, key)
		}
	}
}

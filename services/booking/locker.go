package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Locker serializes booking critical sections per calendar date.
type Locker interface {
	WithDateLock(ctx context.Context, date string, fn func(ctx context.Context) error) error
}

const dateLockPrefix = "booking:lock:"

// RedisDateLocker holds a SET NX key per date so several instances of the
// service cannot double-book the chair.
type RedisDateLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewRedisDateLocker keeps the lock for at most ttl and waits up to wait
// for a busy lock before giving up with ErrLockNotAcquired.
func NewRedisDateLocker(client *redis.Client, ttl, wait time.Duration) *RedisDateLocker {
	return &RedisDateLocker{client: client, ttl: ttl, wait: wait, retry: 50 * time.Millisecond}
}

func (l *RedisDateLocker) WithDateLock(ctx context.Context, date string, fn func(ctx context.Context) error) error {
	key := dateLockPrefix + date
	token := uuid.NewString()

	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}
	defer func() {
		// The caller's context may already be done; release regardless.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = l.release(rctx, key, token)
	}()

	lockCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()
	return fn(lockCtx)
}

func (l *RedisDateLocker) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire date lock: %w", err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return ErrLockNotAcquired
		case <-time.After(l.retry):
		}
	}
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *RedisDateLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release date lock: %w", err)
	}
	return nil
}

// LocalDateLocker is an in-process keyed mutex for single-instance runs.
type LocalDateLocker struct {
	mu    sync.Mutex
	locks map[string]*dateLock
}

type dateLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalDateLocker() *LocalDateLocker {
	return &LocalDateLocker{locks: make(map[string]*dateLock)}
}

func (l *LocalDateLocker) WithDateLock(ctx context.Context, date string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	dl, ok := l.locks[date]
	if !ok {
		dl = &dateLock{ch: make(chan struct{}, 1)}
		l.locks[date] = dl
	}
	dl.refs++
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		dl.refs--
		if dl.refs == 0 {
			delete(l.locks, date)
		}
		l.mu.Unlock()
	}()

	select {
	case dl.ch <- struct{}{}:
	case <-ctx.Done():
		return ErrLockNotAcquired
	}
	defer func() { <-dl.ch }()

	return fn(ctx)
}

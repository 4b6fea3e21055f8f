package booking

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisDateLockerBusy(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, mr.Set(dateLockPrefix+testDate, "someone-else"))
	locker := NewRedisDateLocker(client, time.Second, 120*time.Millisecond)

	called := false
	err := locker.WithDateLock(context.Background(), testDate, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrLockNotAcquired)
	assert.False(t, called)

	// A foreign holder's key is left untouched.
	v, err := mr.Get(dateLockPrefix + testDate)
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v)
}

func TestRedisDateLockerReleases(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := NewRedisDateLocker(client, time.Second, time.Second)
	err := locker.WithDateLock(context.Background(), testDate, func(context.Context) error {
		assert.True(t, mr.Exists(dateLockPrefix+testDate))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists(dateLockPrefix+testDate))

	// Other dates do not contend.
	require.NoError(t, mr.Set(dateLockPrefix+"2030-01-11", "held"))
	require.NoError(t, locker.WithDateLock(context.Background(), testDate, func(context.Context) error { return nil }))
}

func TestLocalDateLockerSerializes(t *testing.T) {
	locker := NewLocalDateLocker()
	var inside, maxInside int32
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func() {
			_ = locker.WithDateLock(context.Background(), testDate, func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInside))
	assert.Empty(t, locker.locks)
}

func TestLocalDateLockerContextCancelled(t *testing.T) {
	locker := NewLocalDateLocker()
	hold := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = locker.WithDateLock(context.Background(), testDate, func(context.Context) error {
			close(started)
			<-hold
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := locker.WithDateLock(ctx, testDate, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrLockNotAcquired)
	close(hold)
}

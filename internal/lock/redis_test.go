package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	l := NewRedisLocker(client, "seating:")
	l.retry = 5 * time.Millisecond
	return l, mr
}

func TestRedisLocker_TryLock(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	lease, err := l.TryLock(ctx, "ev-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("seating:lock:ev-1"))

	_, err = l.TryLock(ctx, "ev-1", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, lease.Release(ctx))
	assert.False(t, mr.Exists("seating:lock:ev-1"))
}

func TestRedisLocker_UnlockKeepsForeignLease(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	lease, err := l.TryLock(ctx, "ev-1", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	other, err := l.TryLock(ctx, "ev-1", time.Minute)
	require.NoError(t, err, "expired lease can be taken over")

	assert.ErrorIs(t, lease.Refresh(ctx, time.Minute), ErrLeaseLost)
	require.NoError(t, lease.Release(ctx))
	assert.True(t, mr.Exists("seating:lock:ev-1"), "stale holder must not delete the new lease")
	require.NoError(t, other.Release(ctx))
}

func TestRedisLocker_Refresh(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	lease, err := l.TryLock(ctx, "ev-1", time.Second)
	require.NoError(t, err)

	mr.FastForward(800 * time.Millisecond)
	require.NoError(t, lease.Refresh(ctx, time.Second))
	mr.FastForward(800 * time.Millisecond)
	assert.True(t, mr.Exists("seating:lock:ev-1"), "refreshed lease outlives its first TTL")

	_, err = l.TryLock(ctx, "ev-1", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)
	require.NoError(t, lease.Release(ctx))
}

func TestRedisLocker_LockWaitsForRelease(t *testing.T) {
	l, _ := newRedisLocker(t)
	ctx := context.Background()

	lease, err := l.TryLock(ctx, "ev-1", time.Minute)
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = lease.Release(context.Background())
	}()

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	second, err := l.Lock(waitCtx, "ev-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, second.Release(ctx))
}

func TestRedisLocker_LockHonorsContext(t *testing.T) {
	l, _ := newRedisLocker(t)

	_, err := l.TryLock(context.Background(), "ev-1", time.Minute)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "ev-1", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManager_WithRedisLocker(t *testing.T) {
	l, _ := newRedisLocker(t)
	ctx := context.Background()

	// A second replica is simulated by a separate Manager sharing the Redis.
	replicaA := NewManager(WithLocker(l, time.Minute))
	replicaB := NewManager(WithLocker(l, time.Minute))

	err := replicaA.WithLock(ctx, "ev-1", func(ctx context.Context) error {
		return replicaB.WithLock(ctx, "ev-1", func(context.Context) error { return nil })
	})
	assert.ErrorIs(t, err, ErrBusy)

	assert.NoError(t, replicaB.WithLock(ctx, "ev-1", func(context.Context) error { return nil }),
		"lease is released after the first holder returns")
}

func TestManager_RenewsLeaseWhileHeld(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	const ttl = 300 * time.Millisecond
	replicaA := NewManager(WithLocker(l, ttl))
	replicaB := NewManager(WithLocker(l, ttl))

	err := replicaA.WithLock(ctx, "ev-1", func(ctx context.Context) error {
		// Total time skipped exceeds the TTL several times over.
		for range 4 {
			mr.FastForward(200 * time.Millisecond)
			require.Eventually(t, func() bool {
				return mr.TTL("seating:lock:ev-1") > 200*time.Millisecond
			}, time.Second, 5*time.Millisecond, "lease was not renewed")
		}
		assert.ErrorIs(t, replicaB.WithLock(ctx, "ev-1", func(context.Context) error { return nil }), ErrBusy)
		return ctx.Err()
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("seating:lock:ev-1"))
}

func TestManager_CancelsWorkWhenLeaseIsLost(t *testing.T) {
	l, mr := newRedisLocker(t)
	m := NewManager(WithLocker(l, 90*time.Millisecond))

	err := m.WithLock(context.Background(), "ev-1", func(ctx context.Context) error {
		// Another replica took the key over.
		require.NoError(t, mr.Set("seating:lock:ev-1", "other-holder"))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
			return nil
		}
	})
	assert.ErrorIs(t, err, ErrLeaseLost)
	assert.ErrorIs(t, err, context.Canceled)

	value, getErr := mr.Get("seating:lock:ev-1")
	require.NoError(t, getErr)
	assert.Equal(t, "other-holder", value, "the new holder's key survives our release")
}

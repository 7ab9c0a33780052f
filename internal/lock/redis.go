package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// unlockScript deletes the key only when it still holds our token.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// refreshScript resets the key's expiry only when it still holds our token.
const refreshScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`

// RedisLocker implements DistributedLocker using Redis SET NX PX.
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
	retry  time.Duration
}

// NewRedisLocker creates a locker whose keys are prefixed with prefix.
func NewRedisLocker(client redis.UniversalClient, prefix string) *RedisLocker {
	return &RedisLocker{
		client: client,
		prefix: prefix,
		retry:  100 * time.Millisecond,
	}
}

func (l *RedisLocker) key(key string) string {
	return l.prefix + "lock:" + key
}

// TryLock makes a single acquisition attempt.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	lockKey := l.key(key)
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error acquiring lock: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &redisLease{client: l.client, key: lockKey, token: token}, nil
}

// Lock polls until the lock is acquired or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		lease, err := l.TryLock(ctx, key, ttl)
		if err != ErrLockHeld {
			return lease, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// redisLease is a key held with a random token.
type redisLease struct {
	client redis.UniversalClient
	key    string
	token  string
}

func (r *redisLease) Refresh(ctx context.Context, ttl time.Duration) error {
	n, err := r.client.Eval(ctx, refreshScript, []string{r.key}, r.token, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis error refreshing lock: %w", err)
	}
	if n == 0 {
		return ErrLeaseLost
	}
	return nil
}

func (r *redisLease) Release(ctx context.Context) error {
	return r.client.Eval(ctx, unlockScript, []string{r.key}, r.token).Err()
}

package shared

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// JobCardLockKey builds redis keys for job card critical sections.
func JobCardLockKey(jobCardID int64) string {
	return fmt.Sprintf("jobcard:%d:lock", jobCardID)
}

// ErrLockHeld indicates another request holds the lock.
var ErrLockHeld = errors.New("resource is locked by another request")

// Locker serializes mutating operations per key using redis SET NX.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocker constructs a Locker. TTL bounds how long a crashed holder
// can block other writers.
func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Locker{client: client, ttl: ttl}
}

// Acquire takes the lock and returns a release function. The token check
// on release ensures an expired holder cannot delete a successor's lock.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	if l == nil || l.client == nil {
		return func() {}, nil
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	release := func() {
		const script = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`
		_ = l.client.Eval(context.Background(), script, []string{key}, token).Err()
	}
	return release, nil
}

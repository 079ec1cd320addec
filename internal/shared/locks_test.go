package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLockerClient(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLocker(client, time.Second), mr
}

func TestLockerSerializesSameKey(t *testing.T) {
	locker, _ := newLockerClient(t)
	ctx := context.Background()
	key := JobCardLockKey(42)

	release, err := locker.Acquire(ctx, key)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, key)
	assert.ErrorIs(t, err, ErrLockHeld)

	release()

	release2, err := locker.Acquire(ctx, key)
	require.NoError(t, err)
	release2()
}

func TestLockerIndependentKeys(t *testing.T) {
	locker, _ := newLockerClient(t)
	ctx := context.Background()

	release7, err := locker.Acquire(ctx, JobCardLockKey(7))
	require.NoError(t, err)
	defer release7()

	release42, err := locker.Acquire(ctx, JobCardLockKey(42))
	require.NoError(t, err)
	defer release42()
}

func TestLockerExpiredHolderCannotReleaseSuccessor(t *testing.T) {
	locker, mr := newLockerClient(t)
	ctx := context.Background()
	key := JobCardLockKey(1)

	staleRelease, err := locker.Acquire(ctx, key)
	require.NoError(t, err)

	// Simulate TTL expiry while the first holder is still running.
	mr.FastForward(2 * time.Second)

	release, err := locker.Acquire(ctx, key)
	require.NoError(t, err)
	defer release()

	staleRelease()

	// The successor's lock must survive the stale release.
	_, err = locker.Acquire(ctx, key)
	assert.ErrorIs(t, err, ErrLockHeld)
}

func TestNilLockerIsNoOp(t *testing.T) {
	var locker *Locker
	release, err := locker.Acquire(context.Background(), JobCardLockKey(1))
	require.NoError(t, err)
	release()
}

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

func newTestLock(t *testing.T) (*RedisLock, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	lock := NewRedisLockWithClient(redis.NewClient(&redis.Options{Addr: server.Addr()}))
	lock.poll = 5 * time.Millisecond
	t.Cleanup(func() {
		assert.NoError(t, lock.Close())
	})
	return lock, server
}

func TestNewRedisLock(t *testing.T) {
	t.Run("empty url", func(t *testing.T) {
		_, err := NewRedisLock(context.Background(), "")
		assert.Error(t, err)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := NewRedisLock(context.Background(), "not a url")
		assert.ErrorContains(t, err, "parsing redis url")
	})

	t.Run("connects", func(t *testing.T) {
		server := miniredis.RunT(t)
		lock, err := NewRedisLock(context.Background(), "redis://"+server.Addr()+"/0")
		require.NoError(t, err)
		assert.NoError(t, lock.Close())
	})
}

func TestRedisLock_ClaimAndRelease(t *testing.T) {
	lock, server := newTestLock(t)
	ctx := context.Background()

	release, err := lock.Claim(ctx, "abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, server.Exists(keyPrefix+"abc"))

	release()
	assert.False(t, server.Exists(keyPrefix+"abc"))

	// Releasing twice is harmless.
	release()
}

func TestRedisLock_SecondClaimWaits(t *testing.T) {
	lock, _ := newTestLock(t)
	ctx := context.Background()

	release, err := lock.Claim(ctx, "abc", time.Minute)
	require.NoError(t, err)

	acquired := make(chan func(), 1)
	go func() {
		second, err := lock.Claim(ctx, "abc", time.Minute)
		if err == nil {
			acquired <- second
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second claim acquired while the first is held")
	case <-time.After(50 * time.Millisecond):
	}

	release()

	select {
	case second := <-acquired:
		second()
	case <-time.After(2 * time.Second):
		t.Fatal("second claim never acquired")
	}
}

func TestRedisLock_ClaimHonoursContext(t *testing.T) {
	lock, _ := newTestLock(t)

	release, err := lock.Claim(context.Background(), "abc", time.Minute)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = lock.Claim(ctx, "abc", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedisLock_ReleaseKeepsForeignClaim(t *testing.T) {
	lock, server := newTestLock(t)
	ctx := context.Background()

	release, err := lock.Claim(ctx, "abc", time.Second)
	require.NoError(t, err)

	// The claim expires and another process takes it over.
	server.FastForward(2 * time.Second)
	require.NoError(t, server.Set(keyPrefix+"abc", "other-token"))

	release()

	value, err := server.Get(keyPrefix + "abc")
	require.NoError(t, err)
	assert.Equal(t, "other-token", value)
}

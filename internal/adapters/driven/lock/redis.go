// Package lock provides a cross-process ingest claim on Redis.
//
// A claim is a key set with SET NX PX holding a random token. Release deletes
// the key only while it still holds that token, so an expired claim taken over
// by another process is never released by the original holder.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Ensure RedisLock implements the interface.
var _ driven.ClaimLock = (*RedisLock)(nil)

const (
	keyPrefix      = "docqa:claim:"
	defaultPoll    = 100 * time.Millisecond
	releaseTimeout = 5 * time.Second
)

// releaseScript deletes KEYS[1] only if it holds ARGV[1].
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock implements driven.ClaimLock with a Redis key per content hash.
type RedisLock struct {
	client *redis.Client
	poll   time.Duration
}

// NewRedisLock connects to the Redis server at url (redis://host:port/db).
func NewRedisLock(ctx context.Context, url string) (*RedisLock, error) {
	if url == "" {
		return nil, errors.New("redis url is required")
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisLockWithClient(client), nil
}

// NewRedisLockWithClient wraps an existing client.
func NewRedisLockWithClient(client *redis.Client) *RedisLock {
	return &RedisLock{client: client, poll: defaultPoll}
}

// Claim blocks until the claim for hash is held or ctx is done.
func (l *RedisLock) Claim(ctx context.Context, hash string, ttl time.Duration) (func(), error) {
	key := keyPrefix + hash
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("claiming %s: %w", hash, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	logger.Debug("lock: claimed %s", hash)

	var once sync.Once
	release := func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
				logger.Warn("lock: release %s: %v", hash, err)
			}
		})
	}
	return release, nil
}

// Close closes the underlying client.
func (l *RedisLock) Close() error {
	return l.client.Close()
}

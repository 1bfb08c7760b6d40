package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// deletes the lease only if it is still ours
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// SweepLock serializes sweep invocations across instances with a Redis
// SETNX lease. The TTL bounds how long a crashed holder can block the next
// tick. A nil *SweepLock always grants, which falls back to the
// compare-and-swap row updates alone.
type SweepLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSweepLock(client *redis.Client, ttl time.Duration) *SweepLock {
	return &SweepLock{client: client, ttl: ttl}
}

// Acquire returns a release func and whether the caller holds the lease.
// Redis being unreachable grants the sweep rather than stalling it: the
// row-level conditional updates keep concurrent runs safe.
func (l *SweepLock) Acquire(ctx context.Context, mode string) (func(), bool) {
	if l == nil {
		return func() {}, true
	}

	key := "lifecycle:sweep:" + mode
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		log.Printf("⚠️ [SWEEP] Lock check failed for %s, proceeding on conditional updates: %v", mode, err)
		return func() {}, true
	}
	if !ok {
		return func() {}, false
	}

	release := func() {
		if err := releaseScript.Run(context.Background(), l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			log.Printf("⚠️ [SWEEP] Lock release failed for %s: %v", mode, err)
		}
	}
	return release, true
}

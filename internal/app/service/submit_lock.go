package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"debugweek/internal/common"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseLockScript deletes the lock only if we still hold it (CAS on the
// lock value), so an expired lock taken over by another request is left alone.
var releaseLockScript = redis.NewScript(`
    if redis.call("get", KEYS[1]) == ARGV[1] then
        return redis.call("del", KEYS[1])
    else
        return 0
    end
`)

// SubmitLock serializes grading per (user, challenge) pair. It fails closed:
// when the pair is already locked the caller gets ErrSubmissionInFlight and
// should retry, rather than racing the in-flight grading.
type SubmitLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSubmitLock(rdb *redis.Client, ttl time.Duration) *SubmitLock {
	return &SubmitLock{rdb: rdb, ttl: ttl}
}

func (l *SubmitLock) Acquire(ctx context.Context, userID, challengeID string) (release func(), err error) {
	key := "submit_lock:" + userID + ":" + challengeID
	value := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, value, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire submit lock: %w", err)
	}
	if !ok {
		return nil, common.ErrSubmissionInFlight
	}

	return func() {
		deleted, err := releaseLockScript.Run(ctx, l.rdb, []string{key}, value).Result()
		if err != nil {
			log.Printf("ERROR: Failed to release submit lock %s: %v", key, err)
			return
		}
		if deleted.(int64) != 1 {
			log.Printf("WARN: Did not release submit lock %s; it expired or was taken over.", key)
		}
	}, nil
}

// Package redislock holds a short-lived advisory lock on a
// (event, student) pair while a signup is in flight. The database
// transaction remains the correctness boundary; the lock only rejects
// duplicate concurrent submissions before they reach the store.
package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const DefaultTTL = 30 * time.Second

type Lock struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Lock{Client: client, TTL: ttl}
}

func key(eventID int64, studentID string) string {
	return fmt.Sprintf("registration_lock:%d:%s", eventID, studentID)
}

// LockRegistration acquires the pair's lock. It returns false when the
// lock is already held by another in-flight request.
func (l *Lock) LockRegistration(ctx context.Context, eventID int64, studentID string) (bool, error) {
	return l.Client.SetNX(ctx, key(eventID, studentID), studentID, l.TTL).Result()
}

// UnlockRegistration releases the pair's lock. A missing key is not an
// error; the TTL may already have expired it.
func (l *Lock) UnlockRegistration(ctx context.Context, eventID int64, studentID string) error {
	err := l.Client.Del(ctx, key(eventID, studentID)).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}

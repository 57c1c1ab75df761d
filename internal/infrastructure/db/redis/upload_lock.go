package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 30 * time.Second

// releaseScript deletes the lock only while it still carries our token, so a
// holder whose lock expired cannot release a newer holder's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// UploadLock serialises profile image uploads per user across API instances.
// Key format: upload-lock:<user_id>
type UploadLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUploadLock creates an UploadLock. A non-positive ttl falls back to
// defaultLockTTL.
func NewUploadLock(client *redis.Client, ttl time.Duration) *UploadLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &UploadLock{client: client, ttl: ttl}
}

// Acquire takes the lock for userID. acquired is false when another upload for
// the same user holds it.
func (l *UploadLock) Acquire(ctx context.Context, userID string) (func(context.Context) error, bool, error) {
	key := lockKey(userID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("upload lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			return fmt.Errorf("upload unlock: %w", err)
		}
		return nil
	}
	return release, true, nil
}

func lockKey(userID string) string {
	return "upload-lock:" + userID
}

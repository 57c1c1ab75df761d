package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestLockKey(t *testing.T) {
	if got := lockKey("u1"); got != "upload-lock:u1" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestNewUploadLock_DefaultTTL(t *testing.T) {
	l := NewUploadLock(nil, 0)
	if l.ttl != defaultLockTTL {
		t.Fatalf("expected default ttl, got %v", l.ttl)
	}
	if l := NewUploadLock(nil, time.Minute); l.ttl != time.Minute {
		t.Fatalf("expected configured ttl, got %v", l.ttl)
	}
}

func TestUploadLock_AcquireUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	_, acquired, err := NewUploadLock(client, time.Second).Acquire(context.Background(), "u1")
	if err == nil {
		t.Fatalf("expected error from unreachable redis")
	}
	if acquired {
		t.Fatalf("lock must not be reported as acquired on error")
	}
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	if err == nil {
		t.Fatalf("expected ping error")
	}
}

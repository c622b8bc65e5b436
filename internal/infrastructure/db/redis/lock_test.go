package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/99minutos/film-catalog/internal/core/domain"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client, err := Connect(context.Background(), Config{Addr: addr, Timeout: 500 * time.Millisecond})
	if err != nil {
		t.Skipf("redis unavailable at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestLocker_ExclusiveUntilReleased(t *testing.T) {
	client := newTestClient(t)
	locker := NewLocker(client)
	ctx := context.Background()
	key := "test:lock:" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, key) })

	release, err := locker.Acquire(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if _, err := locker.Acquire(ctx, key, time.Minute); !errors.Is(err, domain.ErrSyncInProgress) {
		t.Fatalf("expected ErrSyncInProgress, got %v", err)
	}

	if err := release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}

	again, err := locker.Acquire(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	_ = again(ctx)
}

func TestLocker_StaleReleaseKeepsNewHolder(t *testing.T) {
	client := newTestClient(t)
	locker := NewLocker(client)
	ctx := context.Background()
	key := "test:lock:" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, key) })

	stale, err := locker.Acquire(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// Simulate the lease expiring and another process taking the key.
	client.Set(ctx, key, "someone-else", time.Minute)

	if err := stale(ctx); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	if got := client.Get(ctx, key).Val(); got != "someone-else" {
		t.Fatalf("stale release removed the new holder's lock, value=%q", got)
	}
}

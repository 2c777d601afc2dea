package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func newTestRedis(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set, skipping Redis tests")
	}

	c, err := NewRedisCache(&Options{
		Backend:       BackendRedis,
		RedisAddr:     addr,
		RedisPassword: os.Getenv("REDIS_TEST_PASSWORD"),
		DefaultTTL:    time.Minute,
	})
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_SetGet(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()

	if err := c.Set(ctx, "routing-test:key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	defer c.Delete(ctx, "routing-test:key")

	val, err := c.Get(ctx, "routing-test:key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(val) != "value" {
		t.Errorf("Get() = %s, want value", string(val))
	}
}

func TestRedisCache_NotFound(t *testing.T) {
	c := newTestRedis(t)

	if _, err := c.Get(context.Background(), "routing-test:nonexistent"); err != ErrKeyNotFound {
		t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
	}
}

func TestRedisCache_DistanceCacheNamespace(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()

	dc := NewDistanceCache(c, WithNamespace("redis-test"))
	defer dc.Clear(ctx)

	if err := dc.SetDistance(ctx, 1, 0, 2, 30); err != nil {
		t.Fatalf("SetDistance() error = %v", err)
	}

	d, ok, err := dc.GetDistance(ctx, 1, 0, 2)
	if err != nil || !ok || d != 30 {
		t.Fatalf("GetDistance() = %v, %v, %v", d, ok, err)
	}

	if err := dc.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok, _ := dc.GetDistance(ctx, 1, 0, 2); ok {
		t.Error("expected miss after Clear")
	}
}

package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	cache := NewMemoryCache(&Options{
		DefaultTTL: 1 * time.Minute,
		MaxEntries: 100,
	})
	defer cache.Close()

	ctx := context.Background()
	key := "test-key"
	value := []byte("test-value")

	if err := cache.Set(ctx, key, value, 0); err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if string(got) != string(value) {
		t.Errorf("expected %s, got %s", value, got)
	}
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	cache := NewMemoryCache(nil)
	defer cache.Close()

	ctx := context.Background()
	value := []byte("abc")
	_ = cache.Set(ctx, "k", value, 0)
	value[0] = 'x'

	got, _ := cache.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value changed through caller slice: %s", got)
	}

	got[1] = 'y'
	again, _ := cache.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value changed through returned slice: %s", again)
	}
}

func TestMemoryCache_GetNotFound(t *testing.T) {
	cache := NewMemoryCache(nil)
	defer cache.Close()

	_, err := cache.Get(context.Background(), "nonexistent")
	if err != ErrKeyNotFound {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache(nil)
	defer cache.Close()

	ctx := context.Background()
	_ = cache.Set(ctx, "test-key", []byte("value"), 0)

	if err := cache.Delete(ctx, "test-key"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if err := cache.Delete(ctx, "missing"); err != nil {
		t.Fatalf("deleting a missing key should not fail: %v", err)
	}

	if _, err := cache.Get(ctx, "test-key"); err != ErrKeyNotFound {
		t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	cache := NewMemoryCache(nil)
	defer cache.Close()

	ctx := context.Background()

	exists, err := cache.Exists(ctx, "k")
	if err != nil {
		t.Fatalf("failed to check exists: %v", err)
	}
	if exists {
		t.Error("expected key to not exist")
	}

	_ = cache.Set(ctx, "k", []byte("v"), 0)

	exists, _ = cache.Exists(ctx, "k")
	if !exists {
		t.Error("expected key to exist")
	}
}

func TestMemoryCache_TTL(t *testing.T) {
	cache := NewMemoryCache(nil)
	defer cache.Close()

	now := time.Now()
	cache.now = func() time.Time { return now }

	ctx := context.Background()
	_ = cache.Set(ctx, "short", []byte("v"), time.Second)
	_ = cache.Set(ctx, "long", []byte("v"), time.Hour)

	now = now.Add(2 * time.Second)

	if _, err := cache.Get(ctx, "short"); err != ErrKeyNotFound {
		t.Errorf("expected expired key to be missing, got %v", err)
	}
	if _, err := cache.Get(ctx, "long"); err != nil {
		t.Errorf("expected long-lived key, got %v", err)
	}
	if exists, _ := cache.Exists(ctx, "short"); exists {
		t.Error("expired key should not exist")
	}
}

func TestMemoryCache_RemoveExpired(t *testing.T) {
	cache := NewMemoryCache(nil)
	defer cache.Close()

	now := time.Now()
	cache.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_ = cache.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Duration(i+1)*time.Second)
	}

	now = now.Add(3500 * time.Millisecond)

	if removed := cache.removeExpired(); removed != 3 {
		t.Errorf("expected 3 expired entries removed, got %d", removed)
	}
	if cache.Len() != 2 {
		t.Errorf("expected 2 entries left, got %d", cache.Len())
	}
}

func TestMemoryCache_Keys(t *testing.T) {
	cache := NewMemoryCache(nil)
	defer cache.Close()

	ctx := context.Background()
	_ = cache.Set(ctx, "dist:1", []byte("a"), 0)
	_ = cache.Set(ctx, "dist:2", []byte("b"), 0)
	_ = cache.Set(ctx, "path:1", []byte("c"), 0)

	keys, err := cache.Keys(ctx, "dist:*")
	if err != nil {
		t.Fatalf("failed to list keys: %v", err)
	}
	sort.Strings(keys)

	if len(keys) != 2 || keys[0] != "dist:1" || keys[1] != "dist:2" {
		t.Errorf("unexpected keys: %v", keys)
	}
}

func TestMemoryCache_DeleteByPattern(t *testing.T) {
	cache := NewMemoryCache(nil)
	defer cache.Close()

	ctx := context.Background()
	_ = cache.Set(ctx, "routing:a:dist:1", []byte("1"), 0)
	_ = cache.Set(ctx, "routing:a:path:1", []byte("2"), 0)
	_ = cache.Set(ctx, "routing:b:dist:1", []byte("3"), 0)

	deleted, err := cache.DeleteByPattern(ctx, "routing:a:*")
	if err != nil {
		t.Fatalf("failed to delete by pattern: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	if exists, _ := cache.Exists(ctx, "routing:b:dist:1"); !exists {
		t.Error("key from another namespace should survive")
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := NewMemoryCache(nil)
	defer cache.Close()

	ctx := context.Background()
	_ = cache.Set(ctx, "dist:1", []byte("1234"), 0)
	_ = cache.Set(ctx, "path:1", []byte("56"), 0)

	_, _ = cache.Get(ctx, "dist:1")
	_, _ = cache.Get(ctx, "dist:1")
	_, _ = cache.Get(ctx, "missing")

	stats, err := cache.Stats(ctx)
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}

	if stats.TotalKeys != 2 {
		t.Errorf("expected 2 keys, got %d", stats.TotalKeys)
	}
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("expected 2 hits / 1 miss, got %d / %d", stats.Hits, stats.Misses)
	}
	if stats.HitRate < 0.66 || stats.HitRate > 0.67 {
		t.Errorf("unexpected hit rate %v", stats.HitRate)
	}
	if stats.MemoryBytes != 6 {
		t.Errorf("expected 6 bytes, got %d", stats.MemoryBytes)
	}
	if stats.KeysByPrefix["dist"] != 1 || stats.KeysByPrefix["path"] != 1 {
		t.Errorf("unexpected prefix counts: %v", stats.KeysByPrefix)
	}
	if stats.Backend != BackendMemory {
		t.Errorf("expected backend memory, got %s", stats.Backend)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCache(nil)
	defer cache.Close()

	ctx := context.Background()
	_ = cache.Set(ctx, "a", []byte("1"), 0)
	_ = cache.Set(ctx, "b", []byte("2"), 0)

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", cache.Len())
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	cache := NewMemoryCache(&Options{MaxEntries: 3})
	defer cache.Close()

	ctx := context.Background()
	_ = cache.Set(ctx, "a", []byte("1"), 0)
	_ = cache.Set(ctx, "b", []byte("2"), 0)
	_ = cache.Set(ctx, "c", []byte("3"), 0)

	// "a" становится самым свежим, вытесняться должен "b"
	_, _ = cache.Get(ctx, "a")
	_ = cache.Set(ctx, "d", []byte("4"), 0)

	if _, err := cache.Get(ctx, "b"); err != ErrKeyNotFound {
		t.Errorf("expected 'b' to be evicted, got %v", err)
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, err := cache.Get(ctx, key); err != nil {
			t.Errorf("expected %q to survive, got %v", key, err)
		}
	}

	stats, _ := cache.Stats(ctx)
	if stats.Evictions != 1 {
		t.Errorf("expected 1 eviction, got %d", stats.Evictions)
	}
}

func TestMemoryCache_OverwriteDoesNotEvict(t *testing.T) {
	cache := NewMemoryCache(&Options{MaxEntries: 2})
	defer cache.Close()

	ctx := context.Background()
	_ = cache.Set(ctx, "a", []byte("1"), 0)
	_ = cache.Set(ctx, "b", []byte("2"), 0)
	_ = cache.Set(ctx, "a", []byte("3"), 0)

	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
	got, _ := cache.Get(ctx, "a")
	if string(got) != "3" {
		t.Errorf("expected overwritten value, got %s", got)
	}
}

func TestMemoryCache_Close(t *testing.T) {
	cache := NewMemoryCache(nil)
	ctx := context.Background()

	if err := cache.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}

	if _, err := cache.Get(ctx, "k"); err != ErrCacheClosed {
		t.Errorf("expected ErrCacheClosed, got %v", err)
	}
	if err := cache.Set(ctx, "k", nil, 0); err != ErrCacheClosed {
		t.Errorf("expected ErrCacheClosed, got %v", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache(&Options{MaxEntries: 50})
	defer cache.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*31+i)%100)
				_ = cache.Set(ctx, key, []byte("v"), 0)
				_, _ = cache.Get(ctx, key)
			}
		}(g)
	}
	wg.Wait()

	if cache.Len() > 50 {
		t.Errorf("cache exceeded capacity: %d", cache.Len())
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"*", "anything", true},
		{"routing:*", "routing:ns:dist:1:0:2", true},
		{"routing:*", "other:1", false},
		{"*:2", "dist:1:2", true},
		{"dist:*:2", "dist:1:2", true},
		{"dist:*:2", "dist:1:3", false},
		{"ab*ba", "aba", false},
		{"exact", "exact", true},
		{"exact", "exactly", false},
	}

	for _, tt := range tests {
		if got := matchPattern(tt.pattern, tt.key); got != tt.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.key, got, tt.want)
		}
	}
}

func TestExtractPrefix(t *testing.T) {
	tests := map[string]string{
		"routing:ns:dist": "routing",
		"plain":           "other",
		":leading":        "other",
	}

	for key, want := range tests {
		if got := extractPrefix(key); got != want {
			t.Errorf("extractPrefix(%q) = %q, want %q", key, got, want)
		}
	}
}

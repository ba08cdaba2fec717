package redis

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "owner:u-1", []byte("1"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "owner:u-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(val) != "1" {
		t.Fatalf("expected 1, got %s", val)
	}
}

func TestCacheMissReturnsNil(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	val, err := NewCache(client).Get(context.Background(), "absent")
	if err != nil || val != nil {
		t.Fatalf("expected silent miss, got val=%v err=%v", val, err)
	}
}

func TestCacheExpiresAndDeletes(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "short", []byte("x"), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	mr.FastForward(2 * time.Second)
	if val, _ := cache.Get(ctx, "short"); val != nil {
		t.Fatalf("expected expiry, got %s", val)
	}

	if err := cache.Set(ctx, "gone", []byte("x"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := cache.Delete(ctx, "gone"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if mr.Exists(cache.prefix + "gone") {
		t.Fatalf("expected key to be removed")
	}
}

func TestCacheError(t *testing.T) {
	client, mr := newTestRedisClient(t)
	mr.Close()
	defer client.Close()

	if _, err := NewCache(client).Get(context.Background(), "k"); err == nil {
		t.Fatalf("expected error with server down")
	}
}

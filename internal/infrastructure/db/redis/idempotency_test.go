package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client), mr
}

func TestIdempotencyStore_Claim(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	first, err := store.Claim(ctx, "alice", "key-1")
	if err != nil {
		t.Fatalf("Claim returned error: %v", err)
	}
	if !first {
		t.Fatalf("expected first claim to succeed")
	}

	again, err := store.Claim(ctx, "alice", "key-1")
	if err != nil {
		t.Fatalf("Claim returned error: %v", err)
	}
	if again {
		t.Fatalf("expected replay to be rejected")
	}

	other, _ := store.Claim(ctx, "bob", "key-1")
	if !other {
		t.Fatalf("expected the same key in another scope to be independent")
	}

	if ttl := mr.TTL("idempotency:alice:key-1"); ttl != idempotencyTTL {
		t.Fatalf("expected ttl %s, got %s", idempotencyTTL, ttl)
	}
}

func TestIdempotencyStore_Expiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if ok, _ := store.Claim(ctx, "alice", "k"); !ok {
		t.Fatalf("expected first claim to succeed")
	}
	mr.FastForward(idempotencyTTL + time.Second)
	if ok, _ := store.Claim(ctx, "alice", "k"); !ok {
		t.Fatalf("expected claim to succeed after expiry")
	}
}

func TestIdempotencyStore_Release(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.Claim(ctx, "alice", "k")
	if err := store.Release(ctx, "alice", "k"); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if ok, _ := store.Claim(ctx, "alice", "k"); !ok {
		t.Fatalf("expected claim to succeed after release")
	}
}

func TestIdempotencyStore_Unavailable(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	if _, err := store.Claim(context.Background(), "alice", "k"); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	defer client.Close()

	if err := NewChecker(client).Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}

	if _, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond}); err == nil {
		t.Fatalf("expected Connect to fail on an unreachable address")
	}
}

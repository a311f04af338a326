package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestOpenRedis_Success(t *testing.T) {
	// Start in-memory Redis
	s := miniredis.RunT(t)

	// Use a non-zero DB to verify it's set
	c, err := OpenRedis(s.Addr(), "", 2)
	if err != nil {
		t.Fatalf("OpenRedis returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if got := c.Options().DB; got != 2 {
		t.Fatalf("client DB = %d, want 2", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := c.Set(ctx, "k", "v", 0).Err(); err != nil {
		t.Fatalf("SET err: %v", err)
	}
	v, err := c.Get(ctx, "k").Result()
	if err != nil {
		t.Fatalf("GET err: %v", err)
	}
	if v != "v" {
		t.Fatalf("GET value = %q, want %q", v, "v")
	}
}

func TestOpenRedis_Failure(t *testing.T) {
	// Unresolvable host → Ping should fail immediately (no 5s delay)
	if _, err := OpenRedis("not-a-real-host:6379", "", 0); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func newFlashStore(t *testing.T) (*miniredis.Miniredis, *FlashStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewFlashStore(rdb)
}

func TestFlashStore_PutPop(t *testing.T) {
	mr, fs := newFlashStore(t)
	ctx := context.Background()

	if err := fs.Put(ctx, "budi", Flash{Level: FlashSuccess, Message: "saved"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := fs.Put(ctx, "budi", Flash{Level: FlashWarning, Message: "careful"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ttl := mr.TTL(flashPrefix + "budi"); ttl <= 0 || ttl > flashTTL {
		t.Fatalf("flash TTL = %v", ttl)
	}

	got, err := fs.Pop(ctx, "budi")
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if len(got) != 2 || got[0].Message != "saved" || got[1].Level != FlashWarning {
		t.Fatalf("unexpected flashes: %+v", got)
	}

	// one-shot
	again, err := fs.Pop(ctx, "budi")
	if err != nil {
		t.Fatalf("Pop again: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("flashes should be cleared, got %+v", again)
	}
}

func TestFlashStore_IsolatedPerOwner(t *testing.T) {
	_, fs := newFlashStore(t)
	ctx := context.Background()

	_ = fs.Put(ctx, "budi", Flash{Level: FlashSuccess, Message: "mine"})
	got, err := fs.Pop(ctx, "andi")
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("andi saw budi's flash: %+v", got)
	}
}

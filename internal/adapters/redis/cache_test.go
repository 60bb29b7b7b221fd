package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "unit_booking/internal/adapters/redis"
)

func newTestCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return redisad.NewWithClient(client, 10*time.Minute), mr
}

func day(d int) time.Time { return time.Date(2025, 8, d, 0, 0, 0, 0, time.UTC) }

func TestCache_PutGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if _, ok := c.GetCount(ctx, day(1), day(3)); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.PutCount(ctx, day(1), day(3), 7)
	n, ok := c.GetCount(ctx, day(1), day(3))
	if !ok || n != 7 {
		t.Fatalf("expected hit with 7, got ok=%v n=%d", ok, n)
	}

	// a different range is a separate key
	if _, ok := c.GetCount(ctx, day(2), day(3)); ok {
		t.Fatal("expected miss for different range")
	}
}

func TestCache_InvalidateDropsAllRanges(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.PutCount(ctx, day(1), day(3), 7)
	c.PutCount(ctx, day(2), day(5), 4)

	// invalidation for one booking's range must also drop overlapping ranges
	c.Invalidate(ctx, day(1), day(3))

	if _, ok := c.GetCount(ctx, day(1), day(3)); ok {
		t.Fatal("expected exact range to be invalidated")
	}
	if _, ok := c.GetCount(ctx, day(2), day(5)); ok {
		t.Fatal("expected overlapping range to be invalidated too")
	}

	// cache keeps working after invalidation
	c.PutCount(ctx, day(1), day(3), 6)
	if n, ok := c.GetCount(ctx, day(1), day(3)); !ok || n != 6 {
		t.Fatalf("expected fresh value 6, got ok=%v n=%d", ok, n)
	}
}

func TestCache_EntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.PutCount(ctx, day(1), day(3), 7)
	mr.FastForward(11 * time.Minute)

	if _, ok := c.GetCount(ctx, day(1), day(3)); ok {
		t.Fatal("expected miss after TTL")
	}
}

func TestCache_BackendDownIsAMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := redisad.NewWithClient(client, 10*time.Minute)
	ctx := context.Background()

	mr.Close()

	if _, ok := c.GetCount(ctx, day(1), day(3)); ok {
		t.Fatal("expected miss when backend is down")
	}
	// writes and invalidations must not panic or error out
	c.PutCount(ctx, day(1), day(3), 7)
	c.Invalidate(ctx, day(1), day(3))
}

package redisad

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"unit_booking/internal/adapters/observability"
)

const genKey = "unit_availability:gen"

// Cache stores availability counts under generation-prefixed keys. Any
// mutation bumps the generation, which orphans every cached range at once;
// a per-entry TTL cleans the orphans up. All backend failures degrade to a
// miss or a dropped write, never an error for the caller.
type Cache struct {
	c   *redis.Client
	ttl time.Duration
}

func New(addr, pass string, db int, ttl time.Duration) *Cache {
	return &Cache{
		c:   redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		ttl: ttl,
	}
}

// NewWithClient is used by tests backed by miniredis.
func NewWithClient(c *redis.Client, ttl time.Duration) *Cache {
	return &Cache{c: c, ttl: ttl}
}

func (r *Cache) GetCount(ctx context.Context, start, end time.Time) (int64, bool) {
	gen, ok := r.generation(ctx)
	if !ok {
		return 0, false
	}
	n, err := r.c.Get(ctx, key(gen, start, end)).Int64()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return 0, false
	}
	if err != nil {
		observability.ObserveCache("redis", "error")
		log.Warn().Err(err).Msg("availability cache read failed, treating as miss")
		return 0, false
	}
	observability.ObserveCache("redis", "hit")
	return n, true
}

func (r *Cache) PutCount(ctx context.Context, start, end time.Time, count int64) {
	gen, ok := r.generation(ctx)
	if !ok {
		return
	}
	if err := r.c.Set(ctx, key(gen, start, end), count, r.ttl).Err(); err != nil {
		observability.ObserveCache("redis", "error")
		log.Warn().Err(err).Msg("availability cache write failed, dropping")
		return
	}
	observability.ObserveCache("redis", "set")
}

// Invalidate ignores the exact range: bumping the generation drops every
// cached range, so queries for overlapping-but-different ranges cannot keep
// serving stale counts.
func (r *Cache) Invalidate(ctx context.Context, _, _ time.Time) {
	if err := r.c.Incr(ctx, genKey).Err(); err != nil {
		observability.ObserveCache("redis", "error")
		log.Warn().Err(err).Msg("availability cache invalidation failed, dropping")
		return
	}
	observability.ObserveCache("redis", "invalidate")
}

func (r *Cache) generation(ctx context.Context) (int64, bool) {
	gen, err := r.c.Get(ctx, genKey).Int64()
	if err == redis.Nil {
		return 0, true
	}
	if err != nil {
		observability.ObserveCache("redis", "error")
		return 0, false
	}
	return gen, true
}

func key(gen int64, start, end time.Time) string {
	return fmt.Sprintf("unit_availability:%d:%s:%s",
		gen, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

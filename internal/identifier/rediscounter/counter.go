// Package rediscounter keeps identifier sequences in Redis.
package rediscounter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/daycare/internal/identifier"
)

// Seeder reports the first free sequence for a key that has no counter yet.
type Seeder interface {
	Seed(ctx context.Context, key string) (int64, error)
}

type Counter struct {
	rdb     redis.UniversalClient
	locker  *redislock.Client
	seeder  Seeder
	kinds   []identifier.Kind
	lockTTL time.Duration
	now     func() time.Time
}

func New(rdb redis.UniversalClient, seeder Seeder, lockTTL time.Duration) *Counter {
	return &Counter{
		rdb:     rdb,
		locker:  redislock.New(rdb),
		seeder:  seeder,
		kinds:   []identifier.Kind{identifier.Registration, identifier.InvoiceNumber, identifier.Receipt},
		lockTTL: lockTTL,
		now:     time.Now,
	}
}

func counterKey(key string) string { return "seq:" + key }

// Next increments the counter for key with INCR. Missing counters are seeded
// under a lock so that no INCR runs against a key that will later be
// overwritten by the seed.
func (c *Counter) Next(ctx context.Context, key string) (int64, error) {
	rkey := counterKey(key)

	n, err := c.rdb.Exists(ctx, rkey).Result()
	if err != nil {
		return 0, fmt.Errorf("checking counter %s: %w", key, err)
	}

	if n == 0 {
		if err := c.seed(ctx, key); err != nil {
			return 0, err
		}
	}

	next, err := c.rdb.Incr(ctx, rkey).Result()
	if err != nil {
		return 0, fmt.Errorf("incrementing counter %s: %w", key, err)
	}

	return next, nil
}

func (c *Counter) seed(ctx context.Context, key string) error {
	lock, err := c.locker.Obtain(ctx, "lock:"+counterKey(key), c.lockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 40),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return fmt.Errorf("could not obtain seed lock for %s: %w", key, err)
	} else if err != nil {
		return fmt.Errorf("obtaining seed lock for %s: %w", key, err)
	}

	defer func() {
		_ = lock.Release(context.WithoutCancel(ctx))
	}()

	seed, err := c.seeder.Seed(ctx, key)
	if err != nil {
		return fmt.Errorf("seeding counter %s: %w", key, err)
	}

	// INCR hands out seed, so store the value just before it.
	set, err := c.rdb.SetNX(ctx, counterKey(key), seed-1, c.expiry(key)).Result()
	if err != nil {
		return fmt.Errorf("storing seed for %s: %w", key, err)
	}

	if set {
		slog.Info("seeded identifier counter", "key", key, "next", seed)
	}

	return nil
}

// expiry keeps a counter one extra period past its own so late writers in
// the old period still find it.
func (c *Counter) expiry(key string) time.Duration {
	parsedKey, err := identifier.Parse(key + "-1")
	if err != nil {
		return 0
	}

	for _, k := range c.kinds {
		if k.Prefix != parsedKey.Prefix {
			continue
		}

		start, err := time.ParseInLocation(k.Layout, parsedKey.Period, c.now().Location())
		if err != nil {
			return 0
		}

		end := k.PeriodEnd(k.PeriodEnd(start))

		return max(end.Sub(c.now()), time.Hour)
	}

	return 0
}

package rediscounter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/daycare/internal/identifier"
)

func TestCounter_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	c := &Counter{
		kinds: []identifier.Kind{identifier.Registration, identifier.InvoiceNumber},
		now:   func() time.Time { return now },
	}

	assert.Equal(t, 36*time.Hour, c.expiry("INV-20240115"))
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Sub(now), c.expiry("REG-2024"))
	assert.Equal(t, time.Hour, c.expiry("INV-20230101"), "stale periods still get a short lifetime")
	assert.Zero(t, c.expiry("XYZ-2024"))
	assert.Zero(t, c.expiry("garbage"))
}

func TestCounterKey(t *testing.T) {
	assert.Equal(t, "seq:INV-20240115", counterKey("INV-20240115"))
}

type fakeSeeder struct {
	mu    sync.Mutex
	seeds map[string]int64
	err   error
	calls int
}

func (s *fakeSeeder) Seed(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++

	if s.err != nil {
		return 0, s.err
	}

	if n, ok := s.seeds[key]; ok {
		return n, nil
	}

	return 1, nil
}

func newTestCounter(t *testing.T, seeder Seeder) (*Counter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := New(rdb, seeder, time.Second)
	c.now = func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }

	return c, mr
}

func TestCounter_Next(t *testing.T) {
	ctx := context.Background()

	t.Run("SeedsMissingKey", func(t *testing.T) {
		seeder := &fakeSeeder{seeds: map[string]int64{"INV-20240115": 42}}
		c, mr := newTestCounter(t, seeder)

		first, err := c.Next(ctx, "INV-20240115")
		require.NoError(t, err)
		assert.Equal(t, int64(42), first)

		second, err := c.Next(ctx, "INV-20240115")
		require.NoError(t, err)
		assert.Equal(t, int64(43), second)

		assert.Equal(t, 1, seeder.calls)
		assert.Equal(t, 36*time.Hour, mr.TTL("seq:INV-20240115"))
		assert.False(t, mr.Exists("lock:seq:INV-20240115"), "seed lock is released")
	})

	t.Run("ExistingCounterIsNotReseeded", func(t *testing.T) {
		seeder := &fakeSeeder{seeds: map[string]int64{"INV-20240115": 42}}
		c, mr := newTestCounter(t, seeder)
		require.NoError(t, mr.Set("seq:INV-20240115", "7"))

		next, err := c.Next(ctx, "INV-20240115")
		require.NoError(t, err)
		assert.Equal(t, int64(8), next)
		assert.Zero(t, seeder.calls)
	})

	t.Run("NewPeriodStartsAtOne", func(t *testing.T) {
		c, mr := newTestCounter(t, &fakeSeeder{})
		require.NoError(t, mr.Set("seq:INV-20240114", "12"))

		next, err := c.Next(ctx, "INV-20240115")
		require.NoError(t, err)
		assert.Equal(t, int64(1), next)

		old, err := mr.Get("seq:INV-20240114")
		require.NoError(t, err)
		assert.Equal(t, "12", old)
	})

	t.Run("SeederError", func(t *testing.T) {
		c, mr := newTestCounter(t, &fakeSeeder{err: errors.New("db down")})

		_, err := c.Next(ctx, "INV-20240115")
		require.Error(t, err)
		assert.False(t, mr.Exists("seq:INV-20240115"))
	})

	t.Run("SeedLockHeldElsewhere", func(t *testing.T) {
		seeder := &fakeSeeder{}
		c, mr := newTestCounter(t, seeder)
		require.NoError(t, mr.Set("lock:seq:INV-20240115", "other-process"))

		lockCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()

		_, err := c.Next(lockCtx, "INV-20240115")
		require.Error(t, err)
		assert.Zero(t, seeder.calls)
		assert.False(t, mr.Exists("seq:INV-20240115"))
	})

	t.Run("ConcurrentFirstUseHandsOutDistinctValues", func(t *testing.T) {
		seeder := &fakeSeeder{seeds: map[string]int64{"REG-2024": 5}}
		c, _ := newTestCounter(t, seeder)

		var (
			wg  sync.WaitGroup
			mu  sync.Mutex
			got = make(map[int64]bool)
		)

		for range 10 {
			wg.Go(func() {
				n, err := c.Next(ctx, "REG-2024")
				assert.NoError(t, err)

				mu.Lock()
				got[n] = true
				mu.Unlock()
			})
		}

		wg.Wait()

		require.Len(t, got, 10)

		for n := int64(5); n < 15; n++ {
			assert.True(t, got[n], "missing %d", n)
		}
	})
}

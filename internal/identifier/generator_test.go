package identifier_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/identifier"
)

// memoryCounter is an in-process Counter used to exercise the generator.
type memoryCounter struct {
	mu   sync.Mutex
	last map[string]int64
}

func (c *memoryCounter) Next(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last == nil {
		c.last = make(map[string]int64)
	}

	c.last[key]++

	return c.last[key], nil
}

func TestGenerator_Next(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	day := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	counter := identifier.NewMockCounter(ctrl)
	counter.EXPECT().Next(gomock.Any(), "INV-20240115").Return(int64(12), nil)

	gen := identifier.NewGenerator(counter).WithClock(func() time.Time { return day })

	got, err := gen.Next(context.Background(), identifier.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, "INV-20240115-0012", got)
}

func TestGenerator_CounterError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	counter := identifier.NewMockCounter(ctrl)
	counter.EXPECT().Next(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("db down"))

	_, err := identifier.NewGenerator(counter).Next(context.Background(), identifier.Registration)
	assert.Error(t, err)
}

func TestGenerator_ConsecutiveDifferByOne(t *testing.T) {
	day := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	gen := identifier.NewGenerator(&memoryCounter{}).WithClock(func() time.Time { return day })

	first, err := gen.Next(context.Background(), identifier.Registration)
	require.NoError(t, err)

	second, err := gen.Next(context.Background(), identifier.Registration)
	require.NoError(t, err)

	a, err := identifier.Parse(first)
	require.NoError(t, err)

	b, err := identifier.Parse(second)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, a.Seq+1, b.Seq)
	assert.Equal(t, "REG-2024-001", first)
	assert.Equal(t, "REG-2024-002", second)
}

func TestGenerator_NewPeriodRestarts(t *testing.T) {
	counter := &memoryCounter{}
	now := time.Date(2024, 12, 31, 9, 0, 0, 0, time.UTC)
	gen := identifier.NewGenerator(counter).WithClock(func() time.Time { return now })

	for range 3 {
		_, err := gen.Next(context.Background(), identifier.Registration)
		require.NoError(t, err)
	}

	now = now.AddDate(0, 0, 1)

	got, err := gen.Next(context.Background(), identifier.Registration)
	require.NoError(t, err)
	assert.Equal(t, "REG-2025-001", got)
}

func TestGenerator_ConcurrentUnique(t *testing.T) {
	gen := identifier.NewGenerator(&memoryCounter{})

	const n = 50

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]struct{}, n)
	)

	for range n {
		wg.Add(1)

		go func() {
			defer wg.Done()

			id, err := gen.Next(context.Background(), identifier.InvoiceNumber)
			assert.NoError(t, err)

			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}

	wg.Wait()
	assert.Len(t, seen, n)
}

func TestGenerator_Assign(t *testing.T) {
	day := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	type testCase struct {
		name     string
		failures int
		attempts int
		wantID   string
		wantErr  bool
	}

	tests := []testCase{
		{name: "FirstTry", attempts: 3, wantID: "INV-20240115-0001"},
		{name: "AfterConflicts", failures: 2, attempts: 3, wantID: "INV-20240115-0003"},
		{name: "Exhausted", failures: 3, attempts: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := identifier.NewGenerator(&memoryCounter{}).WithClock(func() time.Time { return day })

			var (
				calls int
				got   string
			)

			err := gen.Assign(context.Background(), identifier.InvoiceNumber, tt.attempts, func(id string) error {
				calls++
				if calls <= tt.failures {
					return apperr.Conflict("duplicate", nil)
				}

				got = id

				return nil
			})

			if tt.wantErr {
				assert.True(t, apperr.IsConflict(err))
				assert.Equal(t, tt.attempts, calls)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got)
		})
	}
}

func TestGenerator_AssignStopsOnOtherErrors(t *testing.T) {
	gen := identifier.NewGenerator(&memoryCounter{})

	calls := 0
	err := gen.Assign(context.Background(), identifier.Registration, 5, func(string) error {
		calls++
		return apperr.Validation("first_name", "is required")
	})

	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, 1, calls)
}

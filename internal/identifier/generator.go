package identifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
)

//go:generate mockgen -source=generator.go -destination=counter_mock.go -package=identifier

// Counter hands out the next value of a per-key sequence. Implementations
// must be atomic across concurrent callers and start every new key at 1.
type Counter interface {
	Next(ctx context.Context, key string) (int64, error)
}

type Generator struct {
	counter Counter
	now     func() time.Time
}

func NewGenerator(counter Counter) *Generator {
	return &Generator{counter: counter, now: time.Now}
}

// WithClock returns a copy of the generator that reads the time from now.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	return &Generator{counter: g.counter, now: now}
}

// Next issues the next identifier of kind for the current period.
func (g *Generator) Next(ctx context.Context, kind Kind) (string, error) {
	t := g.now()

	seq, err := g.counter.Next(ctx, kind.Key(t))
	if err != nil {
		return "", fmt.Errorf("next %s sequence: %w", kind.Prefix, err)
	}

	return kind.Format(kind.PeriodKey(t), seq), nil
}

// Assign issues an identifier of kind and passes it to insert. While insert
// fails with a retryable error, such as a unique violation on the
// identifier, a fresh identifier is issued, up to attempts times in total.
func (g *Generator) Assign(ctx context.Context, kind Kind, attempts int, insert func(id string) error) error {
	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		var id string

		id, err = g.Next(ctx, kind)
		if err != nil {
			return err
		}

		err = insert(id)
		if err == nil || !apperr.IsRetryable(err) {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		slog.Warn("identifier already taken, retrying", "id", id, "attempt", attempt)
	}

	return err
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/daycare/internal/identifier"
)

// Store keeps one counter row per period key in identifier_sequences.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Next atomically increments the counter for key. A key seen for the first
// time is seeded from identifiers already issued for it, so counters can be
// introduced on a database that predates them.
func (s *Store) Next(ctx context.Context, key string) (int64, error) {
	var next int64

	err := s.db.QueryRowContext(ctx, `
		UPDATE identifier_sequences
		SET last_value = last_value + 1, updated_at = NOW()
		WHERE period_key = $1
		RETURNING last_value
	`, key).Scan(&next)
	if err == nil {
		return next, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("incrementing sequence %s: %w", key, err)
	}

	seed, err := s.Seed(ctx, key)
	if err != nil {
		return 0, err
	}

	// A concurrent caller may have inserted the row in the meantime; the
	// conflict branch then increments it instead.
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO identifier_sequences (period_key, last_value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (period_key) DO UPDATE
		SET last_value = identifier_sequences.last_value + 1, updated_at = NOW()
		RETURNING last_value
	`, key, seed).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("seeding sequence %s: %w", key, err)
	}

	return next, nil
}

// Seed returns the first free sequence for key judging by the identifiers
// already stored in the entity tables.
func (s *Store) Seed(ctx context.Context, key string) (int64, error) {
	existing, err := s.Issued(ctx, key)
	if err != nil {
		return 0, err
	}

	return identifier.NextAfter(existing, key), nil
}

// Issued lists identifiers already stored for key.
func (s *Store) Issued(ctx context.Context, key string) ([]string, error) {
	query := `
		SELECT code FROM (
			SELECT invoice_number AS code FROM invoices
			UNION ALL
			SELECT registration_number FROM children
			UNION ALL
			SELECT receipt_number FROM payments
		) issued
		WHERE code LIKE $1 || '-%'
	`

	rows, err := s.db.QueryContext(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("listing issued identifiers: %w", err)
	}
	defer rows.Close()

	var codes []string

	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scanning identifier: %w", err)
		}

		codes = append(codes, code)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating identifiers: %w", err)
	}

	return codes, nil
}

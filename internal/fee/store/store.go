package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/fee"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectColumns = `
	id, name, category, amount, frequency, applies_to_class, description,
	is_active, effective_date, end_date, created_at, updated_at
`

func scanStructure(s scanner) (*fee.Structure, error) {
	var st fee.Structure

	var category, frequency, scope string

	if err := s.Scan(
		&st.ID, &st.Name, &category, &st.Amount, &frequency, &scope, &st.Description,
		&st.IsActive, &st.EffectiveDate, &st.EndDate, &st.CreatedAt, &st.UpdatedAt,
	); err != nil {
		return nil, err
	}

	st.Category = fee.Category(category)
	st.Frequency = fee.Frequency(frequency)
	st.AppliesTo = fee.ClassScope(scope)

	return &st, nil
}

func (s *Store) CreateStructure(ctx context.Context, st *fee.Structure) error {
	query := `
		INSERT INTO fee_structures (name, category, amount, frequency, applies_to_class, description,
			is_active, effective_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		st.Name,
		st.Category,
		st.Amount,
		st.Frequency,
		st.AppliesTo,
		st.Description,
		st.IsActive,
		st.EffectiveDate,
		st.EndDate,
	).Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating fee structure: %w", err)
	}

	return nil
}

func (s *Store) GetStructure(ctx context.Context, id uuid.UUID) (*fee.Structure, error) {
	query := `SELECT ` + selectColumns + ` FROM fee_structures WHERE id = $1`

	st, err := scanStructure(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("fee structure")
		}

		return nil, fmt.Errorf("getting fee structure: %w", err)
	}

	return st, nil
}

func (s *Store) ListStructures(ctx context.Context, filter fee.ListFilter) ([]*fee.Structure, error) {
	query := `SELECT ` + selectColumns + ` FROM fee_structures WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.ActiveOnly {
		query += " AND is_active"
	}

	if filter.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argIdx)

		args = append(args, *filter.Category)
		argIdx++
	}

	query += " ORDER BY effective_date DESC, name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing fee structures: %w", err)
	}
	defer rows.Close()

	var out []*fee.Structure

	for rows.Next() {
		st, err := scanStructure(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning fee structure: %w", err)
		}

		out = append(out, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fee structures: %w", err)
	}

	return out, nil
}

func (s *Store) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE fee_structures
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2
	`, active, id)
	if err != nil {
		return fmt.Errorf("updating fee structure: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating fee structure: %w", err)
	}

	if n == 0 {
		return apperr.NotFound("fee structure")
	}

	return nil
}

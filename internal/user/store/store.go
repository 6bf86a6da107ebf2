package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/database"
	"github.com/MrJamesThe3rd/daycare/internal/family"
	familystore "github.com/MrJamesThe3rd/daycare/internal/family/store"
	"github.com/MrJamesThe3rd/daycare/internal/user"
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
	id, username, email, first_name, last_name, role, phone, is_active, password_hash, created_at, updated_at
`

func scanUser(s scanner) (*user.User, error) {
	var u user.User

	var role string

	if err := s.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &role, &u.Phone, &u.IsActive,
		&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}

	r, err := auth.ParseRole(role)
	if err != nil {
		return nil, err
	}

	u.Role = r

	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *user.User, parent *family.Parent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO users (username, email, first_name, last_name, role, phone, password_hash, is_active,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowContext(ctx, query,
		u.Username,
		u.Email,
		u.FirstName,
		u.LastName,
		u.Role.String(),
		u.Phone,
		u.PasswordHash,
		u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("a user with this username or email already exists", err)
		}

		return fmt.Errorf("creating user: %w", err)
	}

	if parent != nil {
		parent.UserID = u.ID
		if err := familystore.InsertParent(ctx, tx, parent); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) get(ctx context.Context, where string, arg any) (*user.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM users WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user")
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.get(ctx, "id = $1", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.get(ctx, "email = $1", email)
}

func (s *Store) ListUsers(ctx context.Context, filter user.ListFilter) ([]*user.User, error) {
	query := `SELECT ` + selectColumns + ` FROM users`

	var args []any

	if filter.Role != nil {
		query += " WHERE role = $1"

		args = append(args, filter.Role.String())
	}

	query += " ORDER BY username ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var out []*user.User

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		out = append(out, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	return out, nil
}

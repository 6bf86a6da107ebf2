package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/database"
	"github.com/MrJamesThe3rd/daycare/internal/family"
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

// RowQueryer is satisfied by both *sql.DB and *sql.Tx.
type RowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectParentColumns = `
	p.id, p.user_id, p.first_name, p.last_name, p.phone, p.address,
	p.emergency_contact_name, p.emergency_contact_phone, p.created_at, p.updated_at, u.email
`

func scanParent(s scanner) (*family.Parent, error) {
	var p family.Parent

	if err := s.Scan(
		&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Phone, &p.Address,
		&p.EmergencyContactName, &p.EmergencyContactPhone, &p.CreatedAt, &p.UpdatedAt, &p.Email,
	); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Store) CreateParent(ctx context.Context, p *family.Parent) error {
	return InsertParent(ctx, s.db, p)
}

// InsertParent writes a parent profile through q, so that account creation
// can add the profile inside its own transaction.
func InsertParent(ctx context.Context, q RowQueryer, p *family.Parent) error {
	query := `
		INSERT INTO parents (user_id, first_name, last_name, phone, address,
			emergency_contact_name, emergency_contact_phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		p.UserID,
		p.FirstName,
		p.LastName,
		p.Phone,
		p.Address,
		p.EmergencyContactName,
		p.EmergencyContactPhone,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("this user already has a parent profile", err)
		}

		if database.IsForeignKeyViolation(err) {
			return apperr.Validation("user_id", "does not exist")
		}

		return fmt.Errorf("creating parent: %w", err)
	}

	return nil
}

func (s *Store) getParent(ctx context.Context, where string, arg any) (*family.Parent, error) {
	query := `SELECT ` + selectParentColumns + `
		FROM parents p
		JOIN users u ON u.id = p.user_id
		WHERE ` + where

	p, err := scanParent(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("parent")
		}

		return nil, fmt.Errorf("getting parent: %w", err)
	}

	return p, nil
}

func (s *Store) GetParent(ctx context.Context, id uuid.UUID) (*family.Parent, error) {
	return s.getParent(ctx, "p.id = $1", id)
}

func (s *Store) GetParentByUser(ctx context.Context, userID uuid.UUID) (*family.Parent, error) {
	return s.getParent(ctx, "p.user_id = $1", userID)
}

func (s *Store) ListParents(ctx context.Context, filter family.ParentFilter) ([]*family.Parent, error) {
	query := `SELECT ` + selectParentColumns + `
		FROM parents p
		JOIN users u ON u.id = p.user_id`

	var args []any

	if filter.Name != "" {
		query += " WHERE (p.first_name || ' ' || p.last_name) ILIKE $1"

		args = append(args, "%"+filter.Name+"%")
	}

	query += " ORDER BY p.last_name ASC, p.first_name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing parents: %w", err)
	}
	defer rows.Close()

	var out []*family.Parent

	for rows.Next() {
		p, err := scanParent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning parent: %w", err)
		}

		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating parents: %w", err)
	}

	return out, nil
}

func (s *Store) DeleteParent(ctx context.Context, id uuid.UUID) error {
	return s.delete(ctx, "parents", "parent", id)
}

func (s *Store) DeleteChild(ctx context.Context, id uuid.UUID) error {
	return s.delete(ctx, "children", "child", id)
}

// delete removes a row that invoices may still reference; the foreign key
// refuses the delete in that case.
func (s *Store) delete(ctx context.Context, table, what string, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperr.Protected("cannot delete "+what+": invoices still reference it", err)
		}

		return fmt.Errorf("deleting %s: %w", what, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s: %w", what, err)
	}

	if n == 0 {
		return apperr.NotFound(what)
	}

	return nil
}

const selectChildColumns = `
	c.id, c.registration_number, c.first_name, c.last_name, c.date_of_birth, c.gender,
	c.medical_info, c.is_active, c.created_at, c.updated_at,
	COALESCE((SELECT string_agg(g.parent_id::text, ',' ORDER BY g.parent_id)
		FROM child_guardians g WHERE g.child_id = c.id), '')
`

func scanChild(s scanner) (*family.Child, error) {
	var c family.Child

	var (
		gender  string
		parents string
	)

	if err := s.Scan(
		&c.ID, &c.RegistrationNumber, &c.FirstName, &c.LastName, &c.DateOfBirth, &gender,
		&c.MedicalInfo, &c.IsActive, &c.CreatedAt, &c.UpdatedAt, &parents,
	); err != nil {
		return nil, err
	}

	c.Gender = family.Gender(gender)

	for id := range strings.SplitSeq(parents, ",") {
		if id == "" {
			continue
		}

		pid, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parsing guardian id: %w", err)
		}

		c.ParentIDs = append(c.ParentIDs, pid)
	}

	return &c, nil
}

func (s *Store) CreateChild(ctx context.Context, c *family.Child) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO children (registration_number, first_name, last_name, date_of_birth, gender,
			medical_info, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowContext(ctx, query,
		c.RegistrationNumber,
		c.FirstName,
		c.LastName,
		c.DateOfBirth,
		c.Gender,
		c.MedicalInfo,
		c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("registration number "+c.RegistrationNumber+" already exists", err)
		}

		return fmt.Errorf("creating child: %w", err)
	}

	for _, pid := range c.ParentIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO child_guardians (child_id, parent_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, c.ID, pid); err != nil {
			if database.IsForeignKeyViolation(err) {
				return apperr.Validation("parents", "parent "+pid.String()+" does not exist")
			}

			return fmt.Errorf("linking guardian: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetChild(ctx context.Context, id uuid.UUID) (*family.Child, error) {
	query := `SELECT ` + selectChildColumns + ` FROM children c WHERE c.id = $1`

	c, err := scanChild(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("child")
		}

		return nil, fmt.Errorf("getting child: %w", err)
	}

	return c, nil
}

func (s *Store) ListChildren(ctx context.Context, filter family.ChildFilter) ([]*family.Child, error) {
	query := `SELECT ` + selectChildColumns + ` FROM children c WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.ParentID != nil {
		query += fmt.Sprintf(" AND c.id IN (SELECT child_id FROM child_guardians WHERE parent_id = $%d)", argIdx)

		args = append(args, *filter.ParentID)
		argIdx++
	}

	if filter.Name != "" {
		query += fmt.Sprintf(" AND (c.first_name || ' ' || c.last_name) ILIKE $%d", argIdx)

		args = append(args, "%"+filter.Name+"%")
		argIdx++
	}

	if filter.ActiveOnly {
		query += " AND c.is_active"
	}

	query += " ORDER BY c.last_name ASC, c.first_name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing children: %w", err)
	}
	defer rows.Close()

	var out []*family.Child

	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning child: %w", err)
		}

		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating children: %w", err)
	}

	return out, nil
}

func (s *Store) UpdateMedicalInfo(ctx context.Context, id uuid.UUID, info string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE children SET medical_info = $1, updated_at = NOW() WHERE id = $2
	`, info, id)
	if err != nil {
		return fmt.Errorf("updating medical info: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating medical info: %w", err)
	}

	if n == 0 {
		return apperr.NotFound("child")
	}

	return nil
}

func (s *Store) LinkGuardian(ctx context.Context, childID, parentID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO child_guardians (child_id, parent_id) VALUES ($1, $2)
	`, childID, parentID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("parent is already a guardian of this child", err)
		}

		if database.IsForeignKeyViolation(err) {
			return apperr.NotFound("child or parent")
		}

		return fmt.Errorf("linking guardian: %w", err)
	}

	return nil
}

func (s *Store) IsGuardian(ctx context.Context, parentID, childID uuid.UUID) (bool, error) {
	var ok bool

	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM child_guardians WHERE parent_id = $1 AND child_id = $2)
	`, parentID, childID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("checking guardian: %w", err)
	}

	return ok, nil
}

func (s *Store) CreateEnrollment(ctx context.Context, e *family.Enrollment) error {
	query := `
		INSERT INTO enrollments (child_id, enrollment_date, classroom, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, e.ChildID, e.Date, e.Classroom, e.Status).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperr.NotFound("child")
		}

		return fmt.Errorf("creating enrollment: %w", err)
	}

	return nil
}

func (s *Store) ListEnrollments(ctx context.Context, childID uuid.UUID) ([]*family.Enrollment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, child_id, enrollment_date, classroom, status, created_at, updated_at
		FROM enrollments
		WHERE child_id = $1
		ORDER BY enrollment_date DESC
	`, childID)
	if err != nil {
		return nil, fmt.Errorf("listing enrollments: %w", err)
	}
	defer rows.Close()

	var out []*family.Enrollment

	for rows.Next() {
		var (
			e                 family.Enrollment
			classroom, status string
		)

		if err := rows.Scan(&e.ID, &e.ChildID, &e.Date, &classroom, &status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning enrollment: %w", err)
		}

		e.Classroom = family.Classroom(classroom)
		e.Status = family.EnrollmentStatus(status)
		out = append(out, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating enrollments: %w", err)
	}

	return out, nil
}

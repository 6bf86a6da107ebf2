package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func IsUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

func IsForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}

	return false
}

// Translate maps constraint violations to conflict errors and returns any
// other error unchanged. msg is the user-visible message for the conflict.
// Foreign key violations are permanent.
func Translate(err error, msg string) error {
	switch {
	case IsUniqueViolation(err):
		return apperr.Conflict(msg, err)
	case IsForeignKeyViolation(err):
		return apperr.Protected(msg, err)
	}

	return err
}

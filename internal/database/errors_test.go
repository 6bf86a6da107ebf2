package database_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/database"
)

func TestTranslate(t *testing.T) {
	type testCase struct {
		name          string
		err           error
		wantConflict  bool
		wantRetryable bool
	}

	tests := []testCase{
		{name: "UniqueViolation", err: &pgconn.PgError{Code: "23505"}, wantConflict: true, wantRetryable: true},
		{name: "WrappedForeignKey", err: fmt.Errorf("deleting child: %w", &pgconn.PgError{Code: "23503"}), wantConflict: true},
		{name: "CheckViolation", err: &pgconn.PgError{Code: "23514"}},
		{name: "Plain", err: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := database.Translate(tt.err, "already exists")

			assert.Equal(t, tt.wantConflict, apperr.IsConflict(got))
			assert.Equal(t, tt.wantRetryable, apperr.IsRetryable(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

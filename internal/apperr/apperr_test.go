package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
)

func TestKinds(t *testing.T) {
	type testCase struct {
		name      string
		err       error
		kind      apperr.Kind
		retryable bool
		message   string
	}

	tests := []testCase{
		{
			name:    "Validation",
			err:     apperr.Validation("amount", "must be greater than 0"),
			kind:    apperr.KindValidation,
			message: "amount: must be greater than 0",
		},
		{
			name:    "NotFound",
			err:     apperr.NotFound("invoice"),
			kind:    apperr.KindNotFound,
			message: "invoice not found",
		},
		{
			name:    "Forbidden",
			err:     apperr.Forbidden("cannot pay this invoice"),
			kind:    apperr.KindAuthorization,
			message: "cannot pay this invoice",
		},
		{
			name:      "ConflictWrapped",
			err:       fmt.Errorf("creating invoice: %w", apperr.Conflict("duplicate invoice number", errors.New("23505"))),
			kind:      apperr.KindConflict,
			retryable: true,
			message:   "duplicate invoice number",
		},
		{
			name:    "ProtectedIsNotRetryable",
			err:     fmt.Errorf("deleting child: %w", apperr.Protected("cannot delete child: invoices still reference it", errors.New("23503"))),
			kind:    apperr.KindConflict,
			message: "cannot delete child: invoices still reference it",
		},
		{
			name:    "Plain",
			err:     errors.New("boom"),
			kind:    0,
			message: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, apperr.KindOf(tt.err))
			assert.Equal(t, tt.retryable, apperr.IsRetryable(tt.err))
			assert.Equal(t, tt.message, apperr.Message(tt.err))
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("unique_violation")
	err := apperr.Conflict("duplicate", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "duplicate: unique_violation", err.Error())
}

package web_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/http/web"
)

func TestError(t *testing.T) {
	type testCase struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}

	tests := []testCase{
		{
			name:     "Validation",
			err:      apperr.Validation("amount", "must be greater than 0"),
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"amount: must be greater than 0","field":"amount"}`,
		},
		{
			name:     "NotFound",
			err:      apperr.NotFound("invoice"),
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"invoice not found"}`,
		},
		{
			name:     "Forbidden",
			err:      apperr.Forbidden("no access to this invoice"),
			wantCode: http.StatusForbidden,
			wantBody: `{"error":"no access to this invoice"}`,
		},
		{
			name:     "ConflictHidesCause",
			err:      apperr.Conflict("cannot delete parent: invoices still reference it", errors.New("pq: 23503")),
			wantCode: http.StatusConflict,
			wantBody: `{"error":"cannot delete parent: invoices still reference it"}`,
		},
		{
			name:     "ProtectedIsConflict",
			err:      apperr.Protected("cannot delete child: invoices still reference it", errors.New("pq: 23503")),
			wantCode: http.StatusConflict,
			wantBody: `{"error":"cannot delete child: invoices still reference it"}`,
		},
		{
			name:     "Internal",
			err:      errors.New("connection refused"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			web.Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

type contact struct {
	Name  string   `json:"name" validate:"required"`
	Phone string   `json:"phone" validate:"omitempty,phone"`
	Since web.Date `json:"since"`
}

func TestDecode(t *testing.T) {
	type testCase struct {
		name     string
		body     string
		wantOK   bool
		wantBody string
	}

	tests := []testCase{
		{
			name:   "Valid",
			body:   `{"name":"Ana","phone":"+351912345678","since":"2024-01-15"}`,
			wantOK: true,
		},
		{
			name:     "BadPhone",
			body:     `{"name":"Ana","phone":"12"}`,
			wantBody: `{"error":"validation failed","fields":{"phone":"phone"}}`,
		},
		{
			name:     "MissingName",
			body:     `{}`,
			wantBody: `{"error":"validation failed","fields":{"name":"required"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var c contact
			ok := web.Decode(rec, req, &c)

			assert.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), c.Since.Time)
				return
			}

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestDecode_RejectsUnknownFieldsAndBadDates(t *testing.T) {
	for _, body := range []string{`{"name":"Ana","nickname":"A"}`, `{"name":"Ana","since":"15/01/2024"}`} {
		rec := httptest.NewRecorder()

		var c contact
		ok := web.Decode(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), &c)

		assert.False(t, ok, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestDate_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(web.Date{Time: time.Date(2024, 2, 29, 13, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-29"`, string(b))
}

package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/billing"
	"github.com/MrJamesThe3rd/daycare/internal/family"
	"github.com/MrJamesThe3rd/daycare/internal/fee"
	api "github.com/MrJamesThe3rd/daycare/internal/http"
	httpbilling "github.com/MrJamesThe3rd/daycare/internal/http/billing"
	httpfamily "github.com/MrJamesThe3rd/daycare/internal/http/family"
	httpfee "github.com/MrJamesThe3rd/daycare/internal/http/fee"
	"github.com/MrJamesThe3rd/daycare/internal/http/importcsv"
	httpstatement "github.com/MrJamesThe3rd/daycare/internal/http/statement"
	httpuser "github.com/MrJamesThe3rd/daycare/internal/http/user"
	"github.com/MrJamesThe3rd/daycare/internal/identifier"
	"github.com/MrJamesThe3rd/daycare/internal/importer"
	"github.com/MrJamesThe3rd/daycare/internal/statement"
	"github.com/MrJamesThe3rd/daycare/internal/user"
)

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

type server struct {
	handler  http.Handler
	tokens   *auth.Tokens
	ctrl     *gomock.Controller
	billing  *billing.MockRepository
	guardian *billing.MockGuardians
	families *family.MockRepository
	users    *user.MockRepository
	fees     *fee.MockRepository
}

func newServer(t *testing.T) *server {
	ctrl := gomock.NewController(t)

	s := &server{
		tokens:   auth.NewTokens("test-secret-0123456789", "daycare", time.Hour),
		ctrl:     ctrl,
		billing:  billing.NewMockRepository(ctrl),
		guardian: billing.NewMockGuardians(ctrl),
		families: family.NewMockRepository(ctrl),
		users:    user.NewMockRepository(ctrl),
		fees:     fee.NewMockRepository(ctrl),
	}

	ids := identifier.NewGenerator(&memoryCounter{})
	feeSvc := fee.NewService(s.fees)
	familySvc := family.NewService(s.families, ids)
	billingSvc := billing.NewService(s.billing, ids, feeSvc, s.guardian)
	userSvc := user.NewService(s.users, familySvc, s.tokens).WithHashCost(bcrypt.MinCost)

	s.handler = api.New(s.tokens, []string{"*"}, api.Handlers{
		Users:     httpuser.NewHandler(userSvc),
		Fees:      httpfee.NewHandler(feeSvc),
		Families:  httpfamily.NewHandler(familySvc),
		Billing:   httpbilling.NewHandler(billingSvc),
		Statement: httpstatement.NewHandler(statement.NewService(familySvc, billingSvc), "Little Steps"),
		Import:    importcsv.NewHandler(importer.NewService(billingSvc)),
	})

	return s
}

func (s *server) token(t *testing.T, a auth.Actor) string {
	t.Helper()

	tok, _, err := s.tokens.Issue(a)
	require.NoError(t, err)

	return tok
}

func (s *server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))

	return out
}

func staff() auth.Actor {
	return auth.Actor{UserID: uuid.New(), Role: auth.RoleStaff}
}

func parent(id uuid.UUID) auth.Actor {
	return auth.Actor{UserID: uuid.New(), Role: auth.RoleParent, ParentID: &id}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sentInvoice(parentID uuid.UUID) *billing.Invoice {
	return &billing.Invoice{
		ID:         uuid.New(),
		Number:     "INV-20240115-0001",
		ParentID:   parentID,
		ChildID:    uuid.New(),
		Amount:     dec("450.00"),
		AmountPaid: decimal.Zero,
		IssueDate:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Status:     billing.StatusSent,
	}
}

func expectPayment(s *server, inv *billing.Invoice) {
	ptx := billing.NewMockPaymentTx(s.ctrl)

	s.billing.EXPECT().BeginPayment(gomock.Any(), inv.ID).Return(ptx, nil)
	ptx.EXPECT().Invoice().Return(inv)
	ptx.EXPECT().InsertPayment(gomock.Any(), gomock.Any()).Return(nil)
	ptx.EXPECT().Payments(gomock.Any()).Return([]billing.Payment{{Amount: dec("150.00")}}, nil)
	ptx.EXPECT().UpdateLedger(gomock.Any(), gomock.Any()).Return(nil)
	ptx.EXPECT().Commit().Return(nil)
	ptx.EXPECT().Rollback().Return(nil)
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/invoices", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/invoices", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_FinanceRoutesRejectParents(t *testing.T) {
	s := newServer(t)
	tok := s.token(t, parent(uuid.New()))

	for _, path := range []string{"/api/v1/invoices/outstanding", "/api/v1/invoices/summary", "/api/v1/parents"} {
		rec := s.do(t, http.MethodGet, path, tok, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestRouter_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	u := &user.User{ID: uuid.New(), Email: "ana@example.com", Role: auth.RoleStaff, IsActive: true, PasswordHash: string(hash)}

	t.Run("Success", func(t *testing.T) {
		s := newServer(t)
		s.users.EXPECT().GetUserByEmail(gomock.Any(), "ana@example.com").Return(u, nil)

		rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": "ana@example.com", "password": "s3cret-pass",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode(t, rec)
		actor, err := s.tokens.Parse(body["token"].(string))
		require.NoError(t, err)
		assert.Equal(t, u.ID, actor.UserID)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		s := newServer(t)
		s.users.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(u, nil)

		rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": "ana@example.com", "password": "wrong-pass",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MalformedEmail", func(t *testing.T) {
		s := newServer(t)

		rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": "ana", "password": "x",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, map[string]any{"email": "email"}, decode(t, rec)["fields"])
	})
}

func TestRouter_RecordPayment(t *testing.T) {
	parentID := uuid.New()

	t.Run("ParentPaysOwnInvoice", func(t *testing.T) {
		s := newServer(t)
		inv := sentInvoice(parentID)
		expectPayment(s, inv)

		rec := s.do(t, http.MethodPost, "/api/v1/invoices/"+inv.ID.String()+"/payments", s.token(t, parent(parentID)),
			map[string]string{"amount": "150.00", "payment_method": "mobile_money", "transaction_reference": "MM123"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		body := decode(t, rec)
		assert.Equal(t, "150.00", body["amount"])
		assert.Equal(t, "Mobile Money", body["payment_method_display"])
		assert.True(t, strings.HasPrefix(body["receipt_number"].(string), "RCT-"))
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		s := newServer(t)

		rec := s.do(t, http.MethodPost, "/api/v1/invoices/"+uuid.NewString()+"/payments", s.token(t, staff()),
			map[string]string{"amount": "0", "payment_method": "cash"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "amount", decode(t, rec)["field"])
	})

	t.Run("ForeignInvoice", func(t *testing.T) {
		s := newServer(t)
		inv := sentInvoice(uuid.New())
		ptx := billing.NewMockPaymentTx(s.ctrl)

		s.billing.EXPECT().BeginPayment(gomock.Any(), inv.ID).Return(ptx, nil)
		ptx.EXPECT().Invoice().Return(inv)
		ptx.EXPECT().Rollback().Return(nil)
		s.guardian.EXPECT().IsGuardian(gomock.Any(), parentID, inv.ChildID).Return(false, nil)

		rec := s.do(t, http.MethodPost, "/api/v1/invoices/"+inv.ID.String()+"/payments", s.token(t, parent(parentID)),
			map[string]string{"amount": "10", "payment_method": "cash"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRouter_GetInvoiceNotFound(t *testing.T) {
	s := newServer(t)
	id := uuid.New()
	s.billing.EXPECT().GetInvoice(gomock.Any(), id).Return(nil, apperr.NotFound("invoice"))

	rec := s.do(t, http.MethodGet, "/api/v1/invoices/"+id.String(), s.token(t, staff()), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "invoice not found", decode(t, rec)["error"])
}

func TestRouter_ListInvoicesBadStatus(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/invoices?status=sent,unknown", s.token(t, staff()), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_CreateParentValidatesPhone(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/parents", s.token(t, staff()), map[string]string{
		"user_id":    uuid.NewString(),
		"first_name": "Ana",
		"last_name":  "Silva",
		"phone":      "12-34",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{"phone": "phone"}, decode(t, rec)["fields"])
}

func TestRouter_DeleteProtectedChild(t *testing.T) {
	s := newServer(t)
	id := uuid.New()
	s.families.EXPECT().DeleteChild(gomock.Any(), id).Return(apperr.Protected("cannot delete child: invoices still reference it", nil))

	admin := auth.Actor{UserID: uuid.New(), Role: auth.RoleAdmin}

	rec := s.do(t, http.MethodDelete, "/api/v1/children/"+id.String(), s.token(t, admin), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_Import(t *testing.T) {
	s := newServer(t)
	inv := sentInvoice(uuid.New())

	s.billing.EXPECT().GetInvoiceByNumber(gomock.Any(), "INV-20240115-0001").Return(inv, nil)
	s.billing.EXPECT().
		FindPaymentByReference(gomock.Any(), inv.ID, "TRF SILVA INV-20240115-0001").
		Return(nil, apperr.NotFound("payment"))
	expectPayment(s, inv)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "statement.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Data mov.;Descrição;Montante\n20-01-2024;TRF SILVA INV-20240115-0001;150,00\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token(t, staff()))

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	assert.Equal(t, "account", out["format"])
	assert.Len(t, out["recorded"], 1)
	assert.Empty(t, out["unmatched"])
}

func TestRouter_StatementText(t *testing.T) {
	s := newServer(t)
	parentID := uuid.New()
	inv := sentInvoice(parentID)

	s.families.EXPECT().GetParent(gomock.Any(), parentID).Return(&family.Parent{ID: parentID, FirstName: "Ana", LastName: "Silva"}, nil)
	s.billing.EXPECT().ListInvoices(gomock.Any(), gomock.Any()).Return(&billing.InvoicePage{Invoices: []*billing.Invoice{inv}, Total: 1}, nil)
	s.billing.EXPECT().PaymentHistory(gomock.Any(), gomock.Any()).Return(&billing.PaymentPage{}, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/parents/"+parentID.String()+"/statement?format=text", s.token(t, parent(parentID)), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Little Steps - Account Statement")
	assert.Contains(t, rec.Body.String(), "INV-20240115-0001")
}

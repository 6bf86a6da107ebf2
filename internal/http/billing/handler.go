package billing

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/billing"
	"github.com/MrJamesThe3rd/daycare/internal/http/web"
)

type Handler struct {
	svc *billing.Service
	now func() time.Time
}

func NewHandler(svc *billing.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

// InvoiceRoutes is mounted under /invoices.
func (h *Handler) InvoiceRoutes(r chi.Router) {
	r.Get("/", h.listInvoices)
	r.Get("/{id}", h.getInvoice)
	r.Post("/{id}/payments", h.recordPayment)
	r.Get("/{id}/payments", h.listPayments)

	r.Group(func(r chi.Router) {
		r.Use(web.RequireFinance)
		r.Post("/", h.createInvoice)
		r.Get("/outstanding", h.outstanding)
		r.Get("/summary", h.summary)
		r.Post("/mark-overdue", h.markOverdue)
		r.Post("/{id}/send", h.sendInvoice)
		r.Post("/{id}/cancel", h.cancelInvoice)
	})
}

// PaymentRoutes is mounted under /payments.
func (h *Handler) PaymentRoutes(r chi.Router) {
	r.Get("/", h.history)
	r.Get("/{id}", h.getPayment)
}

type createInvoiceRequest struct {
	ParentID       uuid.UUID        `json:"parent_id" validate:"required"`
	ChildID        uuid.UUID        `json:"child_id" validate:"required"`
	FeeStructureID uuid.UUID        `json:"fee_structure_id" validate:"required"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	IssueDate      *web.Date        `json:"issue_date,omitempty"`
	DueDate        web.Date         `json:"due_date"`
	Status         billing.Status   `json:"status,omitempty" validate:"omitempty,oneof=draft sent"`
	Description    string           `json:"description" validate:"max=500"`
	Notes          string           `json:"notes"`
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if !web.Decode(w, r, &req) {
		return
	}

	params := billing.CreateInvoiceParams{
		ParentID:       req.ParentID,
		ChildID:        req.ChildID,
		FeeStructureID: req.FeeStructureID,
		Amount:         req.Amount,
		DueDate:        req.DueDate.Time,
		Status:         req.Status,
		Description:    req.Description,
		Notes:          req.Notes,
	}

	if req.IssueDate != nil {
		params.IssueDate = req.IssueDate.Time
	}

	inv, err := h.svc.CreateInvoice(r.Context(), web.Actor(r), params)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusCreated, ToInvoiceResponse(inv, h.now()))
}

// invoiceFilter reads the list query parameters shared by the invoice lists.
func invoiceFilter(r *http.Request) (billing.InvoiceFilter, error) {
	q := r.URL.Query()

	filter := billing.InvoiceFilter{
		ParentName: q.Get("parent_name"),
		ChildName:  q.Get("child_name"),
	}

	if s := q.Get("status"); s != "" {
		for name := range strings.SplitSeq(s, ",") {
			st := billing.Status(strings.TrimSpace(name))
			if !st.Valid() {
				return filter, fmt.Errorf("invalid status %q", name)
			}

			filter.Statuses = append(filter.Statuses, st)
		}
	}

	var err error

	if filter.ParentID, err = queryID(r, "parent_id"); err != nil {
		return filter, err
	}

	if filter.ChildID, err = queryID(r, "child_id"); err != nil {
		return filter, err
	}

	if filter.Limit, err = web.QueryInt(r, "limit"); err != nil {
		return filter, err
	}

	if filter.Offset, err = web.QueryInt(r, "offset"); err != nil {
		return filter, err
	}

	return filter, nil
}

func queryID(r *http.Request, name string) (*uuid.UUID, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}

	return &id, nil
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	filter, err := invoiceFilter(r)
	if err != nil {
		web.BadRequest(w, err.Error())
		return
	}

	page, err := h.svc.ListInvoices(r.Context(), web.Actor(r), filter)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusOK, invoicePageResponse{Invoices: ToInvoiceList(page.Invoices, h.now()), Total: page.Total})
}

func (h *Handler) outstanding(w http.ResponseWriter, r *http.Request) {
	filter, err := invoiceFilter(r)
	if err != nil {
		web.BadRequest(w, err.Error())
		return
	}

	page, err := h.svc.Outstanding(r.Context(), filter)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusOK, invoicePageResponse{Invoices: ToInvoiceList(page.Invoices, h.now()), Total: page.Total})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Summary(r.Context())
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusOK, toSummaryResponse(s, h.now()))
}

func (h *Handler) markOverdue(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkOverdue(r.Context())
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]int64{"marked": n})
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := web.IDParam(w, r, "id")
	if !ok {
		return
	}

	inv, err := h.svc.GetInvoice(r.Context(), web.Actor(r), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusOK, ToInvoiceResponse(inv, h.now()))
}

func (h *Handler) sendInvoice(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.SendInvoice)
}

func (h *Handler) cancelInvoice(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.CancelInvoice)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor auth.Actor, id uuid.UUID) error) {
	id, ok := web.IDParam(w, r, "id")
	if !ok {
		return
	}

	if err := fn(r.Context(), web.Actor(r), id); err != nil {
		web.Error(w, r, err)
		return
	}

	inv, err := h.svc.GetInvoice(r.Context(), web.Actor(r), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusOK, ToInvoiceResponse(inv, h.now()))
}

type recordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    billing.Method  `json:"payment_method" validate:"required"`
	Date      *web.Date       `json:"payment_date,omitempty"`
	Reference string          `json:"transaction_reference" validate:"max=100"`
	Notes     string          `json:"notes"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := web.IDParam(w, r, "id")
	if !ok {
		return
	}

	var req recordPaymentRequest
	if !web.Decode(w, r, &req) {
		return
	}

	params := billing.PaymentParams{
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
	}

	if req.Date != nil {
		params.Date = req.Date.Time
	}

	p, err := h.svc.RecordPayment(r.Context(), web.Actor(r), id, params)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusCreated, ToPaymentResponse(p))
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := web.IDParam(w, r, "id")
	if !ok {
		return
	}

	ps, err := h.svc.ListPayments(r.Context(), web.Actor(r), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusOK, ToPaymentList(ps))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := billing.PaymentFilter{
		ParentName: q.Get("parent_name"),
		ChildName:  q.Get("child_name"),
	}

	if s := q.Get("method"); s != "" {
		m := billing.Method(s)
		if !m.Valid() {
			web.BadRequest(w, "invalid method")
			return
		}

		filter.Method = &m
	}

	var err error

	if filter.InvoiceID, err = queryID(r, "invoice_id"); err != nil {
		web.BadRequest(w, err.Error())
		return
	}

	if filter.From, err = web.QueryDate(r, "date_from"); err != nil {
		web.BadRequest(w, err.Error())
		return
	}

	if filter.To, err = web.QueryDate(r, "date_to"); err != nil {
		web.BadRequest(w, err.Error())
		return
	}

	if filter.Limit, err = web.QueryInt(r, "limit"); err != nil {
		web.BadRequest(w, err.Error())
		return
	}

	if filter.Offset, err = web.QueryInt(r, "offset"); err != nil {
		web.BadRequest(w, err.Error())
		return
	}

	page, err := h.svc.PaymentHistory(r.Context(), web.Actor(r), filter)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusOK, paymentPageResponse{
		Payments: ToPaymentList(page.Payments),
		Total:    page.Total,
		Sum:      page.Sum.StringFixed(2),
	})
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := web.IDParam(w, r, "id")
	if !ok {
		return
	}

	p, err := h.svc.GetPayment(r.Context(), web.Actor(r), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusOK, ToPaymentResponse(p))
}

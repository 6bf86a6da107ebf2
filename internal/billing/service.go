package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/fee"
	"github.com/MrJamesThe3rd/daycare/internal/identifier"
	"github.com/MrJamesThe3rd/daycare/internal/money"
)

const (
	// DefaultAttempts bounds retries of writes that lost an identifier race.
	DefaultAttempts = 5

	OutstandingPageSize = 25
	HistoryPageSize     = 20
	MaxPageSize         = 100

	maxReferenceLength = 100
	recentPayments     = 10
	urgentInvoices     = 5
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=billing
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) (*InvoicePage, error)
	CountInvoices(ctx context.Context, filter InvoiceFilter) (int, error)
	Totals(ctx context.Context, filter InvoiceFilter) (*Totals, error)
	// TransitionInvoice moves the invoice to status `to` if its current
	// status is one of from, and reports whether it did.
	TransitionInvoice(ctx context.Context, id uuid.UUID, from []Status, to Status) (bool, error)
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)

	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
	PaymentHistory(ctx context.Context, filter PaymentFilter) (*PaymentPage, error)
	FindPaymentByReference(ctx context.Context, invoiceID uuid.UUID, reference string) (*Payment, error)

	// BeginPayment opens a transaction holding a row lock on the invoice.
	BeginPayment(ctx context.Context, invoiceID uuid.UUID) (PaymentTx, error)
}

type PaymentTx interface {
	Invoice() *Invoice
	InsertPayment(ctx context.Context, p *Payment) error
	Payments(ctx context.Context) ([]Payment, error)
	UpdateLedger(ctx context.Context, l Ledger) error
	Commit() error
	Rollback() error
}

type FeeSource interface {
	Get(ctx context.Context, id uuid.UUID) (*fee.Structure, error)
}

type Guardians interface {
	IsGuardian(ctx context.Context, parentID uuid.UUID, childID uuid.UUID) (bool, error)
}

type Service struct {
	repo      Repository
	ids       *identifier.Generator
	fees      FeeSource
	guardians Guardians
	now       func() time.Time
	attempts  int
}

func NewService(repo Repository, ids *identifier.Generator, fees FeeSource, guardians Guardians) *Service {
	return &Service{
		repo:      repo,
		ids:       ids,
		fees:      fees,
		guardians: guardians,
		now:       time.Now,
		attempts:  DefaultAttempts,
	}
}

// WithClock returns a copy of the service that reads the time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	c := *s
	c.now = now

	return &c
}

type Sort int

const (
	SortDueDesc Sort = iota
	SortDueAsc
)

type InvoiceFilter struct {
	Statuses []Status
	ParentID *uuid.UUID
	ChildID  *uuid.UUID
	// VisibleTo restricts the result to invoices addressed to the parent or
	// to a child they are a guardian of.
	VisibleTo  *uuid.UUID
	ParentName string
	ChildName  string
	// OverdueOn matches invoices past due on the date, whether or not they
	// have been marked overdue yet.
	OverdueOn *time.Time
	Sort      Sort
	Limit     int
	Offset    int
}

type InvoicePage struct {
	Invoices []*Invoice
	Total    int
}

type PaymentFilter struct {
	InvoiceID  *uuid.UUID
	VisibleTo  *uuid.UUID
	ParentName string
	ChildName  string
	Method     *Method
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type PaymentPage struct {
	Payments []*Payment
	// Total and Sum cover every payment matching the filter, not only the page.
	Total int
	Sum   decimal.Decimal
}

// Totals aggregates non-cancelled invoices.
type Totals struct {
	Count  int
	Billed decimal.Decimal
	Paid   decimal.Decimal
	Due    decimal.Decimal
}

type CreateInvoiceParams struct {
	ParentID       uuid.UUID
	ChildID        uuid.UUID
	FeeStructureID uuid.UUID
	// Amount defaults to the fee structure's amount.
	Amount      *decimal.Decimal
	IssueDate   time.Time
	DueDate     time.Time
	Status      Status
	Description string
	Notes       string
}

func (p CreateInvoiceParams) validate() error {
	if p.ParentID == uuid.Nil {
		return apperr.Validation("parent_id", "is required")
	}

	if p.ChildID == uuid.Nil {
		return apperr.Validation("child_id", "is required")
	}

	if p.FeeStructureID == uuid.Nil {
		return apperr.Validation("fee_structure_id", "is required")
	}

	if p.DueDate.IsZero() {
		return apperr.Validation("due_date", "is required")
	}

	if DateOf(p.DueDate).Before(DateOf(p.IssueDate)) {
		return apperr.Validation("due_date", "must not be before the issue date")
	}

	if p.Status != StatusDraft && p.Status != StatusSent {
		return apperr.Validation("status", "must be draft or sent")
	}

	if p.Amount != nil {
		if err := money.Validate("amount", *p.Amount); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) CreateInvoice(ctx context.Context, actor auth.Actor, params CreateInvoiceParams) (*Invoice, error) {
	if !actor.ManagesFinance() {
		return nil, apperr.Forbidden("only staff can issue invoices")
	}

	if params.IssueDate.IsZero() {
		params.IssueDate = s.now()
	}

	if params.Status == "" {
		params.Status = StatusDraft
	}

	if err := params.validate(); err != nil {
		return nil, err
	}

	st, err := s.fees.Get(ctx, params.FeeStructureID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Validation("fee_structure_id", "does not exist")
		}

		return nil, fmt.Errorf("get fee structure: %w", err)
	}

	if !st.IsActive {
		return nil, apperr.Validation("fee_structure_id", "is not active")
	}

	guardian, err := s.guardians.IsGuardian(ctx, params.ParentID, params.ChildID)
	if err != nil {
		return nil, fmt.Errorf("check guardian: %w", err)
	}

	if !guardian {
		return nil, apperr.Validation("parent_id", "is not a guardian of the child")
	}

	amount := st.Amount
	if params.Amount != nil {
		amount = *params.Amount
	}

	description := strings.TrimSpace(params.Description)
	if description == "" {
		description = st.Name
	}

	inv := &Invoice{
		ParentID:       params.ParentID,
		ChildID:        params.ChildID,
		FeeStructureID: params.FeeStructureID,
		Amount:         amount,
		AmountPaid:     decimal.Zero,
		IssueDate:      DateOf(params.IssueDate),
		DueDate:        DateOf(params.DueDate),
		Status:         params.Status,
		Description:    description,
		Notes:          params.Notes,
		CreatedBy:      &actor.UserID,
	}

	err = s.ids.Assign(ctx, identifier.InvoiceNumber, s.attempts, func(number string) error {
		inv.Number = number
		return s.repo.CreateInvoice(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("invoice created", "number", inv.Number, "amount", money.Format(inv.Amount), "status", inv.Status)

	return inv, nil
}

// retry runs fn again while it fails with a retryable error, up to the
// service's attempts.
func (s *Service) retry(ctx context.Context, op string, fn func() error) error {
	var err error

	for attempt := 1; attempt <= s.attempts; attempt++ {
		err = fn()
		if err == nil || !apperr.IsRetryable(err) {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		slog.Warn("retrying after conflict", "op", op, "attempt", attempt, "error", err)
	}

	return err
}

func (s *Service) SendInvoice(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	return s.transition(ctx, actor, id, []Status{StatusDraft}, StatusSent)
}

// CancelInvoice cancels an invoice that has no payments. Every status a
// payment can leave behind (partial, paid) is excluded from the source set.
func (s *Service) CancelInvoice(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	return s.transition(ctx, actor, id, []Status{StatusDraft, StatusSent, StatusOverdue}, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, actor auth.Actor, id uuid.UUID, from []Status, to Status) error {
	if !actor.ManagesFinance() {
		return apperr.Forbidden("only staff can change invoice status")
	}

	ok, err := s.repo.TransitionInvoice(ctx, id, from, to)
	if err != nil {
		return err
	}

	if ok {
		slog.Info("invoice status changed", "invoice_id", id, "status", to)
		return nil
	}

	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return err
	}

	return apperr.Validation("status", fmt.Sprintf("cannot move a %s invoice to %s", inv.Status, to))
}

// MarkOverdue flags sent invoices whose due date has passed. Partially paid
// invoices keep their status and are reported as overdue by date.
func (s *Service) MarkOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkOverdue(ctx, DateOf(s.now()))
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}

	if n > 0 {
		slog.Info("invoices marked overdue", "count", n)
	}

	return n, nil
}

func (s *Service) GetInvoice(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, actor, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

// InvoiceByNumber looks an invoice up by its human-facing number.
func (s *Service) InvoiceByNumber(ctx context.Context, actor auth.Actor, number string) (*Invoice, error) {
	inv, err := s.repo.GetInvoiceByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, actor, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

// authorize allows finance roles on every invoice and parents on invoices
// addressed to them or to a child they are a guardian of.
func (s *Service) authorize(ctx context.Context, actor auth.Actor, inv *Invoice) error {
	if actor.ManagesFinance() {
		return nil
	}

	if !actor.IsParent() {
		return apperr.Forbidden("no access to this invoice")
	}

	if inv.ParentID == *actor.ParentID {
		return nil
	}

	ok, err := s.guardians.IsGuardian(ctx, *actor.ParentID, inv.ChildID)
	if err != nil {
		return fmt.Errorf("check guardian: %w", err)
	}

	if !ok {
		return apperr.Forbidden("you can only access invoices for your own children")
	}

	return nil
}

// scope narrows a listing to what the actor may see.
func scope(actor auth.Actor) (*uuid.UUID, error) {
	if actor.ManagesFinance() {
		return nil, nil
	}

	if actor.IsParent() {
		return actor.ParentID, nil
	}

	return nil, apperr.Forbidden("no access to invoices")
}

func page(limit, def int) int {
	if limit <= 0 {
		return def
	}

	return min(limit, MaxPageSize)
}

func (s *Service) ListInvoices(ctx context.Context, actor auth.Actor, filter InvoiceFilter) (*InvoicePage, error) {
	visible, err := scope(actor)
	if err != nil {
		return nil, err
	}

	if visible != nil {
		filter.VisibleTo = visible
	}

	filter.Limit = page(filter.Limit, OutstandingPageSize)

	return s.repo.ListInvoices(ctx, filter)
}

// Outstanding lists invoices awaiting payment, most urgent first.
func (s *Service) Outstanding(ctx context.Context, filter InvoiceFilter) (*InvoicePage, error) {
	filter.Statuses = OutstandingStatuses
	filter.Sort = SortDueAsc
	filter.Limit = page(filter.Limit, OutstandingPageSize)

	return s.repo.ListInvoices(ctx, filter)
}

type PaymentParams struct {
	Amount decimal.Decimal
	Method Method
	// Date defaults to today.
	Date      time.Time
	Reference string
	Notes     string
}

func (p PaymentParams) validate(today time.Time) error {
	if err := money.Validate("amount", p.Amount); err != nil {
		return err
	}

	if !p.Method.Valid() {
		return apperr.Validation("payment_method", "is not a known payment method")
	}

	if utf8.RuneCountInString(p.Reference) > maxReferenceLength {
		return apperr.Validation("transaction_reference", fmt.Sprintf("must be at most %d characters", maxReferenceLength))
	}

	if DateOf(p.Date).After(DateOf(today)) {
		return apperr.Validation("payment_date", "cannot be in the future")
	}

	return nil
}

// RecordPayment appends a payment to the invoice and reconciles the invoice
// in the same transaction. Nothing is written when validation or
// authorization fails.
func (s *Service) RecordPayment(ctx context.Context, actor auth.Actor, invoiceID uuid.UUID, params PaymentParams) (*Payment, error) {
	today := s.now()
	if params.Date.IsZero() {
		params.Date = today
	}

	params.Reference = strings.TrimSpace(params.Reference)

	if err := params.validate(today); err != nil {
		return nil, err
	}

	if !actor.ManagesFinance() && !actor.IsParent() {
		return nil, apperr.Forbidden("no access to record payments")
	}

	var p *Payment

	err := s.retry(ctx, "record payment", func() error {
		var err error

		p, err = s.recordPayment(ctx, actor, invoiceID, params)

		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("payment recorded",
		"receipt", p.ReceiptNumber,
		"invoice", p.InvoiceNumber,
		"amount", money.Format(p.Amount),
		"method", p.Method,
	)

	return p, nil
}

// recordPayment draws the receipt number before the transaction opens: the
// counter runs on its own connection and must not wait behind the invoice
// lock. A refused payment leaves a gap in the receipt sequence.
func (s *Service) recordPayment(ctx context.Context, actor auth.Actor, invoiceID uuid.UUID, params PaymentParams) (*Payment, error) {
	receipt, err := s.ids.Next(ctx, identifier.Receipt)
	if err != nil {
		return nil, err
	}

	ptx, err := s.repo.BeginPayment(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("begin payment: %w", err)
	}
	defer ptx.Rollback()

	inv := ptx.Invoice()

	if err := s.authorize(ctx, actor, inv); err != nil {
		return nil, err
	}

	if err := checkPayable(actor, inv, params.Amount); err != nil {
		return nil, err
	}

	p := &Payment{
		InvoiceID:     inv.ID,
		Amount:        params.Amount,
		Date:          DateOf(params.Date),
		Method:        params.Method,
		Reference:     params.Reference,
		Notes:         params.Notes,
		ReceiptNumber: receipt,
		ProcessedBy:   &actor.UserID,
		InvoiceNumber: inv.Number,
		ParentName:    inv.ParentName,
		ChildName:     inv.ChildName,
	}

	if err := ptx.InsertPayment(ctx, p); err != nil {
		return nil, err
	}

	payments, err := ptx.Payments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	ledger := Reconcile(inv.Amount, payments, p.Date, inv.Ledger())
	if err := ptx.UpdateLedger(ctx, ledger); err != nil {
		return nil, fmt.Errorf("update ledger: %w", err)
	}

	if err := ptx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}

	inv.Apply(ledger)

	return p, nil
}

// checkPayable applies the payment policy. Staff may overpay an invoice,
// leaving a negative balance due; parents may not.
func checkPayable(actor auth.Actor, inv *Invoice, amount decimal.Decimal) error {
	switch inv.Status {
	case StatusCancelled:
		return apperr.Validation("invoice", "is cancelled")
	case StatusDraft:
		if !actor.ManagesFinance() {
			return apperr.Validation("invoice", "has not been sent yet")
		}
	}

	if actor.ManagesFinance() {
		return nil
	}

	if inv.Status == StatusPaid {
		return apperr.Validation("invoice", "is already paid")
	}

	if amount.GreaterThan(inv.BalanceDue()) {
		return apperr.Validation("amount", "exceeds the balance due of "+money.Format(inv.BalanceDue()))
	}

	return nil
}

func (s *Service) ListPayments(ctx context.Context, actor auth.Actor, invoiceID uuid.UUID) ([]*Payment, error) {
	if _, err := s.GetInvoice(ctx, actor, invoiceID); err != nil {
		return nil, err
	}

	return s.repo.ListPayments(ctx, invoiceID)
}

// GetPayment returns a recorded payment, used as the payment confirmation.
func (s *Service) GetPayment(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.GetInvoice(ctx, actor, p.InvoiceID); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) PaymentHistory(ctx context.Context, actor auth.Actor, filter PaymentFilter) (*PaymentPage, error) {
	visible, err := scope(actor)
	if err != nil {
		return nil, err
	}

	if visible != nil {
		filter.VisibleTo = visible
	}

	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, apperr.Validation("date_to", "must not be before date_from")
	}

	filter.Limit = page(filter.Limit, HistoryPageSize)

	return s.repo.PaymentHistory(ctx, filter)
}

func (s *Service) FindPaymentByReference(ctx context.Context, invoiceID uuid.UUID, reference string) (*Payment, error) {
	return s.repo.FindPaymentByReference(ctx, invoiceID, reference)
}

type Summary struct {
	Totals
	UnpaidCount    int
	OverdueCount   int
	RecentPayments []*Payment
	Urgent         []*Invoice
}

// Summary gathers the figures of the finance dashboard.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	today := DateOf(s.now())

	totals, err := s.repo.Totals(ctx, InvoiceFilter{})
	if err != nil {
		return nil, fmt.Errorf("invoice totals: %w", err)
	}

	unpaid, err := s.repo.CountInvoices(ctx, InvoiceFilter{Statuses: UnpaidStatuses})
	if err != nil {
		return nil, fmt.Errorf("count unpaid: %w", err)
	}

	overdue, err := s.repo.CountInvoices(ctx, InvoiceFilter{OverdueOn: &today})
	if err != nil {
		return nil, fmt.Errorf("count overdue: %w", err)
	}

	recent, err := s.repo.PaymentHistory(ctx, PaymentFilter{Limit: recentPayments})
	if err != nil {
		return nil, fmt.Errorf("recent payments: %w", err)
	}

	urgent, err := s.Outstanding(ctx, InvoiceFilter{Limit: urgentInvoices})
	if err != nil {
		return nil, fmt.Errorf("urgent invoices: %w", err)
	}

	return &Summary{
		Totals:         *totals,
		UnpaidCount:    unpaid,
		OverdueCount:   overdue,
		RecentPayments: recent.Payments,
		Urgent:         urgent.Invoices,
	}, nil
}

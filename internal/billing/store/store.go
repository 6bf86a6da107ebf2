package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/billing"
	"github.com/MrJamesThe3rd/daycare/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const invoiceFrom = `
	FROM invoices i
	JOIN parents p ON p.id = i.parent_id
	JOIN children c ON c.id = i.child_id
`

const selectInvoiceColumns = `
	i.id, i.invoice_number, i.parent_id, i.child_id, i.fee_structure_id, i.amount, i.amount_paid,
	i.issue_date, i.due_date, i.paid_date, i.status, i.description, i.notes, i.created_by,
	i.created_at, i.updated_at,
	p.first_name || ' ' || p.last_name AS parent_name,
	c.first_name || ' ' || c.last_name AS child_name
`

func scanInvoice(s scanner) (*billing.Invoice, error) {
	var inv billing.Invoice

	var status string

	if err := s.Scan(
		&inv.ID, &inv.Number, &inv.ParentID, &inv.ChildID, &inv.FeeStructureID, &inv.Amount, &inv.AmountPaid,
		&inv.IssueDate, &inv.DueDate, &inv.PaidDate, &status, &inv.Description, &inv.Notes, &inv.CreatedBy,
		&inv.CreatedAt, &inv.UpdatedAt,
		&inv.ParentName, &inv.ChildName,
	); err != nil {
		return nil, err
	}

	inv.Status = billing.Status(status)

	return &inv, nil
}

const paymentFrom = `
	FROM payments pm
	JOIN invoices i ON i.id = pm.invoice_id
	JOIN parents p ON p.id = i.parent_id
	JOIN children c ON c.id = i.child_id
`

const selectPaymentColumns = `
	pm.id, pm.invoice_id, pm.amount, pm.payment_date, pm.payment_method, pm.transaction_reference,
	pm.notes, pm.receipt_number, pm.processed_by, pm.created_at,
	i.invoice_number,
	p.first_name || ' ' || p.last_name AS parent_name,
	c.first_name || ' ' || c.last_name AS child_name
`

func scanPayment(s scanner) (*billing.Payment, error) {
	var p billing.Payment

	var method string

	if err := s.Scan(
		&p.ID, &p.InvoiceID, &p.Amount, &p.Date, &method, &p.Reference,
		&p.Notes, &p.ReceiptNumber, &p.ProcessedBy, &p.CreatedAt,
		&p.InvoiceNumber, &p.ParentName, &p.ChildName,
	); err != nil {
		return nil, err
	}

	p.Method = billing.Method(method)

	return &p, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *billing.Invoice) error {
	query := `
		INSERT INTO invoices (invoice_number, parent_id, child_id, fee_structure_id, amount, amount_paid,
			issue_date, due_date, status, description, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		inv.Number,
		inv.ParentID,
		inv.ChildID,
		inv.FeeStructureID,
		inv.Amount,
		inv.AmountPaid,
		inv.IssueDate,
		inv.DueDate,
		inv.Status,
		inv.Description,
		inv.Notes,
		inv.CreatedBy,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("invoice number "+inv.Number+" already exists", err)
		}

		if database.IsForeignKeyViolation(err) {
			return apperr.Validation("invoice", "references a parent, child or fee structure that does not exist")
		}

		return fmt.Errorf("creating invoice: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	return getInvoice(ctx, s.db, "i.id", id, "")
}

func (s *Store) GetInvoiceByNumber(ctx context.Context, number string) (*billing.Invoice, error) {
	return getInvoice(ctx, s.db, "i.invoice_number", number, "")
}

func getInvoice(ctx context.Context, q queryer, column string, value any, lock string) (*billing.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + invoiceFrom + ` WHERE ` + column + ` = $1` + lock

	inv, err := scanInvoice(q.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("invoice")
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

func statusStrings(statuses []billing.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}

	return out
}

// invoiceWhere renders the filter as a WHERE clause with its arguments.
// Cancelled invoices are excluded unless asked for explicitly.
func invoiceWhere(filter billing.InvoiceFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.Statuses) > 0 {
		conds = append(conds, "i.status = ANY("+arg(statusStrings(filter.Statuses))+")")
	} else {
		conds = append(conds, "i.status <> 'cancelled'")
	}

	if filter.ParentID != nil {
		conds = append(conds, "i.parent_id = "+arg(*filter.ParentID))
	}

	if filter.ChildID != nil {
		conds = append(conds, "i.child_id = "+arg(*filter.ChildID))
	}

	if filter.VisibleTo != nil {
		ph := arg(*filter.VisibleTo)
		conds = append(conds, "(i.parent_id = "+ph+
			" OR i.child_id IN (SELECT child_id FROM child_guardians WHERE parent_id = "+ph+"))")
	}

	if filter.ParentName != "" {
		conds = append(conds, "(p.first_name || ' ' || p.last_name) ILIKE "+arg("%"+filter.ParentName+"%"))
	}

	if filter.ChildName != "" {
		conds = append(conds, "(c.first_name || ' ' || c.last_name) ILIKE "+arg("%"+filter.ChildName+"%"))
	}

	if filter.OverdueOn != nil {
		conds = append(conds, "(i.status = 'overdue' OR (i.status IN ('sent', 'partial') AND i.due_date < "+
			arg(*filter.OverdueOn)+"))")
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) ListInvoices(ctx context.Context, filter billing.InvoiceFilter) (*billing.InvoicePage, error) {
	where, args := invoiceWhere(filter)

	total, err := s.countInvoices(ctx, where, args)
	if err != nil {
		return nil, err
	}

	order := " ORDER BY i.due_date DESC, i.invoice_number DESC"
	if filter.Sort == billing.SortDueAsc {
		order = " ORDER BY i.due_date ASC, i.invoice_number ASC"
	}

	query := `SELECT ` + selectInvoiceColumns + invoiceFrom + where + order +
		fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	page := &billing.InvoicePage{Total: total}

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		page.Invoices = append(page.Invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoices: %w", err)
	}

	return page, nil
}

func (s *Store) CountInvoices(ctx context.Context, filter billing.InvoiceFilter) (int, error) {
	where, args := invoiceWhere(filter)
	return s.countInvoices(ctx, where, args)
}

func (s *Store) countInvoices(ctx context.Context, where string, args []any) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*)`+invoiceFrom+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting invoices: %w", err)
	}

	return n, nil
}

func (s *Store) Totals(ctx context.Context, filter billing.InvoiceFilter) (*billing.Totals, error) {
	where, args := invoiceWhere(filter)

	query := `
		SELECT COUNT(*), COALESCE(SUM(i.amount), 0), COALESCE(SUM(i.amount_paid), 0),
			COALESCE(SUM(i.amount - i.amount_paid) FILTER (WHERE i.status IN ('sent', 'partial', 'overdue')), 0)
	` + invoiceFrom + where

	var t billing.Totals
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&t.Count, &t.Billed, &t.Paid, &t.Due); err != nil {
		return nil, fmt.Errorf("summing invoices: %w", err)
	}

	return &t, nil
}

func (s *Store) TransitionInvoice(ctx context.Context, id uuid.UUID, from []billing.Status, to billing.Status) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE invoices
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3)
	`, to, id, statusStrings(from))
	if err != nil {
		return false, fmt.Errorf("updating invoice status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating invoice status: %w", err)
	}

	return n > 0, nil
}

func (s *Store) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE invoices
		SET status = 'overdue', updated_at = NOW()
		WHERE status = 'sent' AND due_date < $1
	`, today)
	if err != nil {
		return 0, fmt.Errorf("marking invoices overdue: %w", err)
	}

	return res.RowsAffected()
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	query := `SELECT ` + selectPaymentColumns + paymentFrom + ` WHERE pm.id = $1`

	p, err := scanPayment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("payment")
		}

		return nil, fmt.Errorf("getting payment: %w", err)
	}

	return p, nil
}

func (s *Store) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*billing.Payment, error) {
	return listPayments(ctx, s.db, invoiceID)
}

func listPayments(ctx context.Context, q queryer, invoiceID uuid.UUID) ([]*billing.Payment, error) {
	query := `SELECT ` + selectPaymentColumns + paymentFrom +
		` WHERE pm.invoice_id = $1 ORDER BY pm.payment_date ASC, pm.created_at ASC`

	return queryPayments(ctx, q, query, invoiceID)
}

func queryPayments(ctx context.Context, q queryer, query string, args ...any) ([]*billing.Payment, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var out []*billing.Payment

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payments: %w", err)
	}

	return out, nil
}

func paymentWhere(filter billing.PaymentFilter) (string, []any) {
	conds := []string{"TRUE"}

	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.InvoiceID != nil {
		conds = append(conds, "pm.invoice_id = "+arg(*filter.InvoiceID))
	}

	if filter.VisibleTo != nil {
		ph := arg(*filter.VisibleTo)
		conds = append(conds, "(i.parent_id = "+ph+
			" OR i.child_id IN (SELECT child_id FROM child_guardians WHERE parent_id = "+ph+"))")
	}

	if filter.ParentName != "" {
		conds = append(conds, "(p.first_name || ' ' || p.last_name) ILIKE "+arg("%"+filter.ParentName+"%"))
	}

	if filter.ChildName != "" {
		conds = append(conds, "(c.first_name || ' ' || c.last_name) ILIKE "+arg("%"+filter.ChildName+"%"))
	}

	if filter.Method != nil {
		conds = append(conds, "pm.payment_method = "+arg(*filter.Method))
	}

	if filter.From != nil {
		conds = append(conds, "pm.payment_date >= "+arg(*filter.From))
	}

	if filter.To != nil {
		conds = append(conds, "pm.payment_date <= "+arg(*filter.To))
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) PaymentHistory(ctx context.Context, filter billing.PaymentFilter) (*billing.PaymentPage, error) {
	where, args := paymentWhere(filter)

	page := &billing.PaymentPage{}

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(pm.amount), 0)`+paymentFrom+where, args...).
		Scan(&page.Total, &page.Sum)
	if err != nil {
		return nil, fmt.Errorf("summing payments: %w", err)
	}

	query := `SELECT ` + selectPaymentColumns + paymentFrom + where +
		` ORDER BY pm.payment_date DESC, pm.created_at DESC` +
		fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)

	page.Payments, err = queryPayments(ctx, s.db, query, args...)
	if err != nil {
		return nil, err
	}

	return page, nil
}

func (s *Store) FindPaymentByReference(ctx context.Context, invoiceID uuid.UUID, reference string) (*billing.Payment, error) {
	query := `SELECT ` + selectPaymentColumns + paymentFrom +
		` WHERE pm.invoice_id = $1 AND pm.transaction_reference = $2 LIMIT 1`

	p, err := scanPayment(s.db.QueryRowContext(ctx, query, invoiceID, reference))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("payment")
		}

		return nil, fmt.Errorf("finding payment: %w", err)
	}

	return p, nil
}

type paymentTx struct {
	tx  *sql.Tx
	inv *billing.Invoice
}

// BeginPayment locks the invoice row until the returned transaction ends, so
// concurrent payments on one invoice reconcile one after another.
func (s *Store) BeginPayment(ctx context.Context, invoiceID uuid.UUID) (billing.PaymentTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning payment tx: %w", err)
	}

	inv, err := getInvoice(ctx, dbTx, "i.id", invoiceID, " FOR UPDATE OF i")
	if err != nil {
		dbTx.Rollback()
		return nil, err
	}

	return &paymentTx{tx: dbTx, inv: inv}, nil
}

func (ptx *paymentTx) Invoice() *billing.Invoice { return ptx.inv }
func (ptx *paymentTx) Commit() error             { return ptx.tx.Commit() }
func (ptx *paymentTx) Rollback() error           { return ptx.tx.Rollback() }

func (ptx *paymentTx) InsertPayment(ctx context.Context, p *billing.Payment) error {
	query := `
		INSERT INTO payments (invoice_id, amount, payment_date, payment_method, transaction_reference,
			notes, receipt_number, processed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	err := ptx.tx.QueryRowContext(ctx, query,
		p.InvoiceID,
		p.Amount,
		p.Date,
		p.Method,
		p.Reference,
		p.Notes,
		p.ReceiptNumber,
		p.ProcessedBy,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("receipt number "+p.ReceiptNumber+" already exists", err)
		}

		return fmt.Errorf("creating payment: %w", err)
	}

	return nil
}

func (ptx *paymentTx) Payments(ctx context.Context) ([]billing.Payment, error) {
	rows, err := ptx.tx.QueryContext(ctx, `
		SELECT amount, payment_date FROM payments WHERE invoice_id = $1
	`, ptx.inv.ID)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var out []billing.Payment

	for rows.Next() {
		var (
			amount decimal.Decimal
			date   time.Time
		)

		if err := rows.Scan(&amount, &date); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		out = append(out, billing.Payment{InvoiceID: ptx.inv.ID, Amount: amount, Date: date})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payments: %w", err)
	}

	return out, nil
}

func (ptx *paymentTx) UpdateLedger(ctx context.Context, l billing.Ledger) error {
	_, err := ptx.tx.ExecContext(ctx, `
		UPDATE invoices
		SET amount_paid = $1, status = $2, paid_date = $3, updated_at = NOW()
		WHERE id = $4
	`, l.AmountPaid, l.Status, l.PaidDate, ptx.inv.ID)
	if err != nil {
		return fmt.Errorf("updating invoice ledger: %w", err)
	}

	return nil
}

// Package billing keeps the invoice ledger: invoices addressed to a parent
// for a child, the payments recorded against them and the rule that derives
// an invoice's paid amount and status from those payments.
package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daycare/internal/money"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusPartial   Status = "partial"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusPartial, StatusOverdue, StatusCancelled:
		return true
	}

	return false
}

// OutstandingStatuses are the statuses of invoices still awaiting payment.
var OutstandingStatuses = []Status{StatusSent, StatusPartial, StatusOverdue}

// UnpaidStatuses are counted as unpaid on the dashboard.
var UnpaidStatuses = []Status{StatusDraft, StatusSent, StatusPartial}

type Method string

const (
	MethodCash         Method = "cash"
	MethodMobileMoney  Method = "mobile_money"
	MethodBankTransfer Method = "bank_transfer"
	MethodDebitCard    Method = "debit_card"
	MethodCreditCard   Method = "credit_card"
	MethodCheque       Method = "cheque"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodMobileMoney, MethodBankTransfer, MethodDebitCard, MethodCreditCard, MethodCheque:
		return true
	}

	return false
}

func (m Method) Label() string {
	switch m {
	case MethodCash:
		return "Cash"
	case MethodMobileMoney:
		return "Mobile Money"
	case MethodBankTransfer:
		return "Bank Transfer"
	case MethodDebitCard:
		return "Debit Card"
	case MethodCreditCard:
		return "Credit Card"
	case MethodCheque:
		return "Cheque"
	}

	return string(m)
}

// Methods lists every accepted payment method in display order.
var Methods = []Method{
	MethodCash, MethodMobileMoney, MethodBankTransfer, MethodDebitCard, MethodCreditCard, MethodCheque,
}

type Invoice struct {
	ID             uuid.UUID
	Number         string
	ParentID       uuid.UUID
	ChildID        uuid.UUID
	FeeStructureID uuid.UUID
	Amount         decimal.Decimal
	AmountPaid     decimal.Decimal
	IssueDate      time.Time
	DueDate        time.Time
	PaidDate       *time.Time
	Status         Status
	Description    string
	Notes          string
	CreatedBy      *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Populated on reads.
	ParentName string
	ChildName  string
}

// BalanceDue is negative when the invoice has been overpaid.
func (i *Invoice) BalanceDue() decimal.Decimal {
	return i.Amount.Sub(i.AmountPaid)
}

// IsOverdue reports whether the due date has passed on an invoice that is
// neither paid nor cancelled.
func (i *Invoice) IsOverdue(today time.Time) bool {
	if i.Status == StatusPaid || i.Status == StatusCancelled {
		return false
	}

	return DateOf(today).After(DateOf(i.DueDate))
}

func (i *Invoice) DaysOverdue(today time.Time) int {
	if !i.IsOverdue(today) {
		return 0
	}

	return int(DateOf(today).Sub(DateOf(i.DueDate)).Hours() / 24)
}

func (i *Invoice) Ledger() Ledger {
	return Ledger{AmountPaid: i.AmountPaid, Status: i.Status, PaidDate: i.PaidDate}
}

func (i *Invoice) Apply(l Ledger) {
	i.AmountPaid = l.AmountPaid
	i.Status = l.Status
	i.PaidDate = l.PaidDate
}

// Payment is append-only once recorded.
type Payment struct {
	ID            uuid.UUID
	InvoiceID     uuid.UUID
	Amount        decimal.Decimal
	Date          time.Time
	Method        Method
	Reference     string
	Notes         string
	ReceiptNumber string
	ProcessedBy   *uuid.UUID
	CreatedAt     time.Time

	// Populated on reads.
	InvoiceNumber string
	ParentName    string
	ChildName     string
}

// ParseAmount reads a payment or invoice amount entered by a user.
func ParseAmount(s string) (decimal.Decimal, error) {
	return money.Parse("amount", s)
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger is the part of an invoice derived from its payments.
type Ledger struct {
	AmountPaid decimal.Decimal
	Status     Status
	PaidDate   *time.Time
}

// Reconcile derives the ledger of an invoice billed for total from the full
// set of its payments. trigger is the date of the payment that caused the
// recomputation and becomes the paid date once the invoice is settled.
// With no payments the current status and paid date are kept.
//
// The result depends only on its arguments, so reconciling twice with the
// same inputs yields the same ledger.
func Reconcile(total decimal.Decimal, payments []Payment, trigger time.Time, current Ledger) Ledger {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	next := Ledger{
		AmountPaid: paid,
		Status:     current.Status,
		PaidDate:   current.PaidDate,
	}

	switch {
	case paid.GreaterThanOrEqual(total):
		next.Status = StatusPaid
		next.PaidDate = new(DateOf(trigger))
	case paid.IsPositive():
		next.Status = StatusPartial
	}

	return next
}

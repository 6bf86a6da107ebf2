// Package statement assembles a parent's account statement from the invoice
// ledger and renders it as plain text for e-mail or printing.
package statement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/billing"
	"github.com/MrJamesThe3rd/daycare/internal/family"
)

type Parents interface {
	GetParent(ctx context.Context, actor auth.Actor, id uuid.UUID) (*family.Parent, error)
}

type Ledger interface {
	ListInvoices(ctx context.Context, actor auth.Actor, filter billing.InvoiceFilter) (*billing.InvoicePage, error)
	PaymentHistory(ctx context.Context, actor auth.Actor, filter billing.PaymentFilter) (*billing.PaymentPage, error)
}

type Statement struct {
	Parent      *family.Parent
	Invoices    []*billing.Invoice
	Payments    []*billing.Payment
	TotalBilled decimal.Decimal
	TotalPaid   decimal.Decimal
	// Balance is negative when the account is in credit.
	Balance     decimal.Decimal
	GeneratedAt time.Time
}

type Service struct {
	parents Parents
	ledger  Ledger
	now     func() time.Time
}

func NewService(parents Parents, ledger Ledger) *Service {
	return &Service{parents: parents, ledger: ledger, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	return &Service{parents: s.parents, ledger: s.ledger, now: now}
}

// Build collects every non-cancelled invoice addressed to the parent and the
// payments recorded against them.
func (s *Service) Build(ctx context.Context, actor auth.Actor, parentID uuid.UUID) (*Statement, error) {
	parent, err := s.parents.GetParent(ctx, actor, parentID)
	if err != nil {
		return nil, err
	}

	st := &Statement{
		Parent:      parent,
		TotalBilled: decimal.Zero,
		TotalPaid:   decimal.Zero,
		GeneratedAt: s.now(),
	}

	for offset := 0; ; {
		page, err := s.ledger.ListInvoices(ctx, actor, billing.InvoiceFilter{
			ParentID: &parentID,
			Sort:     billing.SortDueAsc,
			Limit:    billing.MaxPageSize,
			Offset:   offset,
		})
		if err != nil {
			return nil, fmt.Errorf("listing invoices: %w", err)
		}

		st.Invoices = append(st.Invoices, page.Invoices...)
		offset += len(page.Invoices)

		if len(page.Invoices) == 0 || offset >= page.Total {
			break
		}
	}

	for _, inv := range st.Invoices {
		st.TotalBilled = st.TotalBilled.Add(inv.Amount)
		st.TotalPaid = st.TotalPaid.Add(inv.AmountPaid)

		page, err := s.ledger.PaymentHistory(ctx, actor, billing.PaymentFilter{
			InvoiceID: &inv.ID,
			Limit:     billing.MaxPageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("listing payments for %s: %w", inv.Number, err)
		}

		st.Payments = append(st.Payments, page.Payments...)
	}

	st.Balance = st.TotalBilled.Sub(st.TotalPaid)

	return st, nil
}

package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/billing"
	"github.com/MrJamesThe3rd/daycare/internal/importer/bank"
)

//go:generate mockgen -source=service.go -destination=ledger_mock.go -package=importer
type Ledger interface {
	InvoiceByNumber(ctx context.Context, actor auth.Actor, number string) (*billing.Invoice, error)
	FindPaymentByReference(ctx context.Context, invoiceID uuid.UUID, reference string) (*billing.Payment, error)
	RecordPayment(ctx context.Context, actor auth.Actor, invoiceID uuid.UUID, params billing.PaymentParams) (*billing.Payment, error)
}

type Service struct {
	parser Parser
	ledger Ledger
}

func NewService(ledger Ledger) *Service {
	return &Service{parser: bank.NewParser(), ledger: ledger}
}

// Import records every credit line that names an invoice as a bank transfer.
// Lines already imported, identified by invoice and bank description, are
// reported as duplicates, so the same file can be uploaded twice.
func (s *Service) Import(ctx context.Context, actor auth.Actor, r io.Reader) (*Result, error) {
	if !actor.ManagesFinance() {
		return nil, apperr.Forbidden("only staff can import bank statements")
	}

	st, err := s.parser.Parse(r)
	if err != nil {
		return nil, apperr.Validation("file", err.Error())
	}

	res := &Result{Profile: st.Profile, Charset: st.Charset}

	for _, line := range st.Lines {
		if !line.Credit {
			res.Debits++
			continue
		}

		if err := s.importLine(ctx, actor, line, res); err != nil {
			return nil, fmt.Errorf("row %d: %w", line.Row, err)
		}
	}

	slog.Info("bank statement imported",
		"profile", res.Profile,
		"charset", res.Charset,
		"recorded", len(res.Recorded),
		"duplicates", len(res.Duplicates),
		"unmatched", len(res.Unmatched),
		"failed", len(res.Failed),
	)

	return res, nil
}

// importLine files the line under one outcome. Only infrastructure errors are
// returned.
func (s *Service) importLine(ctx context.Context, actor auth.Actor, line bank.Line, res *Result) error {
	entry := Entry{Line: line}

	number, ok := findInvoiceNumber(line.Description)
	if !ok {
		entry.Reason = "no invoice number in description"
		res.Unmatched = append(res.Unmatched, entry)

		return nil
	}

	entry.InvoiceNumber = number

	inv, err := s.ledger.InvoiceByNumber(ctx, actor, number)
	if err != nil {
		if apperr.IsNotFound(err) {
			entry.Reason = "invoice " + number + " not found"
			res.Unmatched = append(res.Unmatched, entry)

			return nil
		}

		return fmt.Errorf("find invoice: %w", err)
	}

	ref := reference(line.Description)

	existing, err := s.ledger.FindPaymentByReference(ctx, inv.ID, ref)
	switch {
	case err == nil:
		entry.Payment = existing
		entry.Reason = "already recorded as " + existing.ReceiptNumber
		res.Duplicates = append(res.Duplicates, entry)

		return nil
	case !apperr.IsNotFound(err):
		return fmt.Errorf("find payment: %w", err)
	}

	p, err := s.ledger.RecordPayment(ctx, actor, inv.ID, billing.PaymentParams{
		Amount:    line.Amount,
		Method:    billing.MethodBankTransfer,
		Date:      line.Date,
		Reference: ref,
		Notes:     "Imported from bank statement",
	})
	if err != nil {
		if apperr.KindOf(err) == 0 {
			return fmt.Errorf("record payment: %w", err)
		}

		entry.Reason = apperr.Message(err)
		res.Failed = append(res.Failed, entry)

		return nil
	}

	entry.Payment = p
	res.Recorded = append(res.Recorded, entry)

	return nil
}

// Package export writes payment history to CSV files for the accountant.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/billing"
	"github.com/MrJamesThe3rd/daycare/internal/money"
)

var header = []string{
	"Date", "Receipt", "Invoice", "Parent", "Child", "Method", "Amount", "Reference", "Notes",
}

type Ledger interface {
	PaymentHistory(ctx context.Context, actor auth.Actor, filter billing.PaymentFilter) (*billing.PaymentPage, error)
}

// Service handles the export of payments.
type Service struct {
	ledger Ledger
	now    func() time.Time
}

func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger, now: time.Now}
}

// Result describes a written export file.
type Result struct {
	Path  string
	Count int
	Sum   decimal.Decimal
}

// Export writes every payment matching the filter to a new CSV file in
// outputDir. Limit and Offset on the filter are ignored.
func (s *Service) Export(ctx context.Context, actor auth.Actor, filter billing.PaymentFilter, outputDir string) (*Result, error) {
	payments, sum, err := s.collect(ctx, actor, filter)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(outputDir, fmt.Sprintf("payments_%s.csv", s.now().Format("20060102_150405")))

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := Write(f, payments); err != nil {
		return nil, err
	}

	return &Result{Path: path, Count: len(payments), Sum: sum}, nil
}

func (s *Service) collect(ctx context.Context, actor auth.Actor, filter billing.PaymentFilter) ([]*billing.Payment, decimal.Decimal, error) {
	var payments []*billing.Payment

	filter.Limit = billing.MaxPageSize
	filter.Offset = 0

	for {
		page, err := s.ledger.PaymentHistory(ctx, actor, filter)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("listing payments: %w", err)
		}

		payments = append(payments, page.Payments...)

		if len(page.Payments) == 0 || len(payments) >= page.Total {
			return payments, page.Sum, nil
		}

		filter.Offset += len(page.Payments)
	}
}

// Write renders payments as CSV with a header row.
func Write(w io.Writer, payments []*billing.Payment) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, p := range payments {
		record := []string{
			p.Date.Format(time.DateOnly),
			p.ReceiptNumber,
			p.InvoiceNumber,
			p.ParentName,
			p.ChildName,
			p.Method.Label(),
			money.Format(p.Amount),
			p.Reference,
			p.Notes,
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing payment %s: %w", p.ReceiptNumber, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

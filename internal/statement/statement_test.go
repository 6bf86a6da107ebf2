package statement_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/billing"
	"github.com/MrJamesThe3rd/daycare/internal/family"
	"github.com/MrJamesThe3rd/daycare/internal/statement"
)

var today = time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC)

type fakeParents struct {
	parent *family.Parent
}

func (f fakeParents) GetParent(_ context.Context, _ auth.Actor, id uuid.UUID) (*family.Parent, error) {
	if f.parent == nil || f.parent.ID != id {
		return nil, apperr.NotFound("parent")
	}

	return f.parent, nil
}

type fakeLedger struct {
	invoices []*billing.Invoice
	payments map[uuid.UUID][]*billing.Payment
	pageSize int
	calls    int
}

func (f *fakeLedger) ListInvoices(_ context.Context, _ auth.Actor, filter billing.InvoiceFilter) (*billing.InvoicePage, error) {
	f.calls++

	end := min(filter.Offset+f.pageSize, len(f.invoices))

	return &billing.InvoicePage{Invoices: f.invoices[filter.Offset:end], Total: len(f.invoices)}, nil
}

func (f *fakeLedger) PaymentHistory(_ context.Context, _ auth.Actor, filter billing.PaymentFilter) (*billing.PaymentPage, error) {
	return &billing.PaymentPage{Payments: f.payments[*filter.InvoiceID]}, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixture() (*family.Parent, *fakeLedger) {
	parent := &family.Parent{ID: uuid.New(), FirstName: "Kofi", LastName: "Mensah", Email: "kofi@example.com"}

	paid := &billing.Invoice{
		ID: uuid.New(), Number: "INV-20240105-0001", ChildName: "Ama Mensah",
		Amount: dec("450.00"), AmountPaid: dec("450.00"), DueDate: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Status: billing.StatusPaid,
	}
	partial := &billing.Invoice{
		ID: uuid.New(), Number: "INV-20240201-0003", ChildName: "Ama Mensah",
		Amount: dec("450.00"), AmountPaid: dec("200.00"), DueDate: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		Status: billing.StatusPartial,
	}
	meals := &billing.Invoice{
		ID: uuid.New(), Number: "INV-20240201-0004", ChildName: "Yaw Mensah",
		Amount: dec("60.00"), AmountPaid: decimal.Zero, DueDate: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
		Status: billing.StatusSent,
	}

	ledger := &fakeLedger{
		invoices: []*billing.Invoice{paid, partial, meals},
		payments: map[uuid.UUID][]*billing.Payment{
			paid.ID: {{
				ReceiptNumber: "RCT-20240110-0002", InvoiceNumber: paid.Number, Amount: dec("450.00"),
				Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), Method: billing.MethodMobileMoney,
			}},
			partial.ID: {{
				ReceiptNumber: "RCT-20240210-0001", InvoiceNumber: partial.Number, Amount: dec("200.00"),
				Date: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), Method: billing.MethodCash,
			}},
		},
		pageSize: 2,
	}

	return parent, ledger
}

func TestService_Build(t *testing.T) {
	parent, ledger := fixture()
	svc := statement.NewService(fakeParents{parent: parent}, ledger).WithClock(func() time.Time { return today })

	st, err := svc.Build(context.Background(), auth.Actor{Role: auth.RoleStaff}, parent.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, ledger.calls)
	assert.Len(t, st.Invoices, 3)
	assert.Len(t, st.Payments, 2)
	assert.True(t, dec("960.00").Equal(st.TotalBilled))
	assert.True(t, dec("650.00").Equal(st.TotalPaid))
	assert.True(t, dec("310.00").Equal(st.Balance))
	assert.Len(t, st.Outstanding(), 2)
}

func TestService_BuildUnknownParent(t *testing.T) {
	_, ledger := fixture()
	svc := statement.NewService(fakeParents{}, ledger)

	_, err := svc.Build(context.Background(), auth.Actor{Role: auth.RoleStaff}, uuid.New())
	assert.True(t, apperr.IsNotFound(err))
}

func TestRenderText(t *testing.T) {
	parent, ledger := fixture()
	svc := statement.NewService(fakeParents{parent: parent}, ledger).WithClock(func() time.Time { return today })

	st, err := svc.Build(context.Background(), auth.Actor{Role: auth.RoleStaff}, parent.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, statement.RenderText(&buf, st, "Daycare"))

	out := buf.String()
	assert.Contains(t, out, "Parent: Kofi Mensah")
	assert.Contains(t, out, "Date:   2024-02-20")
	assert.Contains(t, out, "INV-20240201-0003")
	assert.Contains(t, out, "partial (5 days overdue)")
	assert.Contains(t, out, "RCT-20240110-0002")
	assert.Contains(t, out, "Mobile Money")
	assert.Contains(t, out, "Balance due:  310.00")
}

func TestRenderText_Credit(t *testing.T) {
	st := &statement.Statement{
		Parent:      &family.Parent{FirstName: "Efua", LastName: "Owusu"},
		TotalBilled: dec("100.00"),
		TotalPaid:   dec("120.00"),
		Balance:     dec("-20.00"),
		GeneratedAt: today,
	}

	var buf bytes.Buffer
	require.NoError(t, statement.RenderText(&buf, st, "Daycare"))
	assert.Contains(t, buf.String(), "In credit:    20.00")
}

package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/billing"
)

func TestInvoice_Computed(t *testing.T) {
	today := day(20)

	type testCase struct {
		name        string
		inv         billing.Invoice
		wantBalance string
		wantOverdue bool
		wantDays    int
	}

	tests := []testCase{
		{
			name:        "SentPastDue",
			inv:         billing.Invoice{Amount: dec("100.00"), AmountPaid: dec("0"), DueDate: day(15), Status: billing.StatusSent},
			wantBalance: "100.00",
			wantOverdue: true,
			wantDays:    5,
		},
		{
			name:        "PartialPastDue",
			inv:         billing.Invoice{Amount: dec("100.00"), AmountPaid: dec("30.00"), DueDate: day(19), Status: billing.StatusPartial},
			wantBalance: "70.00",
			wantOverdue: true,
			wantDays:    1,
		},
		{
			name:        "DueToday",
			inv:         billing.Invoice{Amount: dec("100.00"), AmountPaid: dec("0"), DueDate: day(20), Status: billing.StatusSent},
			wantBalance: "100.00",
		},
		{
			name:        "PaidPastDue",
			inv:         billing.Invoice{Amount: dec("100.00"), AmountPaid: dec("100.00"), DueDate: day(1), Status: billing.StatusPaid},
			wantBalance: "0",
		},
		{
			name:        "CancelledPastDue",
			inv:         billing.Invoice{Amount: dec("100.00"), AmountPaid: dec("0"), DueDate: day(1), Status: billing.StatusCancelled},
			wantBalance: "100.00",
		},
		{
			name:        "Overpaid",
			inv:         billing.Invoice{Amount: dec("100.00"), AmountPaid: dec("120.00"), DueDate: day(25), Status: billing.StatusPaid},
			wantBalance: "-20.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, dec(tt.wantBalance).Equal(tt.inv.BalanceDue()), "balance %s", tt.inv.BalanceDue())
			assert.Equal(t, tt.wantOverdue, tt.inv.IsOverdue(today))
			assert.Equal(t, tt.wantDays, tt.inv.DaysOverdue(today))
		})
	}
}

func TestInvoice_IsOverdueIgnoresTimeOfDay(t *testing.T) {
	inv := billing.Invoice{DueDate: day(20), Status: billing.StatusSent}

	assert.False(t, inv.IsOverdue(time.Date(2024, time.January, 20, 23, 59, 0, 0, time.UTC)))
	assert.True(t, inv.IsOverdue(time.Date(2024, time.January, 21, 0, 1, 0, 0, time.UTC)))
}

func TestParseAmount(t *testing.T) {
	type testCase struct {
		in      string
		want    string
		wantErr bool
	}

	tests := []testCase{
		{in: "40", want: "40"},
		{in: "40.5", want: "40.5"},
		{in: " 99.99 ", want: "99.99"},
		{in: "0", wantErr: true},
		{in: "-10", wantErr: true},
		{in: "10.001", wantErr: true},
		{in: "ten", wantErr: true},
		{in: "", wantErr: true},
		{in: "100000000.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := billing.ParseAmount(tt.in)
			if tt.wantErr {
				assert.True(t, apperr.IsValidation(err))
				return
			}

			assert.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(got))
		})
	}
}

func TestMethod_Valid(t *testing.T) {
	for _, m := range billing.Methods {
		assert.True(t, m.Valid(), m)
		assert.NotEqual(t, string(m), m.Label())
	}

	assert.False(t, billing.Method("bitcoin").Valid())
}

package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/daycare/internal/billing"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func payments(dates []int, amounts ...string) []billing.Payment {
	out := make([]billing.Payment, len(amounts))
	for i, a := range amounts {
		out[i] = billing.Payment{Amount: dec(a), Date: day(dates[i])}
	}

	return out
}

func TestReconcile(t *testing.T) {
	earlier := day(2)

	type testCase struct {
		name         string
		total        string
		payments     []billing.Payment
		trigger      time.Time
		current      billing.Ledger
		wantPaid     string
		wantStatus   billing.Status
		wantPaidDate *time.Time
	}

	tests := []testCase{
		{
			name:       "NoPaymentsKeepsStatus",
			total:      "100.00",
			trigger:    day(10),
			current:    billing.Ledger{Status: billing.StatusSent},
			wantPaid:   "0",
			wantStatus: billing.StatusSent,
		},
		{
			name:       "NoPaymentsKeepsOverdue",
			total:      "100.00",
			trigger:    day(10),
			current:    billing.Ledger{Status: billing.StatusOverdue},
			wantPaid:   "0",
			wantStatus: billing.StatusOverdue,
		},
		{
			name:       "SinglePartial",
			total:      "100.00",
			payments:   payments([]int{5}, "30.00"),
			trigger:    day(5),
			current:    billing.Ledger{Status: billing.StatusSent},
			wantPaid:   "30.00",
			wantStatus: billing.StatusPartial,
		},
		{
			name:         "TwoPaymentsSettle",
			total:        "100.00",
			payments:     payments([]int{5, 12}, "40.00", "60.00"),
			trigger:      day(12),
			current:      billing.Ledger{AmountPaid: dec("40.00"), Status: billing.StatusPartial},
			wantPaid:     "100.00",
			wantStatus:   billing.StatusPaid,
			wantPaidDate: new(day(12)),
		},
		{
			name:         "Overpayment",
			total:        "100.00",
			payments:     payments([]int{5}, "120.00"),
			trigger:      day(5),
			current:      billing.Ledger{Status: billing.StatusSent},
			wantPaid:     "120.00",
			wantStatus:   billing.StatusPaid,
			wantPaidDate: new(day(5)),
		},
		{
			name:         "PartialKeepsPaidDate",
			total:        "100.00",
			payments:     payments([]int{5}, "10.00"),
			trigger:      day(5),
			current:      billing.Ledger{Status: billing.StatusPaid, PaidDate: &earlier},
			wantPaid:     "10.00",
			wantStatus:   billing.StatusPartial,
			wantPaidDate: &earlier,
		},
		{
			name:         "CentsAddUpExactly",
			total:        "0.30",
			payments:     payments([]int{1, 1, 1}, "0.10", "0.10", "0.10"),
			trigger:      day(1),
			current:      billing.Ledger{Status: billing.StatusSent},
			wantPaid:     "0.30",
			wantStatus:   billing.StatusPaid,
			wantPaidDate: new(day(1)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := billing.Reconcile(dec(tt.total), tt.payments, tt.trigger, tt.current)

			assert.True(t, dec(tt.wantPaid).Equal(got.AmountPaid), "amount paid %s", got.AmountPaid)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantPaidDate, got.PaidDate)
		})
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	ps := payments([]int{3, 9}, "25.50", "74.50")
	start := billing.Ledger{Status: billing.StatusSent}

	once := billing.Reconcile(dec("100.00"), ps, day(9), start)
	twice := billing.Reconcile(dec("100.00"), ps, day(9), once)

	assert.Equal(t, once, twice)
}

func TestReconcile_TriggerTimeIsTruncated(t *testing.T) {
	trigger := time.Date(2024, time.March, 4, 17, 45, 0, 0, time.UTC)

	got := billing.Reconcile(dec("10.00"), payments([]int{4}, "10.00"), trigger, billing.Ledger{})

	assert.Equal(t, new(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)), got.PaidDate)
}

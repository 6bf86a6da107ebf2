package statement

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/MrJamesThe3rd/daycare/internal/billing"
	"github.com/MrJamesThe3rd/daycare/internal/money"
)

// RenderText writes the statement as aligned plain text.
func RenderText(w io.Writer, st *Statement, appName string) error {
	today := st.GeneratedAt

	fmt.Fprintf(w, "%s - Account Statement\n", appName)
	fmt.Fprintf(w, "Parent: %s\n", st.Parent.FullName())

	if st.Parent.Email != "" {
		fmt.Fprintf(w, "Email:  %s\n", st.Parent.Email)
	}

	fmt.Fprintf(w, "Date:   %s\n\n", today.Format(time.DateOnly))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, "Invoice\tChild\tDue\tAmount\tPaid\tBalance\tStatus\t")

	for _, inv := range st.Invoices {
		status := string(inv.Status)
		if inv.IsOverdue(today) {
			status = fmt.Sprintf("%s (%d days overdue)", inv.Status, inv.DaysOverdue(today))
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			inv.Number,
			inv.ChildName,
			inv.DueDate.Format(time.DateOnly),
			money.Format(inv.Amount),
			money.Format(inv.AmountPaid),
			money.Format(inv.BalanceDue()),
			status,
		)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing invoices: %w", err)
	}

	if len(st.Payments) > 0 {
		fmt.Fprintln(w, "\nPayments")

		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "Receipt\tInvoice\tDate\tMethod\tAmount\t")

		for _, p := range st.Payments {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
				p.ReceiptNumber,
				p.InvoiceNumber,
				p.Date.Format(time.DateOnly),
				p.Method.Label(),
				money.Format(p.Amount),
			)
		}

		if err := tw.Flush(); err != nil {
			return fmt.Errorf("writing payments: %w", err)
		}
	}

	fmt.Fprintf(w, "\nTotal billed: %s\n", money.Format(st.TotalBilled))
	fmt.Fprintf(w, "Total paid:   %s\n", money.Format(st.TotalPaid))

	label := "Balance due:"
	if st.Balance.IsNegative() {
		label = "In credit:  "
	}

	_, err := fmt.Fprintf(w, "%s  %s\n", label, money.Format(st.Balance.Abs()))

	return err
}

// Outstanding returns the invoices on the statement still awaiting payment.
func (st *Statement) Outstanding() []*billing.Invoice {
	var out []*billing.Invoice

	for _, inv := range st.Invoices {
		switch inv.Status {
		case billing.StatusSent, billing.StatusPartial, billing.StatusOverdue:
			out = append(out, inv)
		}
	}

	return out
}

package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daycare/internal/billing"
	"github.com/MrJamesThe3rd/daycare/internal/http/web"
)

type InvoiceResponse struct {
	ID             uuid.UUID      `json:"id"`
	Number         string         `json:"invoice_number"`
	ParentID       uuid.UUID      `json:"parent_id"`
	ParentName     string         `json:"parent_name,omitempty"`
	ChildID        uuid.UUID      `json:"child_id"`
	ChildName      string         `json:"child_name,omitempty"`
	FeeStructureID uuid.UUID      `json:"fee_structure_id"`
	Amount         string         `json:"amount"`
	AmountPaid     string         `json:"amount_paid"`
	BalanceDue     string         `json:"balance_due"`
	IssueDate      web.Date       `json:"issue_date"`
	DueDate        web.Date       `json:"due_date"`
	PaidDate       *web.Date      `json:"paid_date,omitempty"`
	Status         billing.Status `json:"status"`
	IsOverdue      bool           `json:"is_overdue"`
	DaysOverdue    int            `json:"days_overdue"`
	Description    string         `json:"description,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ToInvoiceResponse renders inv with overdue fields computed for today.
func ToInvoiceResponse(inv *billing.Invoice, today time.Time) InvoiceResponse {
	return InvoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		ParentID:       inv.ParentID,
		ParentName:     inv.ParentName,
		ChildID:        inv.ChildID,
		ChildName:      inv.ChildName,
		FeeStructureID: inv.FeeStructureID,
		Amount:         inv.Amount.StringFixed(2),
		AmountPaid:     inv.AmountPaid.StringFixed(2),
		BalanceDue:     inv.BalanceDue().StringFixed(2),
		IssueDate:      web.Date{Time: inv.IssueDate},
		DueDate:        web.Date{Time: inv.DueDate},
		PaidDate:       web.DateOf(inv.PaidDate),
		Status:         inv.Status,
		IsOverdue:      inv.IsOverdue(today),
		DaysOverdue:    inv.DaysOverdue(today),
		Description:    inv.Description,
		Notes:          inv.Notes,
		CreatedAt:      inv.CreatedAt,
	}
}

func ToInvoiceList(invs []*billing.Invoice, today time.Time) []InvoiceResponse {
	resp := make([]InvoiceResponse, len(invs))
	for i, inv := range invs {
		resp[i] = ToInvoiceResponse(inv, today)
	}

	return resp
}

type PaymentResponse struct {
	ID            uuid.UUID      `json:"id"`
	InvoiceID     uuid.UUID      `json:"invoice_id"`
	InvoiceNumber string         `json:"invoice_number,omitempty"`
	ParentName    string         `json:"parent_name,omitempty"`
	ChildName     string         `json:"child_name,omitempty"`
	Amount        string         `json:"amount"`
	Date          web.Date       `json:"payment_date"`
	Method        billing.Method `json:"payment_method"`
	MethodLabel   string         `json:"payment_method_display"`
	Reference     string         `json:"transaction_reference,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	ReceiptNumber string         `json:"receipt_number"`
	ProcessedBy   *uuid.UUID     `json:"processed_by,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		InvoiceNumber: p.InvoiceNumber,
		ParentName:    p.ParentName,
		ChildName:     p.ChildName,
		Amount:        p.Amount.StringFixed(2),
		Date:          web.Date{Time: p.Date},
		Method:        p.Method,
		MethodLabel:   p.Method.Label(),
		Reference:     p.Reference,
		Notes:         p.Notes,
		ReceiptNumber: p.ReceiptNumber,
		ProcessedBy:   p.ProcessedBy,
		CreatedAt:     p.CreatedAt,
	}
}

func ToPaymentList(ps []*billing.Payment) []PaymentResponse {
	resp := make([]PaymentResponse, len(ps))
	for i, p := range ps {
		resp[i] = ToPaymentResponse(p)
	}

	return resp
}

type invoicePageResponse struct {
	Invoices []InvoiceResponse `json:"invoices"`
	Total    int               `json:"total"`
}

type paymentPageResponse struct {
	Payments []PaymentResponse `json:"payments"`
	Total    int               `json:"total"`
	Sum      string            `json:"total_amount"`
}

type summaryResponse struct {
	InvoiceCount   int               `json:"invoice_count"`
	TotalBilled    string            `json:"total_billed"`
	TotalPaid      string            `json:"total_paid"`
	TotalDue       string            `json:"total_due"`
	UnpaidCount    int               `json:"unpaid_count"`
	OverdueCount   int               `json:"overdue_count"`
	RecentPayments []PaymentResponse `json:"recent_payments"`
	Urgent         []InvoiceResponse `json:"urgent_invoices"`
}

func toSummaryResponse(s *billing.Summary, today time.Time) summaryResponse {
	return summaryResponse{
		InvoiceCount:   s.Count,
		TotalBilled:    s.Billed.StringFixed(2),
		TotalPaid:      s.Paid.StringFixed(2),
		TotalDue:       s.Due.StringFixed(2),
		UnpaidCount:    s.UnpaidCount,
		OverdueCount:   s.OverdueCount,
		RecentPayments: ToPaymentList(s.RecentPayments),
		Urgent:         ToInvoiceList(s.Urgent, today),
	}
}

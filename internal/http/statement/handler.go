package statement

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	httpbilling "github.com/MrJamesThe3rd/daycare/internal/http/billing"
	"github.com/MrJamesThe3rd/daycare/internal/http/web"
	"github.com/MrJamesThe3rd/daycare/internal/statement"
)

type Handler struct {
	svc     *statement.Service
	appName string
}

func NewHandler(svc *statement.Service, appName string) *Handler {
	return &Handler{svc: svc, appName: appName}
}

type statementResponse struct {
	ParentID    uuid.UUID                     `json:"parent_id"`
	ParentName  string                        `json:"parent_name"`
	Invoices    []httpbilling.InvoiceResponse `json:"invoices"`
	Payments    []httpbilling.PaymentResponse `json:"payments"`
	TotalBilled string                        `json:"total_billed"`
	TotalPaid   string                        `json:"total_paid"`
	Balance     string                        `json:"balance"`
	GeneratedAt time.Time                     `json:"generated_at"`
}

// Get serves GET /parents/{id}/statement, as JSON or, with ?format=text,
// as the plain-text statement.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := web.IDParam(w, r, "id")
	if !ok {
		return
	}

	st, err := h.svc.Build(r.Context(), web.Actor(r), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		var buf bytes.Buffer
		if err := statement.RenderText(&buf, st, h.appName); err != nil {
			web.Error(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		if _, err := buf.WriteTo(w); err != nil {
			slog.Error("failed to write statement", "error", err)
		}

		return
	}

	web.JSON(w, http.StatusOK, statementResponse{
		ParentID:    st.Parent.ID,
		ParentName:  st.Parent.FullName(),
		Invoices:    httpbilling.ToInvoiceList(st.Invoices, st.GeneratedAt),
		Payments:    httpbilling.ToPaymentList(st.Payments),
		TotalBilled: st.TotalBilled.StringFixed(2),
		TotalPaid:   st.TotalPaid.StringFixed(2),
		Balance:     st.Balance.StringFixed(2),
		GeneratedAt: st.GeneratedAt,
	})
}

package importcsv

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daycare/internal/encoding"
	"github.com/MrJamesThe3rd/daycare/internal/http/web"
	"github.com/MrJamesThe3rd/daycare/internal/importer"
)

const maxUpload = 10 << 20

type Handler struct {
	svc *importer.Service
}

func NewHandler(svc *importer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Use(web.RequireFinance)
	r.Post("/", h.importStatement)
}

type entryResponse struct {
	Row           int        `json:"row"`
	Date          web.Date   `json:"date"`
	Description   string     `json:"description"`
	Amount        string     `json:"amount"`
	InvoiceNumber string     `json:"invoice_number,omitempty"`
	PaymentID     *uuid.UUID `json:"payment_id,omitempty"`
	ReceiptNumber string     `json:"receipt_number,omitempty"`
	Reason        string     `json:"reason,omitempty"`
}

type importResponse struct {
	Format     string           `json:"format"`
	Charset    encoding.Charset `json:"charset"`
	Recorded   []entryResponse  `json:"recorded"`
	Duplicates []entryResponse  `json:"duplicates"`
	Unmatched  []entryResponse  `json:"unmatched"`
	Failed     []entryResponse  `json:"failed"`
	Debits     int              `json:"debits_skipped"`
}

func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		web.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		web.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	res, err := h.svc.Import(r.Context(), web.Actor(r), file)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusOK, importResponse{
		Format:     res.Profile,
		Charset:    res.Charset,
		Recorded:   toEntries(res.Recorded),
		Duplicates: toEntries(res.Duplicates),
		Unmatched:  toEntries(res.Unmatched),
		Failed:     toEntries(res.Failed),
		Debits:     res.Debits,
	})
}

func toEntries(entries []importer.Entry) []entryResponse {
	resp := make([]entryResponse, 0, len(entries))

	for _, e := range entries {
		er := entryResponse{
			Row:           e.Line.Row,
			Date:          web.Date{Time: e.Line.Date},
			Description:   e.Line.Description,
			Amount:        e.Line.Amount.StringFixed(2),
			InvoiceNumber: e.InvoiceNumber,
			Reason:        e.Reason,
		}

		if e.Payment != nil {
			er.PaymentID = &e.Payment.ID
			er.ReceiptNumber = e.Payment.ReceiptNumber
		}

		resp = append(resp, er)
	}

	return resp
}

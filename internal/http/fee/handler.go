package fee

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daycare/internal/fee"
	"github.com/MrJamesThe3rd/daycare/internal/http/web"
)

type Handler struct {
	svc *fee.Service
}

func NewHandler(svc *fee.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(web.RequireFinance)
		r.Post("/", h.create)
		r.Post("/{id}/deactivate", h.deactivate)
	})
}

type createRequest struct {
	Name          string          `json:"name" validate:"required,max=100"`
	Category      fee.Category    `json:"category" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Frequency     fee.Frequency   `json:"frequency" validate:"required"`
	AppliesTo     fee.ClassScope  `json:"applies_to_class"`
	Description   string          `json:"description"`
	EffectiveDate web.Date        `json:"effective_date"`
	EndDate       *web.Date       `json:"end_date,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !web.Decode(w, r, &req) {
		return
	}

	params := fee.CreateParams{
		Name:          req.Name,
		Category:      req.Category,
		Amount:        req.Amount,
		Frequency:     req.Frequency,
		AppliesTo:     req.AppliesTo,
		Description:   req.Description,
		EffectiveDate: req.EffectiveDate.Time,
	}

	if req.EndDate != nil {
		params.EndDate = &req.EndDate.Time
	}

	st, err := h.svc.Create(r.Context(), web.Actor(r), params)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusCreated, toResponse(st, time.Now()))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := fee.ListFilter{ActiveOnly: r.URL.Query().Get("active") == "true"}

	if c := r.URL.Query().Get("category"); c != "" {
		filter.Category = new(fee.Category(c))
	}

	list, err := h.svc.List(r.Context(), filter)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	today := time.Now()

	resp := make([]structureResponse, len(list))
	for i, st := range list {
		resp[i] = toResponse(st, today)
	}

	web.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := web.IDParam(w, r, "id")
	if !ok {
		return
	}

	st, err := h.svc.Get(r.Context(), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusOK, toResponse(st, time.Now()))
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := web.IDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Deactivate(r.Context(), web.Actor(r), id); err != nil {
		web.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type structureResponse struct {
	ID                   uuid.UUID      `json:"id"`
	Name                 string         `json:"name"`
	Category             fee.Category   `json:"category"`
	Amount               string         `json:"amount"`
	Frequency            fee.Frequency  `json:"frequency"`
	AppliesTo            fee.ClassScope `json:"applies_to_class"`
	Description          string         `json:"description,omitempty"`
	IsActive             bool           `json:"is_active"`
	IsCurrentlyEffective bool           `json:"is_currently_effective"`
	EffectiveDate        web.Date       `json:"effective_date"`
	EndDate              *web.Date      `json:"end_date,omitempty"`
}

func toResponse(st *fee.Structure, today time.Time) structureResponse {
	return structureResponse{
		ID:                   st.ID,
		Name:                 st.Name,
		Category:             st.Category,
		Amount:               st.Amount.StringFixed(2),
		Frequency:            st.Frequency,
		AppliesTo:            st.AppliesTo,
		Description:          st.Description,
		IsActive:             st.IsActive,
		IsCurrentlyEffective: st.IsCurrentlyEffective(today),
		EffectiveDate:        web.Date{Time: st.EffectiveDate},
		EndDate:              web.DateOf(st.EndDate),
	}
}

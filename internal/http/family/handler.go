package family

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daycare/internal/family"
	"github.com/MrJamesThe3rd/daycare/internal/http/web"
)

type Handler struct {
	svc *family.Service
	now func() time.Time
}

func NewHandler(svc *family.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

// ParentRoutes is mounted under /parents.
func (h *Handler) ParentRoutes(r chi.Router) {
	r.Get("/{id}", h.getParent)

	r.Group(func(r chi.Router) {
		r.Use(web.RequireFinance)
		r.Post("/", h.createParent)
		r.Get("/", h.listParents)
		r.Delete("/{id}", h.deleteParent)
	})
}

// ChildRoutes is mounted under /children.
func (h *Handler) ChildRoutes(r chi.Router) {
	r.Get("/", h.listChildren)
	r.Get("/{id}", h.getChild)
	r.Get("/{id}/enrollments", h.listEnrollments)

	r.Group(func(r chi.Router) {
		r.Use(web.RequireFinance)
		r.Post("/", h.createChild)
		r.Delete("/{id}", h.deleteChild)
		r.Post("/{id}/guardians", h.linkGuardian)
		r.Patch("/{id}/medical", h.updateMedical)
		r.Post("/{id}/enrollments", h.enroll)
	})
}

type createParentRequest struct {
	UserID                uuid.UUID `json:"user_id" validate:"required"`
	FirstName             string    `json:"first_name" validate:"required,max=100"`
	LastName              string    `json:"last_name" validate:"required,max=100"`
	Phone                 string    `json:"phone" validate:"omitempty,phone"`
	Address               string    `json:"address"`
	EmergencyContactName  string    `json:"emergency_contact_name" validate:"max=100"`
	EmergencyContactPhone string    `json:"emergency_contact_phone" validate:"omitempty,phone"`
}

func (h *Handler) createParent(w http.ResponseWriter, r *http.Request) {
	var req createParentRequest
	if !web.Decode(w, r, &req) {
		return
	}

	p, err := h.svc.CreateParent(r.Context(), web.Actor(r), family.ParentParams{
		UserID:                req.UserID,
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Phone:                 req.Phone,
		Address:               req.Address,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
	})
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusCreated, toParentResponse(p))
}

func (h *Handler) listParents(w http.ResponseWriter, r *http.Request) {
	parents, err := h.svc.ListParents(r.Context(), web.Actor(r), family.ParentFilter{Name: r.URL.Query().Get("name")})
	if err != nil {
		web.Error(w, r, err)
		return
	}

	resp := make([]parentResponse, len(parents))
	for i, p := range parents {
		resp[i] = toParentResponse(p)
	}

	web.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getParent(w http.ResponseWriter, r *http.Request) {
	id, ok := web.IDParam(w, r, "id")
	if !ok {
		return
	}

	p, err := h.svc.GetParent(r.Context(), web.Actor(r), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusOK, toParentResponse(p))
}

func (h *Handler) deleteParent(w http.ResponseWriter, r *http.Request) {
	id, ok := web.IDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteParent(r.Context(), web.Actor(r), id); err != nil {
		web.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type createChildRequest struct {
	FirstName   string        `json:"first_name" validate:"required,max=100"`
	LastName    string        `json:"last_name" validate:"required,max=100"`
	DateOfBirth web.Date      `json:"date_of_birth"`
	Gender      family.Gender `json:"gender" validate:"required,oneof=M F"`
	MedicalInfo string        `json:"medical_info"`
	ParentIDs   []uuid.UUID   `json:"parents" validate:"required,min=1"`
}

func (h *Handler) createChild(w http.ResponseWriter, r *http.Request) {
	var req createChildRequest
	if !web.Decode(w, r, &req) {
		return
	}

	c, err := h.svc.CreateChild(r.Context(), web.Actor(r), family.ChildParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth.Time,
		Gender:      req.Gender,
		MedicalInfo: req.MedicalInfo,
		ParentIDs:   req.ParentIDs,
	})
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusCreated, toChildResponse(c, h.now()))
}

func (h *Handler) listChildren(w http.ResponseWriter, r *http.Request) {
	filter := family.ChildFilter{
		Name:       r.URL.Query().Get("name"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}

	if s := r.URL.Query().Get("parent_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			web.BadRequest(w, "invalid parent_id")
			return
		}

		filter.ParentID = &id
	}

	children, err := h.svc.ListChildren(r.Context(), web.Actor(r), filter)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	today := h.now()

	resp := make([]childResponse, len(children))
	for i, c := range children {
		resp[i] = toChildResponse(c, today)
	}

	web.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getChild(w http.ResponseWriter, r *http.Request) {
	id, ok := web.IDParam(w, r, "id")
	if !ok {
		return
	}

	c, err := h.svc.GetChild(r.Context(), web.Actor(r), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusOK, toChildResponse(c, h.now()))
}

func (h *Handler) deleteChild(w http.ResponseWriter, r *http.Request) {
	id, ok := web.IDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteChild(r.Context(), web.Actor(r), id); err != nil {
		web.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type linkGuardianRequest struct {
	ParentID uuid.UUID `json:"parent_id" validate:"required"`
}

func (h *Handler) linkGuardian(w http.ResponseWriter, r *http.Request) {
	id, ok := web.IDParam(w, r, "id")
	if !ok {
		return
	}

	var req linkGuardianRequest
	if !web.Decode(w, r, &req) {
		return
	}

	if err := h.svc.LinkGuardian(r.Context(), web.Actor(r), id, req.ParentID); err != nil {
		web.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type medicalRequest struct {
	MedicalInfo string `json:"medical_info"`
}

func (h *Handler) updateMedical(w http.ResponseWriter, r *http.Request) {
	id, ok := web.IDParam(w, r, "id")
	if !ok {
		return
	}

	var req medicalRequest
	if !web.Decode(w, r, &req) {
		return
	}

	if err := h.svc.UpdateMedicalInfo(r.Context(), web.Actor(r), id, req.MedicalInfo); err != nil {
		web.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type enrollRequest struct {
	Date      *web.Date        `json:"enrollment_date,omitempty"`
	Classroom family.Classroom `json:"classroom" validate:"required"`
}

func (h *Handler) enroll(w http.ResponseWriter, r *http.Request) {
	id, ok := web.IDParam(w, r, "id")
	if !ok {
		return
	}

	var req enrollRequest
	if !web.Decode(w, r, &req) {
		return
	}

	params := family.EnrollParams{Classroom: req.Classroom}
	if req.Date != nil {
		params.Date = req.Date.Time
	}

	e, err := h.svc.Enroll(r.Context(), web.Actor(r), id, params)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusCreated, toEnrollmentResponse(e))
}

func (h *Handler) listEnrollments(w http.ResponseWriter, r *http.Request) {
	id, ok := web.IDParam(w, r, "id")
	if !ok {
		return
	}

	list, err := h.svc.ListEnrollments(r.Context(), web.Actor(r), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	resp := make([]enrollmentResponse, len(list))
	for i, e := range list {
		resp[i] = toEnrollmentResponse(e)
	}

	web.JSON(w, http.StatusOK, resp)
}

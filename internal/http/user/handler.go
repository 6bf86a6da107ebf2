package user

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/family"
	"github.com/MrJamesThe3rd/daycare/internal/http/web"
	"github.com/MrJamesThe3rd/daycare/internal/user"
)

type Handler struct {
	svc *user.Service
}

func NewHandler(svc *user.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes is mounted under /users behind authentication.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/me", h.me)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
	ParentID  *uuid.UUID   `json:"parent_id,omitempty"`
}

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !web.Decode(w, r, &req) {
		return
	}

	sess, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			web.JSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}

		web.Error(w, r, err)

		return
	}

	web.JSON(w, http.StatusOK, loginResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      toResponse(sess.User),
		ParentID:  sess.ParentID,
	})
}

type profileRequest struct {
	Address               string `json:"address"`
	EmergencyContactName  string `json:"emergency_contact_name" validate:"max=100"`
	EmergencyContactPhone string `json:"emergency_contact_phone" validate:"omitempty,phone"`
}

type createRequest struct {
	Username  string          `json:"username" validate:"required,max=150"`
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"required,min=8"`
	FirstName string          `json:"first_name" validate:"required,max=100"`
	LastName  string          `json:"last_name" validate:"required,max=100"`
	Role      auth.Role       `json:"role" validate:"required"`
	Phone     string          `json:"phone" validate:"omitempty,phone"`
	Profile   *profileRequest `json:"parent_profile,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !web.Decode(w, r, &req) {
		return
	}

	params := user.CreateParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Phone:     req.Phone,
	}

	if req.Profile != nil {
		params.Profile = family.ParentParams{
			Address:               req.Profile.Address,
			EmergencyContactName:  req.Profile.EmergencyContactName,
			EmergencyContactPhone: req.Profile.EmergencyContactPhone,
		}
	}

	u, err := h.svc.Create(r.Context(), web.Actor(r), params)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusCreated, toResponse(u))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var filter user.ListFilter

	if s := r.URL.Query().Get("role"); s != "" {
		role, err := auth.ParseRole(s)
		if err != nil {
			web.BadRequest(w, "invalid role")
			return
		}

		filter.Role = &role
	}

	users, err := h.svc.List(r.Context(), web.Actor(r), filter)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toResponse(u)
	}

	web.JSON(w, http.StatusOK, resp)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	actor := web.Actor(r)

	u, err := h.svc.Get(r.Context(), actor, actor.UserID)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	web.JSON(w, http.StatusOK, toResponse(u))
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      auth.Role `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Phone:     u.Phone,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

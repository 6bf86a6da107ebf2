package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/family"
)

const minPasswordLength = 8

var ErrInvalidCredentials = errors.New("invalid email or password")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	// CreateUser stores the account and, when parent is not nil, its parent
	// profile in the same transaction.
	CreateUser(ctx context.Context, u *User, parent *family.Parent) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, filter ListFilter) ([]*User, error)
}

type ParentLookup interface {
	ParentOf(ctx context.Context, userID uuid.UUID) (*family.Parent, error)
}

type Service struct {
	repo    Repository
	parents ParentLookup
	tokens  *auth.Tokens
	cost    int
}

func NewService(repo Repository, parents ParentLookup, tokens *auth.Tokens) *Service {
	return &Service{repo: repo, parents: parents, tokens: tokens, cost: bcrypt.DefaultCost}
}

// WithHashCost returns a copy of the service hashing passwords at cost.
func (s *Service) WithHashCost(cost int) *Service {
	c := *s
	c.cost = cost

	return &c
}

type ListFilter struct {
	Role *auth.Role
}

type CreateParams struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      auth.Role
	Phone     string
	// Profile completes the parent profile of a parent account. Names
	// default to the account's.
	Profile family.ParentParams
}

func (p CreateParams) validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return apperr.Validation("username", "is required")
	}

	if _, err := mail.ParseAddress(p.Email); err != nil {
		return apperr.Validation("email", "is not a valid address")
	}

	if len(p.Password) < minPasswordLength {
		return apperr.Validation("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	if !p.Role.Valid() {
		return apperr.Validation("role", "must be admin, staff or parent")
	}

	if p.Phone != "" && !family.ValidPhone(p.Phone) {
		return apperr.Validation("phone", "must be 9 to 15 digits, optionally starting with +")
	}

	return nil
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, params CreateParams) (*User, error) {
	if !actor.ManagesUsers() {
		return nil, apperr.Forbidden("only admins can create users")
	}

	params.Email = strings.ToLower(strings.TrimSpace(params.Email))

	if err := params.validate(); err != nil {
		return nil, err
	}

	var profile *family.Parent

	if params.Role == auth.RoleParent {
		pp := params.Profile
		if pp.FirstName == "" {
			pp.FirstName = params.FirstName
		}

		if pp.LastName == "" {
			pp.LastName = params.LastName
		}

		if pp.Phone == "" {
			pp.Phone = params.Phone
		}

		if err := pp.Validate(); err != nil {
			return nil, err
		}

		profile = family.NewParent(pp)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Username:     strings.TrimSpace(params.Username),
		Email:        params.Email,
		FirstName:    strings.TrimSpace(params.FirstName),
		LastName:     strings.TrimSpace(params.LastName),
		Role:         params.Role,
		Phone:        params.Phone,
		IsActive:     true,
		PasswordHash: string(hash),
	}

	if err := s.repo.CreateUser(ctx, u, profile); err != nil {
		return nil, err
	}

	slog.Info("user created", "username", u.Username, "role", u.Role)

	return u, nil
}

// Authenticate checks the credentials and issues a bearer token for the
// account. Parent tokens carry the linked parent profile.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("get user: %w", err)
	}

	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	actor := auth.Actor{UserID: u.ID, Role: u.Role}

	if u.Role == auth.RoleParent {
		p, err := s.parents.ParentOf(ctx, u.ID)

		switch {
		case err == nil:
			actor.ParentID = &p.ID
		case apperr.IsNotFound(err):
			slog.Warn("parent account without profile", "user_id", u.ID)
		default:
			return nil, fmt.Errorf("get parent profile: %w", err)
		}
	}

	token, expires, err := s.tokens.Issue(actor)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, ExpiresAt: expires, User: u, ParentID: actor.ParentID}, nil
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*User, error) {
	if !actor.ManagesUsers() && actor.UserID != id {
		return nil, apperr.Forbidden("no access to this user")
	}

	return s.repo.GetUser(ctx, id)
}

func (s *Service) List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]*User, error) {
	if !actor.ManagesUsers() {
		return nil, apperr.Forbidden("only admins can list users")
	}

	return s.repo.ListUsers(ctx, filter)
}

// FindByEmail resolves an account without an acting user. It backs local
// tools that run with database access.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

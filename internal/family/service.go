package family

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/identifier"
)

const registrationAttempts = 5

var phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// ValidPhone reports whether s is an accepted phone number: 9 to 15 digits
// with an optional leading "+".
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=family
type Repository interface {
	CreateParent(ctx context.Context, p *Parent) error
	GetParent(ctx context.Context, id uuid.UUID) (*Parent, error)
	GetParentByUser(ctx context.Context, userID uuid.UUID) (*Parent, error)
	ListParents(ctx context.Context, filter ParentFilter) ([]*Parent, error)
	DeleteParent(ctx context.Context, id uuid.UUID) error

	// CreateChild stores the child together with its guardian links.
	CreateChild(ctx context.Context, c *Child) error
	GetChild(ctx context.Context, id uuid.UUID) (*Child, error)
	ListChildren(ctx context.Context, filter ChildFilter) ([]*Child, error)
	DeleteChild(ctx context.Context, id uuid.UUID) error
	UpdateMedicalInfo(ctx context.Context, id uuid.UUID, info string) error
	LinkGuardian(ctx context.Context, childID uuid.UUID, parentID uuid.UUID) error
	IsGuardian(ctx context.Context, parentID uuid.UUID, childID uuid.UUID) (bool, error)

	CreateEnrollment(ctx context.Context, e *Enrollment) error
	ListEnrollments(ctx context.Context, childID uuid.UUID) ([]*Enrollment, error)
}

type Service struct {
	repo Repository
	ids  *identifier.Generator
	now  func() time.Time
}

func NewService(repo Repository, ids *identifier.Generator) *Service {
	return &Service{repo: repo, ids: ids, now: time.Now}
}

type ParentFilter struct {
	Name string
}

type ChildFilter struct {
	ParentID   *uuid.UUID
	Name       string
	ActiveOnly bool
}

type ParentParams struct {
	UserID                uuid.UUID
	FirstName             string
	LastName              string
	Phone                 string
	Address               string
	EmergencyContactName  string
	EmergencyContactPhone string
}

func (p ParentParams) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" {
		return apperr.Validation("first_name", "is required")
	}

	if strings.TrimSpace(p.LastName) == "" {
		return apperr.Validation("last_name", "is required")
	}

	if p.Phone != "" && !ValidPhone(p.Phone) {
		return apperr.Validation("phone", "must be 9 to 15 digits, optionally starting with +")
	}

	if p.EmergencyContactPhone != "" && !ValidPhone(p.EmergencyContactPhone) {
		return apperr.Validation("emergency_contact_phone", "must be 9 to 15 digits, optionally starting with +")
	}

	return nil
}

// NewParent builds a parent profile from validated params.
func NewParent(p ParentParams) *Parent {
	return &Parent{
		UserID:                p.UserID,
		FirstName:             strings.TrimSpace(p.FirstName),
		LastName:              strings.TrimSpace(p.LastName),
		Phone:                 p.Phone,
		Address:               p.Address,
		EmergencyContactName:  p.EmergencyContactName,
		EmergencyContactPhone: p.EmergencyContactPhone,
	}
}

// CreateParent adds a profile for an existing user account.
func (s *Service) CreateParent(ctx context.Context, actor auth.Actor, params ParentParams) (*Parent, error) {
	if !actor.ManagesFinance() {
		return nil, apperr.Forbidden("only staff can register parents")
	}

	if params.UserID == uuid.Nil {
		return nil, apperr.Validation("user_id", "is required")
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	p := NewParent(params)
	if err := s.repo.CreateParent(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) GetParent(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Parent, error) {
	if !actor.ManagesFinance() && (!actor.IsParent() || *actor.ParentID != id) {
		return nil, apperr.Forbidden("no access to this parent")
	}

	return s.repo.GetParent(ctx, id)
}

// ParentOf returns the profile linked to a user account.
func (s *Service) ParentOf(ctx context.Context, userID uuid.UUID) (*Parent, error) {
	return s.repo.GetParentByUser(ctx, userID)
}

func (s *Service) ListParents(ctx context.Context, actor auth.Actor, filter ParentFilter) ([]*Parent, error) {
	if !actor.ManagesFinance() {
		return nil, apperr.Forbidden("only staff can list parents")
	}

	return s.repo.ListParents(ctx, filter)
}

// DeleteParent fails with a conflict while invoices reference the parent.
func (s *Service) DeleteParent(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.ManagesUsers() {
		return apperr.Forbidden("only admins can delete parents")
	}

	return s.repo.DeleteParent(ctx, id)
}

type ChildParams struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Gender      Gender
	MedicalInfo string
	ParentIDs   []uuid.UUID
}

func (p ChildParams) validate(today time.Time) error {
	if strings.TrimSpace(p.FirstName) == "" {
		return apperr.Validation("first_name", "is required")
	}

	if strings.TrimSpace(p.LastName) == "" {
		return apperr.Validation("last_name", "is required")
	}

	if p.DateOfBirth.IsZero() {
		return apperr.Validation("date_of_birth", "is required")
	}

	if p.DateOfBirth.After(today) {
		return apperr.Validation("date_of_birth", "cannot be in the future")
	}

	if !p.Gender.Valid() {
		return apperr.Validation("gender", "must be M or F")
	}

	if len(p.ParentIDs) == 0 {
		return apperr.Validation("parents", "at least one parent is required")
	}

	return nil
}

// CreateChild registers a child under a fresh registration number.
func (s *Service) CreateChild(ctx context.Context, actor auth.Actor, params ChildParams) (*Child, error) {
	if !actor.ManagesFinance() {
		return nil, apperr.Forbidden("only staff can register children")
	}

	if err := params.validate(s.now()); err != nil {
		return nil, err
	}

	c := &Child{
		FirstName:   strings.TrimSpace(params.FirstName),
		LastName:    strings.TrimSpace(params.LastName),
		DateOfBirth: params.DateOfBirth,
		Gender:      params.Gender,
		MedicalInfo: params.MedicalInfo,
		IsActive:    true,
		ParentIDs:   params.ParentIDs,
	}

	err := s.ids.Assign(ctx, identifier.Registration, registrationAttempts, func(number string) error {
		c.RegistrationNumber = number
		return s.repo.CreateChild(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("child registered", "registration_number", c.RegistrationNumber)

	return c, nil
}

// GetChild lets parents see only the children they are guardians of.
func (s *Service) GetChild(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Child, error) {
	if err := s.authorizeChild(ctx, actor, id); err != nil {
		return nil, err
	}

	return s.repo.GetChild(ctx, id)
}

func (s *Service) authorizeChild(ctx context.Context, actor auth.Actor, childID uuid.UUID) error {
	if actor.ManagesFinance() {
		return nil
	}

	if !actor.IsParent() {
		return apperr.Forbidden("no access to this child")
	}

	ok, err := s.repo.IsGuardian(ctx, *actor.ParentID, childID)
	if err != nil {
		return fmt.Errorf("check guardian: %w", err)
	}

	if !ok {
		return apperr.Forbidden("you can only access your own children")
	}

	return nil
}

func (s *Service) ListChildren(ctx context.Context, actor auth.Actor, filter ChildFilter) ([]*Child, error) {
	switch {
	case actor.ManagesFinance():
	case actor.IsParent():
		filter.ParentID = actor.ParentID
	default:
		return nil, apperr.Forbidden("no access to children")
	}

	return s.repo.ListChildren(ctx, filter)
}

// DeleteChild fails with a conflict while invoices reference the child.
func (s *Service) DeleteChild(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.ManagesUsers() {
		return apperr.Forbidden("only admins can delete children")
	}

	return s.repo.DeleteChild(ctx, id)
}

func (s *Service) UpdateMedicalInfo(ctx context.Context, actor auth.Actor, id uuid.UUID, info string) error {
	if !actor.ManagesFinance() {
		return apperr.Forbidden("only staff can update medical information")
	}

	return s.repo.UpdateMedicalInfo(ctx, id, strings.TrimSpace(info))
}

func (s *Service) LinkGuardian(ctx context.Context, actor auth.Actor, childID, parentID uuid.UUID) error {
	if !actor.ManagesFinance() {
		return apperr.Forbidden("only staff can link guardians")
	}

	return s.repo.LinkGuardian(ctx, childID, parentID)
}

func (s *Service) IsGuardian(ctx context.Context, parentID, childID uuid.UUID) (bool, error) {
	return s.repo.IsGuardian(ctx, parentID, childID)
}

type EnrollParams struct {
	Date      time.Time
	Classroom Classroom
}

func (s *Service) Enroll(ctx context.Context, actor auth.Actor, childID uuid.UUID, params EnrollParams) (*Enrollment, error) {
	if !actor.ManagesFinance() {
		return nil, apperr.Forbidden("only staff can enroll children")
	}

	if !params.Classroom.Valid() {
		return nil, apperr.Validation("classroom", "must be toddlers, preschool or pre_k")
	}

	if params.Date.IsZero() {
		params.Date = s.now()
	}

	e := &Enrollment{
		ChildID:   childID,
		Date:      params.Date,
		Classroom: params.Classroom,
		Status:    EnrollmentActive,
	}

	if err := s.repo.CreateEnrollment(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) ListEnrollments(ctx context.Context, actor auth.Actor, childID uuid.UUID) ([]*Enrollment, error) {
	if err := s.authorizeChild(ctx, actor, childID); err != nil {
		return nil, err
	}

	return s.repo.ListEnrollments(ctx, childID)
}

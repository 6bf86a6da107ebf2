package fee

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/money"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=fee
type Repository interface {
	CreateStructure(ctx context.Context, s *Structure) error
	GetStructure(ctx context.Context, id uuid.UUID) (*Structure, error)
	ListStructures(ctx context.Context, filter ListFilter) ([]*Structure, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name          string
	Category      Category
	Amount        decimal.Decimal
	Frequency     Frequency
	AppliesTo     ClassScope
	Description   string
	EffectiveDate time.Time
	EndDate       *time.Time
}

type ListFilter struct {
	ActiveOnly bool
	Category   *Category
}

func (p CreateParams) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validation("name", "is required")
	}

	if !p.Category.Valid() {
		return apperr.Validation("category", "is not a known fee category")
	}

	if !p.Frequency.Valid() {
		return apperr.Validation("frequency", "is not a known frequency")
	}

	if !p.AppliesTo.Valid() {
		return apperr.Validation("applies_to_class", "is not a known class")
	}

	if err := money.Validate("amount", p.Amount); err != nil {
		return err
	}

	if p.EffectiveDate.IsZero() {
		return apperr.Validation("effective_date", "is required")
	}

	if p.EndDate != nil && p.EndDate.Before(p.EffectiveDate) {
		return apperr.Validation("end_date", "must not be before effective_date")
	}

	return nil
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, params CreateParams) (*Structure, error) {
	if !actor.ManagesFinance() {
		return nil, apperr.Forbidden("only staff can manage fee structures")
	}

	if params.AppliesTo == "" {
		params.AppliesTo = ScopeAll
	}

	if err := params.validate(); err != nil {
		return nil, err
	}

	st := &Structure{
		Name:          strings.TrimSpace(params.Name),
		Category:      params.Category,
		Amount:        params.Amount,
		Frequency:     params.Frequency,
		AppliesTo:     params.AppliesTo,
		Description:   params.Description,
		IsActive:      true,
		EffectiveDate: params.EffectiveDate,
		EndDate:       params.EndDate,
	}
	if err := s.repo.CreateStructure(ctx, st); err != nil {
		return nil, err
	}

	return st, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Structure, error) {
	return s.repo.GetStructure(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Structure, error) {
	return s.repo.ListStructures(ctx, filter)
}

func (s *Service) Deactivate(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.ManagesFinance() {
		return apperr.Forbidden("only staff can manage fee structures")
	}

	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return fmt.Errorf("deactivating fee structure: %w", err)
	}

	return nil
}

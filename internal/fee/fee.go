package fee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryTuition      Category = "tuition"
	CategoryRegistration Category = "registration"
	CategoryMeals        Category = "meals"
	CategoryActivities   Category = "activities"
	CategorySupplies     Category = "supplies"
	CategoryLatePickup   Category = "late_pickup"
	CategoryOther        Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTuition, CategoryRegistration, CategoryMeals, CategoryActivities,
		CategorySupplies, CategoryLatePickup, CategoryOther:
		return true
	}

	return false
}

type Frequency string

const (
	FrequencyOneTime   Frequency = "one_time"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnual    Frequency = "annual"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOneTime, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnual:
		return true
	}

	return false
}

// ClassScope restricts a fee to one classroom, or "all".
type ClassScope string

const (
	ScopeAll       ClassScope = "all"
	ScopeInfants   ClassScope = "infants"
	ScopeToddlers  ClassScope = "toddlers"
	ScopePreschool ClassScope = "preschool"
	ScopePreK      ClassScope = "pre_k"
)

func (s ClassScope) Valid() bool {
	switch s {
	case ScopeAll, ScopeInfants, ScopeToddlers, ScopePreschool, ScopePreK:
		return true
	}

	return false
}

// Structure is a billable fee such as monthly tuition or a registration fee.
type Structure struct {
	ID            uuid.UUID
	Name          string
	Category      Category
	Amount        decimal.Decimal
	Frequency     Frequency
	AppliesTo     ClassScope
	Description   string
	IsActive      bool
	EffectiveDate time.Time
	EndDate       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsCurrentlyEffective reports whether the fee is active and today falls
// within its effective window.
func (s *Structure) IsCurrentlyEffective(today time.Time) bool {
	if !s.IsActive {
		return false
	}

	if s.EffectiveDate.After(today) {
		return false
	}

	if s.EndDate != nil && s.EndDate.Before(today) {
		return false
	}

	return true
}

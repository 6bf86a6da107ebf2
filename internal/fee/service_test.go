package fee_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/fee"
)

var (
	staff  = auth.Actor{UserID: uuid.New(), Role: auth.RoleStaff}
	parent = auth.Actor{UserID: uuid.New(), Role: auth.RoleParent}
)

func validParams() fee.CreateParams {
	return fee.CreateParams{
		Name:          "Monthly Toddler Tuition",
		Category:      fee.CategoryTuition,
		Amount:        decimal.RequireFromString("450.00"),
		Frequency:     fee.FrequencyMonthly,
		EffectiveDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		actor     auth.Actor
		params    func() fee.CreateParams
		setupMock func(m *fee.MockRepository)
		wantKind  apperr.Kind
		wantErr   bool
	}

	tests := []testCase{
		{
			name:   "Success",
			actor:  staff,
			params: validParams,
			setupMock: func(m *fee.MockRepository) {
				m.EXPECT().
					CreateStructure(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, st *fee.Structure) error {
						assert.Equal(t, fee.ScopeAll, st.AppliesTo)
						assert.True(t, st.IsActive)

						st.ID = uuid.New()

						return nil
					})
			},
		},
		{
			name:     "ParentForbidden",
			actor:    parent,
			params:   validParams,
			wantErr:  true,
			wantKind: apperr.KindAuthorization,
		},
		{
			name:  "ZeroAmount",
			actor: staff,
			params: func() fee.CreateParams {
				p := validParams()
				p.Amount = decimal.Zero

				return p
			},
			wantErr:  true,
			wantKind: apperr.KindValidation,
		},
		{
			name:  "UnknownCategory",
			actor: staff,
			params: func() fee.CreateParams {
				p := validParams()
				p.Category = "parking"

				return p
			},
			wantErr:  true,
			wantKind: apperr.KindValidation,
		},
		{
			name:  "EndBeforeStart",
			actor: staff,
			params: func() fee.CreateParams {
				p := validParams()
				end := p.EffectiveDate.AddDate(0, 0, -1)
				p.EndDate = &end

				return p
			},
			wantErr:  true,
			wantKind: apperr.KindValidation,
		},
		{
			name:   "RepoError",
			actor:  staff,
			params: validParams,
			setupMock: func(m *fee.MockRepository) {
				m.EXPECT().
					CreateStructure(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := fee.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := fee.NewService(repo)
			got, err := svc.Create(context.Background(), tt.actor, tt.params())

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))

				return
			}

			assert.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_Deactivate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	repo := fee.NewMockRepository(ctrl)
	repo.EXPECT().SetActive(gomock.Any(), id, false).Return(nil)

	svc := fee.NewService(repo)
	assert.NoError(t, svc.Deactivate(context.Background(), staff, id))
	assert.True(t, apperr.IsForbidden(svc.Deactivate(context.Background(), parent, id)))
}

func TestStructure_IsCurrentlyEffective(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	past := today.AddDate(0, -1, 0)
	future := today.AddDate(0, 1, 0)

	type testCase struct {
		name string
		st   fee.Structure
		want bool
	}

	tests := []testCase{
		{name: "OpenEnded", st: fee.Structure{IsActive: true, EffectiveDate: past}, want: true},
		{name: "StartsToday", st: fee.Structure{IsActive: true, EffectiveDate: today}, want: true},
		{name: "Inactive", st: fee.Structure{IsActive: false, EffectiveDate: past}},
		{name: "NotYetEffective", st: fee.Structure{IsActive: true, EffectiveDate: future}},
		{name: "Expired", st: fee.Structure{IsActive: true, EffectiveDate: past, EndDate: &past}},
		{name: "EndsLater", st: fee.Structure{IsActive: true, EffectiveDate: past, EndDate: &future}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.st.IsCurrentlyEffective(today))
		})
	}
}

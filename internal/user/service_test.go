package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/family"
	"github.com/MrJamesThe3rd/daycare/internal/user"
)

const secret = "0123456789abcdef0123456789abcdef"

var admin = auth.Actor{UserID: uuid.New(), Role: auth.RoleAdmin}

func newService(t *testing.T) (*user.Service, *user.MockRepository, *user.MockParentLookup, *auth.Tokens) {
	ctrl := gomock.NewController(t)
	repo := user.NewMockRepository(ctrl)
	parents := user.NewMockParentLookup(ctrl)
	tokens := auth.NewTokens(secret, "daycare", time.Hour)

	return user.NewService(repo, parents, tokens).WithHashCost(bcrypt.MinCost), repo, parents, tokens
}

func TestService_Create(t *testing.T) {
	valid := func() user.CreateParams {
		return user.CreateParams{
			Username:  "kmensah",
			Email:     " Kofi@Example.com ",
			Password:  "s3cret-pass",
			FirstName: "Kofi",
			LastName:  "Mensah",
			Role:      auth.RoleParent,
			Phone:     "+233201234567",
		}
	}

	type testCase struct {
		name      string
		actor     auth.Actor
		params    func() user.CreateParams
		setupMock func(m *user.MockRepository)
		wantKind  apperr.Kind
	}

	tests := []testCase{
		{
			name:   "ParentWithProfile",
			actor:  admin,
			params: valid,
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u *user.User, p *family.Parent) error {
						assert.Equal(t, "kofi@example.com", u.Email)
						assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")))
						require.NotNil(t, p)
						assert.Equal(t, "Kofi Mensah", p.FullName())
						assert.Equal(t, "+233201234567", p.Phone)

						return nil
					})
			},
		},
		{
			name:  "StaffWithoutProfile",
			actor: admin,
			params: func() user.CreateParams {
				p := valid()
				p.Role = auth.RoleStaff

				return p
			},
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any(), gomock.Nil()).
					Return(nil)
			},
		},
		{
			name:     "StaffCannotCreate",
			actor:    auth.Actor{UserID: uuid.New(), Role: auth.RoleStaff},
			params:   valid,
			wantKind: apperr.KindAuthorization,
		},
		{
			name:  "ShortPassword",
			actor: admin,
			params: func() user.CreateParams {
				p := valid()
				p.Password = "short"

				return p
			},
			wantKind: apperr.KindValidation,
		},
		{
			name:  "BadEmail",
			actor: admin,
			params: func() user.CreateParams {
				p := valid()
				p.Email = "not-an-email"

				return p
			},
			wantKind: apperr.KindValidation,
		},
		{
			name:   "DuplicateEmail",
			actor:  admin,
			params: valid,
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(apperr.Conflict("a user with this username or email already exists", nil))
			},
			wantKind: apperr.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, _ := newService(t)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := svc.Create(context.Background(), tt.actor, tt.params())

			if tt.wantKind != 0 {
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}

			require.NoError(t, err)
			assert.True(t, got.IsActive)
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	parentUser := &user.User{ID: uuid.New(), Email: "kofi@example.com", Role: auth.RoleParent, IsActive: true, PasswordHash: string(hash)}
	profile := &family.Parent{ID: uuid.New()}

	t.Run("ParentToken", func(t *testing.T) {
		svc, repo, parents, tokens := newService(t)
		repo.EXPECT().GetUserByEmail(gomock.Any(), "kofi@example.com").Return(parentUser, nil)
		parents.EXPECT().ParentOf(gomock.Any(), parentUser.ID).Return(profile, nil)

		sess, err := svc.Authenticate(context.Background(), "KOFI@example.com", "s3cret-pass")
		require.NoError(t, err)

		actor, err := tokens.Parse(sess.Token)
		require.NoError(t, err)
		assert.Equal(t, parentUser.ID, actor.UserID)
		assert.Equal(t, auth.RoleParent, actor.Role)
		assert.Equal(t, profile.ID, *actor.ParentID)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		svc, repo, _, _ := newService(t)
		repo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(parentUser, nil)

		_, err := svc.Authenticate(context.Background(), "kofi@example.com", "guess")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		svc, repo, _, _ := newService(t)
		repo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(nil, apperr.NotFound("user"))

		_, err := svc.Authenticate(context.Background(), "nobody@example.com", "s3cret-pass")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("Inactive", func(t *testing.T) {
		svc, repo, _, _ := newService(t)
		inactive := *parentUser
		inactive.IsActive = false
		repo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(&inactive, nil)

		_, err := svc.Authenticate(context.Background(), "kofi@example.com", "s3cret-pass")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("ParentWithoutProfile", func(t *testing.T) {
		svc, repo, parents, tokens := newService(t)
		repo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(parentUser, nil)
		parents.EXPECT().ParentOf(gomock.Any(), parentUser.ID).Return(nil, apperr.NotFound("parent"))

		sess, err := svc.Authenticate(context.Background(), "kofi@example.com", "s3cret-pass")
		require.NoError(t, err)

		actor, err := tokens.Parse(sess.Token)
		require.NoError(t, err)
		assert.Nil(t, actor.ParentID)
		assert.False(t, actor.IsParent())
	})

	t.Run("LookupFails", func(t *testing.T) {
		svc, repo, _, _ := newService(t)
		repo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		_, err := svc.Authenticate(context.Background(), "kofi@example.com", "s3cret-pass")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, user.ErrInvalidCredentials)
	})
}

func TestService_Get(t *testing.T) {
	svc, repo, _, _ := newService(t)
	self := auth.Actor{UserID: uuid.New(), Role: auth.RoleStaff}

	repo.EXPECT().GetUser(gomock.Any(), self.UserID).Return(&user.User{ID: self.UserID}, nil)

	_, err := svc.Get(context.Background(), self, self.UserID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), self, uuid.New())
	assert.True(t, apperr.IsForbidden(err))
}

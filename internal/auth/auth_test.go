package auth

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleStaff, RoleParent} {
		got, err := ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err := ParseRole("Admin")
	assert.Error(t, err)

	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestRole_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Role Role `json:"role"`
	}{RoleStaff})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"staff"}`, string(b))

	var out struct {
		Role Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"parent"}`), &out))
	assert.Equal(t, RoleParent, out.Role)

	assert.Error(t, json.Unmarshal([]byte(`{"role":"owner"}`), &out))
}

func TestActor_Capabilities(t *testing.T) {
	parentID := uuid.New()

	type testCase struct {
		name     string
		actor    Actor
		finance  bool
		users    bool
		isParent bool
	}

	tests := []testCase{
		{name: "Admin", actor: Actor{Role: RoleAdmin}, finance: true, users: true},
		{name: "Staff", actor: Actor{Role: RoleStaff}, finance: true},
		{name: "Parent", actor: Actor{Role: RoleParent, ParentID: &parentID}, isParent: true},
		{name: "ParentWithoutProfile", actor: Actor{Role: RoleParent}},
		{name: "Zero", actor: Actor{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.finance, tt.actor.ManagesFinance())
			assert.Equal(t, tt.users, tt.actor.ManagesUsers())
			assert.Equal(t, tt.isParent, tt.actor.IsParent())
		})
	}
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("0123456789abcdef", "daycare", time.Hour)
	parentID := uuid.New()
	actor := Actor{UserID: uuid.New(), Role: RoleParent, ParentID: &parentID}

	raw, expires, err := tokens.Issue(actor)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	got, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, actor.UserID, got.UserID)
	assert.Equal(t, RoleParent, got.Role)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, parentID, *got.ParentID)
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens("0123456789abcdef", "daycare", time.Hour)
	raw, _, err := tokens.Issue(Actor{UserID: uuid.New(), Role: RoleStaff})
	require.NoError(t, err)

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokens("fedcba9876543210", "daycare", time.Hour)
		_, err := other.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		other := NewTokens("0123456789abcdef", "someone-else", time.Hour)
		_, err := other.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		later := NewTokens("0123456789abcdef", "daycare", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tokens.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

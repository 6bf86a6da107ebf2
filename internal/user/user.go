// Package user manages login accounts. Parent accounts carry a linked
// parent profile created together with the account.
package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daycare/internal/auth"
)

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	FirstName    string
	LastName     string
	Role         auth.Role
	Phone        string
	IsActive     bool
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
	ParentID  *uuid.UUID
}

package auth

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the closed set of actor kinds.
type Role uint8

const (
	RoleAdmin Role = iota + 1
	RoleStaff
	RoleParent
)

func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "staff":
		return RoleStaff, nil
	case "parent":
		return RoleParent, nil
	}

	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleStaff:
		return "staff"
	case RoleParent:
		return "parent"
	}

	return fmt.Sprintf("Role(%d)", uint8(r))
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleParent:
		return true
	}

	return false
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}

	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}

	*r = parsed

	return nil
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Role   Role
	// ParentID is the linked parent profile; only set for RoleParent.
	ParentID *uuid.UUID
}

// ManagesFinance reports whether the actor may issue invoices and record
// payments for any family.
func (a Actor) ManagesFinance() bool {
	switch a.Role {
	case RoleAdmin, RoleStaff:
		return true
	case RoleParent:
		return false
	}

	return false
}

// ManagesUsers reports whether the actor may create accounts.
func (a Actor) ManagesUsers() bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleStaff, RoleParent:
		return false
	}

	return false
}

// IsParent reports whether the actor is a parent with a linked profile.
func (a Actor) IsParent() bool {
	return a.Role == RoleParent && a.ParentID != nil
}

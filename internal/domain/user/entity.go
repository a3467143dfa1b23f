package user

import (
	"fmt"
	"time"
)

// Role is the permission tier attached to a user. Only the values below exist;
// ParseRole rejects anything else stored in the roles table.
type Role int

const (
	RoleAdmin Role = 1 // Administrator - manages every record
	RoleStaff Role = 2 // Regular staff - sees and reports own records
)

// ParseRole converts a role id as stored in users.role_id.
func ParseRole(id int) (Role, error) {
	switch Role(id) {
	case RoleAdmin, RoleStaff:
		return Role(id), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidRole, id)
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleStaff:
		return "staff"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash *string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin checks if user is an administrator
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsStaff checks if user is regular staff
func (u *User) IsStaff() bool {
	return u != nil && u.Role == RoleStaff
}

package domain

import "fmt"

// Role is the closed set of account roles.
type Role string

const (
	RoleUser   Role = "user"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
	RoleFraud  Role = "fraud"
)

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", s)}
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleVendor, RoleAdmin, RoleFraud:
		return true
	}
	return false
}

// CanTransitionTo reports whether an admin may move an account from r to next.
// fraud is terminal; admin accounts are immutable.
func (r Role) CanTransitionTo(next Role) bool {
	switch r {
	case RoleUser:
		return next == RoleVendor || next == RoleAdmin
	case RoleVendor:
		return next == RoleAdmin || next == RoleFraud
	case RoleAdmin:
		return false
	case RoleFraud:
		return false
	}
	return false
}

// CanSell reports whether the role may list tickets and decide bookings.
func (r Role) CanSell() bool {
	switch r {
	case RoleVendor:
		return true
	case RoleUser, RoleAdmin, RoleFraud:
		return false
	}
	return false
}

// CanBook reports whether the role may place bookings.
func (r Role) CanBook() bool {
	switch r {
	case RoleUser:
		return true
	case RoleVendor, RoleAdmin, RoleFraud:
		return false
	}
	return false
}

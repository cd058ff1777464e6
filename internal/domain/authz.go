package domain

import "strings"

// CanPromote reports whether actor may change target's role to newRole.
// Banned accounts are immutable; un-banning is not supported.
func CanPromote(actor, target User, newRole Role) error {
	if actor.ID == target.ID {
		return ForbiddenError{Reason: "cannot change own role"}
	}
	if target.Role == RoleFraud {
		return ForbiddenError{Reason: "account is banned"}
	}
	if actor.Role != RoleAdmin {
		return ForbiddenError{Reason: "admin privileges required"}
	}

	switch newRole {
	case RoleVendor, RoleAdmin:
		if !target.Role.CanTransitionTo(newRole) {
			return InvalidStateError{Entity: "user", Op: "promote to " + string(newRole), State: string(target.Role)}
		}
		return nil
	case RoleUser, RoleFraud:
		return ValidationError{Field: "role", Reason: "promotion target must be vendor or admin"}
	}
	return ValidationError{Field: "role", Reason: "unknown role"}
}

// CanMarkFraud reports whether actor may ban target. Only vendors can be
// marked as fraud.
func CanMarkFraud(actor, target User) error {
	if actor.ID == target.ID {
		return ForbiddenError{Reason: "cannot act on own account"}
	}
	if actor.Role != RoleAdmin {
		return ForbiddenError{Reason: "admin privileges required"}
	}

	switch target.Role {
	case RoleVendor:
		return nil
	case RoleUser, RoleAdmin, RoleFraud:
	}
	return InvalidStateError{Entity: "user", Op: "mark fraud", State: string(target.Role), Reason: "only vendors can be marked as fraud"}
}

// CanSeeActionButtons is false for the actor's own row and for admins.
func CanSeeActionButtons(actor, target User) bool {
	if actor.ID == target.ID {
		return false
	}
	switch target.Role {
	case RoleAdmin:
		return false
	case RoleUser, RoleVendor, RoleFraud:
		return true
	}
	return false
}

// CheckSelf rejects requests for another account's data. Accounts are
// addressed by email in URLs.
func CheckSelf(actor User, email string) error {
	if !strings.EqualFold(actor.Email, strings.TrimSpace(email)) {
		return ForbiddenError{Reason: "cannot access another account's data"}
	}
	return nil
}

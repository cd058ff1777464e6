package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func userWithRole(r Role) User {
	return User{ID: uuid.New(), Email: string(r) + "@example.com", Role: r}
}

func TestCanPromote(t *testing.T) {
	admin := userWithRole(RoleAdmin)

	tests := []struct {
		name    string
		actor   User
		target  User
		newRole Role
		allowed bool
	}{
		{"user to vendor", admin, userWithRole(RoleUser), RoleVendor, true},
		{"user to admin", admin, userWithRole(RoleUser), RoleAdmin, true},
		{"vendor to admin", admin, userWithRole(RoleVendor), RoleAdmin, true},
		{"vendor to vendor", admin, userWithRole(RoleVendor), RoleVendor, false},
		{"admin to admin", admin, userWithRole(RoleAdmin), RoleAdmin, false},
		{"fraud to vendor", admin, userWithRole(RoleFraud), RoleVendor, false},
		{"fraud to admin", admin, userWithRole(RoleFraud), RoleAdmin, false},
		{"demote to user", admin, userWithRole(RoleVendor), RoleUser, false},
		{"promote to fraud", admin, userWithRole(RoleVendor), RoleFraud, false},
		{"vendor actor", userWithRole(RoleVendor), userWithRole(RoleUser), RoleVendor, false},
		{"user actor", userWithRole(RoleUser), userWithRole(RoleUser), RoleAdmin, false},
		{"self", admin, admin, RoleVendor, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanPromote(tt.actor, tt.target, tt.newRole)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCanPromote_SelfRejectedRegardlessOfRole(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleVendor, RoleAdmin, RoleFraud} {
		u := userWithRole(r)
		for _, target := range []Role{RoleVendor, RoleAdmin} {
			assert.ErrorIs(t, CanPromote(u, u, target), ErrForbidden, "role %s", r)
		}
		assert.ErrorIs(t, CanMarkFraud(u, u), ErrForbidden, "role %s", r)
	}
}

func TestCanMarkFraud(t *testing.T) {
	admin := userWithRole(RoleAdmin)

	assert.NoError(t, CanMarkFraud(admin, userWithRole(RoleVendor)))

	var ise InvalidStateError
	assert.ErrorAs(t, CanMarkFraud(admin, userWithRole(RoleUser)), &ise)
	assert.ErrorAs(t, CanMarkFraud(admin, userWithRole(RoleAdmin)), &ise)
	assert.ErrorAs(t, CanMarkFraud(admin, userWithRole(RoleFraud)), &ise)

	assert.ErrorIs(t, CanMarkFraud(userWithRole(RoleVendor), userWithRole(RoleVendor)), ErrForbidden)
}

func TestCanSeeActionButtons(t *testing.T) {
	admin := userWithRole(RoleAdmin)

	assert.False(t, CanSeeActionButtons(admin, admin))
	assert.False(t, CanSeeActionButtons(admin, userWithRole(RoleAdmin)))
	assert.True(t, CanSeeActionButtons(admin, userWithRole(RoleUser)))
	assert.True(t, CanSeeActionButtons(admin, userWithRole(RoleVendor)))
	assert.True(t, CanSeeActionButtons(admin, userWithRole(RoleFraud)))
}

func TestUserActions(t *testing.T) {
	admin := userWithRole(RoleAdmin)

	assert.Equal(t, []UserAction{UserActionMakeVendor, UserActionMakeAdmin}, UserActions(admin, userWithRole(RoleUser)))
	assert.Equal(t, []UserAction{UserActionMakeAdmin, UserActionMarkFraud}, UserActions(admin, userWithRole(RoleVendor)))
	assert.Empty(t, UserActions(admin, userWithRole(RoleFraud)))
	assert.Empty(t, UserActions(admin, userWithRole(RoleAdmin)))
	assert.Empty(t, UserActions(admin, admin))
}

func TestRole(t *testing.T) {
	r, err := ParseRole("vendor")
	assert.NoError(t, err)
	assert.Equal(t, RoleVendor, r)

	_, err = ParseRole("superuser")
	var ve ValidationError
	assert.ErrorAs(t, err, &ve)

	assert.False(t, RoleFraud.CanTransitionTo(RoleUser))
	assert.False(t, RoleFraud.CanSell())
	assert.True(t, RoleVendor.CanTransitionTo(RoleFraud))
	assert.False(t, RoleUser.CanTransitionTo(RoleFraud))
}

func TestCheckSelf(t *testing.T) {
	u := User{Email: "ana@example.com"}

	assert.NoError(t, CheckSelf(u, "Ana@Example.com"))
	assert.ErrorIs(t, CheckSelf(u, "bob@example.com"), ErrForbidden)
}

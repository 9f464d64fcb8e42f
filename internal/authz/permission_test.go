package authz_test

import (
	"testing"

	"kejani/internal/authz"
	"kejani/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(role domain.Role, managed ...uint) *authz.Identity {
	return &authz.Identity{UserID: 1, Role: role, ManagedPropertyIDs: managed}
}

func TestCheckActionTable(t *testing.T) {
	cases := []struct {
		role    domain.Role
		action  authz.Action
		allowed bool
	}{
		{domain.RoleLandlord, authz.ActionCreateProperty, true},
		{domain.RoleCaretaker, authz.ActionCreateProperty, false},
		{domain.RoleTenant, authz.ActionCreateProperty, false},
		{domain.RoleLandlord, authz.ActionCreateUnit, true},
		{domain.RoleCaretaker, authz.ActionCreateUnit, true},
		{domain.RoleTenant, authz.ActionCreateUnit, false},
		{domain.RoleLandlord, authz.ActionAssignTenant, true},
		{domain.RoleCaretaker, authz.ActionAssignTenant, true},
		{domain.RoleTenant, authz.ActionAssignTenant, false},
		{domain.RoleLandlord, authz.ActionRecordPayment, true},
		{domain.RoleCaretaker, authz.ActionRecordPayment, true},
		{domain.RoleTenant, authz.ActionRecordPayment, false},
		{domain.RoleLandlord, authz.ActionCreateNotice, true},
		{domain.RoleCaretaker, authz.ActionCreateNotice, true},
		{domain.RoleTenant, authz.ActionCreateNotice, false},
		{domain.RoleLandlord, authz.ActionManageCaretakers, true},
		{domain.RoleCaretaker, authz.ActionManageCaretakers, false},
		{domain.RoleTenant, authz.ActionViewOwnPayments, true},
		{domain.RoleLandlord, authz.ActionViewOwnPayments, false},
		{domain.RoleTenant, authz.ActionMarkNoticeRead, true},
		{domain.RoleLandlord, authz.ActionMarkNoticeRead, false},
		{domain.RoleTenant, authz.ActionViewFeed, true},
		{domain.RoleCaretaker, authz.ActionViewFeed, false},
	}
	for _, c := range cases {
		d := authz.Check(identity(c.role), c.action)
		if c.allowed {
			assert.Nil(t, d, "%s doing %s", c.role, c.action)
		} else {
			require.NotNil(t, d, "%s doing %s", c.role, c.action)
			assert.Equal(t, authz.DenyRoleNotPermitted, d.Reason)
		}
	}
}

func TestCheckPropertyInScope(t *testing.T) {
	id := identity(domain.RoleCaretaker, 7, 9)
	assert.Nil(t, authz.CheckProperty(id, authz.ActionCreateUnit, 7))
	assert.Nil(t, authz.CheckProperty(id, authz.ActionCreateUnit, 9))
}

func TestCheckPropertyOutOfScope(t *testing.T) {
	id := identity(domain.RoleCaretaker, 7)
	d := authz.CheckProperty(id, authz.ActionCreateUnit, 8)
	require.NotNil(t, d)
	assert.Equal(t, authz.DenyOutOfScope, d.Reason)
	assert.True(t, d.ReadsAsNotFound())
}

// A role violation wins over a scope violation and is the one denial that is
// safe to reveal as forbidden rather than not-found.
func TestCheckPropertyRoleBeforeScope(t *testing.T) {
	id := identity(domain.RoleTenant)
	d := authz.CheckProperty(id, authz.ActionCreateUnit, 1)
	require.NotNil(t, d)
	assert.Equal(t, authz.DenyRoleNotPermitted, d.Reason)
	assert.False(t, d.ReadsAsNotFound())
}

func TestCheckCreateUser(t *testing.T) {
	landlord := identity(domain.RoleLandlord)
	caretaker := identity(domain.RoleCaretaker)
	tenant := identity(domain.RoleTenant)

	assert.Nil(t, authz.CheckCreateUser(landlord, domain.RoleCaretaker))
	assert.Nil(t, authz.CheckCreateUser(landlord, domain.RoleTenant))
	assert.Nil(t, authz.CheckCreateUser(caretaker, domain.RoleTenant))

	for _, id := range []*authz.Identity{landlord, caretaker, tenant} {
		d := authz.CheckCreateUser(id, domain.RoleLandlord)
		require.NotNil(t, d)
		assert.Equal(t, authz.DenyRoleNotPermitted, d.Reason)
	}

	d := authz.CheckCreateUser(caretaker, domain.RoleCaretaker)
	require.NotNil(t, d)
	assert.Equal(t, authz.DenyRoleNotPermitted, d.Reason)
}

func TestDenialError(t *testing.T) {
	d := authz.Deny(authz.DenyOutOfScope, authz.ActionCreateUnit)
	assert.Contains(t, d.Error(), "OUT_OF_SCOPE")

	got, ok := authz.AsDenial(d)
	require.True(t, ok)
	assert.Equal(t, authz.DenyOutOfScope, got.Reason)

	_, ok = authz.AsDenial(assert.AnError)
	assert.False(t, ok)
}

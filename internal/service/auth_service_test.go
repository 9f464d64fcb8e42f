package service_test

import (
	"testing"

	"kejani/internal/auth"
	"kejani/internal/authz"
	"kejani/internal/domain"
	"kejani/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerInput(username string, role domain.Role) service.RegisterInput {
	return service.RegisterInput{
		Username: username,
		Email:    username + "@new.example.com",
		Password: "secret!pass9",
		Role:     role,
	}
}

func TestRegisterHierarchy(t *testing.T) {
	e := newEnv(t)
	landlord := e.user(t, "landlord", domain.RoleLandlord)
	caretaker := e.user(t, "caretaker", domain.RoleCaretaker)
	tenant := e.user(t, "tenant", domain.RoleTenant)

	cases := []struct {
		name    string
		creator uint
		target  domain.Role
		allowed bool
	}{
		{"landlord creates caretaker", landlord.ID, domain.RoleCaretaker, true},
		{"landlord creates tenant", landlord.ID, domain.RoleTenant, true},
		{"caretaker creates tenant", caretaker.ID, domain.RoleTenant, true},
		{"caretaker creates caretaker", caretaker.ID, domain.RoleCaretaker, false},
		{"tenant creates tenant", tenant.ID, domain.RoleTenant, false},
		{"tenant creates caretaker", tenant.ID, domain.RoleCaretaker, false},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := registerInput("newuser"+string(rune('a'+i)), tc.target)
			u, err := e.auth.Register(e.identity(t, tc.creator), in)
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, string(tc.target), u.Role)
			} else {
				d, ok := authz.AsDenial(err)
				require.True(t, ok)
				assert.Equal(t, authz.DenyRoleNotPermitted, d.Reason)
			}
		})
	}
}

// No role can mint a landlord through the API.
func TestRegisterLandlordAlwaysRefused(t *testing.T) {
	e := newEnv(t)
	landlord := e.user(t, "landlord", domain.RoleLandlord)
	caretaker := e.user(t, "caretaker", domain.RoleCaretaker)
	tenant := e.user(t, "tenant", domain.RoleTenant)

	for _, creator := range []uint{landlord.ID, caretaker.ID, tenant.ID} {
		_, err := e.auth.Register(e.identity(t, creator), registerInput("upstart", domain.RoleLandlord))
		d, ok := authz.AsDenial(err)
		require.True(t, ok)
		assert.Equal(t, authz.DenyRoleNotPermitted, d.Reason)
	}
}

func TestRegisterInvalidRole(t *testing.T) {
	e := newEnv(t)
	landlord := e.user(t, "landlord", domain.RoleLandlord)

	_, err := e.auth.Register(e.identity(t, landlord.ID), registerInput("newuser", "janitor"))
	assert.ErrorIs(t, err, service.ErrInvalidRole)
}

func TestRegisterDuplicates(t *testing.T) {
	e := newEnv(t)
	landlord := e.user(t, "landlord", domain.RoleLandlord)
	id := e.identity(t, landlord.ID)

	first := registerInput("first", domain.RoleTenant)
	_, err := e.auth.Register(id, first)
	require.NoError(t, err)

	// Same email, different case and padding.
	dup := registerInput("second", domain.RoleTenant)
	dup.Email = "  First@New.Example.COM "
	_, err = e.auth.Register(id, dup)
	ce, ok := domain.AsConstraint(err)
	require.True(t, ok)
	assert.Equal(t, domain.InvariantDuplicateEmail, ce.Invariant)

	dup = registerInput("first", domain.RoleTenant)
	dup.Email = "other@new.example.com"
	_, err = e.auth.Register(id, dup)
	ce, ok = domain.AsConstraint(err)
	require.True(t, ok)
	assert.Equal(t, domain.InvariantDuplicateUsername, ce.Invariant)
}

func TestRegisterThenLogin(t *testing.T) {
	e := newEnv(t)
	landlord := e.user(t, "landlord", domain.RoleLandlord)

	created, err := e.auth.Register(e.identity(t, landlord.ID), registerInput("newtenant", domain.RoleTenant))
	require.NoError(t, err)
	assert.Equal(t, "newtenant@new.example.com", created.Email)

	u, access, refresh, err := e.auth.Login("NewTenant@new.example.com", "secret!pass9")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	claims, err := auth.ParseAccessToken(&e.cfg.JWT, access)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, string(domain.RoleTenant), claims.Role)
}

// Unknown email and wrong password fail identically.
func TestLoginInvalidCredentials(t *testing.T) {
	e := newEnv(t)
	e.user(t, "someone", domain.RoleTenant)

	_, _, _, err := e.auth.Login("someone@example.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCreds)

	_, _, _, err = e.auth.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCreds)
}

func TestRefreshToken(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "someone", domain.RoleTenant)

	_, access, refresh, err := e.auth.Login("someone@example.com", "password123")
	require.NoError(t, err)

	newAccess, newRefresh, err := e.auth.RefreshToken(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEmpty(t, newRefresh)

	claims, err := auth.ParseAccessToken(&e.cfg.JWT, newAccess)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	// An access token is not a refresh token.
	_, _, err = e.auth.RefreshToken(access)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, _, err = e.auth.RefreshToken("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "someone", domain.RoleTenant)

	err := e.auth.ChangePassword(u.ID, "wrong", "next-password1")
	assert.ErrorIs(t, err, service.ErrInvalidCreds)

	require.NoError(t, e.auth.ChangePassword(u.ID, "password123", "next-password1"))

	_, _, _, err = e.auth.Login("someone@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCreds)
	_, _, _, err = e.auth.Login("someone@example.com", "next-password1")
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "someone", domain.RoleTenant)
	other := e.user(t, "other", domain.RoleTenant)

	name := "Amina"
	phone := "+254700000001"
	got, err := e.auth.UpdateProfile(u.ID, service.ProfileUpdate{FirstName: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Amina", got.FirstName)
	assert.Equal(t, "+254700000001", got.Phone)

	taken := other.Email
	_, err = e.auth.UpdateProfile(u.ID, service.ProfileUpdate{Email: &taken})
	ce, ok := domain.AsConstraint(err)
	require.True(t, ok)
	assert.Equal(t, domain.InvariantDuplicateEmail, ce.Invariant)

	// Re-submitting your own email is fine.
	own := got.Email
	_, err = e.auth.UpdateProfile(u.ID, service.ProfileUpdate{Email: &own})
	assert.NoError(t, err)
}

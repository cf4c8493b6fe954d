package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agri-oasis/storefront/internal/domain/session"
)

func sessionFor(role session.Role) *session.Session {
	return &session.Session{
		Identity: session.Identity{ID: "1", Name: "n", Email: "e", Role: role, Status: session.StatusActive},
		Token:    "t1",
	}
}

func TestCheck_AnonymousGoesToLogin(t *testing.T) {
	for _, role := range session.Roles {
		d := Check(nil, role)
		assert.Equal(t, RedirectLogin, d.Outcome)
		assert.Equal(t, "/login", d.Location)
		assert.True(t, d.Replace)
		assert.False(t, d.Allowed())
	}
}

func TestCheck_WrongRoleGoesHome(t *testing.T) {
	d := Check(sessionFor(session.RoleBuyer), session.RoleAdmin)
	assert.Equal(t, RedirectHome, d.Outcome)
	assert.Equal(t, "/user/dashboard", d.Location)
	assert.True(t, d.Replace)

	d = Check(sessionFor(session.RoleFarmer), session.RoleAdmin)
	assert.Equal(t, "/farmer/dashboard", d.Location)

	d = Check(sessionFor(session.RoleAdmin), session.RoleFarmer)
	assert.Equal(t, "/admin/dashboard", d.Location)
}

func TestCheck_MatchingRoleRenders(t *testing.T) {
	for _, role := range session.Roles {
		d := Check(sessionFor(role), role)
		assert.True(t, d.Allowed(), role)
		assert.Empty(t, d.Location)
	}
}

func TestHomeFor_IsTotal(t *testing.T) {
	seen := map[string]bool{}
	for _, role := range session.Roles {
		home := HomeFor(role)
		assert.NotEqual(t, LoginPath, home)
		assert.False(t, seen[home], "homes must be distinct")
		seen[home] = true
	}
	assert.Equal(t, LoginPath, HomeFor("ghost"))
}

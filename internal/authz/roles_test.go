package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-admin/vantage/internal/catalog"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole("  Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseRole("owner")
	assert.Error(t, err)

	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestRoleRank(t *testing.T) {
	assert.Equal(t, 0, RoleUser.Rank())
	assert.Equal(t, 1, RoleAdmin.Rank())
	assert.Equal(t, 2, RoleSuperadmin.Rank())
	assert.Equal(t, -1, Role("ghost").Rank())
}

func TestCanAssignRole(t *testing.T) {
	assert.True(t, CanAssignRole(RoleSuperadmin, RoleAdmin))
	assert.True(t, CanAssignRole(RoleSuperadmin, RoleSuperadmin))
	assert.False(t, CanAssignRole(RoleAdmin, RoleUser))
	assert.False(t, CanAssignRole(RoleUser, RoleAdmin))
	assert.False(t, CanAssignRole(RoleSuperadmin, Role("ghost")))
}

func TestImplicitPermissions(t *testing.T) {
	cat := catalog.New(catalog.Defaults())

	superadmin := ImplicitPermissions(RoleSuperadmin, cat)
	assert.Len(t, superadmin, cat.Len())

	admin := ImplicitPermissions(RoleAdmin, cat)
	assert.Contains(t, admin, catalog.PermViewAllUsers)
	assert.NotContains(t, admin, catalog.PermManageUsers)
	assert.NotContains(t, admin, catalog.PermManagePermissions)

	user := ImplicitPermissions(RoleUser, cat)
	assert.Empty(t, user)
}

func TestUserAuthzExplicit(t *testing.T) {
	ua := NewUserAuthz(4, RoleUser, []string{"b", "a", "a"})
	assert.True(t, ua.HasExplicit("a"))
	assert.False(t, ua.HasExplicit("c"))
	assert.Equal(t, []string{"a", "b"}, ua.ExplicitList())
}

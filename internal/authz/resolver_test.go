package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vantage-admin/vantage/internal/catalog"
)

func defaultResolver() *Resolver {
	return NewResolver(catalog.New(catalog.Defaults()))
}

func TestSuperadminHoldsEveryCatalogPermission(t *testing.T) {
	r := defaultResolver()
	root := NewUserAuthz(1, RoleSuperadmin, nil)

	for _, key := range r.Catalog().Keys() {
		assert.True(t, r.IsGranted(root, key), "superadmin should hold %s", key)
	}
}

func TestUnknownKeyDeniedForEveryRole(t *testing.T) {
	r := defaultResolver()
	for _, role := range []Role{RoleUser, RoleAdmin, RoleSuperadmin} {
		ua := NewUserAuthz(1, role, nil)
		assert.False(t, r.IsGranted(ua, "made_up_permission"), "role %s", role)
	}
}

func TestAdminBaselineAndSuperadminOnlyKeys(t *testing.T) {
	r := defaultResolver()
	admin := NewUserAuthz(2, RoleAdmin, nil)

	assert.True(t, r.IsGranted(admin, catalog.PermViewAllUsers))
	assert.True(t, r.IsGranted(admin, catalog.PermManageBlogPosts))
	assert.False(t, r.IsGranted(admin, catalog.PermManageUsers))
	assert.False(t, r.IsGranted(admin, catalog.PermManageSettings))
}

func TestExplicitGrantExtendsBaseline(t *testing.T) {
	r := defaultResolver()
	user := NewUserAuthz(3, RoleUser, []string{catalog.PermViewAnalytics})

	assert.True(t, r.IsGranted(user, catalog.PermViewAnalytics))
	assert.False(t, r.IsGranted(user, catalog.PermViewAllUsers))
}

func TestEffectivePermissionsSortedAndComplete(t *testing.T) {
	r := defaultResolver()

	user := NewUserAuthz(3, RoleUser, []string{catalog.PermViewAuditLogs})
	assert.Equal(t, []string{catalog.PermViewAuditLogs}, r.EffectivePermissions(user))

	root := NewUserAuthz(1, RoleSuperadmin, nil)
	effective := r.EffectivePermissions(root)
	assert.Len(t, effective, r.Catalog().Len())
	for i := 1; i < len(effective); i++ {
		assert.Less(t, effective[i-1], effective[i])
	}
}

func TestGroupByCategory(t *testing.T) {
	r := defaultResolver()
	grouped := r.GroupByCategory([]string{
		catalog.PermViewAllUsers,
		catalog.PermManageUsers,
		catalog.PermManageBlogPosts,
		"made_up_permission",
	})

	assert.ElementsMatch(t,
		[]string{catalog.PermViewAllUsers, catalog.PermManageUsers},
		grouped[catalog.CategoryUserManagement])
	assert.Equal(t, []string{catalog.PermManageBlogPosts}, grouped[catalog.CategoryContentManagement])
	assert.Equal(t, []string{"made_up_permission"}, grouped[catalog.CategoryOther])
}

func TestPercentageGranted(t *testing.T) {
	r := defaultResolver()

	root := NewUserAuthz(1, RoleSuperadmin, nil)
	assert.Equal(t, float64(0), r.PercentageGranted(root, nil))
	assert.Equal(t, float64(1), r.PercentageGranted(root, r.Catalog().Keys()))

	user := NewUserAuthz(3, RoleUser, []string{catalog.PermViewAnalytics})
	got := r.PercentageGranted(user, []string{catalog.PermViewAnalytics, catalog.PermViewAllUsers})
	assert.InDelta(t, 0.5, got, 1e-9)
}

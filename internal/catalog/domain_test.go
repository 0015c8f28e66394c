package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryUserManagement, ParseCategory(" User_Management "))
	assert.Equal(t, CategoryOther, ParseCategory("finance"))
	assert.Equal(t, CategoryOther, ParseCategory(""))
}

func TestNewCatalogLaterDuplicateWins(t *testing.T) {
	cat := New([]PermissionDescriptor{
		{Key: "a", Label: "First", Category: CategorySettings},
		{Key: "b", Label: "B", Category: CategoryAnalytics},
		{Key: "a", Label: "Second", Category: CategoryAnalytics},
	})

	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, "Second", cat.LabelOf("a"))
	assert.Equal(t, CategoryAnalytics, cat.CategoryOf("a"))
	assert.Equal(t, []string{"a", "b"}, cat.Keys())
}

func TestCatalogLookups(t *testing.T) {
	cat := New(Defaults())

	assert.True(t, cat.Contains(PermManageUsers))
	assert.False(t, cat.Contains("made_up_permission"))

	assert.True(t, cat.RequiresSuperadmin(PermManagePermissions))
	assert.False(t, cat.RequiresSuperadmin(PermViewAllUsers))
	assert.False(t, cat.RequiresSuperadmin("made_up_permission"))

	assert.Equal(t, "Manage Users", cat.LabelOf(PermManageUsers))
	assert.Equal(t, CategoryNotifications, cat.CategoryOf(PermSendNotifications))
	assert.Equal(t, CategoryOther, cat.CategoryOf("made_up_permission"))
}

func TestNilCatalogIsSafe(t *testing.T) {
	var cat *Catalog

	assert.Equal(t, 0, cat.Len())
	assert.Nil(t, cat.Keys())
	assert.Nil(t, cat.All())
	assert.False(t, cat.Contains(PermManageUsers))
	assert.False(t, cat.RequiresSuperadmin(PermManageUsers))
	assert.Equal(t, CategoryOther, cat.CategoryOf(PermManageUsers))
	assert.Equal(t, "Manage Users", cat.LabelOf(PermManageUsers))
}

func TestFallbackLabel(t *testing.T) {
	assert.Equal(t, "View All Users", FallbackLabel("view_all_users"))
	assert.Equal(t, "Export", FallbackLabel(" export "))
	assert.Equal(t, "", FallbackLabel(""))
}

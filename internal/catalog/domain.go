package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category groups related permissions for display. It carries no
// authorization weight.
type Category string

// Known categories.
const (
	CategoryUserManagement    Category = "user_management"
	CategoryContentManagement Category = "content_management"
	CategorySettings          Category = "settings"
	CategoryRolesPermissions  Category = "roles_permissions"
	CategoryAnalytics         Category = "analytics"
	CategoryNotifications     Category = "notifications"
	// CategoryOther buckets permissions without a recognised category.
	CategoryOther Category = "other"
)

var knownCategories = map[Category]struct{}{
	CategoryUserManagement:    {},
	CategoryContentManagement: {},
	CategorySettings:          {},
	CategoryRolesPermissions:  {},
	CategoryAnalytics:         {},
	CategoryNotifications:     {},
}

// ParseCategory returns the matching category or CategoryOther.
func ParseCategory(raw string) Category {
	c := Category(strings.TrimSpace(strings.ToLower(raw)))
	if _, ok := knownCategories[c]; ok {
		return c
	}
	return CategoryOther
}

// Permission keys declared for the platform.
const (
	PermManageUsers     = "manage_users"
	PermViewAllUsers    = "view_all_users"
	PermChangeUserRoles = "change_user_roles"

	PermManagePermissions = "manage_permissions"
	PermViewRoles         = "view_roles"

	PermManageBlogPosts  = "manage_blog_posts"
	PermPublishBlogPosts = "publish_blog_posts"
	PermManageEvents     = "manage_events"

	PermManageSettings = "manage_settings"

	PermViewAnalytics = "view_analytics"
	PermViewAuditLogs = "view_audit_logs"

	PermSendNotifications  = "send_notifications"
	PermManageNotifyConfig = "manage_notification_config"
)

// PermissionDescriptor is immutable reference data describing one permission.
type PermissionDescriptor struct {
	Key                string   `json:"key"`
	Label              string   `json:"label"`
	Category           Category `json:"category"`
	RequiresSuperadmin bool     `json:"requires_superadmin"`
}

// Defaults returns the built-in permission descriptors used to seed the
// catalog table.
func Defaults() []PermissionDescriptor {
	return []PermissionDescriptor{
		{Key: PermManageUsers, Label: "Manage Users", Category: CategoryUserManagement, RequiresSuperadmin: true},
		{Key: PermViewAllUsers, Label: "View All Users", Category: CategoryUserManagement},
		{Key: PermChangeUserRoles, Label: "Change User Roles", Category: CategoryUserManagement, RequiresSuperadmin: true},
		{Key: PermManagePermissions, Label: "Manage Permissions", Category: CategoryRolesPermissions, RequiresSuperadmin: true},
		{Key: PermViewRoles, Label: "View Roles", Category: CategoryRolesPermissions},
		{Key: PermManageBlogPosts, Label: "Manage Blog Posts", Category: CategoryContentManagement},
		{Key: PermPublishBlogPosts, Label: "Publish Blog Posts", Category: CategoryContentManagement},
		{Key: PermManageEvents, Label: "Manage Events", Category: CategoryContentManagement},
		{Key: PermManageSettings, Label: "Manage Settings", Category: CategorySettings, RequiresSuperadmin: true},
		{Key: PermViewAnalytics, Label: "View Analytics", Category: CategoryAnalytics},
		{Key: PermViewAuditLogs, Label: "View Audit Logs", Category: CategoryAnalytics},
		{Key: PermSendNotifications, Label: "Send Notifications", Category: CategoryNotifications},
		{Key: PermManageNotifyConfig, Label: "Manage Notification Config", Category: CategoryNotifications, RequiresSuperadmin: true},
	}
}

// Catalog is the in-memory permission catalog for one session. An empty
// catalog is valid.
type Catalog struct {
	byKey   map[string]PermissionDescriptor
	ordered []PermissionDescriptor
}

// New builds a Catalog from descriptors. Later duplicates of a key win.
func New(descriptors []PermissionDescriptor) *Catalog {
	c := &Catalog{byKey: make(map[string]PermissionDescriptor, len(descriptors))}
	for _, d := range descriptors {
		d.Category = ParseCategory(string(d.Category))
		if _, seen := c.byKey[d.Key]; !seen {
			c.ordered = append(c.ordered, d)
		} else {
			for i := range c.ordered {
				if c.ordered[i].Key == d.Key {
					c.ordered[i] = d
					break
				}
			}
		}
		c.byKey[d.Key] = d
	}
	return c
}

// All returns every known permission descriptor.
func (c *Catalog) All() []PermissionDescriptor {
	if c == nil {
		return nil
	}
	out := make([]PermissionDescriptor, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Keys returns every known permission key.
func (c *Catalog) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.ordered))
	for _, d := range c.ordered {
		keys = append(keys, d.Key)
	}
	return keys
}

// Len reports the number of catalogued permissions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ordered)
}

// Contains reports whether the key exists in the catalog.
func (c *Catalog) Contains(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c.byKey[key]
	return ok
}

// LabelOf returns the human label for a key. Unknown keys fall back to
// title-casing the underscore-separated words so the UI never shows a raw key.
func (c *Catalog) LabelOf(key string) string {
	if c != nil {
		if d, ok := c.byKey[key]; ok && d.Label != "" {
			return d.Label
		}
	}
	return FallbackLabel(key)
}

// CategoryOf returns the owning category, or CategoryOther for unknown keys.
func (c *Catalog) CategoryOf(key string) Category {
	if c != nil {
		if d, ok := c.byKey[key]; ok {
			return d.Category
		}
	}
	return CategoryOther
}

// RequiresSuperadmin reports whether the key is restricted to superadmins.
// Unknown keys report false; the resolver still fails closed on grants.
func (c *Catalog) RequiresSuperadmin(key string) bool {
	if c == nil {
		return false
	}
	return c.byKey[key].RequiresSuperadmin
}

var titleCaser = cases.Title(language.English)

// FallbackLabel derives a display label from a permission key,
// e.g. "view_all_users" becomes "View All Users".
func FallbackLabel(key string) string {
	return titleCaser.String(strings.ReplaceAll(strings.TrimSpace(key), "_", " "))
}

package authz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vantage-admin/vantage/internal/catalog"
)

// Role is the coarse privilege tier of a user account.
type Role string

// Roles ordered by privilege: superadmin > admin > user.
const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.TrimSpace(strings.ToLower(raw)))
	if !r.Valid() {
		return "", fmt.Errorf("authz: unknown role %q", raw)
	}
	return r, nil
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// Rank orders roles for promotion/demotion audit text. It is never used for
// permission decisions directly.
func (r Role) Rank() int {
	switch r {
	case RoleUser:
		return 0
	case RoleAdmin:
		return 1
	case RoleSuperadmin:
		return 2
	}
	return -1
}

// CanAssignRole reports whether the actor may assign the target role.
// Role changes are a superadmin-only operation.
func CanAssignRole(actor, target Role) bool {
	return actor == RoleSuperadmin && target.Valid()
}

// adminBaseline is the curated implicit permission set for admins. Superadmin
// baselines are computed from the catalog so new permissions apply
// automatically; users start empty.
var adminBaseline = []string{
	catalog.PermViewAllUsers,
	catalog.PermViewRoles,
	catalog.PermManageBlogPosts,
	catalog.PermPublishBlogPosts,
	catalog.PermManageEvents,
	catalog.PermViewAnalytics,
	catalog.PermSendNotifications,
}

// AdminBaseline returns the admin role's implicit permission keys.
func AdminBaseline() []string {
	out := make([]string, len(adminBaseline))
	copy(out, adminBaseline)
	return out
}

// ImplicitPermissions returns the permission set a role carries before any
// explicit grant.
func ImplicitPermissions(role Role, cat *catalog.Catalog) map[string]struct{} {
	switch role {
	case RoleSuperadmin:
		keys := cat.Keys()
		set := make(map[string]struct{}, len(keys))
		for _, k := range keys {
			set[k] = struct{}{}
		}
		return set
	case RoleAdmin:
		set := make(map[string]struct{}, len(adminBaseline))
		for _, k := range adminBaseline {
			set[k] = struct{}{}
		}
		return set
	}
	return map[string]struct{}{}
}

// UserAuthz is the authorization view of one user: a role plus permissions
// explicitly granted beyond the role's baseline.
type UserAuthz struct {
	UserID   int64
	Role     Role
	explicit map[string]struct{}
}

// NewUserAuthz builds a UserAuthz from an explicit permission list.
func NewUserAuthz(userID int64, role Role, explicit []string) UserAuthz {
	set := make(map[string]struct{}, len(explicit))
	for _, k := range explicit {
		set[k] = struct{}{}
	}
	return UserAuthz{UserID: userID, Role: role, explicit: set}
}

// HasExplicit reports whether the permission was explicitly granted.
func (u UserAuthz) HasExplicit(key string) bool {
	_, ok := u.explicit[key]
	return ok
}

// ExplicitList returns the explicit permissions sorted for stable output.
func (u UserAuthz) ExplicitList() []string {
	out := make([]string, 0, len(u.explicit))
	for k := range u.explicit {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

package authz

import (
	"sort"

	"github.com/vantage-admin/vantage/internal/catalog"
)

// Resolver answers "does this user hold this permission" against one catalog
// snapshot. It is the single source of truth for capability checks; no other
// component re-implements the rule.
type Resolver struct {
	catalog *catalog.Catalog
}

// NewResolver constructs a Resolver over a catalog snapshot.
func NewResolver(cat *catalog.Catalog) *Resolver {
	return &Resolver{catalog: cat}
}

// Catalog exposes the underlying snapshot.
func (r *Resolver) Catalog() *catalog.Catalog {
	return r.catalog
}

// IsGranted reports whether the user effectively holds the permission.
// Keys outside the catalog are never granted, regardless of role.
func (r *Resolver) IsGranted(u UserAuthz, key string) bool {
	if !r.catalog.Contains(key) {
		return false
	}
	if u.Role == RoleSuperadmin {
		return true
	}
	if u.HasExplicit(key) {
		return true
	}
	_, ok := ImplicitPermissions(u.Role, r.catalog)[key]
	return ok
}

// EffectivePermissions returns the sorted set of catalog keys the user holds.
func (r *Resolver) EffectivePermissions(u UserAuthz) []string {
	var out []string
	for _, key := range r.catalog.Keys() {
		if r.IsGranted(u, key) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// GroupByCategory partitions permission keys by their owning category.
// Unknown keys bucket into CategoryOther.
func (r *Resolver) GroupByCategory(keys []string) map[catalog.Category][]string {
	grouped := make(map[catalog.Category][]string)
	for _, key := range keys {
		c := r.catalog.CategoryOf(key)
		grouped[c] = append(grouped[c], key)
	}
	return grouped
}

// PercentageGranted returns the fraction of the given permissions the user
// holds, in [0,1]. An empty list yields 0.
func (r *Resolver) PercentageGranted(u UserAuthz, all []string) float64 {
	if len(all) == 0 {
		return 0
	}
	granted := 0
	for _, key := range all {
		if r.IsGranted(u, key) {
			granted++
		}
	}
	return float64(granted) / float64(len(all))
}

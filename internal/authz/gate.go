package authz

import "sync"

// Denial reasons surfaced to callers for user-facing messaging.
const (
	ReasonInsufficientRole  = "insufficient_role"
	ReasonNotAuthenticated  = "not_authenticated"
	ReasonUnknownPermission = "unknown_permission"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Allow returns a positive decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a negative decision with the given reason.
func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Gate is the checkpoint consulted before any guarded action or route.
type Gate struct {
	resolver *Resolver
}

// NewGate constructs a Gate over a resolver.
func NewGate(resolver *Resolver) *Gate {
	return &Gate{resolver: resolver}
}

// Check wraps IsGranted with a denial reason. A nil user means the request
// carries no resolvable identity.
func (g *Gate) Check(u *UserAuthz, key string) Decision {
	if u == nil || !u.Role.Valid() {
		return Deny(ReasonNotAuthenticated)
	}
	if !g.resolver.Catalog().Contains(key) {
		return Deny(ReasonUnknownPermission)
	}
	if !g.resolver.IsGranted(*u, key) {
		return Deny(ReasonInsufficientRole)
	}
	return Allow()
}

// RequireRole allows users whose role ranks at or above the minimum.
func (g *Gate) RequireRole(u *UserAuthz, minimum Role) Decision {
	return CheckRole(u, minimum)
}

// CheckRole allows users whose role ranks at or above the minimum. Role
// comparison needs no catalog, so callers without a resolver use this
// directly.
func CheckRole(u *UserAuthz, minimum Role) Decision {
	if u == nil || !u.Role.Valid() {
		return Deny(ReasonNotAuthenticated)
	}
	if u.Role.Rank() < minimum.Rank() {
		return Deny(ReasonInsufficientRole)
	}
	return Allow()
}

// GuardState tracks the lifecycle of a guarded route.
type GuardState int

// Guard states. A guard starts Unresolved and settles exactly once.
const (
	GuardUnresolved GuardState = iota
	GuardDenied
	GuardAllowed
)

func (s GuardState) String() string {
	switch s {
	case GuardDenied:
		return "denied"
	case GuardAllowed:
		return "allowed"
	}
	return "unresolved"
}

// RouteGuard pins the first decision made for a route. Once settled, the
// stored decision holds until Reset (fresh fetch or session change).
type RouteGuard struct {
	mu       sync.Mutex
	state    GuardState
	decision Decision
}

// NewRouteGuard returns a guard in the Unresolved state.
func NewRouteGuard() *RouteGuard {
	return &RouteGuard{}
}

// Resolve settles the guard with the decision on first call; subsequent
// calls return the settled decision unchanged.
func (g *RouteGuard) Resolve(d Decision) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GuardUnresolved {
		return g.decision
	}
	g.decision = d
	if d.Allowed {
		g.state = GuardAllowed
	} else {
		g.state = GuardDenied
	}
	return g.decision
}

// State returns the current guard state.
func (g *RouteGuard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Reset returns the guard to Unresolved for a fresh authorization fetch.
func (g *RouteGuard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = GuardUnresolved
	g.decision = Decision{}
}

package domain

// Scope is the visibility restriction applied to a listing or search request.
// It is computed once per request from the caller's claims and threaded
// through filtering, search, and cache keys.
type Scope struct {
	role string // empty = unrestricted
}

// UnrestrictedScope admits every view (admin callers).
func UnrestrictedScope() Scope {
	return Scope{}
}

// RestrictedTo admits only views of the given role with complete profiles.
func RestrictedTo(role string) Scope {
	return Scope{role: role}
}

// ScopeFor resolves the scope for a caller. Admins see everything; a caller
// with a restricted role sees only the complementary role. Anything else is
// a terminal authorization failure.
func ScopeFor(callerRole string, isAdmin bool) (Scope, error) {
	if isAdmin || callerRole == RoleAdmin {
		return UnrestrictedScope(), nil
	}
	target, ok := ComplementaryRole(callerRole)
	if !ok {
		return Scope{}, ErrForbidden
	}
	return RestrictedTo(target), nil
}

// Restricted reports whether the scope filters by role.
func (s Scope) Restricted() bool {
	return s.role != ""
}

// Role returns the role the scope is restricted to, or empty.
func (s Scope) Role() string {
	return s.role
}

// Admits reports whether a view is visible under this scope. Restricted
// scopes require the target role and a complete profile.
func (s Scope) Admits(v UserView) bool {
	if !s.Restricted() {
		return true
	}
	if v.IsAdmin || v.Role != s.role {
		return false
	}
	return v.Profile.IsComplete()
}

// CacheKey returns the deterministic cache key fragment for this scope.
func (s Scope) CacheKey() string {
	if !s.Restricted() {
		return "all"
	}
	return "role:" + s.role
}

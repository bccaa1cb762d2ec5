package domain

// Principal is the authenticated identity resolved for a single request.
// It is built from the live account record (never from token claims alone),
// attached once by the identity resolver, and never mutated afterwards.
// A nil *Principal means the request is anonymous.
type Principal struct {
	UserID   string
	Username string
	Roles    []Role
}

// NewPrincipal builds a Principal from an account's current state.
func NewPrincipal(a *Account) *Principal {
	roles := make([]Role, len(a.Roles))
	copy(roles, a.Roles)
	return &Principal{
		UserID:   a.ID,
		Username: a.Username,
		Roles:    roles,
	}
}

// HasRole reports whether the principal carries the given role.
func (p *Principal) HasRole(r Role) bool {
	for _, role := range p.Roles {
		if role == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal carries the ADMIN role.
func (p *Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

// Owns reports whether the principal created the resource owned by ownerID.
func (p *Principal) Owns(ownerID string) bool {
	return p.UserID != "" && p.UserID == ownerID
}

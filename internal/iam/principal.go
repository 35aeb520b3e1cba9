package iam

// Principal is the authenticated actor of one request, derived from verified
// token claims. The claims are the only view of the user the authorization
// layer trusts; the store is not consulted again during the request.
type Principal struct {
	Identity Identity

	perms map[string]struct{}
}

// NewPrincipal builds a principal from verified identity claims.
func NewPrincipal(identity Identity) *Principal {
	set := make(map[string]struct{}, len(identity.Permissions))
	for _, name := range identity.Permissions {
		set[name] = struct{}{}
	}
	return &Principal{Identity: identity, perms: set}
}

// HasRights reports whether the principal's effective set contains the
// permission name.
func (p *Principal) HasRights(permission string) bool {
	if p == nil || permission == "" {
		return false
	}
	_, ok := p.perms[permission]
	return ok
}

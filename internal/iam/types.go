package iam

// Permission is a named capability. Permission names are ordinary data rows
// agreed by convention, not a closed enum.
type Permission struct {
	ID          string
	Name        string
	Description string

	// Groups holding this permission, loaded for the full projection.
	Groups []Group
}

// Group bundles users and permissions. Membership on both sides is
// set-semantics with no link attributes.
type Group struct {
	ID   string
	Name string

	Users       []User
	Permissions []Permission
}

// User is an account. PasswordHash is the only stored credential form and is
// never empty once the user exists.
type User struct {
	ID           string
	Active       bool
	Username     string
	Name         string
	PasswordHash string

	// Groups the user belongs to, each with its permissions loaded.
	Groups []Group
}

// PermissionShort is the list-view projection of a permission.
type PermissionShort struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PermissionFull embeds the short views of the groups holding the permission.
type PermissionFull struct {
	PermissionShort
	Groups []GroupShort `json:"groups"`
}

// GroupShort is the list-view projection of a group.
type GroupShort struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GroupFull embeds the short views of the group's users and permissions.
type GroupFull struct {
	GroupShort
	Users       []UserShort       `json:"users"`
	Permissions []PermissionShort `json:"permissions"`
}

// UserShort is the list-view projection of a user. It never carries the
// password hash.
type UserShort struct {
	ID       string `json:"id"`
	Active   bool   `json:"active"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// UserFull embeds the short views of the user's groups plus the resolved
// effective permission set.
type UserFull struct {
	UserShort
	Groups      []GroupShort `json:"groups"`
	Permissions []string     `json:"permissions"`
}

// Identity is the claims projection embedded in tokens. It is computed at
// issuance time and taken at face value at verification; the staleness window
// is a deliberate trade-off, reduced only on refresh.
type Identity struct {
	ID          string   `json:"id"`
	Active      bool     `json:"active"`
	Username    string   `json:"username"`
	Name        string   `json:"name"`
	Groups      []string `json:"groups"`
	Permissions []string `json:"permissions"`
}

// Short returns the permission's list projection.
func (p *Permission) Short() PermissionShort {
	return PermissionShort{ID: p.ID, Name: p.Name, Description: p.Description}
}

// Full returns the permission with its groups' short views.
func (p *Permission) Full() PermissionFull {
	groups := make([]GroupShort, 0, len(p.Groups))
	for i := range p.Groups {
		groups = append(groups, p.Groups[i].Short())
	}
	return PermissionFull{PermissionShort: p.Short(), Groups: groups}
}

// Short returns the group's list projection.
func (g *Group) Short() GroupShort {
	return GroupShort{ID: g.ID, Name: g.Name}
}

// Full returns the group with its users' and permissions' short views.
func (g *Group) Full() GroupFull {
	users := make([]UserShort, 0, len(g.Users))
	for i := range g.Users {
		users = append(users, g.Users[i].Short())
	}
	perms := make([]PermissionShort, 0, len(g.Permissions))
	for i := range g.Permissions {
		perms = append(perms, g.Permissions[i].Short())
	}
	return GroupFull{GroupShort: g.Short(), Users: users, Permissions: perms}
}

// Short returns the user's list projection.
func (u *User) Short() UserShort {
	return UserShort{ID: u.ID, Active: u.Active, Username: u.Username, Name: u.Name}
}

// Full returns the user with group short views and the effective permission set.
func (u *User) Full() UserFull {
	groups := make([]GroupShort, 0, len(u.Groups))
	for i := range u.Groups {
		groups = append(groups, u.Groups[i].Short())
	}
	return UserFull{UserShort: u.Short(), Groups: groups, Permissions: EffectivePermissions(u)}
}

// Identity builds the claims projection from the user's loaded group graph.
func (u *User) Identity() Identity {
	groups := make([]string, 0, len(u.Groups))
	for i := range u.Groups {
		groups = append(groups, u.Groups[i].Name)
	}
	return Identity{
		ID:          u.ID,
		Active:      u.Active,
		Username:    u.Username,
		Name:        u.Name,
		Groups:      groups,
		Permissions: EffectivePermissions(u),
	}
}

package iam

import "context"

// ListQuery carries the paging and search arguments of a list operation.
// Page is 1-based; values below 1 are treated as the first page.
type ListQuery struct {
	Page   int
	Search string
}

// PageInfo reports the page actually served and the total page count.
type PageInfo struct {
	Page  int
	Pages int
}

// Store bundles the per-entity collections. All writes touching an entity and
// its link rows commit as one atomic unit.
type Store interface {
	Users() UserStore
	Groups() GroupStore
	Permissions() PermissionStore
}

// UserStore persists users and their group links. Find and FindByUsername
// load the group graph deep enough to resolve effective permissions.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, q ListQuery, perPage int) ([]*User, PageInfo, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}

// GroupStore persists groups and their permission links. Update replaces the
// group's permission set wholesale. Delete removes link rows only, never the
// linked users or permissions.
type GroupStore interface {
	Create(ctx context.Context, g *Group) error
	Find(ctx context.Context, id string) (*Group, error)
	FindByNames(ctx context.Context, names []string) ([]Group, error)
	List(ctx context.Context, q ListQuery, perPage int) ([]*Group, PageInfo, error)
	Update(ctx context.Context, g *Group) error
	Delete(ctx context.Context, id string) error
}

// PermissionStore persists the permission catalog. FindByNames resolves the
// names that exist and skips the rest.
type PermissionStore interface {
	Create(ctx context.Context, p *Permission) error
	Find(ctx context.Context, id string) (*Permission, error)
	FindByNames(ctx context.Context, names []string) ([]Permission, error)
	List(ctx context.Context, q ListQuery, perPage int) ([]*Permission, PageInfo, error)
	Update(ctx context.Context, p *Permission) error
	Delete(ctx context.Context, id string) error
}

package httpapi

import (
	"context"
	"encoding/json"

	"iamgate.org/internal/iam"
	"iamgate.org/internal/ids"
)

const defaultPageSize = 10

// newGroupResource configures the generic controller for groups. Every
// operation requires the group-management permission.
func newGroupResource(store iam.Store) *Resource[*iam.Group] {
	groups := store.Groups()
	perms := store.Permissions()

	manage := OpConfig{AuthRequired: true, Permission: iam.PermGroupManage}
	return &Resource[*iam.Group]{
		Code:     "group",
		PageSize: defaultPageSize,
		Create:   manage,
		Delete:   manage,
		List:     manage,
		Get:      manage,
		Edit:     manage,

		Insert: groups.Create,
		Find:   groups.Find,
		Update: groups.Update,
		Remove: groups.Delete,
		Search: groups.List,

		PrepareCreate: func(ctx context.Context, _ *iam.Principal, body []byte) (*iam.Group, error) {
			var req struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(body, &req); err != nil {
				return nil, iam.Invalid("body", "Invalid JSON body.")
			}
			if err := iam.ValidateGroupName(req.Name); err != nil {
				return nil, err
			}
			return &iam.Group{ID: ids.New(), Name: req.Name}, nil
		},
		PrepareEdit: func(ctx context.Context, _ *iam.Principal, g *iam.Group, body []byte) error {
			var req struct {
				Name        *string   `json:"name"`
				Permissions *[]string `json:"permissions"`
			}
			if err := json.Unmarshal(body, &req); err != nil {
				return iam.Invalid("body", "Invalid JSON body.")
			}
			if req.Name != nil {
				if err := iam.ValidateGroupName(*req.Name); err != nil {
					return err
				}
				g.Name = *req.Name
			}
			if req.Permissions != nil {
				// Wholesale replacement: the new set is exactly the
				// named permissions that exist.
				resolved, err := perms.FindByNames(ctx, *req.Permissions)
				if err != nil {
					return err
				}
				g.Permissions = resolved
			}
			return nil
		},

		Short: func(g *iam.Group) any { return g.Short() },
		Full:  func(g *iam.Group) any { return g.Full() },
	}
}

// newPermissionResource configures the generic controller for permissions.
func newPermissionResource(store iam.Store) *Resource[*iam.Permission] {
	perms := store.Permissions()

	manage := OpConfig{AuthRequired: true, Permission: iam.PermPermissionManage}
	return &Resource[*iam.Permission]{
		Code:     "permission",
		PageSize: defaultPageSize,
		Create:   manage,
		Delete:   manage,
		List:     manage,
		Get:      manage,
		Edit:     manage,

		Insert: perms.Create,
		Find:   perms.Find,
		Update: perms.Update,
		Remove: perms.Delete,
		Search: perms.List,

		PrepareCreate: func(ctx context.Context, _ *iam.Principal, body []byte) (*iam.Permission, error) {
			var req struct {
				Name        string `json:"name"`
				Description string `json:"description"`
			}
			if err := json.Unmarshal(body, &req); err != nil {
				return nil, iam.Invalid("body", "Invalid JSON body.")
			}
			if err := iam.ValidatePermissionName(req.Name); err != nil {
				return nil, err
			}
			return &iam.Permission{ID: ids.New(), Name: req.Name, Description: req.Description}, nil
		},
		PrepareEdit: func(ctx context.Context, _ *iam.Principal, p *iam.Permission, body []byte) error {
			var req struct {
				Name        *string `json:"name"`
				Description *string `json:"description"`
			}
			if err := json.Unmarshal(body, &req); err != nil {
				return iam.Invalid("body", "Invalid JSON body.")
			}
			if req.Name != nil {
				if err := iam.ValidatePermissionName(*req.Name); err != nil {
					return err
				}
				p.Name = *req.Name
			}
			if req.Description != nil {
				p.Description = *req.Description
			}
			return nil
		},

		Short: func(p *iam.Permission) any { return p.Short() },
		Full:  func(p *iam.Permission) any { return p.Full() },
	}
}

// newUserResource covers only the generic listing of users; creation and the
// self-aware item operations are specialized handlers on API.
func newUserResource(store iam.Store) *Resource[*iam.User] {
	users := store.Users()
	return &Resource[*iam.User]{
		Code:     "user",
		PageSize: defaultPageSize,
		List:     OpConfig{AuthRequired: true, Permission: iam.PermUsersManage},

		Find:   users.Find,
		Search: users.List,

		Short: func(u *iam.User) any { return u.Short() },
		Full:  func(u *iam.User) any { return u.Full() },
	}
}

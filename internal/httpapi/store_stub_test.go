package httpapi

import (
	"context"

	"iamgate.org/internal/iam"
)

// stubStore wires function-field fakes for the three collections. A nil
// function falls back to an empty result, with finds reporting not found.
type stubStore struct {
	users       stubUserStore
	groups      stubGroupStore
	permissions stubPermissionStore
}

func (s *stubStore) Users() iam.UserStore             { return &s.users }
func (s *stubStore) Groups() iam.GroupStore           { return &s.groups }
func (s *stubStore) Permissions() iam.PermissionStore { return &s.permissions }

type stubUserStore struct {
	createFn         func(context.Context, *iam.User) error
	findFn           func(context.Context, string) (*iam.User, error)
	findByUsernameFn func(context.Context, string) (*iam.User, error)
	listFn           func(context.Context, iam.ListQuery, int) ([]*iam.User, iam.PageInfo, error)
	updateFn         func(context.Context, *iam.User) error
	deleteFn         func(context.Context, string) error
}

func (s *stubUserStore) Create(ctx context.Context, u *iam.User) error {
	if s.createFn != nil {
		return s.createFn(ctx, u)
	}
	return nil
}

func (s *stubUserStore) Find(ctx context.Context, id string) (*iam.User, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, iam.ErrNotFound
}

func (s *stubUserStore) FindByUsername(ctx context.Context, username string) (*iam.User, error) {
	if s.findByUsernameFn != nil {
		return s.findByUsernameFn(ctx, username)
	}
	return nil, iam.ErrNotFound
}

func (s *stubUserStore) List(ctx context.Context, q iam.ListQuery, perPage int) ([]*iam.User, iam.PageInfo, error) {
	if s.listFn != nil {
		return s.listFn(ctx, q, perPage)
	}
	return nil, iam.PageInfo{Page: q.Page, Pages: 0}, nil
}

func (s *stubUserStore) Update(ctx context.Context, u *iam.User) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, u)
	}
	return nil
}

func (s *stubUserStore) Delete(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

type stubGroupStore struct {
	createFn      func(context.Context, *iam.Group) error
	findFn        func(context.Context, string) (*iam.Group, error)
	findByNamesFn func(context.Context, []string) ([]iam.Group, error)
	listFn        func(context.Context, iam.ListQuery, int) ([]*iam.Group, iam.PageInfo, error)
	updateFn      func(context.Context, *iam.Group) error
	deleteFn      func(context.Context, string) error
}

func (s *stubGroupStore) Create(ctx context.Context, g *iam.Group) error {
	if s.createFn != nil {
		return s.createFn(ctx, g)
	}
	return nil
}

func (s *stubGroupStore) Find(ctx context.Context, id string) (*iam.Group, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, iam.ErrNotFound
}

func (s *stubGroupStore) FindByNames(ctx context.Context, names []string) ([]iam.Group, error) {
	if s.findByNamesFn != nil {
		return s.findByNamesFn(ctx, names)
	}
	return nil, nil
}

func (s *stubGroupStore) List(ctx context.Context, q iam.ListQuery, perPage int) ([]*iam.Group, iam.PageInfo, error) {
	if s.listFn != nil {
		return s.listFn(ctx, q, perPage)
	}
	return nil, iam.PageInfo{Page: q.Page, Pages: 0}, nil
}

func (s *stubGroupStore) Update(ctx context.Context, g *iam.Group) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, g)
	}
	return nil
}

func (s *stubGroupStore) Delete(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

type stubPermissionStore struct {
	createFn      func(context.Context, *iam.Permission) error
	findFn        func(context.Context, string) (*iam.Permission, error)
	findByNamesFn func(context.Context, []string) ([]iam.Permission, error)
	listFn        func(context.Context, iam.ListQuery, int) ([]*iam.Permission, iam.PageInfo, error)
	updateFn      func(context.Context, *iam.Permission) error
	deleteFn      func(context.Context, string) error
}

func (s *stubPermissionStore) Create(ctx context.Context, p *iam.Permission) error {
	if s.createFn != nil {
		return s.createFn(ctx, p)
	}
	return nil
}

func (s *stubPermissionStore) Find(ctx context.Context, id string) (*iam.Permission, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, iam.ErrNotFound
}

func (s *stubPermissionStore) FindByNames(ctx context.Context, names []string) ([]iam.Permission, error) {
	if s.findByNamesFn != nil {
		return s.findByNamesFn(ctx, names)
	}
	return nil, nil
}

func (s *stubPermissionStore) List(ctx context.Context, q iam.ListQuery, perPage int) ([]*iam.Permission, iam.PageInfo, error) {
	if s.listFn != nil {
		return s.listFn(ctx, q, perPage)
	}
	return nil, iam.PageInfo{Page: q.Page, Pages: 0}, nil
}

func (s *stubPermissionStore) Update(ctx context.Context, p *iam.Permission) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, p)
	}
	return nil
}

func (s *stubPermissionStore) Delete(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

package pg

import (
	"context"
	"database/sql"
	"errors"

	"iamgate.org/internal/iam"
)

// PermissionStore persists the permission catalog.
type PermissionStore struct {
	db *sql.DB
}

var _ iam.PermissionStore = (*PermissionStore)(nil)

func (s *PermissionStore) Create(ctx context.Context, p *iam.Permission) error {
	_, err := s.db.ExecContext(ctx, `
		insert into permissions (id, name, description)
		values ($1, $2, $3)
	`, p.ID, p.Name, p.Description)
	return mapWriteError(err)
}

func (s *PermissionStore) Find(ctx context.Context, id string) (*iam.Permission, error) {
	var p iam.Permission
	err := s.db.QueryRowContext(ctx, `
		select id, name, description from permissions where id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, iam.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		select g.id, g.name
		from groups g
		join groups_to_permissions gp on gp.group_id = g.id
		where gp.permission_id = $1
		order by g.name
	`, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var g iam.Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		p.Groups = append(p.Groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PermissionStore) FindByNames(ctx context.Context, names []string) ([]iam.Permission, error) {
	var perms []iam.Permission
	for _, name := range names {
		var p iam.Permission
		err := s.db.QueryRowContext(ctx, `
			select id, name, description from permissions where name = $1
		`, name).Scan(&p.ID, &p.Name, &p.Description)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, nil
}

func (s *PermissionStore) List(ctx context.Context, q iam.ListQuery, perPage int) ([]*iam.Permission, iam.PageInfo, error) {
	var (
		total int
		err   error
	)
	if q.Search != "" {
		err = s.db.QueryRowContext(ctx,
			`select count(*) from permissions where name ilike $1`,
			likePattern(q.Search)).Scan(&total)
	} else {
		err = s.db.QueryRowContext(ctx, `select count(*) from permissions`).Scan(&total)
	}
	if err != nil {
		return nil, iam.PageInfo{}, err
	}

	info, offset := pageWindow(total, perPage, q.Page)

	var rows *sql.Rows
	if q.Search != "" {
		rows, err = s.db.QueryContext(ctx, `
			select id, name, description
			from permissions
			where name ilike $1
			order by name
			limit $2 offset $3
		`, likePattern(q.Search), perPage, offset)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			select id, name, description
			from permissions
			order by name
			limit $1 offset $2
		`, perPage, offset)
	}
	if err != nil {
		return nil, iam.PageInfo{}, err
	}
	defer rows.Close()

	var perms []*iam.Permission
	for rows.Next() {
		var p iam.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, iam.PageInfo{}, err
		}
		perms = append(perms, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, iam.PageInfo{}, err
	}
	return perms, info, nil
}

func (s *PermissionStore) Update(ctx context.Context, p *iam.Permission) error {
	res, err := s.db.ExecContext(ctx, `
		update permissions
		set name = $2, description = $3, updated_at = now()
		where id = $1
	`, p.ID, p.Name, p.Description)
	if err != nil {
		return mapWriteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return iam.ErrNotFound
	}
	return nil
}

func (s *PermissionStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from permissions where id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return iam.ErrNotFound
	}
	return nil
}

package pg

import (
	"context"
	"database/sql"
	"errors"

	"iamgate.org/internal/iam"
)

// GroupStore persists groups and their permission links.
type GroupStore struct {
	db *sql.DB
}

var _ iam.GroupStore = (*GroupStore)(nil)

func (s *GroupStore) Create(ctx context.Context, g *iam.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		insert into groups (id, name)
		values ($1, $2)
	`, g.ID, g.Name); err != nil {
		return mapWriteError(err)
	}
	for i := range g.Permissions {
		if _, err := tx.ExecContext(ctx, `
			insert into groups_to_permissions (group_id, permission_id)
			values ($1, $2)
			on conflict do nothing
		`, g.ID, g.Permissions[i].ID); err != nil {
			return mapWriteError(err)
		}
	}
	return tx.Commit()
}

func (s *GroupStore) Find(ctx context.Context, id string) (*iam.Group, error) {
	var g iam.Group
	err := s.db.QueryRowContext(ctx, `
		select id, name from groups where id = $1
	`, id).Scan(&g.ID, &g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, iam.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	perms, err := loadGroupPermissions(ctx, s.db, g.ID)
	if err != nil {
		return nil, err
	}
	g.Permissions = perms

	users, err := loadGroupUsers(ctx, s.db, g.ID)
	if err != nil {
		return nil, err
	}
	g.Users = users
	return &g, nil
}

func (s *GroupStore) FindByNames(ctx context.Context, names []string) ([]iam.Group, error) {
	var groups []iam.Group
	for _, name := range names {
		var g iam.Group
		err := s.db.QueryRowContext(ctx, `
			select id, name from groups where name = $1
		`, name).Scan(&g.ID, &g.Name)
		if errors.Is(err, sql.ErrNoRows) {
			// Unknown names are skipped; membership is set from what exists.
			continue
		}
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (s *GroupStore) List(ctx context.Context, q iam.ListQuery, perPage int) ([]*iam.Group, iam.PageInfo, error) {
	var (
		total int
		err   error
	)
	if q.Search != "" {
		err = s.db.QueryRowContext(ctx,
			`select count(*) from groups where name ilike $1`,
			likePattern(q.Search)).Scan(&total)
	} else {
		err = s.db.QueryRowContext(ctx, `select count(*) from groups`).Scan(&total)
	}
	if err != nil {
		return nil, iam.PageInfo{}, err
	}

	info, offset := pageWindow(total, perPage, q.Page)

	var rows *sql.Rows
	if q.Search != "" {
		rows, err = s.db.QueryContext(ctx, `
			select id, name
			from groups
			where name ilike $1
			order by name
			limit $2 offset $3
		`, likePattern(q.Search), perPage, offset)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			select id, name
			from groups
			order by name
			limit $1 offset $2
		`, perPage, offset)
	}
	if err != nil {
		return nil, iam.PageInfo{}, err
	}
	defer rows.Close()

	var groups []*iam.Group
	for rows.Next() {
		var g iam.Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, iam.PageInfo{}, err
		}
		groups = append(groups, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, iam.PageInfo{}, err
	}
	return groups, info, nil
}

func (s *GroupStore) Update(ctx context.Context, g *iam.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update groups set name = $2, updated_at = now() where id = $1
	`, g.ID, g.Name)
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

	// The permission set is replaced wholesale, not additively.
	if _, err := tx.ExecContext(ctx, `delete from groups_to_permissions where group_id = $1`, g.ID); err != nil {
		return err
	}
	for i := range g.Permissions {
		if _, err := tx.ExecContext(ctx, `
			insert into groups_to_permissions (group_id, permission_id)
			values ($1, $2)
			on conflict do nothing
		`, g.ID, g.Permissions[i].ID); err != nil {
			return mapWriteError(err)
		}
	}
	return tx.Commit()
}

func (s *GroupStore) Delete(ctx context.Context, id string) error {
	// Link rows cascade via foreign keys; users and permissions survive.
	res, err := s.db.ExecContext(ctx, `delete from groups where id = $1`, id)
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

func loadGroupPermissions(ctx context.Context, db *sql.DB, groupID string) ([]iam.Permission, error) {
	rows, err := db.QueryContext(ctx, `
		select p.id, p.name, p.description
		from permissions p
		join groups_to_permissions gp on gp.permission_id = p.id
		where gp.group_id = $1
		order by p.name
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []iam.Permission
	for rows.Next() {
		var p iam.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func loadGroupUsers(ctx context.Context, db *sql.DB, groupID string) ([]iam.User, error) {
	rows, err := db.QueryContext(ctx, `
		select u.id, u.active, u.username, u.name
		from users u
		join users_to_groups ug on ug.user_id = u.id
		where ug.group_id = $1
		order by u.username
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []iam.User
	for rows.Next() {
		var u iam.User
		if err := rows.Scan(&u.ID, &u.Active, &u.Username, &u.Name); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

package pg

import (
	"context"
	"database/sql"
	"errors"

	"iamgate.org/internal/iam"
)

// UserStore persists users and their group links.
type UserStore struct {
	db *sql.DB
}

var _ iam.UserStore = (*UserStore)(nil)

func (s *UserStore) Create(ctx context.Context, u *iam.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		insert into users (id, active, username, name, password_hash)
		values ($1, $2, $3, $4, $5)
	`, u.ID, u.Active, u.Username, u.Name, u.PasswordHash); err != nil {
		return mapWriteError(err)
	}
	for i := range u.Groups {
		if _, err := tx.ExecContext(ctx, `
			insert into users_to_groups (user_id, group_id)
			values ($1, $2)
			on conflict do nothing
		`, u.ID, u.Groups[i].ID); err != nil {
			return mapWriteError(err)
		}
	}
	return tx.Commit()
}

func (s *UserStore) Find(ctx context.Context, id string) (*iam.User, error) {
	return s.findBy(ctx, `
		select id, active, username, name, password_hash
		from users
		where id = $1
	`, id)
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*iam.User, error) {
	return s.findBy(ctx, `
		select id, active, username, name, password_hash
		from users
		where username = $1
	`, username)
}

func (s *UserStore) findBy(ctx context.Context, query, arg string) (*iam.User, error) {
	var u iam.User
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Active, &u.Username, &u.Name, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, iam.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	groups, err := loadUserGroups(ctx, s.db, u.ID)
	if err != nil {
		return nil, err
	}
	u.Groups = groups
	return &u, nil
}

func (s *UserStore) List(ctx context.Context, q iam.ListQuery, perPage int) ([]*iam.User, iam.PageInfo, error) {
	var (
		total int
		err   error
	)
	if q.Search != "" {
		err = s.db.QueryRowContext(ctx,
			`select count(*) from users where username ilike $1`,
			likePattern(q.Search)).Scan(&total)
	} else {
		err = s.db.QueryRowContext(ctx, `select count(*) from users`).Scan(&total)
	}
	if err != nil {
		return nil, iam.PageInfo{}, err
	}

	info, offset := pageWindow(total, perPage, q.Page)

	var rows *sql.Rows
	if q.Search != "" {
		rows, err = s.db.QueryContext(ctx, `
			select id, active, username, name, password_hash
			from users
			where username ilike $1
			order by username
			limit $2 offset $3
		`, likePattern(q.Search), perPage, offset)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			select id, active, username, name, password_hash
			from users
			order by username
			limit $1 offset $2
		`, perPage, offset)
	}
	if err != nil {
		return nil, iam.PageInfo{}, err
	}
	defer rows.Close()

	var users []*iam.User
	for rows.Next() {
		var u iam.User
		if err := rows.Scan(&u.ID, &u.Active, &u.Username, &u.Name, &u.PasswordHash); err != nil {
			return nil, iam.PageInfo{}, err
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, iam.PageInfo{}, err
	}
	return users, info, nil
}

func (s *UserStore) Update(ctx context.Context, u *iam.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update users
		set active = $2, username = $3, name = $4, password_hash = $5, updated_at = now()
		where id = $1
	`, u.ID, u.Active, u.Username, u.Name, u.PasswordHash)
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

	// Group membership is replaced wholesale.
	if _, err := tx.ExecContext(ctx, `delete from users_to_groups where user_id = $1`, u.ID); err != nil {
		return err
	}
	for i := range u.Groups {
		if _, err := tx.ExecContext(ctx, `
			insert into users_to_groups (user_id, group_id)
			values ($1, $2)
			on conflict do nothing
		`, u.ID, u.Groups[i].ID); err != nil {
			return mapWriteError(err)
		}
	}
	return tx.Commit()
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id = $1`, id)
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

// loadUserGroups loads the user's groups with each group's permissions, deep
// enough to resolve effective permissions and identity claims.
func loadUserGroups(ctx context.Context, db *sql.DB, userID string) ([]iam.Group, error) {
	rows, err := db.QueryContext(ctx, `
		select g.id, g.name
		from groups g
		join users_to_groups ug on ug.group_id = g.id
		where ug.user_id = $1
		order by g.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []iam.Group
	for rows.Next() {
		var g iam.Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		perms, err := loadGroupPermissions(ctx, db, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Permissions = perms
	}
	return groups, nil
}

// Package pg implements the identity store on PostgreSQL via the pgx stdlib
// driver. Entity writes and their link rows commit in one transaction.
package pg

import (
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"iamgate.org/internal/iam"
)

const (
	pgErrUniqueViolation = "23505"
)

// Store holds the shared connection pool and implements iam.Store.
type Store struct {
	db *sql.DB

	users       *UserStore
	groups      *GroupStore
	permissions *PermissionStore
}

var _ iam.Store = (*Store)(nil)

// Open connects to PostgreSQL and tunes the pool.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return NewStore(db), nil
}

// NewStore wraps an existing handle (used by tests with sqlmock).
func NewStore(db *sql.DB) *Store {
	s := &Store{db: db}
	s.users = &UserStore{db: db}
	s.groups = &GroupStore{db: db}
	s.permissions = &PermissionStore{db: db}
	return s
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the handle for readiness pings.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Users() iam.UserStore             { return s.users }
func (s *Store) Groups() iam.GroupStore           { return s.groups }
func (s *Store) Permissions() iam.PermissionStore { return s.permissions }

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// mapWriteError translates driver-level failures into the domain taxonomy.
func mapWriteError(err error) error {
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
		return iam.ErrConflict
	}
	return err
}

// pageWindow normalizes a 1-based page request into page info and an offset.
// Pages past the end resolve to an empty window, never an error.
func pageWindow(total, perPage, page int) (iam.PageInfo, int) {
	if page < 1 {
		page = 1
	}
	pages := 0
	if total > 0 {
		pages = int(math.Ceil(float64(total) / float64(perPage)))
	}
	offset := (page - 1) * perPage
	return iam.PageInfo{Page: page, Pages: pages}, offset
}

// likePattern wraps a search term for ILIKE substring matching. Search is
// case-insensitive by contract.
func likePattern(search string) string {
	return "%" + search + "%"
}

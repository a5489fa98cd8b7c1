// Package sqlstore implements store.Store on database/sql. The sqlite and
// postgres drivers open the connection, pick a Dialect and supply their own
// migrations; the queries themselves are shared.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/onboard/internal/onboard/store"
)

// Dialect captures the few places the supported databases disagree.
type Dialect struct {
	Name string

	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string

	// IsUniqueViolation reports whether err is a unique/primary key violation.
	IsUniqueViolation func(err error) bool
}

// QuestionPlaceholder is the sqlite style.
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder is the postgres style.
func DollarPlaceholder(n int) string { return "$" + strconv.Itoa(n) }

// rebind rewrites ? placeholders into the dialect's style. Queries in this
// package never contain a literal '?'.
func (d Dialect) rebind(query string) string {
	if d.Placeholder == nil {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := range len(query) {
		if query[i] == '?' {
			n++
			b.WriteString(d.Placeholder(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// querier binds a connection or transaction to a dialect.
type querier struct {
	db      dbtx
	dialect Dialect
}

func (q querier) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.dialect.rebind(query), args...)
}

func (q querier) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.dialect.rebind(query), args...)
}

// mapWriteErr converts driver-specific unique violations into store.ErrAlreadyExists.
func (q querier) mapWriteErr(err error) error {
	if err != nil && q.dialect.IsUniqueViolation != nil && q.dialect.IsUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

type Store struct {
	db      *sql.DB
	dialect Dialect
	migrate func(*sql.DB) error
}

// New wraps an open database. migrate is invoked by ApplyMigrations.
func New(db *sql.DB, dialect Dialect, migrate func(*sql.DB) error) *Store {
	return &Store{db: db, dialect: dialect, migrate: migrate}
}

// DB exposes the underlying pool for driver-level tooling.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ApplyMigrations brings the schema up to date.
func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return errors.New("sqlstore: no migrations configured")
	}
	return s.migrate(s.db)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, q: querier{db: tx, dialect: s.dialect}}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) q() querier { return querier{db: s.db, dialect: s.dialect} }

func (s *Store) Users() store.Users   { return &usersRepo{q: s.q()} }
func (s *Store) Owners() store.Owners { return &ownersRepo{q: s.q()} }

var _ store.Store = (*Store)(nil)

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

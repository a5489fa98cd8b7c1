package sqlstore

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/onboard/internal/onboard/store"
)

type txStore struct {
	tx *sql.Tx
	q  querier
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller commits or rolls back; the pool stays open

// Ping is a no-op; the transaction already holds a live connection.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx is started

func (t *txStore) Users() store.Users   { return &usersRepo{q: t.q} }
func (t *txStore) Owners() store.Owners { return &ownersRepo{q: t.q} }

var _ store.Tx = (*txStore)(nil)

package sqlite

import (
	"context"
	"database/sql"

	"github.com/taskdeck/taskdeck/internal/api/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore { return &txStore{tx: tx} }

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the caller commits or rolls back and the outer DB stays
// open.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

// ApplyMigrations must run before transactions are opened.
func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Users() store.Users       { return &usersRepo{db: t.tx} }
func (t *txStore) Invites() store.Invites   { return &invitesRepo{db: t.tx} }
func (t *txStore) Projects() store.Projects { return &projectsRepo{db: t.tx} }
func (t *txStore) Tasks() store.Tasks       { return &tasksRepo{db: t.tx} }
func (t *txStore) Comments() store.Comments { return &commentsRepo{db: t.tx} }

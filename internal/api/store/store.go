package store

import (
	"context"
	"errors"
	"time"

	"github.com/taskdeck/taskdeck/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict reports a conditional write that matched no rows because
	// the record is no longer in the required state (e.g. an invite that was
	// redeemed by a concurrent request).
	ErrConflict = errors.New("store: conflicting state")
)

// Store is the root data access interface. Concrete drivers implement it.
// Sub-repositories keep concerns tidy; handlers and services depend on this
// interface, never on the driver.
type Store interface {
	Users() Users
	Invites() Invites
	Projects() Projects
	Tasks() Tasks
	Comments() Comments

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Multi-step
	// mutations that must be atomic (user creation + invite redemption) go
	// through here.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetByID(ctx context.Context, id string) (domain.User, error)

	// GetByEmail looks a user up by the (lower-cased) login key.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// Create inserts a new user. A duplicate email maps to ErrAlreadyExists.
	Create(ctx context.Context, u domain.User) error

	// Update applies the non-nil fields of patch and bumps updated_at.
	Update(ctx context.Context, id string, patch domain.UserPatch) error

	Delete(ctx context.Context, id string) error

	// List returns all users ordered by creation date (newest first).
	List(ctx context.Context) ([]domain.User, error)
}

type Invites interface {
	Create(ctx context.Context, inv domain.InviteCode) error

	GetByID(ctx context.Context, id string) (domain.InviteCode, error)

	// GetByCode looks an invite up by its redemption key.
	GetByCode(ctx context.Context, code string) (domain.InviteCode, error)

	// List returns all invites, newest first, enriched with the display
	// names of the issuing and redeeming users.
	List(ctx context.Context) ([]domain.InviteWithNames, error)

	// Redeem marks the invite consumed by userID. The write is conditional
	// on the invite still being active and unused; when a concurrent request
	// already consumed it, ErrConflict is returned and nothing is changed.
	Redeem(ctx context.Context, id, userID string, at time.Time) error

	// Deactivate clears is_active without touching used_by/used_at.
	// Idempotent: deactivating an inactive invite succeeds.
	Deactivate(ctx context.Context, id string) error

	// Delete removes an unredeemed invite. Redeemed invites are an audit
	// trail and map to ErrConflict.
	Delete(ctx context.Context, id string) error
}

type Projects interface {
	GetByID(ctx context.Context, id string) (domain.Project, error)
	Create(ctx context.Context, p domain.Project) error
	Update(ctx context.Context, id, name, description string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Project, error)
}

type Tasks interface {
	GetByID(ctx context.Context, id string) (domain.Task, error)
	Create(ctx context.Context, t domain.Task) error

	// Update applies the non-nil fields of patch and bumps updated_at.
	Update(ctx context.Context, id string, patch domain.TaskPatch) error

	Delete(ctx context.Context, id string) error

	// List returns tasks newest first, filtered by project when projectID
	// is non-empty.
	List(ctx context.Context, projectID string) ([]domain.Task, error)
}

type Comments interface {
	GetByID(ctx context.Context, id string) (domain.Comment, error)
	Create(ctx context.Context, c domain.Comment) error
	Delete(ctx context.Context, id string) error
	ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error)
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/taskdeck/taskdeck/internal/api/domain"
	"github.com/taskdeck/taskdeck/internal/api/store"
)

type invitesRepo struct {
	db dbtx
}

const inviteColumns = `id, code, role, created_by, created_at, expires_at, used_by, used_at, is_active`

func scanInvite(row interface{ Scan(...any) error }) (domain.InviteCode, error) {
	var (
		inv    domain.InviteCode
		usedBy sql.NullString
		usedAt sql.NullTime
	)
	err := row.Scan(
		&inv.ID,
		&inv.Code,
		&inv.Role,
		&inv.CreatedBy,
		&inv.CreatedAt,
		&inv.ExpiresAt,
		&usedBy,
		&usedAt,
		&inv.IsActive,
	)
	if err != nil {
		return domain.InviteCode{}, err
	}
	inv.UsedBy = mapNullString(usedBy)
	inv.UsedAt = mapNullTime(usedAt)
	return inv, nil
}

func (r *invitesRepo) Create(ctx context.Context, inv domain.InviteCode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invites (id, code, role, created_by, created_at, expires_at, used_by, used_at, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Code, inv.Role, inv.CreatedBy, inv.CreatedAt, inv.ExpiresAt,
		mapOptionalString(inv.UsedBy), mapOptionalTime(inv.UsedAt), inv.IsActive,
	)
	return mapConstraint(err)
}

func (r *invitesRepo) GetByID(ctx context.Context, id string) (domain.InviteCode, error) {
	inv, err := scanInvite(r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE id = ?`, id))
	if err != nil {
		return domain.InviteCode{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitesRepo) GetByCode(ctx context.Context, code string) (domain.InviteCode, error) {
	inv, err := scanInvite(r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE code = ?`, code))
	if err != nil {
		return domain.InviteCode{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitesRepo) List(ctx context.Context) ([]domain.InviteWithNames, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT i.id, i.code, i.role, i.created_by, i.created_at, i.expires_at, i.used_by, i.used_at, i.is_active,
		        COALESCE(c.name, ''), COALESCE(u.name, '')
		 FROM invites i
		 LEFT JOIN users c ON c.id = i.created_by
		 LEFT JOIN users u ON u.id = i.used_by
		 ORDER BY i.created_at DESC, i.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []domain.InviteWithNames
	for rows.Next() {
		var (
			inv    domain.InviteWithNames
			usedBy sql.NullString
			usedAt sql.NullTime
		)
		err := rows.Scan(
			&inv.ID, &inv.Code, &inv.Role, &inv.CreatedBy, &inv.CreatedAt, &inv.ExpiresAt,
			&usedBy, &usedAt, &inv.IsActive,
			&inv.CreatedByName, &inv.UsedByName,
		)
		if err != nil {
			return nil, err
		}
		inv.UsedBy = mapNullString(usedBy)
		inv.UsedAt = mapNullTime(usedAt)
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

// Redeem consumes the invite with a conditional update keyed on the invite
// still being active and unused. Concurrent redemption attempts against the
// same code serialize here: exactly one matches the WHERE clause, every
// other attempt sees zero rows and gets ErrConflict.
func (r *invitesRepo) Redeem(ctx context.Context, id, userID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invites
		 SET used_by = ?, used_at = ?, is_active = 0
		 WHERE id = ? AND used_by IS NULL AND is_active = 1`,
		userID, at, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); errors.Is(err, store.ErrNotFound) {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}
	return nil
}

func (r *invitesRepo) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invites SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes an unredeemed invite. The used_by IS NULL guard keeps the
// audit trail of redeemed codes intact even under races with Redeem.
func (r *invitesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM invites WHERE id = ? AND used_by IS NULL`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); errors.Is(err, store.ErrNotFound) {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}
	return nil
}

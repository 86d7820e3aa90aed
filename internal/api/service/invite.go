package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taskdeck/taskdeck/internal/api/domain"
	"github.com/taskdeck/taskdeck/internal/api/store"
	"github.com/taskdeck/taskdeck/pkg/cryptox"
	"github.com/taskdeck/taskdeck/pkg/idx"
	"github.com/taskdeck/taskdeck/pkg/slogx"
)

var (
	ErrInvalidRole    = errors.New("invalid role")
	ErrRoleNotAllowed = errors.New("not permitted to mint invites for this role")
	ErrInvalidExpiry  = errors.New("invalid invite expiry")

	// ErrCannotDeleteRedeemed keeps redeemed codes around as an audit trail
	// of who registered under which code and role.
	ErrCannotDeleteRedeemed = errors.New("redeemed invites cannot be deleted")
)

// DefaultInviteExpiryDays applies when the caller does not specify an expiry.
const DefaultInviteExpiryDays = 30

// InviteService owns the invite-code lifecycle.
type InviteService struct {
	Store store.Store
}

// Mint creates a new invite code granting role. issuerRole is the role of
// the authenticated caller: admins may mint any invite, managers may mint
// manager and developer invites, which keeps admin access mintable only by
// admins.
func (s *InviteService) Mint(
	ctx context.Context,
	issuerID string,
	issuerRole domain.Role,
	role string,
	expiresInDays int,
) (domain.InviteCode, error) {
	log := slogx.FromContext(ctx)

	target, ok := domain.ParseRole(role)
	if !ok {
		log.Warn("attempted to mint invite with invalid role", slog.String("role", role))
		return domain.InviteCode{}, ErrInvalidRole
	}

	if !issuerRole.CanInvite(target) {
		log.Warn("invite mint denied",
			slog.String("issuer_id", issuerID),
			slog.String("issuer_role", issuerRole.String()),
			slog.String("target_role", target.String()),
		)
		return domain.InviteCode{}, ErrRoleNotAllowed
	}

	if expiresInDays < 0 {
		return domain.InviteCode{}, ErrInvalidExpiry
	}

	code, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		log.Error("failed to generate invite code", slog.Any("error", err))
		return domain.InviteCode{}, err
	}

	now := time.Now().UTC()
	invite := domain.InviteCode{
		ID:        idx.New().String(),
		Code:      code,
		Role:      target,
		CreatedBy: issuerID,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(expiresInDays) * 24 * time.Hour),
		IsActive:  true,
	}

	if err := s.Store.Invites().Create(ctx, invite); err != nil {
		log.Error("failed to create invite", slog.Any("error", err))
		return domain.InviteCode{}, err
	}

	log.Info("invite minted",
		slog.String("invite_id", invite.ID),
		slog.String("role", target.String()),
		slog.String("created_by", issuerID),
		slog.Time("expires_at", invite.ExpiresAt),
	)
	return invite, nil
}

// List returns all invites enriched with creator/redeemer display names.
func (s *InviteService) List(ctx context.Context) ([]domain.InviteWithNames, error) {
	return s.Store.Invites().List(ctx)
}

// Validate reports whether a code is currently redeemable without mutating
// anything. The returned errors mirror what a registration attempt would see.
func (s *InviteService) Validate(ctx context.Context, code string) (domain.InviteCode, error) {
	invite, err := s.Store.Invites().GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.InviteCode{}, ErrInviteNotFound
		}
		return domain.InviteCode{}, err
	}

	now := time.Now().UTC()
	if invite.UsedBy != nil || !invite.IsActive {
		return domain.InviteCode{}, ErrInviteAlreadyUsed
	}
	if now.After(invite.ExpiresAt) {
		return domain.InviteCode{}, ErrInviteExpired
	}
	return invite, nil
}

// Deactivate retires an invite without recording a redemption. Idempotent;
// a redeemed invite keeps its used_by/used_at untouched.
func (s *InviteService) Deactivate(ctx context.Context, id string) (domain.InviteCode, error) {
	log := slogx.FromContext(ctx)

	if err := s.Store.Invites().Deactivate(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.InviteCode{}, ErrInviteNotFound
		}
		log.Error("failed to deactivate invite", slog.String("invite_id", id), slog.Any("error", err))
		return domain.InviteCode{}, err
	}

	invite, err := s.Store.Invites().GetByID(ctx, id)
	if err != nil {
		return domain.InviteCode{}, err
	}

	log.Info("invite deactivated", slog.String("invite_id", id))
	return invite, nil
}

// Delete removes an unredeemed invite entirely.
func (s *InviteService) Delete(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	err := s.Store.Invites().Delete(ctx, id)
	switch {
	case err == nil:
		log.Info("invite deleted", slog.String("invite_id", id))
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrInviteNotFound
	case errors.Is(err, store.ErrConflict):
		return ErrCannotDeleteRedeemed
	default:
		log.Error("failed to delete invite", slog.String("invite_id", id), slog.Any("error", err))
		return err
	}
}

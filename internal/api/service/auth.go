package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/api/domain"
	"github.com/taskdeck/taskdeck/internal/api/store"
	"github.com/taskdeck/taskdeck/pkg/cryptox"
	"github.com/taskdeck/taskdeck/pkg/idx"
	"github.com/taskdeck/taskdeck/pkg/jwtx"
	"github.com/taskdeck/taskdeck/pkg/slogx"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// Callers must not be able to tell the two apart (account enumeration).
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrInviteRequired    = errors.New("an invite code is required to register")
	ErrInviteNotFound    = errors.New("invite code not found")
	ErrInviteAlreadyUsed = errors.New("invite code is no longer active")
	ErrInviteExpired     = errors.New("invite code has expired")
	ErrEmailTaken        = errors.New("email is already registered")
)

// AuthService orchestrates login and invite-gated registration.
type AuthService struct {
	Store      store.Store
	Tokens     jwtx.Signer
	Issuer     string
	SessionTTL time.Duration
}

// RegisterInput carries the registration request. There is no role field:
// the invite is the sole source of the granted role.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	InviteCode string
	Department string
	Position   string
}

// Login checks the credentials and issues a session token. The password
// comparison is constant-time; failures collapse into a single error.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, "", ErrInvalidCredentials
		}
		log.Error("failed to look up user", slog.Any("error", err))
		return domain.User{}, "", err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Warn("login failed", slog.String("user_id", user.ID))
		return domain.User{}, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		log.Error("failed to sign session token", slog.Any("error", err))
		return domain.User{}, "", err
	}

	log.Info("user logged in", slog.String("user_id", user.ID), slog.String("role", user.Role.String()))
	return user, token, nil
}

// Register redeems an invite code into a new account and issues a session
// token. The invite's role is authoritative; a role supplied anywhere in the
// request is ignored by construction. User creation and invite consumption
// happen in one transaction, so a lost redemption race leaves no half-created
// account behind.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	// The invite gate is the security boundary of the whole system.
	if in.InviteCode == "" {
		return domain.User{}, "", ErrInviteRequired
	}

	invite, err := s.Store.Invites().GetByCode(ctx, in.InviteCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("registration attempted with unknown invite code")
			return domain.User{}, "", ErrInviteNotFound
		}
		log.Error("failed to look up invite", slog.Any("error", err))
		return domain.User{}, "", err
	}

	// Check order matters: a used code reports AlreadyUsed even when it has
	// also expired since.
	now := time.Now().UTC()
	if invite.UsedBy != nil || !invite.IsActive {
		log.Warn("registration attempted with consumed invite", slog.String("invite_id", invite.ID))
		return domain.User{}, "", ErrInviteAlreadyUsed
	}
	if now.After(invite.ExpiresAt) {
		log.Warn("registration attempted with expired invite", slog.String("invite_id", invite.ID))
		return domain.User{}, "", ErrInviteExpired
	}

	email := NormalizeEmail(in.Email)
	if _, err := s.Store.Users().GetByEmail(ctx, email); err == nil {
		return domain.User{}, "", ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check email availability", slog.Any("error", err))
		return domain.User{}, "", err
	}

	passwordHash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, "", err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Name:         in.Name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         invite.Role,
		Department:   in.Department,
		Position:     in.Position,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		return tx.Invites().Redeem(ctx, invite.ID, user.ID, now)
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.User{}, "", ErrEmailTaken
		case errors.Is(err, store.ErrConflict):
			// Lost the redemption race; the user row was rolled back.
			log.Warn("invite consumed concurrently", slog.String("invite_id", invite.ID))
			return domain.User{}, "", ErrInviteAlreadyUsed
		case errors.Is(err, store.ErrNotFound):
			return domain.User{}, "", ErrInviteNotFound
		}
		log.Error("registration transaction failed", slog.Any("error", err))
		return domain.User{}, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		log.Error("failed to sign session token", slog.Any("error", err))
		return domain.User{}, "", err
	}

	log.Info("user registered via invite",
		slog.String("user_id", user.ID),
		slog.String("invite_id", invite.ID),
		slog.String("role", user.Role.String()),
	)
	return user, token, nil
}

func (s *AuthService) issueToken(u domain.User) (string, error) {
	claims := jwtx.NewSessionClaims(u.ID, u.Email, u.Role.String(), u.Name, s.Issuer, s.TTL(), time.Now().UTC())
	return s.Tokens.Sign(claims)
}

// TTL reports the configured session lifetime, falling back to the default.
func (s *AuthService) TTL() time.Duration {
	if s.SessionTTL <= 0 {
		return jwtx.DefaultSessionTTL
	}
	return s.SessionTTL
}

// NormalizeEmail lower-cases and trims an email so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

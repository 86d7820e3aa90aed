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

var ErrUserNotFound = errors.New("user not found")

// UserService covers admin-side user management. Registration goes through
// AuthService; this path is for admins creating or editing accounts
// directly.
type UserService struct {
	Store store.Store
}

// CreateInput is an admin-initiated user creation. Unlike registration the
// role is chosen directly, which is why the endpoint is admin-only.
type CreateInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
	Position   string
}

func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().List(ctx)
}

func (s *UserService) Create(ctx context.Context, in CreateInput) (domain.User, error) {
	log := slogx.FromContext(ctx)

	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return domain.User{}, ErrInvalidRole
	}

	passwordHash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Name:         in.Name,
		Email:        NormalizeEmail(in.Email),
		PasswordHash: passwordHash,
		Role:         role,
		Department:   in.Department,
		Position:     in.Position,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("user created by admin", slog.String("user_id", user.ID), slog.String("role", role.String()))
	return user, nil
}

// Update applies an admin edit. Role changes take effect for new tokens
// only; tokens already issued keep asserting the old role until they expire.
func (s *UserService) Update(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if patch.Role != nil && !patch.Role.Valid() {
		return domain.User{}, ErrInvalidRole
	}

	if err := s.Store.Users().Update(ctx, id, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		log.Error("failed to update user", slog.String("user_id", id), slog.Any("error", err))
		return domain.User{}, err
	}

	user, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	log.Info("user updated", slog.String("user_id", id))
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	if err := s.Store.Users().Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		log.Error("failed to delete user", slog.String("user_id", id), slog.Any("error", err))
		return err
	}

	log.Info("user deleted", slog.String("user_id", id))
	return nil
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/api/domain"
	"github.com/taskdeck/taskdeck/internal/api/store"
	"github.com/taskdeck/taskdeck/internal/api/store/drivers/sqlite"
	"github.com/taskdeck/taskdeck/pkg/cryptox"
	"github.com/taskdeck/taskdeck/pkg/idx"
	"github.com/taskdeck/taskdeck/pkg/jwtx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newAuthService(st store.Store) *AuthService {
	return &AuthService{
		Store:  st,
		Tokens: jwtx.NewHS256([]byte("test-secret"), "taskdeck-test"),
		Issuer: "taskdeck-test",
	}
}

// seedUser inserts a user directly, bypassing registration.
func seedUser(t *testing.T, st store.Store, email, password string, role domain.Role) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Users().Create(context.Background(), user))
	return user
}

// mintInvite creates an invite as the given issuer.
func mintInvite(t *testing.T, st store.Store, issuer domain.User, role string, expiresInDays int) domain.InviteCode {
	t.Helper()

	svc := &InviteService{Store: st}
	invite, err := svc.Mint(context.Background(), issuer.ID, issuer.Role, role, expiresInDays)
	require.NoError(t, err)
	return invite
}

package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/api/domain"
	"github.com/taskdeck/taskdeck/pkg/jwtx"
)

func TestLogin(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := newAuthService(st)
	seedUser(t, st, "dev@example.com", "correct horse battery", domain.RoleDeveloper)

	t.Run("valid credentials issue a verifiable token", func(t *testing.T) {
		user, token, err := svc.Login(context.Background(), "dev@example.com", "correct horse battery")
		require.NoError(t, err)
		require.Equal(t, domain.RoleDeveloper, user.Role)
		require.NotEmpty(t, token)

		claims, err := svc.Tokens.(*jwtx.HS256).Verify(token)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)
		require.Equal(t, "dev@example.com", claims.Email)
		require.Equal(t, "developer", claims.Role)
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "DEV@Example.COM", "correct horse battery")
		require.NoError(t, err)
	})

	t.Run("wrong password and unknown email collapse to one error", func(t *testing.T) {
		_, _, wrongPw := svc.Login(context.Background(), "dev@example.com", "nope")
		_, _, unknown := svc.Login(context.Background(), "ghost@example.com", "nope")
		require.ErrorIs(t, wrongPw, ErrInvalidCredentials)
		require.ErrorIs(t, unknown, ErrInvalidCredentials)
	})
}

func TestRegister(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := newAuthService(st)
	admin := seedUser(t, st, "admin@example.com", "admin-password", domain.RoleAdmin)

	t.Run("happy path redeems the invite and grants its role", func(t *testing.T) {
		invite := mintInvite(t, st, admin, "manager", 7)

		user, token, err := svc.Register(context.Background(), RegisterInput{
			Name:       "New Manager",
			Email:      "manager@example.com",
			Password:   "s3cure-enough",
			InviteCode: invite.Code,
		})
		require.NoError(t, err)
		require.Equal(t, domain.RoleManager, user.Role)
		require.NotEmpty(t, token)

		claims, err := svc.Tokens.(*jwtx.HS256).Verify(token)
		require.NoError(t, err)
		require.Equal(t, "manager", claims.Role)

		stored, err := st.Invites().GetByID(context.Background(), invite.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.UsedBy)
		require.Equal(t, user.ID, *stored.UsedBy)
		require.NotNil(t, stored.UsedAt)
		require.False(t, stored.IsActive)
	})

	t.Run("unknown invite code", func(t *testing.T) {
		_, _, err := svc.Register(context.Background(), RegisterInput{
			Name:       "Nobody",
			Email:      "nobody@example.com",
			Password:   "s3cure-enough",
			InviteCode: "definitely-not-a-code",
		})
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("missing invite code", func(t *testing.T) {
		_, _, err := svc.Register(context.Background(), RegisterInput{
			Name:     "Nobody",
			Email:    "nobody@example.com",
			Password: "s3cure-enough",
		})
		require.ErrorIs(t, err, ErrInviteRequired)
	})

	t.Run("redeemed invite cannot be reused", func(t *testing.T) {
		invite := mintInvite(t, st, admin, "developer", 7)

		_, _, err := svc.Register(context.Background(), RegisterInput{
			Name:       "First",
			Email:      "first@example.com",
			Password:   "s3cure-enough",
			InviteCode: invite.Code,
		})
		require.NoError(t, err)

		_, _, err = svc.Register(context.Background(), RegisterInput{
			Name:       "Second",
			Email:      "second@example.com",
			Password:   "s3cure-enough",
			InviteCode: invite.Code,
		})
		require.ErrorIs(t, err, ErrInviteAlreadyUsed)
	})

	t.Run("deactivated invite reports already used", func(t *testing.T) {
		invite := mintInvite(t, st, admin, "developer", 7)
		invSvc := &InviteService{Store: st}
		_, err := invSvc.Deactivate(context.Background(), invite.ID)
		require.NoError(t, err)

		_, _, err = svc.Register(context.Background(), RegisterInput{
			Name:       "Late",
			Email:      "late@example.com",
			Password:   "s3cure-enough",
			InviteCode: invite.Code,
		})
		require.ErrorIs(t, err, ErrInviteAlreadyUsed)
	})

	t.Run("expired invite", func(t *testing.T) {
		invite := mintInvite(t, st, admin, "developer", 0)

		_, _, err := svc.Register(context.Background(), RegisterInput{
			Name:       "Slow",
			Email:      "slow@example.com",
			Password:   "s3cure-enough",
			InviteCode: invite.Code,
		})
		require.ErrorIs(t, err, ErrInviteExpired)
	})

	t.Run("taken email leaves the invite unredeemed", func(t *testing.T) {
		invite := mintInvite(t, st, admin, "developer", 7)

		_, _, err := svc.Register(context.Background(), RegisterInput{
			Name:       "Imposter",
			Email:      "Admin@Example.com", // normalizes to the seeded admin
			Password:   "s3cure-enough",
			InviteCode: invite.Code,
		})
		require.ErrorIs(t, err, ErrEmailTaken)

		invSvc := &InviteService{Store: st}
		_, err = invSvc.Validate(context.Background(), invite.Code)
		require.NoError(t, err, "invite must survive a failed registration")
	})
}

func TestRegisterConcurrentRedemption(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := newAuthService(st)
	admin := seedUser(t, st, "admin@example.com", "admin-password", domain.RoleAdmin)
	invite := mintInvite(t, st, admin, "developer", 7)

	const attempts = 8
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := svc.Register(context.Background(), RegisterInput{
				Name:       "Racer",
				Email:      fmt.Sprintf("racer%d@example.com", i),
				Password:   "s3cure-enough",
				InviteCode: invite.Code,
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var succeeded, alreadyUsed int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			require.ErrorIs(t, err, ErrInviteAlreadyUsed)
			alreadyUsed++
		}
	}
	require.Equal(t, 1, succeeded, "an invite admits exactly one registration")
	require.Equal(t, attempts-1, alreadyUsed)
}

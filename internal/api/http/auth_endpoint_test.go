package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/api/domain"
	"github.com/taskdeck/taskdeck/pkg/httpx"
)

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	admin, _ := env.seedUser(t, "admin@example.com", domain.RoleAdmin)

	t.Run("happy path returns token and sets session cookie", func(t *testing.T) {
		invite := env.mintInvite(t, admin, "developer", 7)

		rec := env.do(t, "POST", "/api/auth/register", "", map[string]any{
			"name":       "New Dev",
			"email":      "newdev@example.com",
			"password":   "s3cure-enough",
			"inviteCode": invite.Code,
			"department": "Platform",
		})
		body := requireStatus(t, rec, http.StatusCreated)

		token, _ := body["token"].(string)
		require.NotEmpty(t, token)
		user := body["user"].(map[string]any)
		require.Equal(t, "developer", user["role"])
		require.Equal(t, "newdev@example.com", user["email"])

		var found bool
		for _, c := range rec.Result().Cookies() {
			if c.Name == httpx.SessionCookie {
				found = true
				require.True(t, c.HttpOnly)
				require.Equal(t, token, c.Value)
			}
		}
		require.True(t, found, "session cookie must be set")

		// The issued token is immediately usable.
		verify := env.do(t, "POST", "/api/auth/verify", token, nil)
		vbody := requireStatus(t, verify, http.StatusOK)
		vuser := vbody["user"].(map[string]any)
		require.Equal(t, "developer", vuser["role"])
	})

	t.Run("role field in the body is ignored", func(t *testing.T) {
		invite := env.mintInvite(t, admin, "developer", 7)

		rec := env.do(t, "POST", "/api/auth/register", "", map[string]any{
			"name":       "Sneaky",
			"email":      "sneaky@example.com",
			"password":   "s3cure-enough",
			"inviteCode": invite.Code,
			"role":       "admin",
		})
		body := requireStatus(t, rec, http.StatusCreated)
		user := body["user"].(map[string]any)
		require.Equal(t, "developer", user["role"], "role comes from the invite, not the body")
	})

	t.Run("missing invite code is a field error", func(t *testing.T) {
		rec := env.do(t, "POST", "/api/auth/register", "", map[string]any{
			"name":     "No Invite",
			"email":    "noinvite@example.com",
			"password": "s3cure-enough",
		})
		body := requireStatus(t, rec, http.StatusBadRequest)
		fields := body["errors"].(map[string]any)
		require.Contains(t, fields, "invitecode")
	})

	t.Run("unknown invite code is 404", func(t *testing.T) {
		rec := env.do(t, "POST", "/api/auth/register", "", map[string]any{
			"name":       "Lost",
			"email":      "lost@example.com",
			"password":   "s3cure-enough",
			"inviteCode": "not-a-real-code",
		})
		requireStatus(t, rec, http.StatusNotFound)
	})

	t.Run("used invite is 400", func(t *testing.T) {
		invite := env.mintInvite(t, admin, "developer", 7)

		first := env.do(t, "POST", "/api/auth/register", "", map[string]any{
			"name":       "Winner",
			"email":      "winner@example.com",
			"password":   "s3cure-enough",
			"inviteCode": invite.Code,
		})
		requireStatus(t, first, http.StatusCreated)

		second := env.do(t, "POST", "/api/auth/register", "", map[string]any{
			"name":       "Loser",
			"email":      "loser@example.com",
			"password":   "s3cure-enough",
			"inviteCode": invite.Code,
		})
		requireStatus(t, second, http.StatusBadRequest)
	})

	t.Run("expired invite is 400", func(t *testing.T) {
		invite := env.mintInvite(t, admin, "developer", 0)

		rec := env.do(t, "POST", "/api/auth/register", "", map[string]any{
			"name":       "Tardy",
			"email":      "tardy@example.com",
			"password":   "s3cure-enough",
			"inviteCode": invite.Code,
		})
		requireStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("duplicate email is 409", func(t *testing.T) {
		invite := env.mintInvite(t, admin, "developer", 7)

		rec := env.do(t, "POST", "/api/auth/register", "", map[string]any{
			"name":       "Clone",
			"email":      "admin@example.com",
			"password":   "s3cure-enough",
			"inviteCode": invite.Code,
		})
		requireStatus(t, rec, http.StatusConflict)
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedUser(t, "dev@example.com", domain.RoleDeveloper)

	t.Run("valid credentials", func(t *testing.T) {
		rec := env.do(t, "POST", "/api/auth/login", "", map[string]any{
			"email":    "dev@example.com",
			"password": "seeded-password",
		})
		body := requireStatus(t, rec, http.StatusOK)
		require.NotEmpty(t, body["token"])
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		badPw := env.do(t, "POST", "/api/auth/login", "", map[string]any{
			"email":    "dev@example.com",
			"password": "wrong",
		})
		unknown := env.do(t, "POST", "/api/auth/login", "", map[string]any{
			"email":    "ghost@example.com",
			"password": "wrong",
		})
		b1 := requireStatus(t, badPw, http.StatusUnauthorized)
		b2 := requireStatus(t, unknown, http.StatusUnauthorized)
		require.Equal(t, b1["message"], b2["message"])
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := env.do(t, "POST", "/api/auth/login", "", map[string]any{
			"email": "not-an-email",
		})
		requireStatus(t, rec, http.StatusBadRequest)
	})
}

func TestVerifyEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, token := env.seedUser(t, "dev@example.com", domain.RoleDeveloper)

	t.Run("missing token is 401", func(t *testing.T) {
		rec := env.do(t, "POST", "/api/auth/verify", "", nil)
		requireStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("garbage token is 403", func(t *testing.T) {
		rec := env.do(t, "POST", "/api/auth/verify", "not.a.jwt", nil)
		requireStatus(t, rec, http.StatusForbidden)
	})

	t.Run("valid token echoes identity", func(t *testing.T) {
		rec := env.do(t, "POST", "/api/auth/verify", token, nil)
		body := requireStatus(t, rec, http.StatusOK)
		user := body["user"].(map[string]any)
		require.Equal(t, "dev@example.com", user["email"])
		require.Equal(t, "developer", user["role"])
	})
}

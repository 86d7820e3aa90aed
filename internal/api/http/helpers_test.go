package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/api/domain"
	"github.com/taskdeck/taskdeck/internal/api/service"
	"github.com/taskdeck/taskdeck/internal/api/store"
	"github.com/taskdeck/taskdeck/internal/api/store/drivers/sqlite"
	"github.com/taskdeck/taskdeck/pkg/cryptox"
	"github.com/taskdeck/taskdeck/pkg/idx"
	"github.com/taskdeck/taskdeck/pkg/jwtx"
)

type testEnv struct {
	router *Router
	store  store.Store
	tokens *jwtx.HS256
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	tokens := jwtx.NewHS256([]byte("test-secret"), "taskdeck-test")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter(tokens, "test", st, logger, false)
	router.AuthService = &service.AuthService{Store: st, Tokens: tokens, Issuer: "taskdeck-test"}
	router.InviteService = &service.InviteService{Store: st}
	router.UserService = &service.UserService{Store: st}
	router.ProjectService = &service.ProjectService{Store: st}
	router.TaskService = &service.TaskService{Store: st}
	router.CommentService = &service.CommentService{Store: st}
	router.ApplyRoutes()

	return &testEnv{router: router, store: st, tokens: tokens}
}

// seedUser inserts a user directly and returns it with a valid session
// token.
func (e *testEnv) seedUser(t *testing.T, email string, role domain.Role) (domain.User, string) {
	t.Helper()

	hash, err := cryptox.HashPassword("seeded-password")
	require.NoError(t, err)

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Name:         "Seeded " + role.String(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.store.Users().Create(context.Background(), user))

	claims := jwtx.NewSessionClaims(user.ID, user.Email, role.String(), user.Name, "taskdeck-test", time.Hour, now)
	token, err := e.tokens.Sign(claims)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) mintInvite(t *testing.T, issuer domain.User, role string, expiresInDays int) domain.InviteCode {
	t.Helper()

	invite, err := e.router.InviteService.Mint(context.Background(), issuer.ID, issuer.Role, role, expiresInDays)
	require.NoError(t, err)
	return invite
}

// do performs a request against the router. A non-empty token is sent as a
// bearer header.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) map[string]any {
	t.Helper()

	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
	return decodeBody(t, rec)
}

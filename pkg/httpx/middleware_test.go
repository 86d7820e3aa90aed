package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/pkg/jwtx"
)

func newVerifier() *jwtx.HS256 {
	return jwtx.NewHS256([]byte("middleware-test-secret"), "taskdeck")
}

func signFor(t *testing.T, h *jwtx.HS256, role string, ttl time.Duration) string {
	t.Helper()
	claims := jwtx.NewSessionClaims("01J0USER", "user@example.com", role, "User", "taskdeck", ttl, time.Now().UTC())
	token, err := h.Sign(claims)
	require.NoError(t, err)
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthnMiddlewareMissingToken(t *testing.T) {
	t.Parallel()

	h := Chain(okHandler(), AuthnMiddleware(newVerifier()))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthnMiddlewareInvalidToken(t *testing.T) {
	t.Parallel()

	h := Chain(okHandler(), AuthnMiddleware(newVerifier()))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthnMiddlewareExpiredToken(t *testing.T) {
	t.Parallel()

	v := newVerifier()
	h := Chain(okHandler(), AuthnMiddleware(v))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signFor(t, v, "admin", -time.Hour))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthnMiddlewareAttachesClaims(t *testing.T) {
	t.Parallel()

	v := newVerifier()
	var gotUserID, gotRole string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	h := Chain(inner, AuthnMiddleware(v))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signFor(t, v, "manager", time.Hour))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "01J0USER", gotUserID)
	require.Equal(t, "manager", gotRole)
}

func TestAuthnMiddlewareAcceptsCookieTransport(t *testing.T) {
	t.Parallel()

	v := newVerifier()
	h := Chain(okHandler(), AuthnMiddleware(v))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signFor(t, v, "developer", time.Hour)})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	v := newVerifier()

	// Each role is excluded by at least one allow-list.
	cases := []struct {
		role    string
		allowed []string
		want    int
	}{
		{"admin", []string{"admin"}, http.StatusOK},
		{"admin", []string{"manager", "developer"}, http.StatusForbidden},
		{"manager", []string{"admin", "manager"}, http.StatusOK},
		{"manager", []string{"admin"}, http.StatusForbidden},
		{"developer", []string{"admin", "manager"}, http.StatusForbidden},
		{"developer", []string{"developer"}, http.StatusOK},
	}

	for _, tc := range cases {
		h := Chain(okHandler(), AuthnMiddleware(v), RequireRole(tc.allowed...))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signFor(t, v, tc.role, time.Hour))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, tc.want, rec.Code, "role %s against %v", tc.role, tc.allowed)
	}
}

func TestRequireRoleWithoutAuthn(t *testing.T) {
	t.Parallel()

	h := Chain(okHandler(), RequireRole("admin"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRateLimitByIP(t *testing.T) {
	t.Parallel()

	cfg := RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	h := Chain(okHandler(), RateLimitByIP(cfg))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:4444"

	for range 2 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	// A different IP has its own bucket.
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "203.0.113.8:4444"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	require.Equal(t, http.StatusOK, rec.Code)
}

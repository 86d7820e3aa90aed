package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/taskdeck/taskdeck/pkg/jwtx"
	"github.com/taskdeck/taskdeck/pkg/slogx"
)

// SessionCookie is the cookie the token may be mirrored into for browser
// clients. The Authorization header always wins when both are present.
const SessionCookie = "taskdeck_token"

// AuthnMiddleware verifies the bearer token and attaches the decoded claims
// to the request context. A missing token is 401; a token that fails
// verification (bad signature, malformed, expired) is 403.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := tokenFromRequest(r)
			if raw == "" {
				WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("token verification failed", "err", err)
				WriteError(w, http.StatusForbidden, "invalid or expired token")
				return
			}

			if err := claims.ValidateExpiry(); err != nil {
				WriteError(w, http.StatusForbidden, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, claims)))
		})
	}
}

// tokenFromRequest extracts the raw token string. Verification does not care
// about transport: the Authorization header is checked first, then the
// session cookie.
func tokenFromRequest(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

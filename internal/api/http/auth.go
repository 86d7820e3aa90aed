package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskdeck/taskdeck/internal/api/domain"
	"github.com/taskdeck/taskdeck/internal/api/service"
	"github.com/taskdeck/taskdeck/pkg/httpx"
	"github.com/taskdeck/taskdeck/pkg/slogx"
)

// AuthHandler serves login, registration and token verification.
type AuthHandler struct {
	Auth *service.AuthService

	// SecureCookies marks the session cookie Secure; enabled outside dev.
	SecureCookies bool
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=128"`
	InviteCode string `json:"inviteCode" validate:"required"`
	Department string `json:"department" validate:"max=120"`
	Position   string `json:"position" validate:"max=120"`
}

type userResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		Department: u.Department,
		Position:   u.Position,
		CreatedAt:  u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, token, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		slogx.FromContext(r.Context()).Error("login failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.setSessionCookie(w, token)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse{Token: token, User: toUserResponse(user)})
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, token, err := h.Auth.Register(r.Context(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		InviteCode: req.InviteCode,
		Department: req.Department,
		Position:   req.Position,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			httpx.WriteError(w, http.StatusNotFound, "invite code not found")
		case errors.Is(err, service.ErrInviteAlreadyUsed):
			httpx.WriteError(w, http.StatusBadRequest, "invite code has already been used or deactivated")
		case errors.Is(err, service.ErrInviteExpired):
			httpx.WriteError(w, http.StatusBadRequest, "invite code has expired")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict, "email is already registered")
		default:
			slogx.FromContext(r.Context()).Error("registration failed", slog.Any("error", err))
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.setSessionCookie(w, token)
	httpx.WriteJSON(w, http.StatusCreated, sessionResponse{Token: token, User: toUserResponse(user)})
}

// Verify handles POST /api/auth/verify. Authn middleware has already
// validated the token; this just echoes the identity baked into it.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"user": map[string]string{
			"id":    claims.Subject,
			"name":  claims.Name,
			"email": claims.Email,
			"role":  claims.Role,
		},
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Auth.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

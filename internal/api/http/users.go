package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskdeck/taskdeck/internal/api/domain"
	"github.com/taskdeck/taskdeck/internal/api/service"
	"github.com/taskdeck/taskdeck/pkg/httpx"
	"github.com/taskdeck/taskdeck/pkg/slogx"
)

// UsersHandler serves admin-side user management plus the self-service
// /users/me lookup.
type UsersHandler struct {
	Users *service.UserService
}

type createUserRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=128"`
	Role       string `json:"role" validate:"required"`
	Department string `json:"department" validate:"max=120"`
	Position   string `json:"position" validate:"max=120"`
}

type updateUserRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=120"`
	Role       *string `json:"role"`
	Department *string `json:"department" validate:"omitempty,max=120"`
	Position   *string `json:"position" validate:"omitempty,max=120"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("user list failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"users": out})
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.Users.Create(r.Context(), service.CreateInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
		Position:   req.Position,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			httpx.WriteError(w, http.StatusBadRequest, "unknown role")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict, "email is already registered")
		default:
			slogx.FromContext(r.Context()).Error("user creation failed", slog.Any("error", err))
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	callerID := httpx.UserIDFromContext(r.Context())
	if callerID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.Users.GetByID(r.Context(), callerID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		slogx.FromContext(r.Context()).Error("user lookup failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// Update handles PATCH /api/users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	patch := domain.UserPatch{
		Name:       req.Name,
		Department: req.Department,
		Position:   req.Position,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		patch.Role = &role
	}

	user, err := h.Users.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			httpx.WriteError(w, http.StatusBadRequest, "unknown role")
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, "user not found")
		default:
			slogx.FromContext(r.Context()).Error("user update failed", slog.Any("error", err))
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /api/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if httpx.UserIDFromContext(r.Context()) == id {
		httpx.WriteError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	if err := h.Users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		slogx.FromContext(r.Context()).Error("user deletion failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

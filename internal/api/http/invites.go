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

// InvitesHandler serves invite minting, listing, validation and lifecycle
// management.
type InvitesHandler struct {
	Invites *service.InviteService
}

type mintInviteRequest struct {
	Role          string `json:"role" validate:"required"`
	ExpiresInDays *int   `json:"expiresInDays" validate:"omitempty,gte=0"`
}

type inviteActor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type inviteResponse struct {
	ID        string       `json:"id"`
	Code      string       `json:"code"`
	Role      string       `json:"role"`
	Status    string       `json:"status"`
	IsActive  bool         `json:"isActive"`
	CreatedBy *inviteActor `json:"createdBy,omitempty"`
	UsedBy    *inviteActor `json:"usedBy,omitempty"`
	CreatedAt string       `json:"createdAt"`
	ExpiresAt string       `json:"expiresAt"`
	UsedAt    *string      `json:"usedAt,omitempty"`
}

func toInviteResponse(inv domain.InviteCode, createdByName, usedByName string) inviteResponse {
	resp := inviteResponse{
		ID:        inv.ID,
		Code:      inv.Code,
		Role:      inv.Role.String(),
		Status:    inv.Status(time.Now().UTC()),
		IsActive:  inv.IsActive,
		CreatedAt: inv.CreatedAt.UTC().Format(time.RFC3339),
		ExpiresAt: inv.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if inv.CreatedBy != "" {
		resp.CreatedBy = &inviteActor{ID: inv.CreatedBy, Name: createdByName}
	}
	if inv.UsedBy != nil {
		resp.UsedBy = &inviteActor{ID: *inv.UsedBy, Name: usedByName}
	}
	if inv.UsedAt != nil {
		usedAt := inv.UsedAt.UTC().Format(time.RFC3339)
		resp.UsedAt = &usedAt
	}
	return resp
}

// Create handles POST /api/invites.
func (h *InvitesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req mintInviteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	callerID := httpx.UserIDFromContext(r.Context())
	role, _ := domain.ParseRole(httpx.RoleFromContext(r.Context()))

	expiresInDays := service.DefaultInviteExpiryDays
	if req.ExpiresInDays != nil {
		expiresInDays = *req.ExpiresInDays
	}

	invite, err := h.Invites.Mint(r.Context(), callerID, role, req.Role, expiresInDays)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			httpx.WriteError(w, http.StatusBadRequest, "unknown role")
		case errors.Is(err, service.ErrRoleNotAllowed):
			httpx.WriteError(w, http.StatusForbidden, "insufficient permissions")
		case errors.Is(err, service.ErrInvalidExpiry):
			httpx.WriteError(w, http.StatusBadRequest, "expiresInDays must not be negative")
		default:
			slogx.FromContext(r.Context()).Error("invite mint failed", slog.Any("error", err))
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toInviteResponse(invite, "", ""))
}

// List handles GET /api/invites.
func (h *InvitesHandler) List(w http.ResponseWriter, r *http.Request) {
	invites, err := h.Invites.List(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("invite list failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]inviteResponse, 0, len(invites))
	for _, inv := range invites {
		out = append(out, toInviteResponse(inv.InviteCode, inv.CreatedByName, inv.UsedByName))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"invites": out})
}

// Validate handles GET /api/invites/validate/{code}. Public endpoint used
// by the registration form; never mutates invite state.
func (h *InvitesHandler) Validate(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	invite, err := h.Invites.Validate(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			httpx.WriteError(w, http.StatusNotFound, "invite code not found")
		case errors.Is(err, service.ErrInviteAlreadyUsed):
			httpx.WriteError(w, http.StatusBadRequest, "invite code has already been used or deactivated")
		case errors.Is(err, service.ErrInviteExpired):
			httpx.WriteError(w, http.StatusBadRequest, "invite code has expired")
		default:
			slogx.FromContext(r.Context()).Error("invite validation failed", slog.Any("error", err))
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"valid":     true,
		"role":      invite.Role.String(),
		"expiresAt": invite.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Deactivate handles PATCH /api/invites/{id}/deactivate.
func (h *InvitesHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	invite, err := h.Invites.Deactivate(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrInviteNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "invite not found")
			return
		}
		slogx.FromContext(r.Context()).Error("invite deactivation failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toInviteResponse(invite, "", ""))
}

// Delete handles DELETE /api/invites/{id}. Redeemed invites are kept for
// audit and cannot be removed.
func (h *InvitesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.Invites.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			httpx.WriteError(w, http.StatusNotFound, "invite not found")
		case errors.Is(err, service.ErrCannotDeleteRedeemed):
			httpx.WriteError(w, http.StatusBadRequest, "redeemed invites cannot be deleted")
		default:
			slogx.FromContext(r.Context()).Error("invite deletion failed", slog.Any("error", err))
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

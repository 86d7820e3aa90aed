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

type ProjectsHandler struct {
	Projects *service.ProjectService
}

type projectRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type projectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"createdBy"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toProjectResponse(p domain.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// List handles GET /api/projects.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Projects.List(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("project list failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"projects": out})
}

// Create handles POST /api/projects.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	callerID := httpx.UserIDFromContext(r.Context())

	project, err := h.Projects.Create(r.Context(), req.Name, req.Description, callerID)
	if err != nil {
		slogx.FromContext(r.Context()).Error("project creation failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toProjectResponse(project))
}

// Update handles PATCH /api/projects/{id}.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req projectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.Projects.Update(r.Context(), id, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "project not found")
			return
		}
		slogx.FromContext(r.Context()).Error("project update failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProjectResponse(project))
}

// Delete handles DELETE /api/projects/{id}. Tasks and their comments go
// with the project via FK cascade.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.Projects.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "project not found")
			return
		}
		slogx.FromContext(r.Context()).Error("project deletion failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

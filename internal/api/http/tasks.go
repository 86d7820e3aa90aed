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

type TasksHandler struct {
	Tasks *service.TaskService
}

type createTaskRequest struct {
	ProjectID   string     `json:"projectId" validate:"required"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssigneeID  *string    `json:"assigneeId"`
	DueDate     *time.Time `json:"dueDate"`
}

type updateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	AssigneeID  *string    `json:"assigneeId"`
	DueDate     *time.Time `json:"dueDate"`
}

type taskResponse struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"projectId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	AssigneeID  *string `json:"assigneeId,omitempty"`
	CreatedBy   string  `json:"createdBy"`
	DueDate     *string `json:"dueDate,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toTaskResponse(t domain.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		AssigneeID:  t.AssigneeID,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC().Format(time.RFC3339)
		resp.DueDate = &due
	}
	return resp
}

// List handles GET /api/tasks. An optional projectId query parameter
// narrows the listing to one project.
func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Tasks.List(r.Context(), r.URL.Query().Get("projectId"))
	if err != nil {
		slogx.FromContext(r.Context()).Error("task list failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"tasks": out})
}

// Create handles POST /api/tasks.
func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	callerID := httpx.UserIDFromContext(r.Context())

	task, err := h.Tasks.Create(r.Context(), service.CreateTaskInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	}, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			httpx.WriteError(w, http.StatusBadRequest, "unknown task status")
		case errors.Is(err, service.ErrInvalidPriority):
			httpx.WriteError(w, http.StatusBadRequest, "unknown task priority")
		case errors.Is(err, service.ErrProjectNotFound):
			httpx.WriteError(w, http.StatusNotFound, "project not found")
		default:
			slogx.FromContext(r.Context()).Error("task creation failed", slog.Any("error", err))
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toTaskResponse(task))
}

// Update handles PATCH /api/tasks/{id}.
func (h *TasksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	patch := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		patch.Priority = &priority
	}

	task, err := h.Tasks.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			httpx.WriteError(w, http.StatusBadRequest, "unknown task status")
		case errors.Is(err, service.ErrInvalidPriority):
			httpx.WriteError(w, http.StatusBadRequest, "unknown task priority")
		case errors.Is(err, service.ErrTaskNotFound):
			httpx.WriteError(w, http.StatusNotFound, "task not found")
		default:
			slogx.FromContext(r.Context()).Error("task update failed", slog.Any("error", err))
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTaskResponse(task))
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TasksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.Tasks.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "task not found")
			return
		}
		slogx.FromContext(r.Context()).Error("task deletion failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

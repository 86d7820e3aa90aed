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

type CommentsHandler struct {
	Comments *service.CommentService
}

type createCommentRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

type commentResponse struct {
	ID        string `json:"id"`
	TaskID    string `json:"taskId"`
	AuthorID  string `json:"authorId"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

func toCommentResponse(c domain.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ListByTask handles GET /api/tasks/{id}/comments.
func (h *CommentsHandler) ListByTask(w http.ResponseWriter, r *http.Request) {
	comments, err := h.Comments.ListByTask(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "task not found")
			return
		}
		slogx.FromContext(r.Context()).Error("comment list failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentResponse(c))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"comments": out})
}

// Create handles POST /api/tasks/{id}/comments.
func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	callerID := httpx.UserIDFromContext(r.Context())

	comment, err := h.Comments.Create(r.Context(), r.PathValue("id"), callerID, req.Body)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "task not found")
			return
		}
		slogx.FromContext(r.Context()).Error("comment creation failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toCommentResponse(comment))
}

// Delete handles DELETE /api/comments/{id}. Only the comment author or an
// admin may remove a comment.
func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID := httpx.UserIDFromContext(r.Context())
	role, _ := domain.ParseRole(httpx.RoleFromContext(r.Context()))

	if err := h.Comments.Delete(r.Context(), r.PathValue("id"), callerID, role); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			httpx.WriteError(w, http.StatusNotFound, "comment not found")
		case errors.Is(err, service.ErrNotCommentAuthor):
			httpx.WriteError(w, http.StatusForbidden, "insufficient permissions")
		default:
			slogx.FromContext(r.Context()).Error("comment deletion failed", slog.Any("error", err))
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

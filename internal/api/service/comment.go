package service

import (
	"context"
	"errors"
	"time"

	"github.com/taskdeck/taskdeck/internal/api/domain"
	"github.com/taskdeck/taskdeck/internal/api/store"
	"github.com/taskdeck/taskdeck/pkg/idx"
)

var (
	ErrCommentNotFound = errors.New("comment not found")

	// ErrNotCommentAuthor guards deletion: only the author or an admin may
	// remove a comment.
	ErrNotCommentAuthor = errors.New("not the comment author")
)

type CommentService struct {
	Store store.Store
}

func (s *CommentService) ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error) {
	if _, err := s.Store.Tasks().GetByID(ctx, taskID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return s.Store.Comments().ListByTask(ctx, taskID)
}

func (s *CommentService) Create(ctx context.Context, taskID, authorID, body string) (domain.Comment, error) {
	if _, err := s.Store.Tasks().GetByID(ctx, taskID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Comment{}, ErrTaskNotFound
		}
		return domain.Comment{}, err
	}

	comment := domain.Comment{
		ID:        idx.New().String(),
		TaskID:    taskID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Comments().Create(ctx, comment); err != nil {
		return domain.Comment{}, err
	}
	return comment, nil
}

// Delete removes a comment when the caller is its author or an admin.
func (s *CommentService) Delete(ctx context.Context, id, callerID string, callerRole domain.Role) error {
	comment, err := s.Store.Comments().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if comment.AuthorID != callerID && callerRole != domain.RoleAdmin {
		return ErrNotCommentAuthor
	}

	return s.Store.Comments().Delete(ctx, id)
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taskdeck/taskdeck/internal/api/domain"
	"github.com/taskdeck/taskdeck/internal/api/store"
	"github.com/taskdeck/taskdeck/pkg/idx"
	"github.com/taskdeck/taskdeck/pkg/slogx"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
)

type TaskService struct {
	Store store.Store
}

// CreateTaskInput carries task creation fields. Status defaults to todo and
// priority to medium when empty.
type CreateTaskInput struct {
	ProjectID   string
	Title       string
	Description string
	Status      string
	Priority    string
	AssigneeID  *string
	DueDate     *time.Time
}

func (s *TaskService) List(ctx context.Context, projectID string) ([]domain.Task, error) {
	return s.Store.Tasks().List(ctx, projectID)
}

func (s *TaskService) GetByID(ctx context.Context, id string) (domain.Task, error) {
	task, err := s.Store.Tasks().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, err
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput, createdBy string) (domain.Task, error) {
	log := slogx.FromContext(ctx)

	status := domain.TaskStatus(in.Status)
	if in.Status == "" {
		status = domain.TaskStatusTodo
	}
	if !status.Valid() {
		return domain.Task{}, ErrInvalidStatus
	}

	priority := domain.TaskPriority(in.Priority)
	if in.Priority == "" {
		priority = domain.TaskPriorityMedium
	}
	if !priority.Valid() {
		return domain.Task{}, ErrInvalidPriority
	}

	if _, err := s.Store.Projects().GetByID(ctx, in.ProjectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Task{}, ErrProjectNotFound
		}
		return domain.Task{}, err
	}

	now := time.Now().UTC()
	task := domain.Task{
		ID:          idx.New().String(),
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		AssigneeID:  in.AssigneeID,
		CreatedBy:   createdBy,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.Tasks().Create(ctx, task); err != nil {
		log.Error("failed to create task", slog.Any("error", err))
		return domain.Task{}, err
	}

	log.Info("task created", slog.String("task_id", task.ID), slog.String("project_id", task.ProjectID))
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return domain.Task{}, ErrInvalidStatus
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return domain.Task{}, ErrInvalidPriority
	}

	if err := s.Store.Tasks().Update(ctx, id, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, err
	}
	return s.Store.Tasks().GetByID(ctx, id)
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.Store.Tasks().Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

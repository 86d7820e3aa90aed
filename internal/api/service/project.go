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

var ErrProjectNotFound = errors.New("project not found")

type ProjectService struct {
	Store store.Store
}

func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return s.Store.Projects().List(ctx)
}

func (s *ProjectService) Create(ctx context.Context, name, description, createdBy string) (domain.Project, error) {
	log := slogx.FromContext(ctx)

	now := time.Now().UTC()
	project := domain.Project{
		ID:          idx.New().String(),
		Name:        name,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.Projects().Create(ctx, project); err != nil {
		log.Error("failed to create project", slog.Any("error", err))
		return domain.Project{}, err
	}

	log.Info("project created", slog.String("project_id", project.ID))
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, id, name, description string) (domain.Project, error) {
	if err := s.Store.Projects().Update(ctx, id, name, description); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, err
	}
	return s.Store.Projects().GetByID(ctx, id)
}

// Delete removes a project; its tasks and their comments go with it.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	if err := s.Store.Projects().Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	log.Info("project deleted", slog.String("project_id", id))
	return nil
}

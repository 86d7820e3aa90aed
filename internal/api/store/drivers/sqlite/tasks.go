package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/taskdeck/taskdeck/internal/api/domain"
	"github.com/taskdeck/taskdeck/internal/api/store"
)

type tasksRepo struct {
	db dbtx
}

const taskColumns = `id, project_id, title, description, status, priority, assignee_id, created_by, due_date, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (domain.Task, error) {
	var (
		t        domain.Task
		assignee sql.NullString
		dueDate  sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&assignee, &t.CreatedBy, &dueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.Task{}, err
	}
	t.AssigneeID = mapNullString(assignee)
	t.DueDate = mapNullTime(dueDate)
	return t, nil
}

func (r *tasksRepo) GetByID(ctx context.Context, id string) (domain.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		return domain.Task{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tasksRepo) Create(ctx context.Context, t domain.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, title, description, status, priority, assignee_id, created_by, due_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority,
		mapOptionalString(t.AssigneeID), t.CreatedBy, mapOptionalTime(t.DueDate), t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func (r *tasksRepo) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.AssigneeID != nil {
		t.AssigneeID = patch.AssigneeID
	}
	if patch.DueDate != nil {
		t.DueDate = patch.DueDate
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, assignee_id = ?, due_date = ?, updated_at = ?
		 WHERE id = ?`,
		t.Title, t.Description, t.Status, t.Priority,
		mapOptionalString(t.AssigneeID), mapOptionalTime(t.DueDate), time.Now().UTC(), id,
	)
	return err
}

func (r *tasksRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *tasksRepo) List(ctx context.Context, projectID string) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []any
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

package sqlite

import (
	"context"

	"github.com/taskdeck/taskdeck/internal/api/domain"
	"github.com/taskdeck/taskdeck/internal/api/store"
)

type commentsRepo struct {
	db dbtx
}

func (r *commentsRepo) GetByID(ctx context.Context, id string) (domain.Comment, error) {
	var c domain.Comment
	err := r.db.QueryRowContext(ctx,
		`SELECT id, task_id, author_id, body, created_at FROM comments WHERE id = ?`, id).
		Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Body, &c.CreatedAt)
	if err != nil {
		return domain.Comment{}, mapNotFound(err)
	}
	return c, nil
}

func (r *commentsRepo) Create(ctx context.Context, c domain.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, task_id, author_id, body, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.TaskID, c.AuthorID, c.Body, c.CreatedAt,
	)
	return err
}

func (r *commentsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *commentsRepo) ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, task_id, author_id, body, created_at FROM comments
		 WHERE task_id = ? ORDER BY created_at ASC, id ASC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

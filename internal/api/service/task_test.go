package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/api/domain"
)

func TestProjectAndTaskFlow(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	projects := &ProjectService{Store: st}
	tasks := &TaskService{Store: st}
	manager := seedUser(t, st, "manager@example.com", "manager-password", domain.RoleManager)

	project, err := projects.Create(context.Background(), "Release 1.0", "Ship it", manager.ID)
	require.NoError(t, err)

	t.Run("task defaults to todo and medium", func(t *testing.T) {
		task, err := tasks.Create(context.Background(), CreateTaskInput{
			ProjectID: project.ID,
			Title:     "Write changelog",
		}, manager.ID)
		require.NoError(t, err)
		require.Equal(t, domain.TaskStatusTodo, task.Status)
		require.Equal(t, domain.TaskPriorityMedium, task.Priority)
		require.Equal(t, manager.ID, task.CreatedBy)
	})

	t.Run("task rejects unknown status and priority", func(t *testing.T) {
		_, err := tasks.Create(context.Background(), CreateTaskInput{
			ProjectID: project.ID,
			Title:     "Bad status",
			Status:    "paused",
		}, manager.ID)
		require.ErrorIs(t, err, ErrInvalidStatus)

		_, err = tasks.Create(context.Background(), CreateTaskInput{
			ProjectID: project.ID,
			Title:     "Bad priority",
			Priority:  "urgent",
		}, manager.ID)
		require.ErrorIs(t, err, ErrInvalidPriority)
	})

	t.Run("task requires an existing project", func(t *testing.T) {
		_, err := tasks.Create(context.Background(), CreateTaskInput{
			ProjectID: "no-such-project",
			Title:     "Orphan",
		}, manager.ID)
		require.ErrorIs(t, err, ErrProjectNotFound)
	})

	t.Run("status transition via patch", func(t *testing.T) {
		task, err := tasks.Create(context.Background(), CreateTaskInput{
			ProjectID: project.ID,
			Title:     "Fix flaky test",
			Priority:  "high",
		}, manager.ID)
		require.NoError(t, err)

		status := domain.TaskStatusInProgress
		updated, err := tasks.Update(context.Background(), task.ID, domain.TaskPatch{Status: &status})
		require.NoError(t, err)
		require.Equal(t, domain.TaskStatusInProgress, updated.Status)
		require.Equal(t, domain.TaskPriorityHigh, updated.Priority)

		bad := domain.TaskStatus("paused")
		_, err = tasks.Update(context.Background(), task.ID, domain.TaskPatch{Status: &bad})
		require.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("deleting the project cascades to tasks", func(t *testing.T) {
		doomed, err := projects.Create(context.Background(), "Doomed", "", manager.ID)
		require.NoError(t, err)
		task, err := tasks.Create(context.Background(), CreateTaskInput{
			ProjectID: doomed.ID,
			Title:     "Never happening",
		}, manager.ID)
		require.NoError(t, err)

		require.NoError(t, projects.Delete(context.Background(), doomed.ID))

		_, err = tasks.GetByID(context.Background(), task.ID)
		require.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestCommentFlow(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	projects := &ProjectService{Store: st}
	tasks := &TaskService{Store: st}
	comments := &CommentService{Store: st}

	admin := seedUser(t, st, "admin@example.com", "admin-password", domain.RoleAdmin)
	author := seedUser(t, st, "author@example.com", "author-password", domain.RoleDeveloper)
	other := seedUser(t, st, "other@example.com", "other-password", domain.RoleDeveloper)

	project, err := projects.Create(context.Background(), "Chatter", "", admin.ID)
	require.NoError(t, err)
	task, err := tasks.Create(context.Background(), CreateTaskInput{
		ProjectID: project.ID,
		Title:     "Discuss",
	}, admin.ID)
	require.NoError(t, err)

	t.Run("comments list in creation order", func(t *testing.T) {
		first, err := comments.Create(context.Background(), task.ID, author.ID, "first")
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
		second, err := comments.Create(context.Background(), task.ID, author.ID, "second")
		require.NoError(t, err)

		list, err := comments.ListByTask(context.Background(), task.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, first.ID, list[0].ID)
		require.Equal(t, second.ID, list[1].ID)
	})

	t.Run("comment on unknown task", func(t *testing.T) {
		_, err := comments.Create(context.Background(), "no-such-task", author.ID, "hello?")
		require.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("only the author or an admin may delete", func(t *testing.T) {
		comment, err := comments.Create(context.Background(), task.ID, author.ID, "delete me")
		require.NoError(t, err)

		err = comments.Delete(context.Background(), comment.ID, other.ID, other.Role)
		require.ErrorIs(t, err, ErrNotCommentAuthor)

		require.NoError(t, comments.Delete(context.Background(), comment.ID, author.ID, author.Role))

		adminTarget, err := comments.Create(context.Background(), task.ID, author.ID, "mod removed")
		require.NoError(t, err)
		require.NoError(t, comments.Delete(context.Background(), adminTarget.ID, admin.ID, admin.Role))
	})
}

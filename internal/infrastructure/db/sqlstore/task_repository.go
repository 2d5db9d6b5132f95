package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
)

const taskViewSelect = `
	SELECT t.id, t.project_id, t.name, t.description, t.priority, t.status, t.progress,
	       t.estimated_hours, t.actual_hours, t.deadline, t.last_progress_update,
	       t.created_at, t.updated_at,
	       p.name AS project_name, p.owner_id AS owner_id, u.full_name AS owner_name
	FROM tasks t
	JOIN projects p ON p.id = t.project_id
	LEFT JOIN users u ON u.id = p.owner_id`

type TaskRepository struct {
	store
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{store{db: db}}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	q := r.q(ctx)
	query := q.Rebind(`
		INSERT INTO tasks (project_id, name, description, priority, status, progress,
		                   estimated_hours, actual_hours, deadline, last_progress_update, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	created := *t
	err := q.QueryRowxContext(ctx, query,
		t.ProjectID, t.Name, t.Description, string(t.Priority), string(t.Status), t.Progress,
		t.EstimatedHours, t.ActualHours, t.Deadline, t.LastProgressUpdate, t.CreatedAt, t.UpdatedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &created, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*domain.TaskView, error) {
	q := r.q(ctx)
	var view domain.TaskView
	if err := q.GetContext(ctx, &view, q.Rebind(taskViewSelect+` WHERE t.id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &view, nil
}

func (r *TaskRepository) List(ctx context.Context, filter ports.TaskFilter) ([]*domain.TaskView, int64, error) {
	var c conditions
	if filter.OwnerID != nil {
		c.add("p.owner_id = ?", *filter.OwnerID)
	}
	if filter.ProjectID != nil {
		c.add("t.project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		c.add("t.status = ?", string(*filter.Status))
	}
	if filter.Priority != nil {
		c.add("t.priority = ?", string(*filter.Priority))
	}

	q := r.q(ctx)
	var total int64
	countQuery := `SELECT COUNT(*) FROM tasks t JOIN projects p ON p.id = t.project_id` + c.where()
	if err := q.GetContext(ctx, &total, q.Rebind(countQuery), c.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	window, args := limitOffset(filter.Page, c.args)
	views := []*domain.TaskView{}
	if err := q.SelectContext(ctx, &views, q.Rebind(taskViewSelect+c.where()+` ORDER BY t.id`+window), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return views, total, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	q := r.q(ctx)
	res, err := q.ExecContext(ctx, q.Rebind(`
		UPDATE tasks
		SET name = ?, description = ?, priority = ?, status = ?, progress = ?,
		    estimated_hours = ?, actual_hours = ?, deadline = ?, last_progress_update = ?, updated_at = ?
		WHERE id = ?
	`),
		t.Name, t.Description, string(t.Priority), string(t.Status), t.Progress,
		t.EstimatedHours, t.ActualHours, t.Deadline, t.LastProgressUpdate, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	q := r.q(ctx)
	res, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

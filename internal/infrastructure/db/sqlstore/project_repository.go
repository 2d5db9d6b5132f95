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

const projectViewSelect = `
	SELECT p.id, p.owner_id, p.name, p.description, p.status, p.start_date, p.end_date,
	       p.created_at, p.updated_at, u.full_name AS owner_name
	FROM projects p
	LEFT JOIN users u ON u.id = p.owner_id`

type ProjectRepository struct {
	store
}

func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{store{db: db}}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	q := r.q(ctx)
	query := q.Rebind(`
		INSERT INTO projects (owner_id, name, description, status, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	created := *p
	err := q.QueryRowxContext(ctx, query,
		p.OwnerID, p.Name, p.Description, string(p.Status), p.StartDate, p.EndDate, p.CreatedAt, p.UpdatedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &created, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*domain.ProjectView, error) {
	q := r.q(ctx)
	var view domain.ProjectView
	if err := q.GetContext(ctx, &view, q.Rebind(projectViewSelect+` WHERE p.id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &view, nil
}

func (r *ProjectRepository) List(ctx context.Context, filter ports.ProjectFilter) ([]*domain.ProjectView, int64, error) {
	var c conditions
	if filter.OwnerID != nil {
		c.add("p.owner_id = ?", *filter.OwnerID)
	}
	if filter.Status != nil {
		c.add("p.status = ?", string(*filter.Status))
	}

	q := r.q(ctx)
	var total int64
	if err := q.GetContext(ctx, &total, q.Rebind(`SELECT COUNT(*) FROM projects p`+c.where()), c.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	window, args := limitOffset(filter.Page, c.args)
	views := []*domain.ProjectView{}
	if err := q.SelectContext(ctx, &views, q.Rebind(projectViewSelect+c.where()+` ORDER BY p.id`+window), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return views, total, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	q := r.q(ctx)
	res, err := q.ExecContext(ctx, q.Rebind(`
		UPDATE projects
		SET name = ?, description = ?, status = ?, start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?
	`), p.Name, p.Description, string(p.Status), p.StartDate, p.EndDate, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	q := r.q(ctx)
	res, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM projects WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

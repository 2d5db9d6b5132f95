package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/taskpilot/taskpilot/internal/core/domain"
)

var ownerQueries = map[domain.ResourceKind]string{
	domain.ResourceProject: `SELECT owner_id FROM projects WHERE id = ?`,
	domain.ResourceTask: `SELECT p.owner_id FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE t.id = ?`,
}

// OwnerResolver answers ownership with a single query per resource.
type OwnerResolver struct {
	store
}

func NewOwnerResolver(db *sqlx.DB) *OwnerResolver {
	return &OwnerResolver{store{db: db}}
}

func (r *OwnerResolver) ResolveOwner(ctx context.Context, ref domain.ResourceRef) (int64, error) {
	query, ok := ownerQueries[ref.Kind]
	if !ok {
		return 0, fmt.Errorf("resolve owner: unknown resource kind %q", ref.Kind)
	}

	q := r.q(ctx)
	var ownerID int64
	if err := q.GetContext(ctx, &ownerID, q.Rebind(query), ref.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ref.NotFound()
		}
		return 0, fmt.Errorf("resolve owner of %s: %w", ref, err)
	}
	return ownerID, nil
}

// ContactRepository resolves owner contact details for the automation engine.
type ContactRepository struct {
	store
}

func NewContactRepository(db *sqlx.DB) *ContactRepository {
	return &ContactRepository{store{db: db}}
}

const ownerContactColumns = `
	p.id AS project_id, p.name AS project_name, u.id AS owner_id, u.email AS owner_email,
	CASE WHEN u.full_name = '' THEN u.username ELSE u.full_name END AS owner_name`

func (r *ContactRepository) ProjectOwnerContact(ctx context.Context, projectID int64) (*domain.ProjectOwnerContact, error) {
	q := r.q(ctx)
	query := `SELECT ` + ownerContactColumns + `
		FROM projects p
		JOIN users u ON u.id = p.owner_id
		WHERE p.id = ?`

	var contact domain.ProjectOwnerContact
	if err := q.GetContext(ctx, &contact, q.Rebind(query), projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project owner: %w", err)
	}
	return &contact, nil
}

func (r *ContactRepository) TaskOwnerContact(ctx context.Context, taskID int64) (*domain.TaskOwnerContact, error) {
	q := r.q(ctx)
	query := `SELECT t.id AS task_id, t.name AS task_name, t.status AS task_status,
		t.priority AS task_priority, t.progress AS task_progress, t.deadline AS task_deadline,` + ownerContactColumns + `
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		JOIN users u ON u.id = p.owner_id
		WHERE t.id = ?`

	var contact domain.TaskOwnerContact
	if err := q.GetContext(ctx, &contact, q.Rebind(query), taskID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task owner: %w", err)
	}
	return &contact, nil
}

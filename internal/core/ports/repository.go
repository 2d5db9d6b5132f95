package ports

import (
	"context"

	"github.com/taskpilot/taskpilot/internal/core/domain"
)

// Page is an offset window over a list query.
type Page struct {
	Skip  int
	Limit int
}

// TxManager runs fn inside a single transaction. Repositories called with the
// context passed to fn take part in that transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository persists user accounts.
type UserRepository interface {
	// Create stores user and returns it with its id assigned. A clash on email
	// or username fails with domain.ErrDuplicateIdentity.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, page Page) ([]*domain.User, error)
	// Delete removes the user together with everything they own.
	Delete(ctx context.Context, id int64) error
}

// ProjectFilter narrows a project listing. A nil OwnerID means every owner.
type ProjectFilter struct {
	OwnerID *int64
	Status  *domain.ProjectStatus
	Page
}

type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	FindByID(ctx context.Context, id int64) (*domain.ProjectView, error)
	List(ctx context.Context, filter ProjectFilter) ([]*domain.ProjectView, int64, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id int64) error
}

// TaskFilter narrows a task listing. OwnerID scopes through the parent project.
type TaskFilter struct {
	OwnerID   *int64
	ProjectID *int64
	Status    *domain.TaskStatus
	Priority  *domain.TaskPriority
	Page
}

type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id int64) (*domain.TaskView, error)
	List(ctx context.Context, filter TaskFilter) ([]*domain.TaskView, int64, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id int64) error
}

// ForecastFilter narrows a forecast listing. OwnerID scopes through the task's
// project.
type ForecastFilter struct {
	OwnerID   *int64
	TaskID    *int64
	RiskLevel *domain.RiskLevel
	Page
}

type ForecastRepository interface {
	// List returns forecasts newest first.
	List(ctx context.Context, filter ForecastFilter) ([]*domain.Forecast, int64, error)
	// Latest returns the most recent forecast of every task, optionally
	// scoped to one owner.
	Latest(ctx context.Context, ownerID *int64) ([]*domain.Forecast, error)
}

type SimulationFilter struct {
	OwnerID   *int64
	ProjectID *int64
	Page
}

type SimulationRepository interface {
	// List returns simulations most recent first.
	List(ctx context.Context, filter SimulationFilter) ([]*domain.Simulation, int64, error)
}

// OwnerResolver maps an owned resource to the id of the user who owns it.
// A missing resource fails with ref.NotFound().
type OwnerResolver interface {
	ResolveOwner(ctx context.Context, ref domain.ResourceRef) (int64, error)
}

// ContactRepository looks up who to notify about a project or task.
type ContactRepository interface {
	ProjectOwnerContact(ctx context.Context, projectID int64) (*domain.ProjectOwnerContact, error)
	TaskOwnerContact(ctx context.Context, taskID int64) (*domain.TaskOwnerContact, error)
}

// AutomationLogRepository stores the audit trail of automation exchanges.
type AutomationLogRepository interface {
	Insert(ctx context.Context, entry *domain.AutomationLog) error
}

package ports

import (
	"context"
	"time"

	"github.com/taskpilot/taskpilot/internal/core/domain"
)

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// Normalize clamps the window to a non-negative skip and a limit within
// 1..MaxPageLimit, defaulting an unset limit to DefaultPageLimit.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	return p
}

// AccessGuard authenticates bearer tokens and authorizes access to owned
// resources.
type AccessGuard interface {
	RequireAuthenticated(ctx context.Context, token string) (*domain.User, error)
	RequireAdmin(ctx context.Context, token string) (*domain.User, error)
	AuthorizeResourceAccess(ctx context.Context, actor *domain.User, ref domain.ResourceRef) error
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName string
}

type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
	User        *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// Login accepts either a username or an email as identifier.
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
}

type CreateProjectInput struct {
	Name        string
	Description *string
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
}

// UpdateProjectInput applies only the non-nil fields.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *string
	StartDate   *time.Time
	EndDate     *time.Time
}

type ListProjectsInput struct {
	Status string
	Page
}

type ProjectList struct {
	Items []*domain.ProjectView
	Total int64
}

type ProjectService interface {
	Create(ctx context.Context, actor *domain.User, input CreateProjectInput) (*domain.ProjectView, error)
	Get(ctx context.Context, actor *domain.User, id int64) (*domain.ProjectView, error)
	List(ctx context.Context, actor *domain.User, input ListProjectsInput) (*ProjectList, error)
	Update(ctx context.Context, actor *domain.User, id int64, input UpdateProjectInput) (*domain.ProjectView, error)
	Delete(ctx context.Context, actor *domain.User, id int64) error
}

type CreateTaskInput struct {
	ProjectID      int64
	Name           string
	Description    *string
	Priority       string
	Status         string
	EstimatedHours *float64
	Deadline       *time.Time
}

// UpdateTaskInput applies only the non-nil fields.
type UpdateTaskInput struct {
	Name           *string
	Description    *string
	Priority       *string
	Status         *string
	Progress       *int
	EstimatedHours *float64
	ActualHours    *float64
	Deadline       *time.Time
}

type ListTasksInput struct {
	ProjectID *int64
	Status    string
	Priority  string
	Page
}

type TaskList struct {
	Items []*domain.TaskView
	Total int64
}

type TaskService interface {
	Create(ctx context.Context, actor *domain.User, input CreateTaskInput) (*domain.TaskView, error)
	Get(ctx context.Context, actor *domain.User, id int64) (*domain.TaskView, error)
	List(ctx context.Context, actor *domain.User, input ListTasksInput) (*TaskList, error)
	Update(ctx context.Context, actor *domain.User, id int64, input UpdateTaskInput) (*domain.TaskView, error)
	UpdateProgress(ctx context.Context, actor *domain.User, id int64, progress int) (*domain.TaskView, error)
	Delete(ctx context.Context, actor *domain.User, id int64) error
}

type ListForecastsInput struct {
	TaskID    *int64
	RiskLevel string
	Page
}

type ForecastList struct {
	Items []*domain.Forecast
	Total int64
}

type ForecastService interface {
	List(ctx context.Context, actor *domain.User, input ListForecastsInput) (*ForecastList, error)
	Latest(ctx context.Context, actor *domain.User) (*ForecastList, error)
}

type ListSimulationsInput struct {
	ProjectID *int64
	Page
}

type SimulationList struct {
	Items []*domain.Simulation
	Total int64
}

type SimulationService interface {
	List(ctx context.Context, actor *domain.User, input ListSimulationsInput) (*SimulationList, error)
}

// UserDetail is a user together with everything they own.
type UserDetail struct {
	User     *domain.User
	Projects []*domain.ProjectView
	Tasks    []*domain.TaskView
}

type DeletedUser struct {
	Username     string
	ProjectCount int64
}

type AdminService interface {
	ListUsers(ctx context.Context, page Page) ([]*domain.User, error)
	GetUserDetail(ctx context.Context, id int64) (*UserDetail, error)
	DeleteUser(ctx context.Context, actor *domain.User, id int64) (*DeletedUser, error)
}

// AutomationFeedService serves the read-only views polled by the automation
// engine. It performs no authorization.
type AutomationFeedService interface {
	ListProjects(ctx context.Context) (*ProjectList, error)
	ListTasks(ctx context.Context) (*TaskList, error)
	LatestForecasts(ctx context.Context) (*ForecastList, error)
	ProjectOwnerContact(ctx context.Context, projectID int64) (*domain.ProjectOwnerContact, error)
	TaskOwnerContact(ctx context.Context, taskID int64) (*domain.TaskOwnerContact, error)
}

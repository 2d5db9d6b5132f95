package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
	"github.com/taskpilot/taskpilot/pkg/logger"
)

// AdminService implements user administration. Callers must already have
// passed the admin role check.
type AdminService struct {
	users    ports.UserRepository
	projects ports.ProjectRepository
	tasks    ports.TaskRepository
	tx       ports.TxManager
	logger   zerolog.Logger
}

func NewAdminService(
	users ports.UserRepository,
	projects ports.ProjectRepository,
	tasks ports.TaskRepository,
	tx ports.TxManager,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{
		users:    users,
		projects: projects,
		tasks:    tasks,
		tx:       tx,
		logger:   logger.Component(log, "admin_service"),
	}
}

func (s *AdminService) ListUsers(ctx context.Context, page ports.Page) ([]*domain.User, error) {
	return s.users.List(ctx, page.Normalize())
}

// GetUserDetail returns the user with every project they own and every task
// in those projects.
func (s *AdminService) GetUserDetail(ctx context.Context, id int64) (*ports.UserDetail, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	projects, _, err := s.projects.List(ctx, ports.ProjectFilter{OwnerID: &id})
	if err != nil {
		return nil, err
	}
	tasks, _, err := s.tasks.List(ctx, ports.TaskFilter{OwnerID: &id})
	if err != nil {
		return nil, err
	}
	return &ports.UserDetail{User: user, Projects: projects, Tasks: tasks}, nil
}

// DeleteUser removes a user and everything they own. An admin cannot delete
// their own account.
func (s *AdminService) DeleteUser(ctx context.Context, actor *domain.User, id int64) (*ports.DeletedUser, error) {
	if actor.ID == id {
		return nil, domain.NewValidationError("user_id", "cannot delete the current admin account")
	}

	var deleted ports.DeletedUser
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		_, count, err := s.projects.List(ctx, ports.ProjectFilter{OwnerID: &id, Page: ports.Page{Limit: 1}})
		if err != nil {
			return err
		}
		if err := s.users.Delete(ctx, id); err != nil {
			return err
		}
		deleted = ports.DeletedUser{Username: user.Username, ProjectCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", id).
		Int64("actor_id", actor.ID).
		Int64("projects", deleted.ProjectCount).
		Msg("user deleted")
	return &deleted, nil
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
	"github.com/taskpilot/taskpilot/pkg/logger"
)

const maxNameLen = 200

type ProjectService struct {
	projects ports.ProjectRepository
	guard    ports.AccessGuard
	tx       ports.TxManager
	logger   zerolog.Logger
}

func NewProjectService(projects ports.ProjectRepository, guard ports.AccessGuard, tx ports.TxManager, log zerolog.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		guard:    guard,
		tx:       tx,
		logger:   logger.Component(log, "project_service"),
	}
}

// Create stores a new project owned by actor.
func (s *ProjectService) Create(ctx context.Context, actor *domain.User, input ports.CreateProjectInput) (*domain.ProjectView, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	status := domain.ProjectPlanning
	if input.Status != "" {
		if status, err = domain.ParseProjectStatus(input.Status); err != nil {
			return nil, err
		}
	}
	if err := validateDateRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var view *domain.ProjectView
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		created, err := s.projects.Create(ctx, &domain.Project{
			OwnerID:     actor.ID,
			Name:        name,
			Description: input.Description,
			Status:      status,
			StartDate:   input.StartDate,
			EndDate:     input.EndDate,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		view, err = s.projects.FindByID(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("project_id", view.ID).Int64("owner_id", actor.ID).Msg("project created")
	return view, nil
}

func (s *ProjectService) Get(ctx context.Context, actor *domain.User, id int64) (*domain.ProjectView, error) {
	if err := s.guard.AuthorizeResourceAccess(ctx, actor, domain.ProjectRef(id)); err != nil {
		return nil, err
	}
	return s.projects.FindByID(ctx, id)
}

// List returns the actor's projects, or every project for an admin.
func (s *ProjectService) List(ctx context.Context, actor *domain.User, input ports.ListProjectsInput) (*ports.ProjectList, error) {
	filter := ports.ProjectFilter{Page: input.Page.Normalize()}
	if !actor.Role.IsAdmin() {
		filter.OwnerID = &actor.ID
	}
	if input.Status != "" {
		status, err := domain.ParseProjectStatus(input.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	items, total, err := s.projects.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.ProjectList{Items: items, Total: total}, nil
}

func (s *ProjectService) Update(ctx context.Context, actor *domain.User, id int64, input ports.UpdateProjectInput) (*domain.ProjectView, error) {
	var view *domain.ProjectView
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guard.AuthorizeResourceAccess(ctx, actor, domain.ProjectRef(id)); err != nil {
			return err
		}
		current, err := s.projects.FindByID(ctx, id)
		if err != nil {
			return err
		}

		p := current.Project
		if err := applyProjectUpdate(&p, input); err != nil {
			return err
		}
		p.UpdatedAt = time.Now().UTC()
		if err := s.projects.Update(ctx, &p); err != nil {
			return err
		}
		view, err = s.projects.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Delete removes the project and, through the store's cascade, its tasks.
func (s *ProjectService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guard.AuthorizeResourceAccess(ctx, actor, domain.ProjectRef(id)); err != nil {
			return err
		}
		return s.projects.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info().Int64("project_id", id).Int64("actor_id", actor.ID).Msg("project deleted")
	return nil
}

func applyProjectUpdate(p *domain.Project, input ports.UpdateProjectInput) error {
	if input.Name != nil {
		name, err := validateName(*input.Name)
		if err != nil {
			return err
		}
		p.Name = name
	}
	if input.Description != nil {
		p.Description = input.Description
	}
	if input.Status != nil {
		status, err := domain.ParseProjectStatus(*input.Status)
		if err != nil {
			return err
		}
		p.Status = status
	}
	if input.StartDate != nil {
		p.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		p.EndDate = input.EndDate
	}
	return validateDateRange(p.StartDate, p.EndDate)
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.NewValidationError("name", "must not be empty")
	}
	if len(name) > maxNameLen {
		return "", domain.NewValidationError("name", "must be at most 200 characters")
	}
	return name, nil
}

func validateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return domain.NewValidationError("end_date", "must not be before start_date")
	}
	return nil
}

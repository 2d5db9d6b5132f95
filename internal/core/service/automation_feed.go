package service

import (
	"context"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
)

// AutomationFeedService serves the unauthenticated polling endpoints of the
// automation engine. Every view is global: no owner scoping applies.
type AutomationFeedService struct {
	projects  ports.ProjectRepository
	tasks     ports.TaskRepository
	forecasts ports.ForecastRepository
	contacts  ports.ContactRepository
}

func NewAutomationFeedService(
	projects ports.ProjectRepository,
	tasks ports.TaskRepository,
	forecasts ports.ForecastRepository,
	contacts ports.ContactRepository,
) *AutomationFeedService {
	return &AutomationFeedService{
		projects:  projects,
		tasks:     tasks,
		forecasts: forecasts,
		contacts:  contacts,
	}
}

func (s *AutomationFeedService) ListProjects(ctx context.Context) (*ports.ProjectList, error) {
	items, total, err := s.projects.List(ctx, ports.ProjectFilter{})
	if err != nil {
		return nil, err
	}
	return &ports.ProjectList{Items: items, Total: total}, nil
}

func (s *AutomationFeedService) ListTasks(ctx context.Context) (*ports.TaskList, error) {
	items, total, err := s.tasks.List(ctx, ports.TaskFilter{})
	if err != nil {
		return nil, err
	}
	return &ports.TaskList{Items: items, Total: total}, nil
}

func (s *AutomationFeedService) LatestForecasts(ctx context.Context) (*ports.ForecastList, error) {
	items, err := s.forecasts.Latest(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &ports.ForecastList{Items: items, Total: int64(len(items))}, nil
}

func (s *AutomationFeedService) ProjectOwnerContact(ctx context.Context, projectID int64) (*domain.ProjectOwnerContact, error) {
	return s.contacts.ProjectOwnerContact(ctx, projectID)
}

func (s *AutomationFeedService) TaskOwnerContact(ctx context.Context, taskID int64) (*domain.TaskOwnerContact, error) {
	return s.contacts.TaskOwnerContact(ctx, taskID)
}

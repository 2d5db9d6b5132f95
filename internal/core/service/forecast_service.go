package service

import (
	"context"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
)

// ForecastService exposes the risk forecasts written by the automation engine.
// Non-admins only see forecasts of tasks in their own projects.
type ForecastService struct {
	forecasts ports.ForecastRepository
}

func NewForecastService(forecasts ports.ForecastRepository) *ForecastService {
	return &ForecastService{forecasts: forecasts}
}

func (s *ForecastService) List(ctx context.Context, actor *domain.User, input ports.ListForecastsInput) (*ports.ForecastList, error) {
	filter := ports.ForecastFilter{
		OwnerID: ownerScope(actor),
		TaskID:  input.TaskID,
		Page:    input.Page.Normalize(),
	}
	if input.RiskLevel != "" {
		level, err := domain.ParseRiskLevel(input.RiskLevel)
		if err != nil {
			return nil, err
		}
		filter.RiskLevel = &level
	}

	items, total, err := s.forecasts.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.ForecastList{Items: items, Total: total}, nil
}

// Latest returns the newest forecast of each visible task.
func (s *ForecastService) Latest(ctx context.Context, actor *domain.User) (*ports.ForecastList, error) {
	items, err := s.forecasts.Latest(ctx, ownerScope(actor))
	if err != nil {
		return nil, err
	}
	return &ports.ForecastList{Items: items, Total: int64(len(items))}, nil
}

// SimulationService exposes what-if simulation records.
type SimulationService struct {
	simulations ports.SimulationRepository
}

func NewSimulationService(simulations ports.SimulationRepository) *SimulationService {
	return &SimulationService{simulations: simulations}
}

func (s *SimulationService) List(ctx context.Context, actor *domain.User, input ports.ListSimulationsInput) (*ports.SimulationList, error) {
	items, total, err := s.simulations.List(ctx, ports.SimulationFilter{
		OwnerID:   ownerScope(actor),
		ProjectID: input.ProjectID,
		Page:      input.Page.Normalize(),
	})
	if err != nil {
		return nil, err
	}
	return &ports.SimulationList{Items: items, Total: total}, nil
}

// ownerScope returns nil for admins and the actor's id for everyone else.
func ownerScope(actor *domain.User) *int64 {
	if actor.Role.IsAdmin() {
		return nil
	}
	id := actor.ID
	return &id
}

package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
)

const forecastSelect = `
	SELECT f.id, f.task_id, t.name AS task_name, f.risk_level, f.risk_percentage,
	       f.predicted_delay_days, f.analysis, f.recommendations, f.created_at
	FROM forecast_logs f
	JOIN tasks t ON t.id = f.task_id
	JOIN projects p ON p.id = t.project_id`

// ForecastRepository reads the forecasts written by the automation engine.
type ForecastRepository struct {
	store
}

func NewForecastRepository(db *sqlx.DB) *ForecastRepository {
	return &ForecastRepository{store{db: db}}
}

func (r *ForecastRepository) List(ctx context.Context, filter ports.ForecastFilter) ([]*domain.Forecast, int64, error) {
	var c conditions
	if filter.OwnerID != nil {
		c.add("p.owner_id = ?", *filter.OwnerID)
	}
	if filter.TaskID != nil {
		c.add("f.task_id = ?", *filter.TaskID)
	}
	if filter.RiskLevel != nil {
		c.add("f.risk_level = ?", string(*filter.RiskLevel))
	}

	q := r.q(ctx)
	var total int64
	countQuery := `SELECT COUNT(*) FROM forecast_logs f
		JOIN tasks t ON t.id = f.task_id
		JOIN projects p ON p.id = t.project_id` + c.where()
	if err := q.GetContext(ctx, &total, q.Rebind(countQuery), c.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count forecasts: %w", err)
	}

	window, args := limitOffset(filter.Page, c.args)
	forecasts := []*domain.Forecast{}
	query := forecastSelect + c.where() + ` ORDER BY f.created_at DESC, f.id DESC` + window
	if err := q.SelectContext(ctx, &forecasts, q.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list forecasts: %w", err)
	}
	return forecasts, total, nil
}

// Latest picks the highest id per task, which is also the newest since ids
// only grow.
func (r *ForecastRepository) Latest(ctx context.Context, ownerID *int64) ([]*domain.Forecast, error) {
	var c conditions
	c.clauses = append(c.clauses, "f.id IN (SELECT MAX(id) FROM forecast_logs GROUP BY task_id)")
	if ownerID != nil {
		c.add("p.owner_id = ?", *ownerID)
	}

	q := r.q(ctx)
	forecasts := []*domain.Forecast{}
	if err := q.SelectContext(ctx, &forecasts, q.Rebind(forecastSelect+c.where()+` ORDER BY f.task_id`), c.args...); err != nil {
		return nil, fmt.Errorf("failed to list latest forecasts: %w", err)
	}
	return forecasts, nil
}

const simulationSelect = `
	SELECT s.id, s.project_id, s.scenario, s.affected_task_ids, s.total_delay_days,
	       s.analysis, s.recommendations, s.simulated_at
	FROM simulation_logs s
	JOIN projects p ON p.id = s.project_id`

type SimulationRepository struct {
	store
}

func NewSimulationRepository(db *sqlx.DB) *SimulationRepository {
	return &SimulationRepository{store{db: db}}
}

func (r *SimulationRepository) List(ctx context.Context, filter ports.SimulationFilter) ([]*domain.Simulation, int64, error) {
	var c conditions
	if filter.OwnerID != nil {
		c.add("p.owner_id = ?", *filter.OwnerID)
	}
	if filter.ProjectID != nil {
		c.add("s.project_id = ?", *filter.ProjectID)
	}

	q := r.q(ctx)
	var total int64
	countQuery := `SELECT COUNT(*) FROM simulation_logs s JOIN projects p ON p.id = s.project_id` + c.where()
	if err := q.GetContext(ctx, &total, q.Rebind(countQuery), c.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count simulations: %w", err)
	}

	window, args := limitOffset(filter.Page, c.args)
	sims := []*domain.Simulation{}
	query := simulationSelect + c.where() + ` ORDER BY s.simulated_at DESC, s.id DESC` + window
	if err := q.SelectContext(ctx, &sims, q.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list simulations: %w", err)
	}
	return sims, total, nil
}

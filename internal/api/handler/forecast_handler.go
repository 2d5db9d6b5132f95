package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
)

// ForecastHandler serves the read-only forecast and simulation history
// written by the automation engine.
type ForecastHandler struct {
	forecasts   ports.ForecastService
	simulations ports.SimulationService
}

func NewForecastHandler(forecasts ports.ForecastService, simulations ports.SimulationService) *ForecastHandler {
	return &ForecastHandler{forecasts: forecasts, simulations: simulations}
}

type forecastListResponse struct {
	Forecasts []*domain.Forecast `json:"forecasts"`
	Total     int64              `json:"total"`
}

type simulationListResponse struct {
	Simulations []*domain.Simulation `json:"simulations"`
	Total       int64                `json:"total"`
}

// @Summary      List forecasts
// @Tags         forecasts
// @Produce      json
// @Security     BearerAuth
// @Param        task_id     query     int     false  "Task filter"
// @Param        risk_level  query     string  false  "low, medium, high or critical"
// @Param        skip        query     int     false  "Offset"
// @Param        limit       query     int     false  "Page size (1-1000)"
// @Success      200         {object}  forecastListResponse
// @Router       /api/forecasts [get]
func (h *ForecastHandler) ListForecasts(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	taskID, err := queryInt64(c, "task_id")
	if err != nil {
		return err
	}
	page, err := pageQuery(c)
	if err != nil {
		return err
	}

	list, err := h.forecasts.List(c.Request().Context(), actor, ports.ListForecastsInput{
		TaskID:    taskID,
		RiskLevel: c.QueryParam("risk_level"),
		Page:      page,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, forecastListResponse{Forecasts: list.Items, Total: list.Total})
}

// @Summary      Latest forecast per task
// @Tags         forecasts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  forecastListResponse
// @Router       /api/forecasts/latest [get]
func (h *ForecastHandler) LatestForecasts(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	list, err := h.forecasts.Latest(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, forecastListResponse{Forecasts: list.Items, Total: list.Total})
}

// @Summary      List simulations
// @Tags         simulations
// @Produce      json
// @Security     BearerAuth
// @Param        project_id  query     int  false  "Project filter"
// @Param        skip        query     int  false  "Offset"
// @Param        limit       query     int  false  "Page size (1-1000)"
// @Success      200         {object}  simulationListResponse
// @Router       /api/simulations [get]
func (h *ForecastHandler) ListSimulations(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	projectID, err := queryInt64(c, "project_id")
	if err != nil {
		return err
	}
	page, err := pageQuery(c)
	if err != nil {
		return err
	}

	list, err := h.simulations.List(c.Request().Context(), actor, ports.ListSimulationsInput{
		ProjectID: projectID,
		Page:      page,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, simulationListResponse{Simulations: list.Items, Total: list.Total})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskpilot/taskpilot/internal/core/ports"
)

// AutomationHandler serves the unauthenticated polling feed used by the
// automation engine.
type AutomationHandler struct {
	feed ports.AutomationFeedService
}

func NewAutomationHandler(feed ports.AutomationFeedService) *AutomationHandler {
	return &AutomationHandler{feed: feed}
}

func (h *AutomationHandler) Projects(c echo.Context) error {
	list, err := h.feed.ListProjects(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projectListResponse{Projects: list.Items, Total: list.Total})
}

func (h *AutomationHandler) Tasks(c echo.Context) error {
	list, err := h.feed.ListTasks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, taskListResponse{Tasks: list.Items, Total: list.Total})
}

func (h *AutomationHandler) LatestForecasts(c echo.Context) error {
	list, err := h.feed.LatestForecasts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, forecastListResponse{Forecasts: list.Items, Total: list.Total})
}

func (h *AutomationHandler) ProjectOwner(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	contact, err := h.feed.ProjectOwnerContact(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *AutomationHandler) TaskOwner(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	contact, err := h.feed.TaskOwnerContact(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contact)
}

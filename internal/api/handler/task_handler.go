package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
)

type TaskHandler struct {
	tasks ports.TaskService
}

func NewTaskHandler(tasks ports.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type createTaskRequest struct {
	ProjectID      int64     `json:"project_id" validate:"required,gt=0"`
	Name           string    `json:"name" validate:"required,max=200"`
	Description    *string   `json:"description"`
	Priority       string    `json:"priority"`
	Status         string    `json:"status"`
	EstimatedHours *float64  `json:"estimated_hours" validate:"omitempty,gte=0"`
	Deadline       *flexTime `json:"deadline"`
}

type updateTaskRequest struct {
	Name           *string   `json:"name" validate:"omitempty,max=200"`
	Description    *string   `json:"description"`
	Priority       *string   `json:"priority"`
	Status         *string   `json:"status"`
	Progress       *int      `json:"progress"`
	EstimatedHours *float64  `json:"estimated_hours" validate:"omitempty,gte=0"`
	ActualHours    *float64  `json:"actual_hours" validate:"omitempty,gte=0"`
	Deadline       *flexTime `json:"deadline"`
}

type progressRequest struct {
	Progress *int `json:"progress" validate:"required"`
}

type taskListResponse struct {
	Tasks []*domain.TaskView `json:"tasks"`
	Total int64              `json:"total"`
}

// List returns tasks visible to the caller.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        project_id  query     int     false  "Project filter"
// @Param        status      query     string  false  "todo, in_progress, done or blocked"
// @Param        priority    query     string  false  "low, medium, high or critical"
// @Param        skip        query     int     false  "Offset"
// @Param        limit       query     int     false  "Page size (1-1000)"
// @Success      200         {object}  taskListResponse
// @Failure      400         {object}  map[string]string
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
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

	list, err := h.tasks.List(c.Request().Context(), actor, ports.ListTasksInput{
		ProjectID: projectID,
		Status:    c.QueryParam("status"),
		Priority:  c.QueryParam("priority"),
		Page:      page,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, taskListResponse{Tasks: list.Items, Total: list.Total})
}

// Create adds a task to a project the caller owns.
//
// @Summary      Create task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  domain.TaskView
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req createTaskRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	task, err := h.tasks.Create(c.Request().Context(), actor, ports.CreateTaskInput{
		ProjectID:      req.ProjectID,
		Name:           req.Name,
		Description:    req.Description,
		Priority:       req.Priority,
		Status:         req.Status,
		EstimatedHours: req.EstimatedHours,
		Deadline:       req.Deadline.ptr(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) Get(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	task, err := h.tasks.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Update(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	task, err := h.tasks.Update(c.Request().Context(), actor, id, ports.UpdateTaskInput{
		Name:           req.Name,
		Description:    req.Description,
		Priority:       req.Priority,
		Status:         req.Status,
		Progress:       req.Progress,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		Deadline:       req.Deadline.ptr(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// UpdateProgress sets the completion percentage and derives the status.
//
// @Summary      Update task progress
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int              true  "Task ID"
// @Param        body  body      progressRequest  true  "Progress 0-100"
// @Success      200   {object}  domain.TaskView
// @Failure      400   {object}  map[string]string
// @Router       /api/tasks/{id}/progress [patch]
func (h *TaskHandler) UpdateProgress(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req progressRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	task, err := h.tasks.UpdateProgress(c.Request().Context(), actor, id, *req.Progress)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Delete(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.tasks.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Task deleted", Success: true})
}

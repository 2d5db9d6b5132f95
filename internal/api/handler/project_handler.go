package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
)

type ProjectHandler struct {
	projects ports.ProjectService
}

func NewProjectHandler(projects ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type createProjectRequest struct {
	Name        string    `json:"name" validate:"required,max=200"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	StartDate   *flexTime `json:"start_date"`
	EndDate     *flexTime `json:"end_date"`
}

type updateProjectRequest struct {
	Name        *string   `json:"name" validate:"omitempty,max=200"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	StartDate   *flexTime `json:"start_date"`
	EndDate     *flexTime `json:"end_date"`
}

type projectListResponse struct {
	Projects []*domain.ProjectView `json:"projects"`
	Total    int64                 `json:"total"`
}

// List returns the caller's projects, or every project for admins.
//
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Project status"
// @Param        skip    query     int     false  "Offset"
// @Param        limit   query     int     false  "Page size (1-1000)"
// @Success      200     {object}  projectListResponse
// @Router       /api/projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	page, err := pageQuery(c)
	if err != nil {
		return err
	}

	list, err := h.projects.List(c.Request().Context(), actor, ports.ListProjectsInput{
		Status: c.QueryParam("status"),
		Page:   page,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projectListResponse{Projects: list.Items, Total: list.Total})
}

// Create adds a project owned by the caller.
//
// @Summary      Create project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProjectRequest  true  "Project"
// @Success      201   {object}  domain.ProjectView
// @Failure      400   {object}  map[string]string
// @Router       /api/projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req createProjectRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	project, err := h.projects.Create(c.Request().Context(), actor, ports.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate.ptr(),
		EndDate:     req.EndDate.ptr(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, project)
}

// @Summary      Get project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  domain.ProjectView
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	project, err := h.projects.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

// @Summary      Update project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Project ID"
// @Param        body  body      updateProjectRequest  true  "Fields to change"
// @Success      200   {object}  domain.ProjectView
// @Router       /api/projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateProjectRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	project, err := h.projects.Update(c.Request().Context(), actor, id, ports.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate.ptr(),
		EndDate:     req.EndDate.ptr(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

// @Summary      Delete project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  messageResponse
// @Router       /api/projects/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.projects.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Project deleted", Success: true})
}

package domain

import "time"

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

// ParseProjectStatus validates s against the allowed project statuses.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch ProjectStatus(s) {
	case ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return ProjectStatus(s), nil
	}
	return "", NewValidationError("status", "must be one of: planning, active, on_hold, completed, cancelled")
}

// Project is owned by exactly one user.
type Project struct {
	ID          int64         `json:"id" db:"id"`
	OwnerID     int64         `json:"owner_id" db:"owner_id"`
	Name        string        `json:"name" db:"name"`
	Description *string       `json:"description" db:"description"`
	Status      ProjectStatus `json:"status" db:"status"`
	StartDate   *time.Time    `json:"start_date" db:"start_date"`
	EndDate     *time.Time    `json:"end_date" db:"end_date"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// ProjectView is a project enriched with its owner's display name.
type ProjectView struct {
	Project
	OwnerName *string `json:"owner_name" db:"owner_name"`
}

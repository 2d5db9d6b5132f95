package domain

import (
	"fmt"
	"time"
)

// AutomationStatus is the outcome of one automation workflow execution.
type AutomationStatus string

const (
	AutomationSuccess AutomationStatus = "success"
	AutomationFailed  AutomationStatus = "failed"
	AutomationRunning AutomationStatus = "running"
)

// Workflow names recorded in the automation audit trail.
const (
	WorkflowTaskCompleted = "task-completed"
)

// AutomationLog records a single exchange with the automation engine.
type AutomationLog struct {
	EventID         string
	WorkflowName    string
	Status          AutomationStatus
	InputData       map[string]any
	OutputData      map[string]any
	ErrorMessage    string
	ExecutionTimeMs int64
	CreatedAt       time.Time
}

// TaskCompletedEvent is sent to the automation engine each time a task moves
// into the done status. CompletedAt identifies the transition and is not part
// of the payload.
type TaskCompletedEvent struct {
	EventID     string    `json:"event_id"`
	TaskID      int64     `json:"task_id"`
	ActualHours *float64  `json:"actual_hours"`
	CompletedAt time.Time `json:"-"`
}

// DedupKey is shared by every delivery of the same done transition, so a
// task reopened and completed again gets a fresh key.
func (e TaskCompletedEvent) DedupKey() string {
	return fmt.Sprintf("task-completed:%d:%d", e.TaskID, e.CompletedAt.UnixNano())
}

// ProjectOwnerContact is what the automation engine needs to email a
// project's owner. OwnerName falls back to the username when the full name
// is empty.
type ProjectOwnerContact struct {
	ProjectID   int64  `json:"project_id" db:"project_id"`
	ProjectName string `json:"project_name" db:"project_name"`
	OwnerID     int64  `json:"owner_id" db:"owner_id"`
	OwnerEmail  string `json:"owner_email" db:"owner_email"`
	OwnerName   string `json:"owner_name" db:"owner_name"`
}

// TaskOwnerContact extends the project contact with the task being reported.
type TaskOwnerContact struct {
	TaskID       int64        `json:"task_id" db:"task_id"`
	TaskName     string       `json:"task_name" db:"task_name"`
	TaskStatus   TaskStatus   `json:"task_status" db:"task_status"`
	TaskPriority TaskPriority `json:"task_priority" db:"task_priority"`
	TaskProgress int          `json:"task_progress" db:"task_progress"`
	TaskDeadline *time.Time   `json:"task_deadline" db:"task_deadline"`
	ProjectOwnerContact
}

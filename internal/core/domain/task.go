package domain

import "time"

// TaskStatus represents the workflow state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
	TaskBlocked    TaskStatus = "blocked"
)

// ParseTaskStatus validates s against the allowed task statuses.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskTodo, TaskInProgress, TaskDone, TaskBlocked:
		return TaskStatus(s), nil
	}
	return "", NewValidationError("status", "must be one of: todo, in_progress, done, blocked")
}

// TaskPriority ranks tasks within a project.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// ParseTaskPriority validates s against the allowed priorities.
func ParseTaskPriority(s string) (TaskPriority, error) {
	switch TaskPriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return TaskPriority(s), nil
	}
	return "", NewValidationError("priority", "must be one of: low, medium, high, critical")
}

const (
	MinProgress = 0
	MaxProgress = 100
)

// Task belongs to exactly one project. It has no owner field of its own:
// ownership is the owner of its project.
type Task struct {
	ID                 int64        `json:"id" db:"id"`
	ProjectID          int64        `json:"project_id" db:"project_id"`
	Name               string       `json:"name" db:"name"`
	Description        *string      `json:"description" db:"description"`
	Priority           TaskPriority `json:"priority" db:"priority"`
	Status             TaskStatus   `json:"status" db:"status"`
	Progress           int          `json:"progress" db:"progress"`
	EstimatedHours     *float64     `json:"estimated_hours" db:"estimated_hours"`
	ActualHours        *float64     `json:"actual_hours" db:"actual_hours"`
	Deadline           *time.Time   `json:"deadline" db:"deadline"`
	LastProgressUpdate *time.Time   `json:"last_progress_update" db:"last_progress_update"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at" db:"updated_at"`
}

// TaskView is a task enriched with its project name and owner identity.
type TaskView struct {
	Task
	ProjectName string  `json:"project_name" db:"project_name"`
	OwnerID     int64   `json:"owner_id" db:"owner_id"`
	OwnerName   *string `json:"owner_name" db:"owner_name"`
}

// ApplyProgress records a progress report and derives the status from it.
// It returns true only when this call moved the task into done, so repeating
// the same report does not complete the task twice.
func (t *Task) ApplyProgress(progress int, now time.Time) (bool, error) {
	if progress < MinProgress || progress > MaxProgress {
		return false, NewValidationError("progress", "must be between 0 and 100")
	}

	t.Progress = progress
	t.LastProgressUpdate = &now

	switch {
	case progress == MaxProgress && t.Status != TaskDone:
		t.Status = TaskDone
		return true, nil
	case progress > MinProgress && t.Status == TaskTodo:
		t.Status = TaskInProgress
	}
	return false, nil
}

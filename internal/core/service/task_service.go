package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
	"github.com/taskpilot/taskpilot/pkg/logger"
)

type TaskService struct {
	tasks    ports.TaskRepository
	guard    ports.AccessGuard
	tx       ports.TxManager
	notifier ports.CompletionNotifier
	metrics  ports.ServiceMetrics
	logger   zerolog.Logger
	now      func() time.Time
}

func NewTaskService(
	tasks ports.TaskRepository,
	guard ports.AccessGuard,
	tx ports.TxManager,
	notifier ports.CompletionNotifier,
	metrics ports.ServiceMetrics,
	log zerolog.Logger,
) *TaskService {
	return &TaskService{
		tasks:    tasks,
		guard:    guard,
		tx:       tx,
		notifier: notifier,
		metrics:  metricsOrNop(metrics),
		logger:   logger.Component(log, "task_service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create adds a task to a project the actor may act on.
func (s *TaskService) Create(ctx context.Context, actor *domain.User, input ports.CreateTaskInput) (*domain.TaskView, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	priority := domain.PriorityMedium
	if input.Priority != "" {
		if priority, err = domain.ParseTaskPriority(input.Priority); err != nil {
			return nil, err
		}
	}
	status := domain.TaskTodo
	if input.Status != "" {
		if status, err = domain.ParseTaskStatus(input.Status); err != nil {
			return nil, err
		}
	}
	if err := validateHours("estimated_hours", input.EstimatedHours); err != nil {
		return nil, err
	}

	now := s.now()
	var view *domain.TaskView
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guard.AuthorizeResourceAccess(ctx, actor, domain.ProjectRef(input.ProjectID)); err != nil {
			return err
		}
		created, err := s.tasks.Create(ctx, &domain.Task{
			ProjectID:      input.ProjectID,
			Name:           name,
			Description:    input.Description,
			Priority:       priority,
			Status:         status,
			Progress:       domain.MinProgress,
			EstimatedHours: input.EstimatedHours,
			Deadline:       input.Deadline,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			return err
		}
		view, err = s.tasks.FindByID(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("task_id", view.ID).Int64("project_id", view.ProjectID).Msg("task created")
	return view, nil
}

func (s *TaskService) Get(ctx context.Context, actor *domain.User, id int64) (*domain.TaskView, error) {
	if err := s.guard.AuthorizeResourceAccess(ctx, actor, domain.TaskRef(id)); err != nil {
		return nil, err
	}
	return s.tasks.FindByID(ctx, id)
}

// List returns tasks of the actor's projects, or every task for an admin.
func (s *TaskService) List(ctx context.Context, actor *domain.User, input ports.ListTasksInput) (*ports.TaskList, error) {
	filter := ports.TaskFilter{ProjectID: input.ProjectID, Page: input.Page.Normalize()}
	if !actor.Role.IsAdmin() {
		filter.OwnerID = &actor.ID
	}
	if input.Status != "" {
		status, err := domain.ParseTaskStatus(input.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if input.Priority != "" {
		priority, err := domain.ParseTaskPriority(input.Priority)
		if err != nil {
			return nil, err
		}
		filter.Priority = &priority
	}

	items, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.TaskList{Items: items, Total: total}, nil
}

// Update applies a partial update. Moving the task into done from any other
// status emits one completion notification after commit.
func (s *TaskService) Update(ctx context.Context, actor *domain.User, id int64, input ports.UpdateTaskInput) (*domain.TaskView, error) {
	var (
		view          *domain.TaskView
		justCompleted bool
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guard.AuthorizeResourceAccess(ctx, actor, domain.TaskRef(id)); err != nil {
			return err
		}
		current, err := s.tasks.FindByID(ctx, id)
		if err != nil {
			return err
		}

		t := current.Task
		wasDone := t.Status == domain.TaskDone
		if err := s.applyTaskUpdate(&t, input); err != nil {
			return err
		}
		t.UpdatedAt = s.now()
		if err := s.tasks.Update(ctx, &t); err != nil {
			return err
		}
		justCompleted = !wasDone && t.Status == domain.TaskDone

		view, err = s.tasks.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if justCompleted {
		s.taskCompleted(&view.Task, "update")
	}
	return view, nil
}

// UpdateProgress records a progress report and derives the status from it.
func (s *TaskService) UpdateProgress(ctx context.Context, actor *domain.User, id int64, progress int) (*domain.TaskView, error) {
	var (
		view          *domain.TaskView
		justCompleted bool
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guard.AuthorizeResourceAccess(ctx, actor, domain.TaskRef(id)); err != nil {
			return err
		}
		current, err := s.tasks.FindByID(ctx, id)
		if err != nil {
			return err
		}

		t := current.Task
		now := s.now()
		if justCompleted, err = t.ApplyProgress(progress, now); err != nil {
			return err
		}
		t.UpdatedAt = now
		if err := s.tasks.Update(ctx, &t); err != nil {
			return err
		}
		view, err = s.tasks.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if justCompleted {
		s.taskCompleted(&view.Task, "progress")
	}
	return view, nil
}

func (s *TaskService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guard.AuthorizeResourceAccess(ctx, actor, domain.TaskRef(id)); err != nil {
			return err
		}
		return s.tasks.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info().Int64("task_id", id).Int64("actor_id", actor.ID).Msg("task deleted")
	return nil
}

// taskCompleted runs after commit and never fails the request.
func (s *TaskService) taskCompleted(t *domain.Task, via string) {
	s.metrics.TaskCompleted(via)
	if s.notifier == nil {
		return
	}
	event := domain.TaskCompletedEvent{
		EventID:     uuid.NewString(),
		TaskID:      t.ID,
		ActualHours: t.ActualHours,
		CompletedAt: t.UpdatedAt,
	}
	if !s.notifier.Enqueue(event) {
		s.logger.Warn().Int64("task_id", t.ID).Msg("completion notification dropped")
	}
}

func (s *TaskService) applyTaskUpdate(t *domain.Task, input ports.UpdateTaskInput) error {
	if input.Name != nil {
		name, err := validateName(*input.Name)
		if err != nil {
			return err
		}
		t.Name = name
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.Priority != nil {
		priority, err := domain.ParseTaskPriority(*input.Priority)
		if err != nil {
			return err
		}
		t.Priority = priority
	}
	if input.Status != nil {
		status, err := domain.ParseTaskStatus(*input.Status)
		if err != nil {
			return err
		}
		t.Status = status
	}
	if input.Progress != nil {
		p := *input.Progress
		if p < domain.MinProgress || p > domain.MaxProgress {
			return domain.NewValidationError("progress", "must be between 0 and 100")
		}
		now := s.now()
		t.Progress = p
		t.LastProgressUpdate = &now
	}
	if input.EstimatedHours != nil {
		if err := validateHours("estimated_hours", input.EstimatedHours); err != nil {
			return err
		}
		t.EstimatedHours = input.EstimatedHours
	}
	if input.ActualHours != nil {
		if err := validateHours("actual_hours", input.ActualHours); err != nil {
			return err
		}
		t.ActualHours = input.ActualHours
	}
	if input.Deadline != nil {
		t.Deadline = input.Deadline
	}
	return nil
}

func validateHours(field string, h *float64) error {
	if h != nil && *h < 0 {
		return domain.NewValidationError(field, "must not be negative")
	}
	return nil
}

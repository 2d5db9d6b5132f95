package service

import (
	"context"
	"errors"
	"testing"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
)

func ptr[T any](v T) *T { return &v }

func TestTaskService_Create_RequiresProjectOwnership(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser("owner", domain.RoleUser)
	other := f.addUser("other", domain.RoleUser)
	project := f.addProject(owner, "P")
	before := f.writes()

	_, err := f.tasks.Create(context.Background(), other, ports.CreateTaskInput{ProjectID: project.ID, Name: "sneaky"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if f.writes() != before {
		t.Fatalf("expected no writes after denied create")
	}

	_, err = f.tasks.Create(context.Background(), owner, ports.CreateTaskInput{ProjectID: 999, Name: "orphan"})
	if !errors.Is(err, domain.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}

	view, err := f.tasks.Create(context.Background(), owner, ports.CreateTaskInput{ProjectID: project.ID, Name: "ok"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Status != domain.TaskTodo || view.Priority != domain.PriorityMedium || view.Progress != 0 {
		t.Fatalf("unexpected defaults: %+v", view.Task)
	}
	if view.ProjectName != "P" || view.OwnerID != owner.ID {
		t.Fatalf("expected enriched view, got %+v", view)
	}
}

func TestTaskService_Create_InvalidEnum(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser("owner", domain.RoleUser)
	project := f.addProject(owner, "P")

	_, err := f.tasks.Create(context.Background(), owner, ports.CreateTaskInput{ProjectID: project.ID, Name: "x", Priority: "urgent"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestTaskService_NonOwnerCannotMutate(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser("owner", domain.RoleUser)
	other := f.addUser("other", domain.RoleUser)
	project := f.addProject(owner, "P")
	task := f.addTask(project, "T", domain.TaskTodo)
	before := f.writes()

	if _, err := f.tasks.Get(context.Background(), other, task.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("get: expected ErrForbidden, got %v", err)
	}
	if _, err := f.tasks.Update(context.Background(), other, task.ID, ports.UpdateTaskInput{Name: ptr("hijacked")}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("update: expected ErrForbidden, got %v", err)
	}
	if _, err := f.tasks.UpdateProgress(context.Background(), other, task.ID, 50); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("progress: expected ErrForbidden, got %v", err)
	}
	if err := f.tasks.Delete(context.Background(), other, task.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("delete: expected ErrForbidden, got %v", err)
	}

	if f.writes() != before {
		t.Fatalf("expected no writes, got %d", f.writes()-before)
	}
	if got := f.store.tasks[task.ID]; got.Name != "T" || got.Progress != 0 {
		t.Fatalf("task mutated by non-owner: %+v", got)
	}
}

func TestTaskService_AdminBypassesOwnership(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser("owner", domain.RoleUser)
	admin := f.addUser("admin", domain.RoleAdmin)
	task := f.addTask(f.addProject(owner, "P"), "T", domain.TaskTodo)

	view, err := f.tasks.Update(context.Background(), admin, task.ID, ports.UpdateTaskInput{Priority: ptr("critical")})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if view.Priority != domain.PriorityCritical {
		t.Fatalf("expected critical priority, got %s", view.Priority)
	}
}

func TestTaskService_MissingTaskIs404(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser("admin", domain.RoleAdmin)

	if _, err := f.tasks.Get(context.Background(), admin, 42); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_UpdateProgress_CompletesOnce(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser("owner", domain.RoleUser)
	task := f.addTask(f.addProject(owner, "P"), "T", domain.TaskTodo)

	view, err := f.tasks.UpdateProgress(context.Background(), owner, task.ID, 30)
	if err != nil {
		t.Fatalf("progress 30: %v", err)
	}
	if view.Status != domain.TaskInProgress || view.LastProgressUpdate == nil {
		t.Fatalf("expected in_progress with timestamp, got %+v", view.Task)
	}
	if f.notifier.count() != 0 {
		t.Fatalf("expected no notification yet")
	}

	view, err = f.tasks.UpdateProgress(context.Background(), owner, task.ID, 100)
	if err != nil {
		t.Fatalf("progress 100: %v", err)
	}
	if view.Status != domain.TaskDone {
		t.Fatalf("expected done, got %s", view.Status)
	}
	if f.notifier.count() != 1 {
		t.Fatalf("expected one notification, got %d", f.notifier.count())
	}

	if _, err := f.tasks.UpdateProgress(context.Background(), owner, task.ID, 100); err != nil {
		t.Fatalf("repeat progress 100: %v", err)
	}
	if f.notifier.count() != 1 {
		t.Fatalf("expected still one notification, got %d", f.notifier.count())
	}

	ev := f.notifier.events[0]
	if ev.TaskID != task.ID || ev.EventID == "" || ev.CompletedAt.IsZero() {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if len(f.metrics.completed) != 1 || f.metrics.completed[0] != "progress" {
		t.Fatalf("expected one completion counted via progress, got %v", f.metrics.completed)
	}
}

func TestTaskService_UpdateProgress_OutOfRangeRollsBack(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser("owner", domain.RoleUser)
	task := f.addTask(f.addProject(owner, "P"), "T", domain.TaskTodo)
	before := f.writes()

	_, err := f.tasks.UpdateProgress(context.Background(), owner, task.ID, 150)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if f.writes() != before || f.tx.failures != 1 {
		t.Fatalf("expected failed transaction without writes")
	}
}

func TestTaskService_Update_StatusDoneNotifies(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser("owner", domain.RoleUser)
	task := f.addTask(f.addProject(owner, "P"), "T", domain.TaskInProgress)

	view, err := f.tasks.Update(context.Background(), owner, task.ID, ports.UpdateTaskInput{
		Status:      ptr("done"),
		ActualHours: ptr(6.5),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if view.Status != domain.TaskDone {
		t.Fatalf("expected done, got %s", view.Status)
	}
	if f.notifier.count() != 1 || *f.notifier.events[0].ActualHours != 6.5 {
		t.Fatalf("expected one notification carrying actual hours, got %+v", f.notifier.events)
	}

	if _, err := f.tasks.Update(context.Background(), owner, task.ID, ports.UpdateTaskInput{Status: ptr("done")}); err != nil {
		t.Fatalf("second update: %v", err)
	}
	if f.notifier.count() != 1 {
		t.Fatalf("expected no second notification")
	}
}

func TestTaskService_DroppedNotificationDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.notifier.full = true
	owner := f.addUser("owner", domain.RoleUser)
	task := f.addTask(f.addProject(owner, "P"), "T", domain.TaskTodo)

	view, err := f.tasks.UpdateProgress(context.Background(), owner, task.ID, 100)
	if err != nil {
		t.Fatalf("expected success despite full queue, got %v", err)
	}
	if view.Status != domain.TaskDone {
		t.Fatalf("expected done, got %s", view.Status)
	}
}

func TestTaskService_List_ScopedAndFiltered(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser("alice", domain.RoleUser)
	bob := f.addUser("bob", domain.RoleUser)
	admin := f.addUser("admin", domain.RoleAdmin)
	pa := f.addProject(alice, "A")
	pb := f.addProject(bob, "B")
	f.addTask(pa, "a1", domain.TaskTodo)
	f.addTask(pa, "a2", domain.TaskDone)
	f.addTask(pb, "b1", domain.TaskTodo)

	res, err := f.tasks.List(context.Background(), alice, ports.ListTasksInput{})
	if err != nil || res.Total != 2 {
		t.Fatalf("expected alice to see 2 tasks, got %+v err=%v", res, err)
	}

	res, _ = f.tasks.List(context.Background(), alice, ports.ListTasksInput{ProjectID: &pb.ID})
	if res.Total != 0 {
		t.Fatalf("expected project filter to stay owner scoped, got %d", res.Total)
	}

	res, _ = f.tasks.List(context.Background(), admin, ports.ListTasksInput{Status: "todo"})
	if res.Total != 2 {
		t.Fatalf("expected admin to see 2 todo tasks, got %d", res.Total)
	}

	res, _ = f.tasks.List(context.Background(), admin, ports.ListTasksInput{Page: ports.Page{Skip: 1, Limit: 1}})
	if res.Total != 3 || len(res.Items) != 1 {
		t.Fatalf("expected page of 1 out of 3, got %d/%d", len(res.Items), res.Total)
	}

	if _, err := f.tasks.List(context.Background(), admin, ports.ListTasksInput{Priority: "urgent"}); err == nil {
		t.Fatalf("expected error for invalid priority filter")
	}
}

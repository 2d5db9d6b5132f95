package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/security"
)

func TestAccessGuard_RequireAuthenticated(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser("alice", domain.RoleUser)

	token, err := f.tokens.Issue(alice.ID, alice.Role, security.ExtraClaims{}, 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	user, err := f.guard.RequireAuthenticated(context.Background(), token)
	if err != nil {
		t.Fatalf("RequireAuthenticated: %v", err)
	}
	if user.ID != alice.ID {
		t.Fatalf("expected user %d, got %d", alice.ID, user.ID)
	}
}

func TestAccessGuard_RequireAuthenticated_Failures(t *testing.T) {
	f := newFixture(t)

	if _, err := f.guard.RequireAuthenticated(context.Background(), ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty token, got %v", err)
	}
	if _, err := f.guard.RequireAuthenticated(context.Background(), "garbage"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	expired, _ := f.tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		Issue(1, domain.RoleUser, security.ExtraClaims{}, time.Minute)
	if _, err := f.guard.RequireAuthenticated(context.Background(), expired); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestAccessGuard_DeletedUserIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	bob := f.addUser("bob", domain.RoleUser)
	token, _ := f.tokens.Issue(bob.ID, bob.Role, security.ExtraClaims{}, 0)

	if err := (stubUserRepo{f.store}).Delete(context.Background(), bob.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for name, check := range map[string]func(context.Context, string) (*domain.User, error){
		"authenticated": f.guard.RequireAuthenticated,
		"admin":         f.guard.RequireAdmin,
	} {
		_, err := check(context.Background(), token)
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized for deleted subject, got %v", name, err)
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("%s: deleted subject must not surface as not found", name)
		}
	}
}

func TestAccessGuard_RequireAdmin(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser("root", domain.RoleAdmin)
	user := f.addUser("carol", domain.RoleUser)

	adminToken, _ := f.tokens.Issue(admin.ID, admin.Role, security.ExtraClaims{}, 0)
	userToken, _ := f.tokens.Issue(user.ID, user.Role, security.ExtraClaims{}, 0)

	if _, err := f.guard.RequireAdmin(context.Background(), adminToken); err != nil {
		t.Fatalf("expected admin to pass, got %v", err)
	}
	if _, err := f.guard.RequireAdmin(context.Background(), userToken); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(f.metrics.denied) != 1 || f.metrics.denied[0] != "admin" {
		t.Fatalf("expected one admin denial counted, got %v", f.metrics.denied)
	}
}

func TestAccessGuard_RoleComesFromStoreNotToken(t *testing.T) {
	f := newFixture(t)
	user := f.addUser("mallory", domain.RoleUser)

	// a token claiming admin for a plain user still resolves to the stored role
	token, _ := f.tokens.Issue(user.ID, domain.RoleAdmin, security.ExtraClaims{}, 0)
	if _, err := f.guard.RequireAdmin(context.Background(), token); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAccessGuard_AuthorizeResourceAccess(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser("owner", domain.RoleUser)
	other := f.addUser("other", domain.RoleUser)
	admin := f.addUser("admin", domain.RoleAdmin)
	project := f.addProject(owner, "P")
	task := f.addTask(project, "T", domain.TaskTodo)

	tests := []struct {
		name  string
		actor *domain.User
		ref   domain.ResourceRef
		want  error
	}{
		{"owner project", owner, domain.ProjectRef(project.ID), nil},
		{"owner task", owner, domain.TaskRef(task.ID), nil},
		{"other project", other, domain.ProjectRef(project.ID), domain.ErrForbidden},
		{"other task", other, domain.TaskRef(task.ID), domain.ErrForbidden},
		{"admin task", admin, domain.TaskRef(task.ID), nil},
		{"missing project", other, domain.ProjectRef(999), domain.ErrProjectNotFound},
		{"missing task", admin, domain.TaskRef(999), domain.ErrTaskNotFound},
		{"no actor", nil, domain.ProjectRef(project.ID), domain.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.guard.AuthorizeResourceAccess(context.Background(), tt.actor, tt.ref)
			if tt.want == nil && err != nil {
				t.Fatalf("expected access, got %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

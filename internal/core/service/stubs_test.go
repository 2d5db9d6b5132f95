package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
	"github.com/taskpilot/taskpilot/internal/core/security"
)

// memStore is an in-memory stand-in for the relational repositories.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*domain.User
	projects map[int64]*domain.Project
	tasks    map[int64]*domain.Task

	// counts mutating calls so tests can assert nothing was written
	writes int
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[int64]*domain.User),
		projects: make(map[int64]*domain.Project),
		tasks:    make(map[int64]*domain.Task),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type stubUserRepo struct{ *memStore }

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
		if u.Username == user.Username {
			return nil, domain.ErrUsernameTaken
		}
	}
	r.writes++
	c := cloneUser(user)
	c.ID = r.id()
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r stubUserRepo) List(_ context.Context, page ports.Page) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, page), nil
}

func (r stubUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	r.writes++
	delete(r.users, id)
	for pid, p := range r.projects {
		if p.OwnerID == id {
			r.deleteProjectLocked(pid)
		}
	}
	return nil
}

type stubProjectRepo struct{ *memStore }

func (r stubProjectRepo) Create(_ context.Context, p *domain.Project) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	c := *p
	c.ID = r.id()
	r.projects[c.ID] = &c
	out := c
	return &out, nil
}

func (r stubProjectRepo) view(p *domain.Project) *domain.ProjectView {
	v := &domain.ProjectView{Project: *p}
	if u, ok := r.users[p.OwnerID]; ok {
		name := u.FullName
		v.OwnerName = &name
	}
	return v
}

func (r stubProjectRepo) FindByID(_ context.Context, id int64) (*domain.ProjectView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return r.view(p), nil
}

func (r stubProjectRepo) List(_ context.Context, f ports.ProjectFilter) ([]*domain.ProjectView, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ProjectView
	for _, p := range r.projects {
		if f.OwnerID != nil && p.OwnerID != *f.OwnerID {
			continue
		}
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		out = append(out, r.view(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, f.Page), int64(len(out)), nil
}

func (r stubProjectRepo) Update(_ context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[p.ID]; !ok {
		return domain.ErrProjectNotFound
	}
	r.writes++
	c := *p
	r.projects[p.ID] = &c
	return nil
}

func (r stubProjectRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return domain.ErrProjectNotFound
	}
	r.writes++
	r.deleteProjectLocked(id)
	return nil
}

func (s *memStore) deleteProjectLocked(id int64) {
	delete(s.projects, id)
	for tid, t := range s.tasks {
		if t.ProjectID == id {
			delete(s.tasks, tid)
		}
	}
}

type stubTaskRepo struct{ *memStore }

func (r stubTaskRepo) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[t.ProjectID]; !ok {
		return nil, domain.ErrProjectNotFound
	}
	r.writes++
	c := *t
	c.ID = r.id()
	r.tasks[c.ID] = &c
	out := c
	return &out, nil
}

func (r stubTaskRepo) view(t *domain.Task) *domain.TaskView {
	v := &domain.TaskView{Task: *t}
	if p, ok := r.projects[t.ProjectID]; ok {
		v.ProjectName = p.Name
		v.OwnerID = p.OwnerID
		if u, ok := r.users[p.OwnerID]; ok {
			name := u.FullName
			v.OwnerName = &name
		}
	}
	return v
}

func (r stubTaskRepo) FindByID(_ context.Context, id int64) (*domain.TaskView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return r.view(t), nil
}

func (r stubTaskRepo) List(_ context.Context, f ports.TaskFilter) ([]*domain.TaskView, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.TaskView
	for _, t := range r.tasks {
		v := r.view(t)
		if f.OwnerID != nil && v.OwnerID != *f.OwnerID {
			continue
		}
		if f.ProjectID != nil && t.ProjectID != *f.ProjectID {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, f.Page), int64(len(out)), nil
}

func (r stubTaskRepo) Update(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	r.writes++
	c := *t
	r.tasks[t.ID] = &c
	return nil
}

func (r stubTaskRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	r.writes++
	delete(r.tasks, id)
	return nil
}

// ResolveOwner implements ports.OwnerResolver.
func (s *memStore) ResolveOwner(_ context.Context, ref domain.ResourceRef) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ref.Kind {
	case domain.ResourceProject:
		if p, ok := s.projects[ref.ID]; ok {
			return p.OwnerID, nil
		}
	case domain.ResourceTask:
		if t, ok := s.tasks[ref.ID]; ok {
			if p, ok := s.projects[t.ProjectID]; ok {
				return p.OwnerID, nil
			}
		}
	}
	return 0, ref.NotFound()
}

func window[T any](items []T, page ports.Page) []T {
	if page.Skip >= len(items) {
		return []T{}
	}
	items = items[page.Skip:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

// passthroughTx runs fn directly and records whether it failed.
type passthroughTx struct {
	calls    int
	failures int
}

func (tx *passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	if err := fn(ctx); err != nil {
		tx.failures++
		return err
	}
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.TaskCompletedEvent
	full   bool
}

func (n *recordingNotifier) Enqueue(e domain.TaskCompletedEvent) bool {
	if n.full {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return true
}

type recordingMetrics struct {
	mu        sync.Mutex
	denied    []string
	completed []string
}

func (m *recordingMetrics) AccessDenied(resource string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denied = append(m.denied, resource)
}

func (m *recordingMetrics) TaskCompleted(via string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, via)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// fixture wires every service over one memStore.
type fixture struct {
	store    *memStore
	tx       *passthroughTx
	notifier *recordingNotifier
	metrics  *recordingMetrics
	tokens   *security.TokenService
	guard    *AccessGuard
	auth     *AuthService
	projects *ProjectService
	tasks    *TaskService
	admin    *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	tx := &passthroughTx{}
	notifier := &recordingNotifier{}
	metrics := &recordingMetrics{}
	tokens, err := security.NewTokenService(security.TokenConfig{Secret: "test-secret", TTL: time.Hour})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	log := zerolog.Nop()

	users := stubUserRepo{store}
	projects := stubProjectRepo{store}
	tasks := stubTaskRepo{store}
	guard := NewAccessGuard(tokens, NewIdentityResolver(users), store, metrics, log)

	return &fixture{
		store:    store,
		tx:       tx,
		notifier: notifier,
		metrics:  metrics,
		tokens:   tokens,
		guard:    guard,
		auth:     NewAuthService(users, tx, hasher, tokens, time.Hour, log),
		projects: NewProjectService(projects, guard, tx, log),
		tasks:    NewTaskService(tasks, guard, tx, notifier, metrics, log),
		admin:    NewAdminService(users, projects, tasks, tx, log),
	}
}

func (f *fixture) addUser(username string, role domain.Role) *domain.User {
	u, err := stubUserRepo{f.store}.Create(context.Background(), &domain.User{
		Email:    username + "@example.com",
		Username: username,
		FullName: username,
		Role:     role,
	})
	if err != nil {
		panic(err)
	}
	return u
}

func (f *fixture) addProject(owner *domain.User, name string) *domain.Project {
	p, err := stubProjectRepo{f.store}.Create(context.Background(), &domain.Project{
		OwnerID: owner.ID,
		Name:    name,
		Status:  domain.ProjectActive,
	})
	if err != nil {
		panic(err)
	}
	return p
}

func (f *fixture) addTask(project *domain.Project, name string, status domain.TaskStatus) *domain.Task {
	t, err := stubTaskRepo{f.store}.Create(context.Background(), &domain.Task{
		ProjectID: project.ID,
		Name:      name,
		Status:    status,
		Priority:  domain.PriorityMedium,
	})
	if err != nil {
		panic(err)
	}
	return t
}

func (f *fixture) writes() int {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.writes
}

// Package repositorytest provides in-memory repositories for tests.
package repositorytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
)

var (
	_ repository.UserRepository = (*Users)(nil)
	_ repository.TaskRepository = (*Tasks)(nil)
)

// Users is an in-memory UserRepository.
type Users struct {
	mu    sync.Mutex
	users map[string]domain.User

	// Err, when set, is returned by every call.
	Err error
}

// NewUsers returns an empty user store.
func NewUsers() *Users {
	return &Users{users: make(map[string]domain.User)}
}

func (u *Users) Create(_ context.Context, user *domain.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return u.Err
	}
	if _, ok := u.users[user.Username]; ok {
		return repository.ErrDuplicate
	}
	user.CreatedAt = time.Now().UTC()
	u.users[user.Username] = *user
	return nil
}

func (u *Users) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	user, ok := u.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

// Tasks is an in-memory TaskRepository with sequential ids.
type Tasks struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]domain.Task

	// Err, when set, is returned by every call.
	Err error
}

// NewTasks returns an empty task store.
func NewTasks() *Tasks {
	return &Tasks{tasks: make(map[int64]domain.Task)}
}

func (t *Tasks) Create(_ context.Context, task *domain.Task) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return t.Err
	}
	t.nextID++
	now := time.Now().UTC()
	task.ID = t.nextID
	task.CreatedAt = now
	task.UpdatedAt = now
	t.tasks[task.ID] = *task
	return nil
}

func (t *Tasks) ListByOwner(_ context.Context, owner string) ([]domain.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return nil, t.Err
	}
	out := make([]domain.Task, 0)
	for _, task := range t.tasks {
		if task.Owner == owner {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *Tasks) GetForOwner(_ context.Context, id int64, owner string) (*domain.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return nil, t.Err
	}
	task, ok := t.tasks[id]
	if !ok || task.Owner != owner {
		return nil, pgx.ErrNoRows
	}
	return &task, nil
}

func (t *Tasks) Update(_ context.Context, task *domain.Task) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return t.Err
	}
	stored, ok := t.tasks[task.ID]
	if !ok || stored.Owner != task.Owner {
		return pgx.ErrNoRows
	}
	stored.Task = task.Task
	stored.IsCompleted = task.IsCompleted
	stored.UpdatedAt = time.Now().UTC()
	t.tasks[task.ID] = stored
	task.UpdatedAt = stored.UpdatedAt
	return nil
}

func (t *Tasks) Delete(_ context.Context, id int64, owner string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return t.Err
	}
	task, ok := t.tasks[id]
	if !ok || task.Owner != owner {
		return pgx.ErrNoRows
	}
	delete(t.tasks, id)
	return nil
}

// ActiveTokens is an in-memory allow-list of session tokens.
type ActiveTokens struct {
	mu     sync.Mutex
	tokens map[string]struct{}
}

// NewActiveTokens returns an empty allow-list.
func NewActiveTokens() *ActiveTokens {
	return &ActiveTokens{tokens: make(map[string]struct{})}
}

func (a *ActiveTokens) Add(_ context.Context, token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokens[token] = struct{}{}
	return nil
}

func (a *ActiveTokens) Exists(_ context.Context, token string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.tokens[token]
	return ok, nil
}

func (a *ActiveTokens) Remove(_ context.Context, token string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.tokens[token]
	delete(a.tokens, token)
	return ok, nil
}

// Len reports how many tokens are active.
func (a *ActiveTokens) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.tokens)
}

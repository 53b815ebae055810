package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/events"
	"github.com/spec-kit/task-service/internal/observability"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// ErrTaskNotFound is returned for missing tasks and tasks of other owners.
var ErrTaskNotFound = apperrors.NewDomainError("NOT_FOUND", "Task not found", http.StatusNotFound, nil)

// TaskService coordinates per-owner task workflows.
type TaskService struct {
	tasks      repository.TaskRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// TaskDependencies bundles collaborators for task service.
type TaskDependencies struct {
	TaskRepo   repository.TaskRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		tasks:      deps.TaskRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// ListTasks returns every task owned by owner.
func (s *TaskService) ListTasks(ctx context.Context, owner string) ([]domain.Task, error) {
	return s.tasks.ListByOwner(ctx, owner)
}

// CreateTask stores a new task for owner.
func (s *TaskService) CreateTask(ctx context.Context, owner, text string, completed bool) (*domain.Task, error) {
	task := &domain.Task{Task: text, IsCompleted: completed, Owner: owner}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.metrics.RecordTaskOperation("create")
	s.publish(ctx, events.EventTaskCreated, task, events.TaskChangedPayload{Task: task.Task, IsCompleted: task.IsCompleted})
	return task, nil
}

// ReplaceTask overwrites both fields of an owned task.
func (s *TaskService) ReplaceTask(ctx context.Context, owner string, id int64, text string, completed bool) (*domain.Task, error) {
	return s.PatchTask(ctx, owner, id, domain.TaskPatch{Task: &text, IsCompleted: &completed})
}

// PatchTask updates only the fields set in patch.
func (s *TaskService) PatchTask(ctx context.Context, owner string, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	task, err := s.tasks.GetForOwner(ctx, id, owner)
	if err != nil {
		return nil, notFoundOr(err, "get task")
	}

	if patch.Task != nil {
		task.Task = *patch.Task
	}
	if patch.IsCompleted != nil {
		task.IsCompleted = *patch.IsCompleted
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, notFoundOr(err, "update task")
	}

	s.metrics.RecordTaskOperation("update")
	s.publish(ctx, events.EventTaskUpdated, task, events.TaskChangedPayload{
		Task:        task.Task,
		IsCompleted: task.IsCompleted,
		Partial:     patch.Task == nil || patch.IsCompleted == nil,
	})
	return task, nil
}

// DeleteTask removes an owned task.
func (s *TaskService) DeleteTask(ctx context.Context, owner string, id int64) error {
	if err := s.tasks.Delete(ctx, id, owner); err != nil {
		return notFoundOr(err, "delete task")
	}
	s.metrics.RecordTaskOperation("delete")
	s.publish(ctx, events.EventTaskDeleted, &domain.Task{ID: id, Owner: owner}, nil)
	return nil
}

func (s *TaskService) publish(ctx context.Context, eventType events.EventType, task *domain.Task, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TaskID:    task.ID,
		Owner:     task.Owner,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrTaskNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

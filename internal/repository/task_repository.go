package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/task-service/internal/domain"
)

// TaskRepository encapsulates task persistence. Every read and write is
// scoped to an owner; a task of another owner behaves as missing.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	ListByOwner(ctx context.Context, owner string) ([]domain.Task, error)
	GetForOwner(ctx context.Context, id int64, owner string) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id int64, owner string) error
}

type taskRepository struct {
	db DBTX
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(db DBTX) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (task, is_completed, owner)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		task.Task,
		task.IsCompleted,
		task.Owner,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Task, error) {
	const query = `
        SELECT id, task, is_completed, owner, created_at, updated_at
        FROM tasks WHERE owner=$1
        ORDER BY id`
	rows, err := r.db.Query(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) GetForOwner(ctx context.Context, id int64, owner string) (*domain.Task, error) {
	const query = `
        SELECT id, task, is_completed, owner, created_at, updated_at
        FROM tasks WHERE id=$1 AND owner=$2`
	return scanTask(r.db.QueryRow(ctx, query, id, owner))
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	const query = `
        UPDATE tasks SET task=$1, is_completed=$2, updated_at=NOW()
        WHERE id=$3 AND owner=$4
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		task.Task,
		task.IsCompleted,
		task.ID,
		task.Owner,
	).Scan(&task.UpdatedAt)
}

func (r *taskRepository) Delete(ctx context.Context, id int64, owner string) error {
	const query = `DELETE FROM tasks WHERE id=$1 AND owner=$2`
	cmd, err := r.db.Exec(ctx, query, id, owner)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.Task,
		&task.IsCompleted,
		&task.Owner,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}

package domain

import "time"

// Task is a to-do item owned by a single user.
type Task struct {
	ID          int64
	Task        string
	IsCompleted bool
	Owner       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskPatch carries the fields of a partial update; nil fields are left untouched.
type TaskPatch struct {
	Task        *string
	IsCompleted *bool
}

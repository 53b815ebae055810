package dto

import "time"

// CreateTaskRequest payload for new tasks.
type CreateTaskRequest struct {
	Task        string `json:"task"`
	IsCompleted bool   `json:"is_completed"`
}

// ReplaceTaskRequest payload for PUT. Both fields are required.
type ReplaceTaskRequest struct {
	Task        *string `json:"task"`
	IsCompleted *bool   `json:"is_completed"`
}

// PatchTaskRequest payload for PATCH. Absent fields are left unchanged.
type PatchTaskRequest struct {
	Task        *string `json:"task"`
	IsCompleted *bool   `json:"is_completed"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID          int64     `json:"id"`
	Task        string    `json:"task"`
	IsCompleted bool      `json:"is_completed"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskListResponse wraps a task listing.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// TaskMutationResponse is returned by create, replace and patch.
type TaskMutationResponse struct {
	Message string       `json:"message"`
	Task    TaskResponse `json:"task"`
}

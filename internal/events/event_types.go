package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTaskCreated EventType = "task_created"
	EventTaskUpdated EventType = "task_updated"
	EventTaskDeleted EventType = "task_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TaskID    int64       `json:"task_id"`
	Owner     string      `json:"owner"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TaskChangedPayload is attached to task_created and task_updated events.
type TaskChangedPayload struct {
	Task        string `json:"task"`
	IsCompleted bool   `json:"is_completed"`
	Partial     bool   `json:"partial,omitempty"`
}

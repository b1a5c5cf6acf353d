package events

import (
	"time"

	"github.com/spec-kit/task-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTaskCreated   EventType = "task_created"
	EventTaskCompleted EventType = "task_completed"
	EventTaskDeleted   EventType = "task_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TaskID    string      `json:"task_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TaskCreatedPayload payload.
type TaskCreatedPayload struct {
	Title      string              `json:"title"`
	Priority   domain.TaskPriority `json:"priority"`
	AssignedTo *string             `json:"assigned_to,omitempty"`
	DueDate    *time.Time          `json:"due_date,omitempty"`
	ReminderAt *time.Time          `json:"reminder_at,omitempty"`
}

// TaskCompletedPayload payload.
type TaskCompletedPayload struct {
	OldStatus domain.TaskStatus `json:"old_status"`
}

// TaskDeletedPayload payload.
type TaskDeletedPayload struct {
	Title string `json:"title"`
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/cache"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/events"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// CreateTaskInput carries the create payload.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    domain.TaskPriority
	DueDate     *time.Time
	ReminderAt  *time.Time
	AssignedTo  *string
}

// TaskService orchestrates task CRUD on top of the repository, the list
// cache and the event dispatcher.
type TaskService struct {
	tasks      repository.TaskRepository
	cache      *cache.TaskCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewTaskService builds the service.
func NewTaskService(tasks repository.TaskRepository, taskCache *cache.TaskCache, dispatcher events.Dispatcher, logger *zap.Logger) *TaskService {
	return &TaskService{tasks: tasks, cache: taskCache, dispatcher: dispatcher, logger: logger}
}

// Create persists a new task for the acting identity.
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput, actor *auth.Identity) (*domain.Task, error) {
	priority := input.Priority
	if priority == "" {
		priority = domain.TaskPriorityLow
	}

	task := &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.TaskStatusPending,
		Priority:    priority,
		DueDate:     input.DueDate,
		ReminderAt:  input.ReminderAt,
		AssignedTo:  input.AssignedTo,
		CreatedBy:   &actor.ID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.cache.Invalidate(ctx)
	s.publish(ctx, events.EventTaskCreated, task.ID, actor.ID, events.TaskCreatedPayload{
		Title:      task.Title,
		Priority:   task.Priority,
		AssignedTo: task.AssignedTo,
		DueDate:    task.DueDate,
		ReminderAt: task.ReminderAt,
	})
	return task, nil
}

// List returns tasks matching the filter. The unfiltered list is served from
// cache when possible.
func (s *TaskService) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	cacheable := len(filter.Statuses) == 0 && len(filter.Priorities) == 0 &&
		filter.AssignedTo == nil && filter.DueBefore == nil &&
		filter.Limit == 0 && filter.Offset == 0

	if cacheable {
		if tasks, ok := s.cache.GetList(ctx); ok {
			return tasks, nil
		}
	}

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if cacheable {
		s.cache.SetList(ctx, tasks)
	}
	return tasks, nil
}

// Get returns a single task.
func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("task")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return task, nil
}

// Complete marks a task completed. Only the assignee or an admin may do so.
func (s *TaskService) Complete(ctx context.Context, id string, actor *auth.Identity) (*domain.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role != domain.RoleAdmin {
		if task.AssignedTo == nil || *task.AssignedTo != actor.ID {
			return nil, apperrors.NewForbidden("access denied")
		}
	}

	oldStatus := task.Status
	updated, err := s.tasks.SetStatus(ctx, id, domain.TaskStatusCompleted)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.cache.Invalidate(ctx)
	s.publish(ctx, events.EventTaskCompleted, updated.ID, actor.ID, events.TaskCompletedPayload{OldStatus: oldStatus})
	return updated, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string, actor *auth.Identity) error {
	task, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("task")
		}
		return apperrors.NewInternalError(err)
	}

	s.cache.Invalidate(ctx)
	s.publish(ctx, events.EventTaskDeleted, id, actor.ID, events.TaskDeletedPayload{Title: task.Title})
	return nil
}

func (s *TaskService) publish(ctx context.Context, eventType events.EventType, taskID, actorID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TaskID:    taskID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(eventType)), zap.Error(err))
	}
}

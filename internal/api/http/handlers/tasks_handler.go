package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/dto"
	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
	"github.com/spec-kit/task-service/internal/service"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// TasksHandler exposes task CRUD endpoints.
type TasksHandler struct {
	tasks *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{tasks: taskService}
}

// List handles GET /tasks.
func (h *TasksHandler) List(c *fiber.Ctx) error {
	filter := repository.TaskFilter{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	if statuses := c.Query("status"); statuses != "" {
		for _, s := range strings.Split(statuses, ",") {
			filter.Statuses = append(filter.Statuses, domain.TaskStatus(s))
		}
	}
	if priorities := c.Query("priority"); priorities != "" {
		for _, p := range strings.Split(priorities, ",") {
			filter.Priorities = append(filter.Priorities, domain.TaskPriority(p))
		}
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		filter.AssignedTo = &assignee
	}
	if due := c.Query("due_before"); due != "" {
		parsed, err := time.Parse(time.RFC3339, due)
		if err != nil {
			return apperrors.NewValidationError("due_before must be RFC3339", nil)
		}
		filter.DueBefore = &parsed
	}

	tasks, err := h.tasks.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tasks": dto.NewTaskListResponse(tasks)})
}

// Get handles GET /tasks/:id.
func (h *TasksHandler) Get(c *fiber.Ctx) error {
	task, err := h.tasks.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"task": dto.NewTaskResponse(task)})
}

// Create handles POST /tasks.
func (h *TasksHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title == "" {
		return apperrors.NewValidationError("title required", nil)
	}

	task, err := h.tasks.Create(c.Context(), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		ReminderAt:  req.ReminderAt,
		AssignedTo:  req.AssignedTo,
	}, identity)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"task": dto.NewTaskResponse(task)})
}

// Complete handles POST /tasks/:id/complete.
func (h *TasksHandler) Complete(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	task, err := h.tasks.Complete(c.Context(), c.Params("id"), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Task completed",
		"task":    dto.NewTaskResponse(task),
	})
}

// Delete handles DELETE /tasks/:id.
func (h *TasksHandler) Delete(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.tasks.Delete(c.Context(), c.Params("id"), identity); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}

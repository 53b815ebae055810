package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/dto"
	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/service"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// TasksHandler manages the caller's own tasks.
type TasksHandler struct {
	service *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{service: taskService}
}

// ListTasks GET /api/tasks.
func (h *TasksHandler) ListTasks(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.ErrMissingCredential
	}
	tasks, err := h.service.ListTasks(c.UserContext(), identity.Username)
	if err != nil {
		return err
	}
	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, taskResponse(&tasks[i]))
	}
	return c.JSON(dto.TaskListResponse{Tasks: items})
}

// CreateTask POST /api/tasks.
func (h *TasksHandler) CreateTask(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.ErrMissingCredential
	}
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Task) == "" {
		return apperrors.NewValidationError("task required", nil)
	}

	task, err := h.service.CreateTask(c.UserContext(), identity.Username, req.Task, req.IsCompleted)
	if err != nil {
		return err
	}
	return c.JSON(dto.TaskMutationResponse{Message: "Task created successfully", Task: taskResponse(task)})
}

// ReplaceTask PUT /api/tasks/:id.
func (h *TasksHandler) ReplaceTask(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.ErrMissingCredential
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}
	var req dto.ReplaceTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Task == nil || strings.TrimSpace(*req.Task) == "" || req.IsCompleted == nil {
		return apperrors.NewValidationError("task and is_completed required", nil)
	}

	task, err := h.service.ReplaceTask(c.UserContext(), identity.Username, id, *req.Task, *req.IsCompleted)
	if err != nil {
		return err
	}
	return c.JSON(dto.TaskMutationResponse{Message: "Task updated successfully", Task: taskResponse(task)})
}

// PatchTask PATCH /api/tasks/:id.
func (h *TasksHandler) PatchTask(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.ErrMissingCredential
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}
	var req dto.PatchTaskRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	if req.Task != nil && strings.TrimSpace(*req.Task) == "" {
		return apperrors.NewValidationError("task must not be empty", nil)
	}

	task, err := h.service.PatchTask(c.UserContext(), identity.Username, id, domain.TaskPatch{
		Task:        req.Task,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.TaskMutationResponse{Message: "Task updated partially", Task: taskResponse(task)})
}

// DeleteTask DELETE /api/tasks/:id.
func (h *TasksHandler) DeleteTask(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.ErrMissingCredential
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTask(c.UserContext(), identity.Username, id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Task deleted successfully"})
}

func taskID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid task id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

func taskResponse(t *domain.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          t.ID,
		Task:        t.Task,
		IsCompleted: t.IsCompleted,
		Owner:       t.Owner,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

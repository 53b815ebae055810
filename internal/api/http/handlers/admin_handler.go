package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/dto"
)

// AdminHandler serves admin-only endpoints.
type AdminHandler struct{}

// NewAdminHandler constructs handler.
func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// Dashboard GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	return c.JSON(dto.MessageResponse{Message: "Welcome to the admin dashboard"})
}

// Root GET /.
func Root(c *fiber.Ctx) error {
	return c.JSON(dto.MessageResponse{Message: "Welcome to the Task API"})
}

package handlers

import (
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/dto"
	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/service"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

const (
	usernameMinLen = 5
	usernameMaxLen = 20
	passwordMinLen = 5
	// bcrypt ignores input past 72 bytes.
	passwordMaxBytes = 72
)

// AuthHandler exposes registration, login, logout and identity endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Register POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateRegistration(req); err != nil {
		return err
	}

	user, err := h.service.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    strings.TrimSpace(req.Email),
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.RegisterResponse{
		Message: "User registered successfully",
		User:    dto.UserSummary{Username: user.Username, IsAdmin: user.IsAdmin},
	})
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	token, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Logout POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.ErrMissingCredential
	}
	if err := h.service.Logout(c.UserContext(), identity); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Logout successful"})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.ErrMissingCredential
	}
	return c.JSON(dto.UserSummary{Username: identity.Username, IsAdmin: identity.IsAdmin})
}

func validateRegistration(req dto.RegisterRequest) error {
	details := map[string]any{}
	if n := utf8.RuneCountInString(req.Username); n < usernameMinLen || n > usernameMaxLen {
		details["username"] = "Username must be 5-20 characters long"
	}
	if utf8.RuneCountInString(req.Password) < passwordMinLen {
		details["password"] = "Password must be at least 5 characters long"
	} else if len(req.Password) > passwordMaxBytes {
		details["password"] = "Password must be at most 72 bytes long"
	}
	if strings.TrimSpace(req.Email) == "" {
		details["email"] = "Email is required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid registration", details)
	}
	return nil
}

package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/domain"
)

const identityKey = "auth_identity"

// Authorizer resolves a bearer token into an identity.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*domain.Identity, error)
}

// AuthMiddleware validates bearer tokens and stores the caller's identity.
type AuthMiddleware struct {
	sessions Authorizer
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(sessions Authorizer) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, err := BearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}

	identity, err := m.sessions.Authorize(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, error) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMissingCredential
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrMissingCredential
	}
	// fiber reuses header buffers after the handler returns.
	return strings.Clone(token), nil
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok && identity != nil
}

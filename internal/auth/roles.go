package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/domain"
)

// CheckAdmin fails with ErrForbidden unless identity carries the admin capability.
func CheckAdmin(identity *domain.Identity) error {
	if identity == nil || !identity.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// RequireAdmin admits only admin callers. It must run after AuthMiddleware.Handle.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return ErrMissingCredential
		}
		if err := CheckAdmin(identity); err != nil {
			return err
		}
		return c.Next()
	}
}

package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
	"github.com/spec-kit/maintenance-tracker/pkg/errorutil"
)

// RequireRole ensures the acting identity has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return errorutil.NewUnauthorized("session required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[actor.Role]; !exists {
			return errorutil.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

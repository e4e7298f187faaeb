package middleware

import (
	"spotboard/internal/authz"
	"spotboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// PolicyChecker decides whether a role may call a method on a path.
type PolicyChecker interface {
	Allow(subject, path, method string) (bool, error)
}

// Authorize checks the request against the route policy table. It must run
// after Authenticate; requests without a member are evaluated as anonymous.
func Authorize(policy PolicyChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject := authz.Anonymous
		if m := CurrentMember(c); m != nil {
			subject = string(m.Role)
		}

		allowed, err := policy.Allow(subject, c.Path(), c.Method())
		if err != nil {
			return err
		}
		if !allowed {
			return models.NewAccessDeniedError("You do not have permission to access this resource")
		}
		return c.Next()
	}
}

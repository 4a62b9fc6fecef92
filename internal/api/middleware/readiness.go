package middleware

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type Reconciler interface {
	Ensure(ctx context.Context) error
}

// Readiness holds requests until the schema is in place. After the first success it
// costs one atomic load per request.
func Readiness(r Reconciler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := r.Ensure(c.UserContext()); err != nil {
			slog.Error("store not ready", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString("Service temporarily unavailable.")
		}
		return c.Next()
	}
}

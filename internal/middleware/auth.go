// Package middleware provides fiber middleware for authentication and
// request logging.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"spendsplit/internal/auth"
)

// userIDKey is the fiber locals key carrying the authenticated user ID.
const userIDKey = "user_id"

// Protected validates the Bearer token and stores the user ID in the request
// locals for handlers to read via UserID.
func Protected(tokens *auth.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": auth.ErrMissingToken.Error()})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authorization header must be 'Bearer <token>'"})
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": auth.ErrInvalidToken.Error()})
		}

		c.Locals(userIDKey, claims.UserID)
		return c.Next()
	}
}

// UserID returns the authenticated user ID set by Protected, or "" when the
// request is unauthenticated.
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(userIDKey).(string); ok {
		return id
	}
	return ""
}

package middleware

import (
	"strings"

	"go-ombor/internal/access"
	applog "go-ombor/internal/log"
	"go-ombor/internal/service"
	"go-ombor/internal/session"

	"github.com/gofiber/fiber/v2"
)

// SessionKey is the request local holding the resolved *session.Session.
const SessionKey = "session"

// RequireAuth resolves the bearer token to a live session and stores it in the request locals
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		sess, err := auth.Current(c.UserContext(), parts[1])
		if err != nil {
			applog.Security(c, "auth_rejected", map[string]any{"reason": err.Error()})
			return c.Status(401).JSON(fiber.Map{"error": service.ErrUnauthenticated.Error()})
		}

		c.Locals(SessionKey, sess)
		c.Locals("username", sess.Username)
		return c.Next()
	}
}

// CurrentSession returns the session set by RequireAuth, or nil.
func CurrentSession(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(SessionKey).(*session.Session)
	return sess
}

// RequirePage checks that the session may open page
func RequirePage(page access.Page) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := CurrentSession(c)
		if sess == nil {
			return c.Status(401).JSON(fiber.Map{"error": service.ErrUnauthenticated.Error()})
		}
		if !sess.Can(page) {
			applog.Security(c, "page_denied", map[string]any{"page": string(page)})
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: requires access to '" + string(page) + "'",
			})
		}
		return c.Next()
	}
}

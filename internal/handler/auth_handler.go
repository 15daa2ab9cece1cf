package handler

import (
	applog "go-ombor/internal/log"
	"go-ombor/internal/middleware"
	"go-ombor/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Username and password are required"})
	}

	response, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		applog.Security(c, "login_failed", map[string]any{"username": req.Username})
		return respondError(c, err, "Failed to sign in")
	}

	c.Locals("username", response.User.Username)
	applog.Audit(c, "login", nil)
	return c.JSON(response)
}

// Logout ends the caller's session
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	if err := h.authService.Logout(c.UserContext(), sess.ID); err != nil {
		return respondError(c, err, "Failed to sign out")
	}
	applog.Audit(c, "logout", nil)
	return c.JSON(fiber.Map{"message": "Signed out"})
}

// Me returns the signed-in user with the menu and landing page their permissions allow
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(service.DescribeSession(middleware.CurrentSession(c)))
}

// ChangePassword handles password change for the caller
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sess := middleware.CurrentSession(c)
	if err := h.authService.ChangePassword(c.UserContext(), sess.UserID, &req); err != nil {
		return respondError(c, err, "Failed to change password")
	}
	return c.JSON(fiber.Map{"message": "Password changed"})
}

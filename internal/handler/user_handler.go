package handler

import (
	applog "go-ombor/internal/log"
	"go-ombor/internal/model"
	"go-ombor/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	user, err := h.userService.Create(c.UserContext(), &req, actorName(c))
	if err != nil {
		return respondError(c, err, "Failed to create user")
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    user,
	})
}

// GetUsers returns all users
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.List(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to fetch users")
	}
	return c.JSON(users)
}

// GetUser returns a single user by ID
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.userService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to fetch user")
	}
	return c.JSON(user)
}

// UpdateUser handles user updates
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	user, err := h.userService.Update(c.UserContext(), c.Params("id"), &req, actorName(c))
	if err != nil {
		return respondError(c, err, "Failed to update user")
	}

	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"data":    user,
	})
}

// DeleteUser handles user deletion
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.userService.Delete(c.UserContext(), id, actorName(c)); err != nil {
		applog.Security(c, "user_delete_refused", map[string]any{"user_id": id, "reason": err.Error()})
		return respondError(c, err, "Failed to delete user")
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// GetPermissions lists the permission vocabulary for the admin form
// GET /api/v1/permissions
func (h *UserHandler) GetPermissions(c *fiber.Ctx) error {
	return c.JSON(model.AllPermissions)
}

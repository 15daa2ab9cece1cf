package handler

import (
	"errors"

	applog "go-ombor/internal/log"
	"go-ombor/internal/repository"
	"go-ombor/internal/service"
	"go-ombor/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps a service error to the HTTP status it is reported with.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrTransactionNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrUsernameTaken):
		return fiber.StatusConflict
	case errors.Is(err, validator.ErrValidation),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidDirection),
		errors.Is(err, service.ErrEmptyBarcode):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrWrongPassword):
		return fiber.StatusUnauthorized
	case errors.Is(err, repository.ErrProtectedUser):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes {"error": msg}. Unmapped errors are logged and hidden behind a generic message.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		applog.Error(c, "request_failed", err, nil)
		return c.Status(status).JSON(fiber.Map{"error": fallback})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func actorName(c *fiber.Ctx) string {
	if name, ok := c.Locals("username").(string); ok {
		return name
	}
	return ""
}

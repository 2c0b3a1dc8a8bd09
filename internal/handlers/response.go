package handlers

import (
	"errors"
	"log"

	"lapak/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Every endpoint answers with the same envelope: a numeric HTTP-style status,
// a human-readable message and an optional data payload. Internal error detail
// is logged server-side and never returned to the client.

func sendSuccess(c *fiber.Ctx, statusCode int, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  statusCode,
		"message": message,
		"data":    data,
	})
}

func sendError(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  statusCode,
		"message": message,
		"data":    nil,
	})
}

// sendServiceError maps the service error taxonomy onto HTTP statuses.
// fallback is the client-facing message for unclassified errors.
func sendServiceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrCartEmpty):
		return sendError(c, fiber.StatusNotFound, "Your cart is empty.")
	case errors.Is(err, services.ErrNotFound):
		return sendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidInput):
		return sendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return sendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrConflict):
		return sendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrUnverified):
		return sendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUpstreamFailure):
		return sendError(c, fiber.StatusBadGateway, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		return sendError(c, fiber.StatusInternalServerError, fallback)
	}
}

// requestUserID returns the authenticated user's id stored by the middleware.
func requestUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// isAdmin reports whether the authenticated user carries an admin role.
func isAdmin(c *fiber.Ctx) bool {
	role, _ := c.Locals("role").(string)
	return role == "admin" || role == "superadmin"
}

// isSuperAdmin reports whether the authenticated user is a superadmin.
func isSuperAdmin(c *fiber.Ctx) bool {
	role, _ := c.Locals("role").(string)
	return role == "superadmin"
}

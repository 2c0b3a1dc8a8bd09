package handlers

import (
	"fmt"
	"log"

	"lapak/internal/models"
	"lapak/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for the user's own profile and the admin
// user-management endpoints.
type UserHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the profile routes available to authenticated users.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/profile", h.HandleGetProfile)
	router.Put("/profile", h.HandleUpdateProfile)
}

// RegisterAdminRoutes registers the admin user-management routes.
func (h *UserHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/users", h.HandleListUsers)
	router.Post("/add-admin", h.HandleAddAdmin)
}

// HandleGetProfile returns the caller's own account details.
func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.authService.GetProfile(requestUserID(c))
	if err != nil {
		return sendServiceError(c, err, "Error fetching user profile. Please try again.")
	}
	user.Password = ""
	return sendSuccess(c, fiber.StatusOK, "User profile fetched successfully", fiber.Map{"user": user})
}

// HandleUpdateProfile applies a partial update to the caller's own account.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var upd services.ProfileUpdate
	if err := c.BodyParser(&upd); err != nil {
		log.Printf("Error parsing profile update request body: %v", err)
		return sendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.authService.UpdateProfile(requestUserID(c), upd)
	if err != nil {
		log.Printf("Error updating profile for user %s: %v", requestUserID(c), err)
		return sendServiceError(c, err, "Error updating profile. Please try again.")
	}
	user.Password = ""
	return sendSuccess(c, fiber.StatusOK, "User details updated successfully", fiber.Map{"user": user})
}

// HandleListUsers lists customer accounts with search and pagination (admin).
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	page, err := h.authService.ListCustomers(c.Query("search"), c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		log.Printf("Error listing users: %v", err)
		return sendServiceError(c, err, "Error fetching users. Please try again.")
	}
	return sendSuccess(c, fiber.StatusOK, "Users fetched successfully", page)
}

// HandleAddAdmin creates a new administrator account. Superadmin only.
func (h *UserHandler) HandleAddAdmin(c *fiber.Ctx) error {
	if !isSuperAdmin(c) {
		return sendError(c, fiber.StatusForbidden, "Superadmin access required")
	}

	var user models.User
	if err := c.BodyParser(&user); err != nil {
		log.Printf("Error parsing add-admin request body: %v", err)
		return sendError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	user.Role = models.RoleAdmin

	if err := h.validate.Struct(user); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  fiber.StatusBadRequest,
			"message": "Validation failed",
			"data":    errorMessages,
		})
	}

	if err := h.authService.RegisterAdmin(&user); err != nil {
		log.Printf("Error adding admin: %v", err)
		return sendServiceError(c, err, "Could not add admin")
	}

	user.Password = ""
	return sendSuccess(c, fiber.StatusCreated, "Admin added successfully", fiber.Map{"admin": user})
}

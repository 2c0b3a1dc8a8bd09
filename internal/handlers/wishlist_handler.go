package handlers

import (
	"log"

	"lapak/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// WishlistHandler handles HTTP requests for wishlists.
type WishlistHandler struct {
	service  *services.WishlistService
	validate *validator.Validate
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(service *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the wishlist routes.
func (h *WishlistHandler) RegisterRoutes(router fiber.Router) {
	wishlistRoutes := router.Group("/wishlist")
	wishlistRoutes.Get("/", h.HandleGetWishlist)
	wishlistRoutes.Post("/", h.HandleAddToWishlist)
	wishlistRoutes.Delete("/:productId", h.HandleRemoveFromWishlist)
}

// AddToWishlistRequest represents the body for adding a product to a wishlist.
type AddToWishlistRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// HandleGetWishlist lists the caller's wishlisted products.
func (h *WishlistHandler) HandleGetWishlist(c *fiber.Ctx) error {
	products, err := h.service.List(requestUserID(c))
	if err != nil {
		log.Printf("Error fetching wishlist for user %s: %v", requestUserID(c), err)
		return sendServiceError(c, err, "Error fetching wishlist. Please try again.")
	}
	return sendSuccess(c, fiber.StatusOK, "Wishlist fetched successfully", fiber.Map{"products": products})
}

// HandleAddToWishlist adds a product to the caller's wishlist.
func (h *WishlistHandler) HandleAddToWishlist(c *fiber.Ctx) error {
	var req AddToWishlistRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing wishlist request body: %v", err)
		return sendError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "A valid product_id is required.")
	}

	if err := h.service.Add(requestUserID(c), req.ProductID); err != nil {
		return sendServiceError(c, err, "Error adding product to wishlist.")
	}
	return sendSuccess(c, fiber.StatusCreated, "Product added to wishlist", nil)
}

// HandleRemoveFromWishlist removes a product from the caller's wishlist.
func (h *WishlistHandler) HandleRemoveFromWishlist(c *fiber.Ctx) error {
	if err := h.service.Remove(requestUserID(c), c.Params("productId")); err != nil {
		return sendServiceError(c, err, "Error removing product from wishlist.")
	}
	return sendSuccess(c, fiber.StatusOK, "Product removed from wishlist", nil)
}

package handlers

import (
	"log"

	"lapak/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the user's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/", h.HandleAddItem)
	cartRoutes.Put("/:itemId", h.HandleUpdateItem)
	cartRoutes.Delete("/clear", h.HandleClear)
	cartRoutes.Delete("/:itemId", h.HandleRemoveItem)
}

// AddToCartRequest represents the request body for adding a product to the cart.
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

// HandleAddItem adds a product variant to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-to-cart request body: %v", err)
		return sendError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "A valid product_id is required")
	}

	cart, err := h.service.AddItem(requestUserID(c), req.ProductID, req.Color, req.Size, req.Quantity)
	if err != nil {
		return sendServiceError(c, err, "Could not add product to cart")
	}
	return sendSuccess(c, fiber.StatusCreated, "Product added to cart", fiber.Map{"cart": cart})
}

// UpdateCartItemRequest represents a partial cart-item update. Absent fields
// leave the stored values untouched; an explicitly supplied empty string
// clears a variant attribute.
type UpdateCartItemRequest struct {
	Quantity *int    `json:"quantity" validate:"omitempty,gte=1"`
	Color    *string `json:"color"`
	Size     *string `json:"size"`
}

// HandleUpdateItem applies a partial update to one cart item.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req UpdateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing cart update request body: %v", err)
		return sendError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "Quantity must be at least 1")
	}

	cart, err := h.service.UpdateItem(requestUserID(c), c.Params("itemId"), services.CartItemUpdate{
		Quantity: req.Quantity,
		Color:    req.Color,
		Size:     req.Size,
	})
	if err != nil {
		return sendServiceError(c, err, "Could not update cart")
	}
	return sendSuccess(c, fiber.StatusOK, "Cart updated successfully", fiber.Map{"cart": cart})
}

// HandleRemoveItem removes one item from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.service.RemoveItem(requestUserID(c), c.Params("itemId"))
	if err != nil {
		return sendServiceError(c, err, "Could not remove product from cart")
	}
	return sendSuccess(c, fiber.StatusOK, "Product removed from cart", fiber.Map{"cart": cart})
}

// HandleClear empties the cart. Clearing an already-empty cart succeeds.
func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	if err := h.service.Clear(requestUserID(c)); err != nil {
		return sendServiceError(c, err, "Could not clear cart")
	}
	return sendSuccess(c, fiber.StatusOK, "Cart cleared successfully", nil)
}

// HandleGetCart returns the cart priced at current catalog values.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetWithTotal(requestUserID(c))
	if err != nil {
		return sendServiceError(c, err, "Could not fetch cart")
	}
	return sendSuccess(c, fiber.StatusOK, "Cart fetched successfully", fiber.Map{
		"cart":         cart,
		"total_amount": cart.TotalAmount,
	})
}

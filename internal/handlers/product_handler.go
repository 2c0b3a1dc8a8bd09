package handlers

import (
	"fmt"
	"log"

	"lapak/internal/models"
	"lapak/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	currency *services.CurrencyService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, currency *services.CurrencyService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		currency: currency,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
}

// RegisterAdminRoutes registers the catalog-mutation routes.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return sendServiceError(c, err, "Could not retrieve products")
	}
	return sendSuccess(c, fiber.StatusOK, "Products fetched successfully", fiber.Map{"products": products})
}

// HandleGetProductByID retrieves a single product. An optional ?currency= query
// parameter converts the displayed price through the exchange-rate cache; the
// stored base-currency price is never touched.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		return sendServiceError(c, err, "Could not retrieve product")
	}

	data := fiber.Map{"product": product}
	if currency := c.Query("currency"); currency != "" {
		converted, rate, err := h.currency.Convert(product.Price, currency)
		if err != nil {
			return sendServiceError(c, err, "Could not convert price")
		}
		data["converted_price"] = converted
		data["currency"] = currency
		data["rate"] = rate
	}
	return sendSuccess(c, fiber.StatusOK, "Product fetched successfully", data)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return sendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.validate.Struct(product); err != nil {
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

	if err := h.service.CreateProduct(&product); err != nil {
		log.Printf("Error creating product: %v", err)
		return sendServiceError(c, err, "Could not create product")
	}
	return sendSuccess(c, fiber.StatusCreated, "Product created successfully", fiber.Map{"product": product})
}

// HandleUpdateProduct updates an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return sendError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	product.ID = c.Params("id")

	if err := h.validate.Struct(product); err != nil {
		return sendError(c, fiber.StatusBadRequest, "Validation failed")
	}

	if err := h.service.UpdateProduct(&product); err != nil {
		log.Printf("Error updating product %s: %v", product.ID, err)
		return sendServiceError(c, err, "Could not update product")
	}
	return sendSuccess(c, fiber.StatusOK, "Product updated successfully", fiber.Map{"product": product})
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(id); err != nil {
		log.Printf("Error deleting product %s: %v", id, err)
		return sendServiceError(c, err, "Could not delete product")
	}
	return sendSuccess(c, fiber.StatusOK, "Product deleted successfully", nil)
}

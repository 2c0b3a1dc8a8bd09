package handlers

import (
	"log"
	"time"

	"lapak/internal/repositories"
	"lapak/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for checkout and orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes available to authenticated users.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/checkout", h.HandleCheckout)
	orderRoutes.Get("/mine", h.HandleGetUserOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id", h.HandleUpdateDelivery)
}

// RegisterAdminRoutes registers the admin order listing and dashboard routes.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/orders", h.HandleListOrders)
	router.Get("/dashboard/summary", h.HandleDashboard)
	router.Get("/dashboard/sales-analysis", h.HandleSalesAnalysis)
	router.Get("/dashboard/top-products", h.HandleTopProducts)
}

// HandleCheckout snapshots the caller's cart into a pending order and returns
// the payment session the frontend should redirect to.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	result, err := h.service.Checkout(c.Context(), requestUserID(c))
	if err != nil {
		log.Printf("Checkout failed for user %s: %v", requestUserID(c), err)
		return sendServiceError(c, err, "Error creating order. Please try again.")
	}
	return sendSuccess(c, fiber.StatusCreated, "Order placed successfully", result)
}

// HandleGetUserOrders lists the caller's orders.
func (h *OrderHandler) HandleGetUserOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListUserOrders(requestUserID(c))
	if err != nil {
		log.Printf("Error listing orders for user %s: %v", requestUserID(c), err)
		return sendServiceError(c, err, "Error fetching user orders. Please try again.")
	}
	if len(orders) == 0 {
		return sendError(c, fiber.StatusNotFound, "No orders found.")
	}
	return sendSuccess(c, fiber.StatusOK, "User orders fetched successfully", fiber.Map{"orders": orders})
}

// HandleGetOrderByID fetches a single order, owner-only unless admin.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.Params("id"), requestUserID(c), isAdmin(c))
	if err != nil {
		return sendServiceError(c, err, "Error fetching order. Please try again.")
	}
	return sendSuccess(c, fiber.StatusOK, "Order fetched successfully", fiber.Map{"order": order})
}

// UpdateDeliveryRequest represents the PATCH body for delivery updates.
type UpdateDeliveryRequest struct {
	DeliveryStatus string `json:"delivery_status"`
	DeliveryDate   string `json:"delivery_date"`
}

// HandleUpdateDelivery updates the delivery axis of an order.
func (h *OrderHandler) HandleUpdateDelivery(c *fiber.Ctx) error {
	var req UpdateDeliveryRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing delivery update request body: %v", err)
		return sendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	order, err := h.service.UpdateDelivery(c.Params("id"), req.DeliveryStatus, req.DeliveryDate, requestUserID(c), isAdmin(c))
	if err != nil {
		return sendServiceError(c, err, "Error updating delivery details. Please try again.")
	}
	return sendSuccess(c, fiber.StatusOK, "Order delivery details updated successfully", fiber.Map{"order": order})
}

// HandleListOrders lists all orders with filters and pagination (admin).
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	filter := repositories.OrderFilter{Status: c.Query("status")}
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return sendError(c, fiber.StatusBadRequest, "Invalid start_date format.")
		}
		filter.StartDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return sendError(c, fiber.StatusBadRequest, "Invalid end_date format.")
		}
		filter.EndDate = &t
	}

	page, err := h.service.ListOrders(filter, c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		log.Printf("Error listing orders: %v", err)
		return sendServiceError(c, err, "Error fetching orders. Please try again.")
	}
	return sendSuccess(c, fiber.StatusOK, "Orders fetched successfully", page)
}

// HandleSalesAnalysis returns month-by-month gross sales (admin).
func (h *OrderHandler) HandleSalesAnalysis(c *fiber.Ctx) error {
	sales, err := h.service.SalesAnalysis()
	if err != nil {
		log.Printf("Error building sales analysis: %v", err)
		return sendServiceError(c, err, "Error fetching sales analysis.")
	}
	return sendSuccess(c, fiber.StatusOK, "Sales analysis data fetched", fiber.Map{"sales": sales})
}

// HandleTopProducts returns the best-selling products (admin).
func (h *OrderHandler) HandleTopProducts(c *fiber.Ctx) error {
	products, err := h.service.TopProducts(c.QueryInt("limit", 5))
	if err != nil {
		log.Printf("Error building top products: %v", err)
		return sendServiceError(c, err, "Error fetching top selling products.")
	}
	return sendSuccess(c, fiber.StatusOK, "Top selling products fetched", fiber.Map{"products": products})
}

// HandleDashboard returns the admin dashboard summary.
func (h *OrderHandler) HandleDashboard(c *fiber.Ctx) error {
	report, err := h.service.Dashboard()
	if err != nil {
		log.Printf("Error building dashboard summary: %v", err)
		return sendServiceError(c, err, "Error fetching dashboard summary.")
	}
	return sendSuccess(c, fiber.StatusOK, "Dashboard summary fetched successfully", report)
}

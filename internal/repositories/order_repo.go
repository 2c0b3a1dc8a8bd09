package repositories

import (
	"time"

	"lapak/internal/models"
)

// OrderFilter narrows the admin order listing.
type OrderFilter struct {
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

// DashboardSummary aggregates sales figures for the admin dashboard.
type DashboardSummary struct {
	TotalSales            float64 `json:"total_sales"`
	TotalOrders           int64   `json:"total_orders"`
	ActiveCustomers       int64   `json:"active_customers"`
	CurrentMonthSales     float64 `json:"current_month_sales"`
	LastMonthSales        float64 `json:"last_month_sales"`
	CurrentMonthOrders    int64   `json:"current_month_orders"`
	LastMonthOrders       int64   `json:"last_month_orders"`
	CurrentMonthCustomers int64   `json:"current_month_customers"`
	LastMonthCustomers    int64   `json:"last_month_customers"`
}

// MonthlySales is one calendar month's gross sales figure.
type MonthlySales struct {
	Year       int     `json:"year"`
	Month      int     `json:"month"`
	TotalSales float64 `json:"total_sales"`
}

// ProductSales aggregates how a product sold across all orders.
type ProductSales struct {
	ProductID     string  `json:"product_id"`
	Title         string  `json:"title"`
	TotalQuantity int     `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// OrderRepository defines the interface for order data access. Orders are
// append-only: there is no delete.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	ListByUser(userID string) ([]models.Order, error)
	// List returns a page of orders matching the filter together with the
	// total match count (for pagination).
	List(filter OrderFilter, page, limit int) ([]models.Order, int64, error)
	// UpdatePayment writes the payment axis of the order state machine.
	UpdatePayment(id, status, paymentStatus, sessionID, method string) error
	// UpdateDelivery writes the delivery axis. A nil date leaves the current
	// delivery date untouched.
	UpdateDelivery(id, status string, date *time.Time) error
	DashboardSummary(now time.Time) (*DashboardSummary, error)
	// SalesByMonth returns gross sales per calendar month in chronological
	// order.
	SalesByMonth() ([]MonthlySales, error)
	// TopProducts returns the best sellers by units sold, at most limit of
	// them.
	TopProducts(limit int) ([]ProductSales, error)
}

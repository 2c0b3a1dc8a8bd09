package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"lapak/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s not found: %w", id, gorm.ErrRecordNotFound)
	}
	return &order, nil
}

// ListByUser returns the user's orders, most recent first.
func (r *MockOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

// List returns a page of orders matching the filter plus the total match count.
func (r *MockOrderRepository) List(filter OrderFilter, page, limit int) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Order
	for _, order := range r.orders {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.StartDate != nil && order.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && order.CreatedAt.After(*filter.EndDate) {
			continue
		}
		matched = append(matched, order)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// UpdatePayment writes the payment axis of the order state machine.
func (r *MockOrderRepository) UpdatePayment(id, status, paymentStatus, sessionID, method string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s not found for payment update: %w", id, gorm.ErrRecordNotFound)
	}
	order.Status = status
	order.PaymentStatus = paymentStatus
	order.PaymentSessionID = sessionID
	order.PaymentMethod = method
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// UpdateDelivery writes the delivery axis of the order state machine.
func (r *MockOrderRepository) UpdateDelivery(id, status string, date *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s not found for delivery update: %w", id, gorm.ErrRecordNotFound)
	}
	order.DeliveryStatus = status
	if date != nil {
		order.DeliveryDate = *date
	}
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// DashboardSummary aggregates over the in-memory orders. Customer counts are
// always zero here; only the GORM implementation can see the users table.
func (r *MockOrderRepository) DashboardSummary(now time.Time) (*DashboardSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	startOfCurrent := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfLast := startOfCurrent.AddDate(0, -1, 0)

	var s DashboardSummary
	for _, order := range r.orders {
		s.TotalOrders++
		if order.CreatedAt.After(startOfCurrent) {
			s.CurrentMonthOrders++
		} else if order.CreatedAt.After(startOfLast) {
			s.LastMonthOrders++
		}
		if order.Status != models.OrderStatusPaid {
			continue
		}
		s.TotalSales += order.TotalAmount
		if order.CreatedAt.After(startOfCurrent) {
			s.CurrentMonthSales += order.TotalAmount
		} else if order.CreatedAt.After(startOfLast) {
			s.LastMonthSales += order.TotalAmount
		}
	}
	return &s, nil
}

// SalesByMonth returns gross sales per calendar month, oldest first.
func (r *MockOrderRepository) SalesByMonth() ([]MonthlySales, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := make(map[[2]int]float64)
	for _, order := range r.orders {
		totals[[2]int{order.CreatedAt.Year(), int(order.CreatedAt.Month())}] += order.TotalAmount
	}

	sales := make([]MonthlySales, 0, len(totals))
	for key, total := range totals {
		sales = append(sales, MonthlySales{Year: key[0], Month: key[1], TotalSales: total})
	}
	sort.Slice(sales, func(i, j int) bool {
		if sales[i].Year != sales[j].Year {
			return sales[i].Year < sales[j].Year
		}
		return sales[i].Month < sales[j].Month
	})
	return sales, nil
}

// TopProducts returns the best sellers by units sold across all orders.
func (r *MockOrderRepository) TopProducts(limit int) ([]ProductSales, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byProduct := make(map[string]*ProductSales)
	for _, order := range r.orders {
		for _, item := range order.Items {
			ps, ok := byProduct[item.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: item.ProductID, Title: item.Title}
				byProduct[item.ProductID] = ps
			}
			ps.TotalQuantity += item.Quantity
			ps.TotalRevenue += item.Price * float64(item.Quantity)
		}
	}

	sales := make([]ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		sales = append(sales, *ps)
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].TotalQuantity > sales[j].TotalQuantity })
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

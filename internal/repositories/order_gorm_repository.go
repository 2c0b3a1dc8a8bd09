package repositories

import (
	"fmt"
	"sort"
	"time"

	"lapak/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create persists a new order together with its line-item snapshots.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with ID %s not found: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// ListByUser retrieves the user's orders, most recent first.
func (r *GORMOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// List returns a page of orders matching the filter plus the total match count.
func (r *GORMOrderRepository) List(filter OrderFilter, page, limit int) ([]models.Order, int64, error) {
	q := r.db.Model(&models.Order{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		q = q.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("created_at <= ?", *filter.EndDate)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	if err := q.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// UpdatePayment writes the payment axis of the order state machine.
func (r *GORMOrderRepository) UpdatePayment(id, status, paymentStatus, sessionID, method string) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":             status,
		"payment_status":     paymentStatus,
		"payment_session_id": sessionID,
		"payment_method":     method,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update payment state for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for payment update: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// UpdateDelivery writes the delivery axis of the order state machine.
func (r *GORMOrderRepository) UpdateDelivery(id, status string, date *time.Time) error {
	updates := map[string]interface{}{"delivery_status": status}
	if date != nil {
		updates["delivery_date"] = *date
	}
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update delivery state for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for delivery update: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// DashboardSummary aggregates sales, order and customer counts overall and for
// the current versus previous calendar month.
func (r *GORMOrderRepository) DashboardSummary(now time.Time) (*DashboardSummary, error) {
	startOfCurrent := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfLast := startOfCurrent.AddDate(0, -1, 0)
	endOfLast := startOfCurrent.Add(-time.Nanosecond)

	var s DashboardSummary

	paid := r.db.Model(&models.Order{}).Where("status = ?", models.OrderStatusPaid)
	if err := paid.Select("COALESCE(SUM(total_amount), 0)").Scan(&s.TotalSales).Error; err != nil {
		return nil, fmt.Errorf("failed to sum total sales: %w", err)
	}
	if err := r.db.Model(&models.Order{}).Count(&s.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if err := r.db.Model(&models.User{}).Where("role = ?", models.RoleUser).Count(&s.ActiveCustomers).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	if err := r.db.Model(&models.Order{}).
		Where("status = ? AND created_at >= ?", models.OrderStatusPaid, startOfCurrent).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&s.CurrentMonthSales).Error; err != nil {
		return nil, fmt.Errorf("failed to sum current month sales: %w", err)
	}
	if err := r.db.Model(&models.Order{}).
		Where("status = ? AND created_at BETWEEN ? AND ?", models.OrderStatusPaid, startOfLast, endOfLast).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&s.LastMonthSales).Error; err != nil {
		return nil, fmt.Errorf("failed to sum last month sales: %w", err)
	}

	if err := r.db.Model(&models.Order{}).Where("created_at >= ?", startOfCurrent).
		Count(&s.CurrentMonthOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count current month orders: %w", err)
	}
	if err := r.db.Model(&models.Order{}).Where("created_at BETWEEN ? AND ?", startOfLast, endOfLast).
		Count(&s.LastMonthOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count last month orders: %w", err)
	}

	if err := r.db.Model(&models.User{}).Where("created_at >= ?", startOfCurrent).
		Count(&s.CurrentMonthCustomers).Error; err != nil {
		return nil, fmt.Errorf("failed to count current month customers: %w", err)
	}
	if err := r.db.Model(&models.User{}).Where("created_at BETWEEN ? AND ?", startOfLast, endOfLast).
		Count(&s.LastMonthCustomers).Error; err != nil {
		return nil, fmt.Errorf("failed to count last month customers: %w", err)
	}

	return &s, nil
}

// SalesByMonth returns gross sales per calendar month, oldest first. The
// bucketing runs in Go because date extraction differs across SQL dialects.
func (r *GORMOrderRepository) SalesByMonth() ([]MonthlySales, error) {
	var rows []struct {
		CreatedAt   time.Time
		TotalAmount float64
	}
	if err := r.db.Model(&models.Order{}).
		Select("created_at", "total_amount").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load order totals: %w", err)
	}

	totals := make(map[[2]int]float64)
	for _, row := range rows {
		totals[[2]int{row.CreatedAt.Year(), int(row.CreatedAt.Month())}] += row.TotalAmount
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
func (r *GORMOrderRepository) TopProducts(limit int) ([]ProductSales, error) {
	var sales []ProductSales
	if err := r.db.Model(&models.OrderItem{}).
		Select("product_id, MAX(title) AS title, SUM(quantity) AS total_quantity, SUM(price * quantity) AS total_revenue").
		Group("product_id").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate top products: %w", err)
	}
	return sales, nil
}

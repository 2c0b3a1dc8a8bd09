package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/pkg/payments"
	"lapak/pkg/rabbitmq"
)

// OrderService handles checkout, order queries and delivery updates.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	cartRepo    repositories.CartRepository
	userRepo    repositories.UserRepository
	gateway     PaymentGateway
	notifier    Notifier
	leadDays    int
}

// NewOrderService creates a new OrderService. leadDays is the delivery lead
// time applied to new orders.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	cartRepo repositories.CartRepository,
	userRepo repositories.UserRepository,
	gateway PaymentGateway,
	notifier Notifier,
	leadDays int,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		notifier:    notifier,
		leadDays:    leadDays,
	}
}

// CheckoutResult is what the frontend needs to hand the user off to the
// provider-hosted payment page.
type CheckoutResult struct {
	Order      *models.Order `json:"order"`
	SessionID  string        `json:"session_id"`
	SessionURL string        `json:"session_url"`
}

// OrderPage is one page of an admin order listing.
type OrderPage struct {
	Orders      []models.Order `json:"orders"`
	TotalOrders int64          `json:"total_orders"`
	TotalPages  int            `json:"total_pages"`
	CurrentPage int            `json:"current_page"`
}

// Checkout snapshots the user's cart into a pending order and opens a payment
// session for it. Titles and prices are copied at this moment; later catalog
// changes never alter the order. If session creation fails the order stays
// persisted in (pending, unpaid); no provider callback will ever arrive for
// it, which is an accepted eventual-consistency gap.
func (s *OrderService) Checkout(ctx context.Context, userID string) (*CheckoutResult, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, fmt.Errorf("%w: user %s", ErrCartEmpty, userID)
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("%w: user %s", ErrCartEmpty, userID)
	}

	var orderItems []models.OrderItem
	var lineItems []payments.LineItem
	var total float64
	for _, item := range cart.Items {
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			if isRecordNotFound(err) {
				return nil, fmt.Errorf("%w: product %s", ErrNotFound, item.ProductID)
			}
			return nil, fmt.Errorf("failed to load product %s: %w", item.ProductID, err)
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Title:     product.Name,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
		lineItems = append(lineItems, payments.LineItem{
			Name:       product.Name,
			UnitAmount: int64(math.Round(product.Price * 100)),
			Quantity:   item.Quantity,
		})
		total += product.Price * float64(item.Quantity)
	}

	order := &models.Order{
		UserID:         userID,
		Items:          orderItems,
		TotalAmount:    total,
		Status:         models.OrderStatusPending,
		PaymentStatus:  models.PaymentStatusUnpaid,
		DeliveryStatus: models.DeliveryStatusPending,
		Address:        user.Address,
		DeliveryDate:   time.Now().AddDate(0, 0, s.leadDays),
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, order.ID, userID, lineItems)
	if err != nil {
		// The order stays pending; no payment confirmation will arrive for it.
		log.Printf("Checkout session creation failed for order %s: %v", order.ID, err)
		return nil, fmt.Errorf("%w: payment session creation failed", ErrUpstreamFailure)
	}

	return &CheckoutResult{
		Order:      order,
		SessionID:  session.ID,
		SessionURL: session.URL,
	}, nil
}

// GetOrder fetches one order, enforcing ownership unless the caller is an admin.
func (s *OrderService) GetOrder(orderID, requesterID string, isAdmin bool) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, err
	}
	if !isAdmin && order.UserID != requesterID {
		return nil, fmt.Errorf("%w: order %s belongs to another user", ErrForbidden, orderID)
	}
	return order, nil
}

// ListUserOrders retrieves the user's orders, most recent first.
func (s *OrderService) ListUserOrders(userID string) ([]models.Order, error) {
	return s.orderRepo.ListByUser(userID)
}

// ListOrders retrieves a filtered, paginated page of all orders (admin view).
func (s *OrderService) ListOrders(filter repositories.OrderFilter, page, limit int) (*OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	orders, total, err := s.orderRepo.List(filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &OrderPage{
		Orders:      orders,
		TotalOrders: total,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		CurrentPage: page,
	}, nil
}

// UpdateDelivery sets the order's delivery status (and optionally date), then
// notifies the owner. Only the owner or an admin may update an order.
// Notification failure never rolls the update back.
func (s *OrderService) UpdateDelivery(orderID, status, dateStr, requesterID string, isAdmin bool) (*models.Order, error) {
	if !models.IsValidDeliveryStatus(status) {
		return nil, fmt.Errorf("%w: invalid delivery status %q", ErrInvalidInput, status)
	}

	var date *time.Time
	if dateStr != "" {
		parsed, err := parseDeliveryDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid delivery date %q", ErrInvalidInput, dateStr)
		}
		date = &parsed
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, err
	}
	if !isAdmin && order.UserID != requesterID {
		return nil, fmt.Errorf("%w: order %s belongs to another user", ErrForbidden, orderID)
	}

	if err := s.orderRepo.UpdateDelivery(orderID, status, date); err != nil {
		if isRecordNotFound(err) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to update delivery status: %w", err)
	}

	s.notifyDeliveryUpdate(order, status)

	return s.orderRepo.GetByID(orderID)
}

// DashboardReport is the admin dashboard summary plus month-over-month deltas.
type DashboardReport struct {
	repositories.DashboardSummary
	RevenueIncrease   float64 `json:"revenue_increase"`
	OrdersIncrease    float64 `json:"orders_increase"`
	CustomersIncrease float64 `json:"customers_increase"`
}

// Dashboard aggregates the admin dashboard figures.
func (s *OrderService) Dashboard() (*DashboardReport, error) {
	summary, err := s.orderRepo.DashboardSummary(time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard summary: %w", err)
	}
	return &DashboardReport{
		DashboardSummary:  *summary,
		RevenueIncrease:   percentageIncrease(summary.CurrentMonthSales, summary.LastMonthSales),
		OrdersIncrease:    percentageIncrease(float64(summary.CurrentMonthOrders), float64(summary.LastMonthOrders)),
		CustomersIncrease: percentageIncrease(float64(summary.CurrentMonthCustomers), float64(summary.LastMonthCustomers)),
	}, nil
}

// SalesAnalysis returns gross sales per calendar month for the admin charts.
func (s *OrderService) SalesAnalysis() ([]repositories.MonthlySales, error) {
	sales, err := s.orderRepo.SalesByMonth()
	if err != nil {
		return nil, fmt.Errorf("failed to build sales analysis: %w", err)
	}
	return sales, nil
}

// TopProducts returns the best-selling products by units sold. A non-positive
// limit falls back to the usual top five.
func (s *OrderService) TopProducts(limit int) ([]repositories.ProductSales, error) {
	if limit < 1 {
		limit = 5
	}
	products, err := s.orderRepo.TopProducts(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build top products: %w", err)
	}
	return products, nil
}

func (s *OrderService) notifyDeliveryUpdate(order *models.Order, status string) {
	if s.notifier == nil {
		return
	}
	user, err := s.userRepo.GetByID(order.UserID)
	if err != nil {
		log.Printf("Warning: could not load user %s for delivery notification: %v", order.UserID, err)
		return
	}
	err = s.notifier.PublishNotification(rabbitmq.Notification{
		Kind:    rabbitmq.KindDeliveryUpdate,
		UserID:  user.ID,
		Email:   user.Email,
		Phone:   user.Phone,
		Subject: fmt.Sprintf("Delivery Status Updated - Order %s", status),
		Body:    fmt.Sprintf("Your order (ID: %s) status has been updated to: %s", order.ID, status),
	})
	if err != nil {
		log.Printf("Warning: failed to publish delivery notification for order %s: %v", order.ID, err)
	}
}

func parseDeliveryDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func percentageIncrease(current, last float64) float64 {
	if last == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - last) / last * 100
}

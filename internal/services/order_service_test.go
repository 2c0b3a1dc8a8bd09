package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/internal/services"
	"lapak/pkg/payments"
	"lapak/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
)

// fakeGateway is a controllable PaymentGateway for tests.
type fakeGateway struct {
	mu           sync.Mutex
	sessions     int
	failSessions bool
	methodTypes  map[string]string
	failMethods  bool
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, orderID, userID string, items []payments.LineItem) (*payments.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failSessions {
		return nil, fmt.Errorf("provider unavailable")
	}
	g.sessions++
	return &payments.CheckoutSession{
		ID:  fmt.Sprintf("cs_%d", g.sessions),
		URL: fmt.Sprintf("https://pay.example.com/cs_%d", g.sessions),
	}, nil
}

func (g *fakeGateway) PaymentMethodType(ctx context.Context, paymentMethodID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failMethods {
		return "", fmt.Errorf("provider unavailable")
	}
	if t, ok := g.methodTypes[paymentMethodID]; ok {
		return t, nil
	}
	return "card", nil
}

// fakeNotifier records published notifications.
type fakeNotifier struct {
	mu       sync.Mutex
	fail     bool
	messages []rabbitmq.Notification
}

func (n *fakeNotifier) PublishNotification(msg rabbitmq.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return fmt.Errorf("broker unavailable")
	}
	n.messages = append(n.messages, msg)
	return nil
}

func (n *fakeNotifier) published() []rabbitmq.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]rabbitmq.Notification(nil), n.messages...)
}

type orderFixture struct {
	service     *services.OrderService
	orderRepo   *repositories.MockOrderRepository
	productRepo *repositories.MockProductRepository
	cartRepo    *repositories.MockCartRepository
	userRepo    *repositories.MockUserRepository
	gateway     *fakeGateway
	notifier    *fakeNotifier
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orderRepo:   repositories.NewMockOrderRepository(),
		productRepo: repositories.NewMockProductRepository(),
		cartRepo:    repositories.NewMockCartRepository(),
		userRepo:    repositories.NewMockUserRepository(),
		gateway:     &fakeGateway{},
		notifier:    &fakeNotifier{},
	}
	f.service = services.NewOrderService(f.orderRepo, f.productRepo, f.cartRepo, f.userRepo, f.gateway, f.notifier, 5)
	return f
}

func (f *orderFixture) seedUser(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{
		FirstName: "Ayu",
		Email:     "ayu@example.com",
		Phone:     "81234567",
		Address:   "Jl. Merdeka 1",
	}
	assert.NoError(t, f.userRepo.Create(user))
	return user
}

func (f *orderFixture) seedCart(t *testing.T, userID string, lines ...models.CartItem) {
	t.Helper()
	cart := &models.Cart{UserID: userID, Items: lines}
	assert.NoError(t, f.cartRepo.Create(cart))
}

func TestOrderService_Checkout(t *testing.T) {
	f := newOrderFixture(t)
	user := f.seedUser(t)

	shirt := &models.Product{Name: "T-Shirt", Price: 10.0, Stock: 10}
	mug := &models.Product{Name: "Mug", Price: 5.0, Stock: 10}
	assert.NoError(t, f.productRepo.Create(shirt))
	assert.NoError(t, f.productRepo.Create(mug))
	f.seedCart(t, user.ID,
		models.CartItem{ProductID: shirt.ID, Quantity: 2},
		models.CartItem{ProductID: mug.ID, Quantity: 1},
	)

	result, err := f.service.Checkout(context.Background(), user.ID)

	assert.NoError(t, err)
	assert.Equal(t, 25.0, result.Order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, result.Order.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, result.Order.PaymentStatus)
	assert.Equal(t, models.DeliveryStatusPending, result.Order.DeliveryStatus)
	assert.Equal(t, user.Address, result.Order.Address)
	assert.NotEmpty(t, result.SessionID)
	assert.NotEmpty(t, result.SessionURL)

	expectedDelivery := time.Now().AddDate(0, 0, 5)
	assert.WithinDuration(t, expectedDelivery, result.Order.DeliveryDate, time.Minute)

	stored, err := f.orderRepo.GetByID(result.Order.ID)
	assert.NoError(t, err)
	assert.Len(t, stored.Items, 2)
}

func TestOrderService_CheckoutSnapshotsPrices(t *testing.T) {
	f := newOrderFixture(t)
	user := f.seedUser(t)

	shirt := &models.Product{Name: "T-Shirt", Price: 10.0, Stock: 10}
	assert.NoError(t, f.productRepo.Create(shirt))
	f.seedCart(t, user.ID, models.CartItem{ProductID: shirt.ID, Quantity: 1})

	result, err := f.service.Checkout(context.Background(), user.ID)
	assert.NoError(t, err)

	// A later catalog change must not rewrite the order snapshot.
	shirt.Name = "T-Shirt v2"
	shirt.Price = 99.0
	assert.NoError(t, f.productRepo.Update(shirt))

	stored, err := f.orderRepo.GetByID(result.Order.ID)
	assert.NoError(t, err)
	assert.Equal(t, "T-Shirt", stored.Items[0].Title)
	assert.Equal(t, 10.0, stored.Items[0].Price)
	assert.Equal(t, 10.0, stored.TotalAmount)
}

func TestOrderService_CheckoutEmptyCart(t *testing.T) {
	f := newOrderFixture(t)
	user := f.seedUser(t)

	_, err := f.service.Checkout(context.Background(), user.ID)

	assert.ErrorIs(t, err, services.ErrCartEmpty)
}

func TestOrderService_CheckoutSessionFailureKeepsOrderPending(t *testing.T) {
	f := newOrderFixture(t)
	f.gateway.failSessions = true
	user := f.seedUser(t)

	shirt := &models.Product{Name: "T-Shirt", Price: 10.0, Stock: 10}
	assert.NoError(t, f.productRepo.Create(shirt))
	f.seedCart(t, user.ID, models.CartItem{ProductID: shirt.ID, Quantity: 1})

	_, err := f.service.Checkout(context.Background(), user.ID)
	assert.ErrorIs(t, err, services.ErrUpstreamFailure)

	// The order was persisted before the session attempt and stays pending.
	orders, err := f.orderRepo.ListByUser(user.ID)
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, models.OrderStatusPending, orders[0].Status)
	assert.Equal(t, models.PaymentStatusUnpaid, orders[0].PaymentStatus)
}

func TestOrderService_GetOrderOwnership(t *testing.T) {
	f := newOrderFixture(t)
	order := &models.Order{UserID: "owner", Status: models.OrderStatusPending}
	assert.NoError(t, f.orderRepo.Create(order))

	_, err := f.service.GetOrder(order.ID, "owner", false)
	assert.NoError(t, err)

	_, err = f.service.GetOrder(order.ID, "intruder", false)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = f.service.GetOrder(order.ID, "intruder", true)
	assert.NoError(t, err, "admins may read any order")

	_, err = f.service.GetOrder("missing", "owner", false)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestOrderService_ListOrdersPagination(t *testing.T) {
	f := newOrderFixture(t)
	for i := 0; i < 7; i++ {
		order := &models.Order{UserID: "user", Status: models.OrderStatusPaid}
		assert.NoError(t, f.orderRepo.Create(order))
	}

	page, err := f.service.ListOrders(repositories.OrderFilter{}, 1, 3)
	assert.NoError(t, err)
	assert.Len(t, page.Orders, 3)
	assert.Equal(t, int64(7), page.TotalOrders)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)

	page, err = f.service.ListOrders(repositories.OrderFilter{}, 3, 3)
	assert.NoError(t, err)
	assert.Len(t, page.Orders, 1)

	page, err = f.service.ListOrders(repositories.OrderFilter{}, 9, 3)
	assert.NoError(t, err)
	assert.Empty(t, page.Orders, "pages past the end are empty, not an error")

	// Defaults kick in for nonsense values.
	page, err = f.service.ListOrders(repositories.OrderFilter{}, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, int64(7), page.TotalOrders)
}

func TestOrderService_ListOrdersStatusFilter(t *testing.T) {
	f := newOrderFixture(t)
	assert.NoError(t, f.orderRepo.Create(&models.Order{UserID: "u", Status: models.OrderStatusPaid}))
	assert.NoError(t, f.orderRepo.Create(&models.Order{UserID: "u", Status: models.OrderStatusPending}))

	page, err := f.service.ListOrders(repositories.OrderFilter{Status: models.OrderStatusPaid}, 1, 10)

	assert.NoError(t, err)
	assert.Len(t, page.Orders, 1)
	assert.Equal(t, models.OrderStatusPaid, page.Orders[0].Status)
}

func TestOrderService_UpdateDelivery(t *testing.T) {
	f := newOrderFixture(t)
	user := f.seedUser(t)
	order := &models.Order{UserID: user.ID, Status: models.OrderStatusPaid, DeliveryStatus: models.DeliveryStatusPending}
	assert.NoError(t, f.orderRepo.Create(order))

	updated, err := f.service.UpdateDelivery(order.ID, models.DeliveryStatusShipped, "2026-09-03", user.ID, false)

	assert.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusShipped, updated.DeliveryStatus)
	assert.Equal(t, 2026, updated.DeliveryDate.Year())
	assert.Equal(t, time.September, updated.DeliveryDate.Month())

	msgs := f.notifier.published()
	assert.Len(t, msgs, 1)
	assert.Equal(t, rabbitmq.KindDeliveryUpdate, msgs[0].Kind)
	assert.Equal(t, user.Email, msgs[0].Email)
}

func TestOrderService_UpdateDeliveryInvalidStatus(t *testing.T) {
	f := newOrderFixture(t)
	order := &models.Order{UserID: "u"}
	assert.NoError(t, f.orderRepo.Create(order))

	_, err := f.service.UpdateDelivery(order.ID, "teleported", "", "u", false)

	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestOrderService_UpdateDeliveryInvalidDate(t *testing.T) {
	f := newOrderFixture(t)
	order := &models.Order{UserID: "u"}
	assert.NoError(t, f.orderRepo.Create(order))

	_, err := f.service.UpdateDelivery(order.ID, models.DeliveryStatusShipped, "03-09-2026", "u", false)

	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestOrderService_UpdateDeliveryOwnership(t *testing.T) {
	f := newOrderFixture(t)
	order := &models.Order{UserID: "owner"}
	assert.NoError(t, f.orderRepo.Create(order))

	_, err := f.service.UpdateDelivery(order.ID, models.DeliveryStatusShipped, "", "intruder", false)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = f.service.UpdateDelivery(order.ID, models.DeliveryStatusShipped, "", "intruder", true)
	assert.NoError(t, err)
}

func TestOrderService_UpdateDeliveryNotificationFailureIsSwallowed(t *testing.T) {
	f := newOrderFixture(t)
	f.notifier.fail = true
	user := f.seedUser(t)
	order := &models.Order{UserID: user.ID}
	assert.NoError(t, f.orderRepo.Create(order))

	updated, err := f.service.UpdateDelivery(order.ID, models.DeliveryStatusDelivered, "", user.ID, false)

	assert.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusDelivered, updated.DeliveryStatus)
}

func TestOrderService_Dashboard(t *testing.T) {
	f := newOrderFixture(t)
	assert.NoError(t, f.orderRepo.Create(&models.Order{UserID: "u", Status: models.OrderStatusPaid, TotalAmount: 100}))
	assert.NoError(t, f.orderRepo.Create(&models.Order{UserID: "u", Status: models.OrderStatusPending, TotalAmount: 40}))

	report, err := f.service.Dashboard()

	assert.NoError(t, err)
	assert.Equal(t, 100.0, report.TotalSales, "only paid orders count toward sales")
	assert.Equal(t, int64(2), report.TotalOrders)
	assert.Equal(t, 100.0, report.RevenueIncrease, "sales this month against an empty last month")
}

func TestOrderService_SalesAnalysis(t *testing.T) {
	f := newOrderFixture(t)
	assert.NoError(t, f.orderRepo.Create(&models.Order{UserID: "u", Status: models.OrderStatusPaid, TotalAmount: 100}))
	assert.NoError(t, f.orderRepo.Create(&models.Order{UserID: "u", Status: models.OrderStatusPaid, TotalAmount: 40}))

	sales, err := f.service.SalesAnalysis()

	assert.NoError(t, err)
	assert.Len(t, sales, 1, "orders created now land in the same month bucket")
	now := time.Now()
	assert.Equal(t, now.Year(), sales[0].Year)
	assert.Equal(t, int(now.Month()), sales[0].Month)
	assert.Equal(t, 140.0, sales[0].TotalSales)
}

func TestOrderService_TopProducts(t *testing.T) {
	f := newOrderFixture(t)
	assert.NoError(t, f.orderRepo.Create(&models.Order{UserID: "u", Items: []models.OrderItem{
		{ProductID: "p1", Title: "T-Shirt", Quantity: 3, Price: 10.0},
		{ProductID: "p2", Title: "Mug", Quantity: 1, Price: 5.0},
	}}))
	assert.NoError(t, f.orderRepo.Create(&models.Order{UserID: "u", Items: []models.OrderItem{
		{ProductID: "p2", Title: "Mug", Quantity: 4, Price: 5.0},
	}}))

	top, err := f.service.TopProducts(0)

	assert.NoError(t, err)
	assert.Len(t, top, 2)
	assert.Equal(t, "p2", top[0].ProductID, "ranked by units sold")
	assert.Equal(t, 4, top[0].TotalQuantity)
	assert.Equal(t, 20.0, top[0].TotalRevenue)
	assert.Equal(t, "p1", top[1].ProductID)
	assert.Equal(t, 3, top[1].TotalQuantity)

	top, err = f.service.TopProducts(1)
	assert.NoError(t, err)
	assert.Len(t, top, 1)
	assert.Equal(t, "p2", top[0].ProductID)
}

package services

import (
	"context"
	"fmt"
	"log"

	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/pkg/payments"
	"lapak/pkg/rabbitmq"
)

// ReconcileService aligns order payment state with the payment provider's
// asynchronous confirmations and cascades confirmations into inventory and
// cart updates. It tolerates at-least-once delivery: duplicate events are
// short-circuited by the processed-event ledger, and an already-terminal order
// is treated as a no-op write with no repeated side effects.
type ReconcileService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	cartRepo    repositories.CartRepository
	userRepo    repositories.UserRepository
	ledger      repositories.ProcessedEventLedger
	gateway     PaymentGateway
	notifier    Notifier
}

// NewReconcileService creates a new ReconcileService.
func NewReconcileService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	cartRepo repositories.CartRepository,
	userRepo repositories.UserRepository,
	ledger repositories.ProcessedEventLedger,
	gateway PaymentGateway,
	notifier Notifier,
) *ReconcileService {
	return &ReconcileService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		userRepo:    userRepo,
		ledger:      ledger,
		gateway:     gateway,
		notifier:    notifier,
	}
}

// HandleEvent processes one verified payment-provider event. Unrecognized
// event types are acknowledged and ignored. A non-nil return means the
// delivery should be retried by the provider.
func (s *ReconcileService) HandleEvent(ctx context.Context, event payments.Event) error {
	switch event.Type {
	case payments.EventPaymentSucceeded, payments.EventPaymentFailed:
	default:
		log.Printf("Ignoring webhook event %s of type %s", event.ID, event.Type)
		return nil
	}

	marked := false
	if s.ledger != nil && event.ID != "" {
		first, err := s.ledger.MarkProcessed(ctx, event.ID)
		if err != nil {
			// A broken ledger must never drop a payment confirmation. Proceed
			// and rely on the terminal-state guard below.
			log.Printf("Warning: event ledger unavailable for event %s: %v", event.ID, err)
		} else if !first {
			log.Printf("Skipping already-processed webhook event %s", event.ID)
			return nil
		} else {
			marked = true
		}
	}

	var procErr error
	if event.Type == payments.EventPaymentSucceeded {
		procErr = s.handleSucceeded(ctx, event.Data.Object)
	} else {
		procErr = s.handleFailed(ctx, event.Data.Object)
	}

	if procErr != nil && marked {
		// Release the mark so the provider's redelivery is processed rather
		// than short-circuited as a duplicate.
		if err := s.ledger.Forget(ctx, event.ID); err != nil {
			log.Printf("Warning: could not release ledger entry for event %s: %v", event.ID, err)
		}
	}
	return procErr
}

func (s *ReconcileService) handleSucceeded(ctx context.Context, intent payments.PaymentIntent) error {
	orderID := intent.Metadata["orderId"]
	order, ok, err := s.lookupOrder(orderID, intent.ID)
	if err != nil || !ok {
		return err
	}

	method := s.resolvePaymentMethod(ctx, intent)

	if order.IsTerminalPayment() {
		// Repeat delivery for a settled order: overwrite with the same values,
		// skip the side effects.
		log.Printf("Order %s already %s; treating event as a no-op", order.ID, order.Status)
		return s.orderRepo.UpdatePayment(order.ID, order.Status, order.PaymentStatus, order.PaymentSessionID, order.PaymentMethod)
	}

	if err := s.orderRepo.UpdatePayment(order.ID, models.OrderStatusPaid, models.PaymentStatusSuccess, intent.ID, method); err != nil {
		return fmt.Errorf("failed to record payment success for order %s: %w", order.ID, err)
	}

	// From here on the payment transition is durable. Side-effect failures
	// leave the system partially reconciled but never roll the payment back;
	// stock and cart can be reconciled out-of-band.
	userID := intent.Metadata["userId"]
	if userID == "" {
		userID = order.UserID
	}

	if err := s.cartRepo.ClearByUserID(userID); err != nil {
		log.Printf("Warning: failed to clear cart for user %s after order %s: %v", userID, order.ID, err)
	}

	for _, item := range order.Items {
		stock, err := s.productRepo.DecrementStock(item.ProductID, item.Quantity)
		if err != nil {
			log.Printf("Warning: failed to decrement stock for product %s (order %s): %v", item.ProductID, order.ID, err)
			continue
		}
		if stock < 0 {
			// Oversell upstream; the payment is already confirmed so this is a
			// warning, not a failure.
			log.Printf("Warning: stock for product %s went negative (%d) after order %s", item.ProductID, stock, order.ID)
		}
	}

	s.notifyPaymentSuccess(order)
	return nil
}

func (s *ReconcileService) handleFailed(ctx context.Context, intent payments.PaymentIntent) error {
	orderID := intent.Metadata["orderId"]
	order, ok, err := s.lookupOrder(orderID, intent.ID)
	if err != nil || !ok {
		return err
	}

	method := s.resolvePaymentMethod(ctx, intent)

	if order.IsTerminalPayment() {
		log.Printf("Order %s already %s; treating event as a no-op", order.ID, order.Status)
		return s.orderRepo.UpdatePayment(order.ID, order.Status, order.PaymentStatus, order.PaymentSessionID, order.PaymentMethod)
	}

	if err := s.orderRepo.UpdatePayment(order.ID, models.OrderStatusCancelled, models.PaymentStatusFailed, intent.ID, method); err != nil {
		return fmt.Errorf("failed to record payment failure for order %s: %w", order.ID, err)
	}
	// No stock or cart side effects for a failed payment.
	return nil
}

// lookupOrder fetches the order referenced by the event metadata. A missing
// order is logged and acknowledged (ok=false, nil error) so the provider stops
// retrying an event we can never match; transient lookup errors are returned
// as retryable.
func (s *ReconcileService) lookupOrder(orderID, intentID string) (*models.Order, bool, error) {
	if orderID == "" {
		log.Printf("Webhook intent %s carries no order id; acknowledging", intentID)
		return nil, false, nil
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if isRecordNotFound(err) {
			log.Printf("Webhook intent %s references unknown order %s; acknowledging", intentID, orderID)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}
	return order, true, nil
}

func (s *ReconcileService) resolvePaymentMethod(ctx context.Context, intent payments.PaymentIntent) string {
	if s.gateway == nil || intent.PaymentMethod == "" {
		return intent.PaymentMethod
	}
	method, err := s.gateway.PaymentMethodType(ctx, intent.PaymentMethod)
	if err != nil {
		log.Printf("Warning: could not resolve payment method %s: %v", intent.PaymentMethod, err)
		return intent.PaymentMethod
	}
	return method
}

func (s *ReconcileService) notifyPaymentSuccess(order *models.Order) {
	if s.notifier == nil {
		return
	}
	user, err := s.userRepo.GetByID(order.UserID)
	if err != nil {
		log.Printf("Warning: could not load user %s for payment notification: %v", order.UserID, err)
		return
	}
	err = s.notifier.PublishNotification(rabbitmq.Notification{
		Kind:    rabbitmq.KindPaymentSuccess,
		UserID:  user.ID,
		Email:   user.Email,
		Phone:   user.Phone,
		Subject: "Payment Success - Order Placed",
		Body:    fmt.Sprintf("Your payment was successful. Your order (ID: %s) is confirmed.", order.ID),
	})
	if err != nil {
		log.Printf("Warning: failed to publish payment notification for order %s: %v", order.ID, err)
	}
}

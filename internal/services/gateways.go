package services

import (
	"context"

	"lapak/pkg/payments"
	"lapak/pkg/rabbitmq"
)

// PaymentGateway is the slice of the payment-provider client the services
// depend on. *payments.Client satisfies it; tests substitute fakes.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, orderID, userID string, items []payments.LineItem) (*payments.CheckoutSession, error)
	PaymentMethodType(ctx context.Context, paymentMethodID string) (string, error)
}

// Notifier dispatches user notifications through the notification gateway.
// Dispatch is fire-and-forget: callers log failures and never roll back the
// operation that triggered the notification. *rabbitmq.Client satisfies it.
type Notifier interface {
	PublishNotification(n rabbitmq.Notification) error
}

package models

import "time"

// Order statuses. Status and PaymentStatus are only touched by the payment
// reconciliation flow; DeliveryStatus is a separate axis updated by admins.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"

	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"

	DeliveryStatusPending   = "pending"
	DeliveryStatusShipped   = "shipped"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusCancelled = "cancelled"
)

// IsValidDeliveryStatus reports whether s is one of the delivery statuses.
func IsValidDeliveryStatus(s string) bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusShipped, DeliveryStatusDelivered, DeliveryStatusCancelled:
		return true
	}
	return false
}

// IsTerminalPayment reports whether the order has reached a terminal payment
// state. Repeat webhook deliveries for a terminal order are treated as no-ops.
func (o *Order) IsTerminalPayment() bool {
	return o.Status == OrderStatusPaid || o.Status == OrderStatusCancelled
}

// OrderItem is an immutable snapshot of a purchased line item. Title and Price
// are copied at checkout time so later catalog changes never rewrite history.
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string  `json:"-" gorm:"index;type:varchar(36)"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36)"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"` // Price at the time of checkout
}

// Order represents a customer order. Orders are never deleted.
type Order struct {
	ID               string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID           string      `json:"user_id" gorm:"index;type:varchar(36)"`
	Items            []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount      float64     `json:"total_amount"`
	Status           string      `json:"status" gorm:"type:varchar(20);default:pending"`
	PaymentStatus    string      `json:"payment_status" gorm:"type:varchar(20);default:unpaid"`
	DeliveryStatus   string      `json:"delivery_status" gorm:"type:varchar(20);default:pending"`
	PaymentSessionID string      `json:"payment_session_id" gorm:"type:varchar(255)"`
	PaymentMethod    string      `json:"payment_method" gorm:"type:varchar(50)"`
	Address          string      `json:"address"`
	DeliveryDate     time.Time   `json:"delivery_date"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

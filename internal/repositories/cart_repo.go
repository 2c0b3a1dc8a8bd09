package repositories

import (
	"lapak/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// GetByUserID loads the user's cart with its items.
	GetByUserID(userID string) (*models.Cart, error)
	Create(cart *models.Cart) error
	// SaveItem inserts or updates a single cart item.
	SaveItem(item *models.CartItem) error
	// RemoveItem deletes one item from a cart.
	RemoveItem(cartID, itemID string) error
	// ClearByUserID deletes every item in the user's cart. Clearing an absent
	// or already-empty cart is a no-op, which keeps the operation idempotent
	// under repeated webhook deliveries.
	ClearByUserID(userID string) error
}

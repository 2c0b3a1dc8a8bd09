package models

import "time"

// CartItem is a single product selection inside a cart. Items are unique by
// the (ProductID, Color, Size) tuple; adding the same tuple again increments
// Quantity instead of appending a second row.
type CartItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID    string    `json:"-" gorm:"index;type:varchar(36)"`
	ProductID string    `json:"product_id" gorm:"type:varchar(36)" validate:"required,uuid"`
	Quantity  int       `json:"quantity" validate:"gte=1"`
	Color     string    `json:"color,omitempty"`
	Size      string    `json:"size,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Cart is the per-user mutable selection. It is created lazily on the first
// add and cleared (items deleted, cart row kept) on successful checkout.
type Cart struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// FindItem returns the item matching the (productID, color, size) tuple, or nil.
func (c *Cart) FindItem(productID, color, size string) *CartItem {
	for i := range c.Items {
		it := &c.Items[i]
		if it.ProductID == productID && it.Color == color && it.Size == size {
			return it
		}
	}
	return nil
}

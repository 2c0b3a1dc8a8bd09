package models

import "time"

// WishlistItem marks a product a user wants to keep an eye on. A product can
// appear at most once per user.
type WishlistItem struct {
	ID        uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:ux_wishlist_user_product;type:varchar(36)"`
	ProductID string    `json:"product_id" gorm:"uniqueIndex:ux_wishlist_user_product;type:varchar(36)"`
	CreatedAt time.Time `json:"created_at"`
}

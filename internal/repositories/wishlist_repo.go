package repositories

import (
	"errors"
	"fmt"
	"lapak/internal/models"
	"strings"

	"gorm.io/gorm"
)

// ErrDuplicateWishlistItem is returned when a product is added to a wishlist twice.
var ErrDuplicateWishlistItem = errors.New("product already in wishlist")

// WishlistRepository defines the interface for wishlist data access.
type WishlistRepository interface {
	Add(userID, productID string) error
	Remove(userID, productID string) error
	// ListByUser returns the wishlisted products themselves, not the join rows.
	ListByUser(userID string) ([]models.Product, error)
}

// GORMWishlistRepository is a GORM implementation of WishlistRepository.
type GORMWishlistRepository struct {
	db *gorm.DB
}

// NewGORMWishlistRepository creates a new instance of GORMWishlistRepository.
func NewGORMWishlistRepository(db *gorm.DB) *GORMWishlistRepository {
	return &GORMWishlistRepository{
		db: db,
	}
}

// Add inserts a wishlist entry. The unique index on (user_id, product_id)
// turns a duplicate add into ErrDuplicateWishlistItem.
func (r *GORMWishlistRepository) Add(userID, productID string) error {
	item := models.WishlistItem{UserID: userID, ProductID: productID}
	if err := r.db.Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique") {
			return fmt.Errorf("%w: product %s", ErrDuplicateWishlistItem, productID)
		}
		return fmt.Errorf("failed to add product %s to wishlist: %w", productID, err)
	}
	return nil
}

// Remove deletes a wishlist entry.
func (r *GORMWishlistRepository) Remove(userID, productID string) error {
	res := r.db.Delete(&models.WishlistItem{}, "user_id = ? AND product_id = ?", userID, productID)
	if res.Error != nil {
		return fmt.Errorf("failed to remove product %s from wishlist: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s not in wishlist: %w", productID, gorm.ErrRecordNotFound)
	}
	return nil
}

// ListByUser returns the products on the user's wishlist.
func (r *GORMWishlistRepository) ListByUser(userID string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.
		Joins("JOIN wishlist_items ON wishlist_items.product_id = products.id").
		Where("wishlist_items.user_id = ?", userID).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist for user %s: %w", userID, err)
	}
	return products, nil
}

package services

import (
	"errors"
	"fmt"

	"lapak/internal/models"
	"lapak/internal/repositories"
)

// WishlistService handles business logic related to wishlists.
type WishlistService struct {
	wishlistRepo repositories.WishlistRepository
	productRepo  repositories.ProductRepository
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(wishlistRepo repositories.WishlistRepository, productRepo repositories.ProductRepository) *WishlistService {
	return &WishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

// Add puts a product on the user's wishlist.
func (s *WishlistService) Add(userID, productID string) error {
	if _, err := s.productRepo.GetByID(productID); err != nil {
		if isRecordNotFound(err) {
			return fmt.Errorf("%w: product %s", ErrNotFound, productID)
		}
		return fmt.Errorf("failed to validate product %s: %w", productID, err)
	}
	if err := s.wishlistRepo.Add(userID, productID); err != nil {
		if errors.Is(err, repositories.ErrDuplicateWishlistItem) {
			return fmt.Errorf("%w: product %s already in wishlist", ErrConflict, productID)
		}
		return err
	}
	return nil
}

// Remove takes a product off the user's wishlist.
func (s *WishlistService) Remove(userID, productID string) error {
	if err := s.wishlistRepo.Remove(userID, productID); err != nil {
		if isRecordNotFound(err) {
			return fmt.Errorf("%w: product %s not in wishlist", ErrNotFound, productID)
		}
		return err
	}
	return nil
}

// List returns the products on the user's wishlist.
func (s *WishlistService) List(userID string) ([]models.Product, error) {
	return s.wishlistRepo.ListByUser(userID)
}

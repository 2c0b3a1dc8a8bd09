package services

import (
	"fmt"
	"log"

	"lapak/internal/models"
	"lapak/internal/repositories"
)

// CartService handles business logic related to carts.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// CartItemUpdate carries a partial cart-item update. Nil fields are left
// untouched; a non-nil pointer to an empty string deliberately clears the
// variant attribute.
type CartItemUpdate struct {
	Quantity *int
	Color    *string
	Size     *string
}

// CartLine joins a cart item to its product's current title and price.
type CartLine struct {
	models.CartItem
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// CartWithTotal is a cart priced at current catalog values. The total here is
// informational: checkout re-snapshots prices.
type CartWithTotal struct {
	CartID      string     `json:"cart_id"`
	UserID      string     `json:"user_id"`
	Lines       []CartLine `json:"items"`
	TotalAmount float64    `json:"total_amount"`
}

// AddItem puts qty units of a product variant into the user's cart, creating
// the cart lazily. Adding an already-present (product, color, size) tuple
// increments its quantity instead of appending a second line.
func (s *CartService) AddItem(userID, productID, color, size string, qty int) (*models.Cart, error) {
	if qty < 1 {
		qty = 1
	}
	if _, err := s.productRepo.GetByID(productID); err != nil {
		if isRecordNotFound(err) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
		}
		return nil, fmt.Errorf("failed to validate product %s: %w", productID, err)
	}

	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		if !isRecordNotFound(err) {
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}
		cart = &models.Cart{
			UserID: userID,
			Items:  []models.CartItem{{ProductID: productID, Quantity: qty, Color: color, Size: size}},
		}
		if err := s.cartRepo.Create(cart); err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
		return s.cartRepo.GetByUserID(userID)
	}

	if existing := cart.FindItem(productID, color, size); existing != nil {
		existing.Quantity += qty
		if err := s.cartRepo.SaveItem(existing); err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	} else {
		item := models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  qty,
			Color:     color,
			Size:      size,
		}
		if err := s.cartRepo.SaveItem(&item); err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	}
	return s.cartRepo.GetByUserID(userID)
}

// UpdateItem applies a partial update to one cart item.
func (s *CartService) UpdateItem(userID, itemID string, upd CartItemUpdate) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, fmt.Errorf("%w: cart for user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var item *models.CartItem
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			item = &cart.Items[i]
			break
		}
	}
	if item == nil {
		return nil, fmt.Errorf("%w: cart item %s", ErrNotFound, itemID)
	}

	if upd.Quantity != nil {
		if *upd.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
		}
		item.Quantity = *upd.Quantity
	}
	if upd.Color != nil {
		item.Color = *upd.Color
	}
	if upd.Size != nil {
		item.Size = *upd.Size
	}

	if err := s.cartRepo.SaveItem(item); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return s.cartRepo.GetByUserID(userID)
}

// RemoveItem deletes one item from the user's cart.
func (s *CartService) RemoveItem(userID, itemID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, fmt.Errorf("%w: cart for user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("%w: cart for user %s", ErrNotFound, userID)
	}

	if err := s.cartRepo.RemoveItem(cart.ID, itemID); err != nil {
		if isRecordNotFound(err) {
			return nil, fmt.Errorf("%w: cart item %s", ErrNotFound, itemID)
		}
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return s.cartRepo.GetByUserID(userID)
}

// Clear empties the user's cart. Clearing an absent or empty cart succeeds.
func (s *CartService) Clear(userID string) error {
	if err := s.cartRepo.ClearByUserID(userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// GetWithTotal returns the cart priced at current catalog values. An absent or
// empty cart is reported as ErrCartEmpty rather than a zero total.
func (s *CartService) GetWithTotal(userID string) (*CartWithTotal, error) {
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

	result := &CartWithTotal{CartID: cart.ID, UserID: cart.UserID}
	for _, item := range cart.Items {
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			// A product removed from the catalog after it was carted: skip it
			// rather than failing the whole read.
			log.Printf("Skipping cart item %s: %v", item.ID, err)
			continue
		}
		subtotal := product.Price * float64(item.Quantity)
		result.Lines = append(result.Lines, CartLine{
			CartItem:  item,
			Title:     product.Name,
			UnitPrice: product.Price,
			Subtotal:  subtotal,
		})
		result.TotalAmount += subtotal
	}
	return result, nil
}

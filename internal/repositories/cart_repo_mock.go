package repositories

import (
	"fmt"
	"lapak/internal/models"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts map[string]models.Cart // keyed by user ID
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
	}
}

// GetByUserID returns the user's cart.
func (r *MockCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, fmt.Errorf("cart for user %s not found: %w", userID, gorm.ErrRecordNotFound)
	}
	copied := cart
	copied.Items = append([]models.CartItem(nil), cart.Items...)
	return &copied, nil
}

// Create adds a new cart.
func (r *MockCartRepository) Create(cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	for i := range cart.Items {
		if cart.Items[i].ID == "" {
			cart.Items[i].ID = uuid.New().String()
		}
		cart.Items[i].CartID = cart.ID
	}
	cart.CreatedAt = time.Now()
	cart.UpdatedAt = time.Now()
	r.carts[cart.UserID] = *cart
	return nil
}

// SaveItem inserts or updates a single cart item.
func (r *MockCartRepository) SaveItem(item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	for userID, cart := range r.carts {
		if cart.ID != item.CartID {
			continue
		}
		for i := range cart.Items {
			if cart.Items[i].ID == item.ID {
				cart.Items[i] = *item
				r.carts[userID] = cart
				return nil
			}
		}
		cart.Items = append(cart.Items, *item)
		r.carts[userID] = cart
		return nil
	}
	return fmt.Errorf("cart %s not found: %w", item.CartID, gorm.ErrRecordNotFound)
}

// RemoveItem deletes one item from a cart.
func (r *MockCartRepository) RemoveItem(cartID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, cart := range r.carts {
		if cart.ID != cartID {
			continue
		}
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				r.carts[userID] = cart
				return nil
			}
		}
		return fmt.Errorf("cart item %s not found: %w", itemID, gorm.ErrRecordNotFound)
	}
	return fmt.Errorf("cart %s not found: %w", cartID, gorm.ErrRecordNotFound)
}

// ClearByUserID empties the user's cart. Missing carts are a no-op.
func (r *MockCartRepository) ClearByUserID(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil
	}
	cart.Items = nil
	r.carts[userID] = cart
	return nil
}

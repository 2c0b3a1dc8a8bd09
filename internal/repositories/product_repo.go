package repositories

import (
	"lapak/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	// DecrementStock atomically subtracts qty from the product's stock counter
	// at the storage layer and returns the resulting stock. The counter is
	// allowed to go negative; callers decide how loudly to complain.
	DecrementStock(id string, qty int) (int, error)
}

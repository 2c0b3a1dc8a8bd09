package repositories

import (
	"lapak/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByPhone(phone string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	// ListByRole returns a page of users holding the given role together
	// with the total match count. A non-empty search narrows the page by a
	// case-insensitive match over name, email and phone.
	ListByRole(role, search string, page, limit int) ([]models.User, int64, error)
}

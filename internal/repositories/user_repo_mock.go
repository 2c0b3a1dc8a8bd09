package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"lapak/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user. Phone and email are unique, mirroring the database
// indexes.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Phone == user.Phone || existing.Email == user.Email {
			return fmt.Errorf("failed to create user: %w", gorm.ErrDuplicatedKey)
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.users[user.ID] = *user
	return nil
}

// GetByID returns a user by their ID.
func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s not found: %w", id, gorm.ErrRecordNotFound)
	}
	return &user, nil
}

// GetByPhone returns a user by their phone number.
func (r *MockUserRepository) GetByPhone(phone string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Phone == phone {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with phone %s not found: %w", phone, gorm.ErrRecordNotFound)
}

// GetByEmail returns a user by their email.
func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with email %s not found: %w", email, gorm.ErrRecordNotFound)
}

// Update saves changes to an existing user.
func (r *MockUserRepository) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user with ID %s not found: %w", user.ID, gorm.ErrRecordNotFound)
	}
	for id, existing := range r.users {
		if id != user.ID && (existing.Phone == user.Phone || existing.Email == user.Email) {
			return fmt.Errorf("failed to update user: %w", gorm.ErrDuplicatedKey)
		}
	}
	r.users[user.ID] = *user
	return nil
}

// ListByRole returns a page of users with the given role plus the total match
// count.
func (r *MockUserRepository) ListByRole(role, search string, page, limit int) ([]models.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(search)
	var matched []models.User
	for _, user := range r.users {
		if user.Role != role {
			continue
		}
		if needle != "" {
			haystack := strings.ToLower(user.FirstName + " " + user.LastName + " " + user.Email + " " + user.Phone)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		matched = append(matched, user)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

package services

import (
	"fmt"
	"log"
	"math"
	"time"

	"lapak/internal/models"
	"lapak/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
	}
}

// RegisterUser registers a new user, hashes their password, and saves them to
// the database. Phone and email are unique.
func (s *AuthService) RegisterUser(user *models.User) error {
	if existing, err := s.userRepo.GetByPhone(user.Phone); err == nil && existing != nil {
		return fmt.Errorf("%w: phone '%s' already registered", ErrConflict, user.Phone)
	}
	if existing, err := s.userRepo.GetByEmail(user.Email); err == nil && existing != nil {
		return fmt.Errorf("%w: email '%s' already registered", ErrConflict, user.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword) // Store the hashed password

	if user.Role == "" {
		user.Role = models.RoleUser
	}

	if err := s.userRepo.Create(user); err != nil {
		// A concurrent register may slip past the lookups above and hit the
		// unique index instead.
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: phone or email already registered", ErrConflict)
		}
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// RegisterAdmin registers a new administrator account. Only superadmins may
// call this; the handler enforces the role gate.
func (s *AuthService) RegisterAdmin(user *models.User) error {
	user.Role = models.RoleAdmin
	return s.RegisterUser(user)
}

// LoginUser authenticates a user by phone and returns a JWT token if successful.
func (s *AuthService) LoginUser(phone, password string) (string, error) {
	user, err := s.userRepo.GetByPhone(phone)
	if err != nil {
		// Do not reveal whether the phone number is registered.
		return "", fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":     time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// GetProfile fetches a user's own account details.
func (s *AuthService) GetProfile(userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// ProfileUpdate carries the fields a user may change on their own account.
// Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Address   *string `json:"address"`
}

// UpdateProfile applies a partial update to the user's own account. Changing
// the email to one another account already uses is a conflict.
func (s *AuthService) UpdateProfile(userID string, upd ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	if upd.Address != nil {
		user.Address = *upd.Address
	}
	if upd.Email != nil && *upd.Email != user.Email {
		if existing, err := s.userRepo.GetByEmail(*upd.Email); err == nil && existing != nil {
			return nil, fmt.Errorf("%w: email '%s' already registered", ErrConflict, *upd.Email)
		}
		user.Email = *upd.Email
	}

	if err := s.userRepo.Update(user); err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: email '%s' already registered", ErrConflict, user.Email)
		}
		return nil, fmt.Errorf("failed to update user %s: %w", userID, err)
	}
	return user, nil
}

// UserPage is one page of the admin customer listing.
type UserPage struct {
	Users       []models.User `json:"users"`
	TotalUsers  int64         `json:"total_users"`
	TotalPages  int           `json:"total_pages"`
	CurrentPage int           `json:"current_page"`
}

// ListCustomers retrieves a paginated page of regular customer accounts,
// optionally narrowed by a name/email/phone search (admin view).
func (s *AuthService) ListCustomers(search string, page, limit int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	users, total, err := s.userRepo.ListByRole(models.RoleUser, search, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return &UserPage{
		Users:       users,
		TotalUsers:  total,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		CurrentPage: page,
	}, nil
}

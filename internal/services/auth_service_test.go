package services_test

import (
	"fmt"
	"testing"
	"time"

	"lapak/internal/models"
	"lapak/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByPhone(phone string) (*models.User, error) {
	args := m.Called(phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) ListByRole(role, search string, page, limit int) ([]models.User, int64, error) {
	args := m.Called(role, search, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func notFoundErr(what string) error {
	return fmt.Errorf("%s not found: %w", what, gorm.ErrRecordNotFound)
}

func TestAuthService_RegisterUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	testJWTSecret := "test_jwt_secret"
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	user := &models.User{
		CountryCode: "+62",
		Phone:       "81234567",
		FirstName:   "Ayu",
		Email:       "ayu@example.com",
		Password:    "password123",
	}

	// Test successful registration
	mockRepo.On("GetByPhone", user.Phone).Return(nil, notFoundErr("user")).Once()
	mockRepo.On("GetByEmail", user.Email).Return(nil, notFoundErr("user")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	err := authService.RegisterUser(user)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role, "role defaults to user")
	assert.NotEqual(t, "password123", user.Password, "password must be stored hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// Test phone already registered
	mockRepo.On("GetByPhone", user.Phone).Return(&models.User{ID: "1"}, nil).Once()
	err = authService.RegisterUser(user)
	assert.ErrorIs(t, err, services.ErrConflict)
	mockRepo.AssertExpectations(t)

	// Test email already registered
	mockRepo.On("GetByPhone", user.Phone).Return(nil, notFoundErr("user")).Once()
	mockRepo.On("GetByEmail", user.Email).Return(&models.User{ID: "1"}, nil).Once()
	err = authService.RegisterUser(user)
	assert.ErrorIs(t, err, services.ErrConflict)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUser_ConcurrentDuplicate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	user := &models.User{
		CountryCode: "+62",
		Phone:       "81234567",
		FirstName:   "Ayu",
		Email:       "ayu@example.com",
		Password:    "password123",
	}

	// A concurrent register commits between the lookups and the insert, so
	// the insert hits the unique index.
	mockRepo.On("GetByPhone", user.Phone).Return(nil, notFoundErr("user")).Once()
	mockRepo.On("GetByEmail", user.Email).Return(nil, notFoundErr("user")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).
		Return(fmt.Errorf("failed to create user: %w", gorm.ErrDuplicatedKey)).Once()

	err := authService.RegisterUser(user)
	assert.ErrorIs(t, err, services.ErrConflict)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUser_RawDriverDuplicateError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	user := &models.User{
		CountryCode: "+62",
		Phone:       "81234567",
		FirstName:   "Ayu",
		Email:       "ayu@example.com",
		Password:    "password123",
	}

	// Without GORM error translation the raw driver message comes through.
	mockRepo.On("GetByPhone", user.Phone).Return(nil, notFoundErr("user")).Once()
	mockRepo.On("GetByEmail", user.Email).Return(nil, notFoundErr("user")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).
		Return(fmt.Errorf("UNIQUE constraint failed: users.phone")).Once()

	err := authService.RegisterUser(user)
	assert.ErrorIs(t, err, services.ErrConflict)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterAdmin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	admin := &models.User{
		CountryCode: "+62",
		Phone:       "89999999",
		FirstName:   "Dewi",
		Email:       "dewi@example.com",
		Password:    "password123",
	}

	mockRepo.On("GetByPhone", admin.Phone).Return(nil, notFoundErr("user")).Once()
	mockRepo.On("GetByEmail", admin.Email).Return(nil, notFoundErr("user")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	err := authService.RegisterAdmin(admin)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	stored := models.User{
		ID:        "user-123",
		FirstName: "Ayu",
		LastName:  "Putri",
		Email:     "ayu@example.com",
		Address:   "Jl. Merdeka 1",
	}

	// Only supplied fields change; nil fields stay untouched.
	fresh := stored
	mockRepo.On("GetByID", "user-123").Return(&fresh, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil).Once()

	newAddress := "Jl. Sudirman 5"
	updated, err := authService.UpdateProfile("user-123", services.ProfileUpdate{Address: &newAddress})
	assert.NoError(t, err)
	assert.Equal(t, "Jl. Sudirman 5", updated.Address)
	assert.Equal(t, "Ayu", updated.FirstName)
	assert.Equal(t, "ayu@example.com", updated.Email)
	mockRepo.AssertExpectations(t)

	// Changing the email to one another account uses is a conflict.
	fresh2 := stored
	mockRepo.On("GetByID", "user-123").Return(&fresh2, nil).Once()
	mockRepo.On("GetByEmail", "taken@example.com").Return(&models.User{ID: "user-456"}, nil).Once()

	taken := "taken@example.com"
	_, err = authService.UpdateProfile("user-123", services.ProfileUpdate{Email: &taken})
	assert.ErrorIs(t, err, services.ErrConflict)
	mockRepo.AssertExpectations(t)

	// Unknown user.
	mockRepo.On("GetByID", "ghost").Return(nil, notFoundErr("user")).Once()
	_, err = authService.UpdateProfile("ghost", services.ProfileUpdate{})
	assert.ErrorIs(t, err, services.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ListCustomers(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	customers := []models.User{
		{ID: "u1", FirstName: "Ayu", Role: models.RoleUser, Password: "hash"},
		{ID: "u2", FirstName: "Budi", Role: models.RoleUser, Password: "hash"},
	}
	mockRepo.On("ListByRole", models.RoleUser, "", 1, 10).Return(customers, int64(12), nil).Once()

	page, err := authService.ListCustomers("", 0, 0)
	assert.NoError(t, err)
	assert.Len(t, page.Users, 2)
	assert.Equal(t, int64(12), page.TotalUsers)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	for _, u := range page.Users {
		assert.Empty(t, u.Password, "password hashes never leave the service")
	}
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	testJWTSecret := "test_jwt_secret"
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       "user-123",
		Phone:    "81234567",
		Email:    "ayu@example.com",
		Password: string(hashedPassword),
		Role:     models.RoleUser,
	}

	// Test successful login
	mockRepo.On("GetByPhone", user.Phone).Return(user, nil).Once()

	token, err := authService.LoginUser(user.Phone, "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Validate the token claims
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Role, claims["role"])
	mockRepo.AssertExpectations(t)

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByPhone", user.Phone).Return(user, nil).Once()
	_, err = authService.LoginUser(user.Phone, "wrongpassword")
	assert.ErrorIs(t, err, services.ErrForbidden)
	mockRepo.AssertExpectations(t)

	// Test invalid credentials (unknown phone); the error must not reveal
	// whether the phone is registered.
	mockRepo.On("GetByPhone", "80000000").Return(nil, notFoundErr("user")).Once()
	_, err = authService.LoginUser("80000000", "password123")
	assert.ErrorIs(t, err, services.ErrForbidden)
	assert.Contains(t, err.Error(), "invalid credentials")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	testJWTSecret := "test_jwt_secret"
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	// Generate a valid token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"role":    models.RoleAdmin,
		"exp":     jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	// Test valid token
	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, models.RoleAdmin, claims["role"])

	// Test malformed token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Test token signed with a different secret
	otherToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	otherTokenString, _ := otherToken.SignedString([]byte("another_secret"))
	_, err = authService.ValidateToken(otherTokenString)
	assert.Error(t, err)

	// Test expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

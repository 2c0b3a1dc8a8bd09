package models

import "gorm.io/gorm"

// User roles. Admin endpoints are gated on these in the JWT middleware.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// User represents a registered customer or administrator.
type User struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	CountryCode string `json:"country_code" validate:"required,startswith=+,max=4"`
	Phone       string `json:"phone" gorm:"uniqueIndex;type:varchar(20)" validate:"required,numeric,min=7,max=10"`
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"omitempty,max=100"`
	Email       string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password    string `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	Role        string `json:"role" gorm:"type:varchar(20);default:user" validate:"omitempty,oneof=user admin superadmin"`
	Address     string `json:"address" validate:"omitempty,max=500"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aromabay/aromabay-backend/pkg/enums"
)

// User represents the canonical identity entity. Login is the stable
// business identifier; orders reference it rather than the surrogate ID.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Login        string         `gorm:"column:login;type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'user'"`
	Email        *string        `gorm:"column:email"`
	FirstName    *string        `gorm:"column:first_name"`
	LastName     *string        `gorm:"column:last_name"`
	Phone        *string        `gorm:"column:phone"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

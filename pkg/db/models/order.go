package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aromabay/aromabay-backend/pkg/enums"
)

// Order is the aggregate root for a purchase. Lines are immutable once
// the order is created; only Status (and CancelledAt) move afterwards.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerLogin  string            `gorm:"column:owner_login;type:text;not null;index"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'new'"`
	Address     string            `gorm:"column:address;not null"`
	TotalCents  int64             `gorm:"column:total_cents;not null"`
	Lines       []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CancelledAt *time.Time        `gorm:"column:cancelled_at"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

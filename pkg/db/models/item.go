package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Item represents a catalog listing. Prices are integer cents.
type Item struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID  uuid.UUID      `gorm:"column:category_id;type:uuid;not null"`
	Name        string         `gorm:"column:name;not null"`
	Brand       *string        `gorm:"column:brand"`
	Description *string        `gorm:"column:description"`
	PriceCents  int64          `gorm:"column:price_cents;not null"`
	ScentNotes  pq.StringArray `gorm:"column:scent_notes;type:text[];not null;default:ARRAY[]::text[]"`
	Images      pq.StringArray `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	Inventory   *InventoryItem `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem tracks the single global available count per item.
type InventoryItem struct {
	ItemID       uuid.UUID `gorm:"column:item_id;type:uuid;primaryKey"`
	AvailableQty int       `gorm:"column:available_qty;not null;default:0"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

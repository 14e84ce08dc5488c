package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite marks an item a user wants to find again.
type Favorite struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_favorites_user_item"`
	ItemID    uuid.UUID `gorm:"column:item_id;type:uuid;not null;uniqueIndex:idx_favorites_user_item"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

package favorites

import (
	"time"

	"github.com/google/uuid"
)

// FavoriteItemDTO is one favorite joined with its catalog snapshot.
type FavoriteItemDTO struct {
	ItemID     uuid.UUID `json:"item_id"`
	Name       string    `json:"name"`
	Brand      *string   `json:"brand,omitempty"`
	PriceCents int64     `json:"price_cents"`
	IsActive   bool      `json:"is_active"`
	InStock    bool      `json:"in_stock"`
	AddedAt    time.Time `json:"added_at"`
}

// FavoritesPageDTO is one cursor page of favorites.
type FavoritesPageDTO struct {
	Items      []FavoriteItemDTO `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

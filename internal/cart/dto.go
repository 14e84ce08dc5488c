package cart

import (
	"time"

	"github.com/google/uuid"
)

// AddItemInput is the payload to put an item into the cart.
type AddItemInput struct {
	ItemID uuid.UUID `json:"item_id" validate:"required"`
	Qty    int       `json:"qty" validate:"required,gt=0"`
}

// UpdateItemInput sets the absolute quantity for a cart line. Zero
// removes the line.
type UpdateItemInput struct {
	Qty int `json:"qty" validate:"gte=0"`
}

// LineDTO is one cart row joined with its current catalog data. Prices
// here are live catalog prices, not snapshots; checkout freezes them.
type LineDTO struct {
	ItemID         uuid.UUID `json:"item_id"`
	Name           string    `json:"name"`
	Brand          *string   `json:"brand,omitempty"`
	PriceCents     int64     `json:"price_cents"`
	Qty            int       `json:"qty"`
	LineTotalCents int64     `json:"line_total_cents"`
	AvailableQty   int       `json:"available_qty"`
	IsActive       bool      `json:"is_active"`
	AddedAt        time.Time `json:"added_at"`
}

// CartDTO is the full cart with its running total.
type CartDTO struct {
	Lines      []LineDTO `json:"lines"`
	TotalCents int64     `json:"total_cents"`
}

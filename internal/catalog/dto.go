package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/aromabay/aromabay-backend/pkg/db/models"
	"github.com/aromabay/aromabay-backend/pkg/pagination"
)

// CategoryDTO is the transport shape for a catalog category.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCategoryInput holds the validated payload to create a category.
type CreateCategoryInput struct {
	Name string `json:"name" validate:"required,min=2,max=128"`
}

// ItemDTO carries the full item detail including availability.
type ItemDTO struct {
	ID           uuid.UUID `json:"id"`
	CategoryID   uuid.UUID `json:"category_id"`
	Name         string    `json:"name"`
	Brand        *string   `json:"brand,omitempty"`
	Description  *string   `json:"description,omitempty"`
	PriceCents   int64     `json:"price_cents"`
	ScentNotes   []string  `json:"scent_notes"`
	Images       []string  `json:"images"`
	IsActive     bool      `json:"is_active"`
	AvailableQty int       `json:"available_qty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateItemInput holds the validated payload to create an item.
type CreateItemInput struct {
	CategoryID   uuid.UUID `json:"category_id" validate:"required"`
	Name         string    `json:"name" validate:"required,min=2,max=256"`
	Brand        *string   `json:"brand,omitempty"`
	Description  *string   `json:"description,omitempty"`
	PriceCents   int64     `json:"price_cents" validate:"gte=0"`
	ScentNotes   []string  `json:"scent_notes,omitempty"`
	Images       []string  `json:"images,omitempty"`
	IsActive     *bool     `json:"is_active,omitempty"`
	InitialStock int       `json:"initial_stock" validate:"gte=0"`
}

// UpdateItemInput holds optional mutation values for an item. Nil fields
// are left untouched.
type UpdateItemInput struct {
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	Name         *string    `json:"name,omitempty" validate:"omitempty,min=2,max=256"`
	Brand        *string    `json:"brand,omitempty"`
	Description  *string    `json:"description,omitempty"`
	PriceCents   *int64     `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	ScentNotes   *[]string  `json:"scent_notes,omitempty"`
	Images       *[]string  `json:"images,omitempty"`
	IsActive     *bool      `json:"is_active,omitempty"`
	AvailableQty *int       `json:"available_qty,omitempty" validate:"omitempty,gte=0"`
}

// ItemListFilters narrows the public item listing.
type ItemListFilters struct {
	CategoryID    *uuid.UUID
	Query         string
	PriceMinCents *int64
	PriceMaxCents *int64
	InStockOnly   bool
}

// ListItemsInput bundles pagination and filters for the item listing.
type ListItemsInput struct {
	Pagination      pagination.Params
	Filters         ItemListFilters
	IncludeInactive bool
}

// ItemSummary is the row shape returned by the public listing.
type ItemSummary struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Brand      *string   `json:"brand,omitempty"`
	PriceCents int64     `json:"price_cents"`
	InStock    bool      `json:"in_stock"`
	CreatedAt  time.Time `json:"created_at"`
}

// ItemListResult is one page of items plus the cursor for the next page.
type ItemListResult struct {
	Items      []ItemSummary `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func categoryDTO(c *models.Category) *CategoryDTO {
	if c == nil {
		return nil
	}
	return &CategoryDTO{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

func itemDTO(item *models.Item) *ItemDTO {
	if item == nil {
		return nil
	}

	available := 0
	if item.Inventory != nil {
		available = item.Inventory.AvailableQty
	}

	return &ItemDTO{
		ID:           item.ID,
		CategoryID:   item.CategoryID,
		Name:         item.Name,
		Brand:        item.Brand,
		Description:  item.Description,
		PriceCents:   item.PriceCents,
		ScentNotes:   append([]string(nil), item.ScentNotes...),
		Images:       append([]string(nil), item.Images...),
		IsActive:     item.IsActive,
		AvailableQty: available,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

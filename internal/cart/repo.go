package cart

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aromabay/aromabay-backend/pkg/db/models"
)

// Repository encapsulates cart persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddItem inserts a cart row or bumps the quantity of an existing one.
func (r *Repository) AddItem(ctx context.Context, userID, itemID uuid.UUID, qty int) error {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return gorm.ErrInvalidValue
	}

	return r.db.WithContext(ctx).
		Exec(`INSERT INTO cart_items (id, user_id, item_id, qty, created_at, updated_at)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT (user_id, item_id)
DO UPDATE SET qty = cart_items.qty + ?, updated_at = CURRENT_TIMESTAMP`,
			uuid.New(), userID, itemID, qty, qty).
		Error
}

// SetQty replaces the quantity of an existing cart line. Returns the
// number of rows touched so callers can detect a missing line.
func (r *Repository) SetQty(ctx context.Context, userID, itemID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Update("qty", qty)
	return res.RowsAffected, res.Error
}

// RemoveItem deletes the cart line if it exists.
func (r *Repository) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Delete(&models.CartItem{}).
		Error
}

// Clear empties the user's cart.
func (r *Repository) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).
		Error
}

// ListLines returns the cart joined with live item data, oldest first.
func (r *Repository) ListLines(ctx context.Context, userID uuid.UUID) ([]LineDTO, error) {
	selectColumns := []string{
		"ci.item_id",
		"ci.qty",
		"ci.created_at AS added_at",
		"i.name",
		"i.brand",
		"i.price_cents",
		"i.is_active",
		"COALESCE(inv.available_qty, 0) AS available_qty",
	}

	query := r.db.WithContext(ctx).
		Table("cart_items ci").
		Select(strings.Join(selectColumns, ", ")).
		Joins("JOIN items i ON i.id = ci.item_id").
		Joins("LEFT JOIN inventory_items inv ON inv.item_id = ci.item_id").
		Where("ci.user_id = ?", userID).
		Order("ci.created_at ASC")

	var records []cartLineRecord
	if err := query.Scan(&records).Error; err != nil {
		return nil, err
	}

	lines := make([]LineDTO, 0, len(records))
	for _, record := range records {
		lines = append(lines, record.toDTO())
	}
	return lines, nil
}

type cartLineRecord struct {
	ItemID       uuid.UUID      `gorm:"column:item_id"`
	Qty          int            `gorm:"column:qty"`
	AddedAt      time.Time      `gorm:"column:added_at"`
	Name         string         `gorm:"column:name"`
	Brand        sql.NullString `gorm:"column:brand"`
	PriceCents   int64          `gorm:"column:price_cents"`
	IsActive     bool           `gorm:"column:is_active"`
	AvailableQty int            `gorm:"column:available_qty"`
}

func (r cartLineRecord) toDTO() LineDTO {
	line := LineDTO{
		ItemID:         r.ItemID,
		Name:           r.Name,
		PriceCents:     r.PriceCents,
		Qty:            r.Qty,
		LineTotalCents: r.PriceCents * int64(r.Qty),
		AvailableQty:   r.AvailableQty,
		IsActive:       r.IsActive,
		AddedAt:        r.AddedAt,
	}
	if r.Brand.Valid {
		brand := r.Brand.String
		line.Brand = &brand
	}
	return line
}

package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aromabay/aromabay-backend/pkg/db/models"
	pkgerrors "github.com/aromabay/aromabay-backend/pkg/errors"
)

// Reservation is the catalog snapshot taken when stock is reserved. The
// unit price is read in the same transaction so the order line freezes
// the price that was actually charged.
type Reservation struct {
	ItemID         uuid.UUID
	Name           string
	UnitPriceCents int64
}

// Ledger guards the per-item available count. Reserve and Release run
// inside the caller's transaction so order writes and stock moves commit
// or roll back together.
type Ledger interface {
	Reserve(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) (*Reservation, error)
	Release(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) error
	PriceOf(ctx context.Context, itemID uuid.UUID) (int64, error)
	Availability(ctx context.Context, itemID uuid.UUID) (int, error)
}

type ledger struct {
	db *gorm.DB
}

// NewLedger builds the inventory ledger bound to the provided DB.
func NewLedger(db *gorm.DB) (Ledger, error) {
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &ledger{db: db}, nil
}

// Reserve decrements available stock for the item and returns the price
// snapshot. The decrement is a single guarded UPDATE: the WHERE clause
// re-checks availability so concurrent reservations can never oversell.
func (l *ledger) Reserve(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) (*Reservation, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]any{"item_id": itemID, "qty": qty})
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory reserve")
	}

	var item models.Item
	err := tx.WithContext(ctx).
		Select("id", "name", "price_cents", "is_active").
		Where("id = ?", itemID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found").
				WithDetails(map[string]any{"item_id": itemID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	if !item.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found").
			WithDetails(map[string]any{"item_id": itemID})
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE inventory_items
		SET available_qty = available_qty - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE item_id = ? AND available_qty >= ?
	`, qty, itemID, qty)
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve inventory")
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
			WithDetails(map[string]any{"item_id": itemID, "requested": qty})
	}

	return &Reservation{
		ItemID:         item.ID,
		Name:           item.Name,
		UnitPriceCents: item.PriceCents,
	}, nil
}

// Release returns previously reserved stock to the available count.
func (l *ledger) Release(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory release")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE inventory_items
		SET available_qty = available_qty + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE item_id = ?
	`, qty, itemID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release inventory")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory row not found").
			WithDetails(map[string]any{"item_id": itemID})
	}
	return nil
}

// PriceOf returns the current catalog price without reserving anything.
func (l *ledger) PriceOf(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var item models.Item
	err := l.db.WithContext(ctx).
		Select("id", "price_cents").
		Where("id = ?", itemID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "item not found").
				WithDetails(map[string]any{"item_id": itemID})
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item price")
	}
	return item.PriceCents, nil
}

// Availability returns the current available count for the item.
func (l *ledger) Availability(ctx context.Context, itemID uuid.UUID) (int, error) {
	var row models.InventoryItem
	err := l.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "inventory row not found").
				WithDetails(map[string]any{"item_id": itemID})
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	return row.AvailableQty, nil
}

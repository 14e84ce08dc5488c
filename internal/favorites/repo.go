package favorites

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aromabay/aromabay-backend/pkg/db/models"
	"github.com/aromabay/aromabay-backend/pkg/pagination"
)

// Repository encapsulates favorites persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a favorites repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddItem inserts a favorite and ignores duplicates.
func (r *Repository) AddItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return gorm.ErrInvalidValue
	}

	return r.db.WithContext(ctx).
		Exec(`INSERT INTO favorites (id, user_id, item_id, created_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (user_id, item_id) DO NOTHING`,
			uuid.New(), userID, itemID).
		Error
}

// RemoveItem deletes the favorite if it exists.
func (r *Repository) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Delete(&models.Favorite{}).
		Error
}

// ListItems returns a cursor page of favorites joined with item data.
func (r *Repository) ListItems(ctx context.Context, userID uuid.UUID, cursor string, limit int) (FavoritesPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return FavoritesPageDTO{}, err
	}

	selectColumns := []string{
		"f.id AS favorite_id",
		"f.created_at AS favorite_created_at",
		"f.item_id",
		"i.name",
		"i.brand",
		"i.price_cents",
		"i.is_active",
		"COALESCE(inv.available_qty, 0) > 0 AS in_stock",
	}

	query := r.db.WithContext(ctx).
		Table("favorites f").
		Select(strings.Join(selectColumns, ", ")).
		Joins("JOIN items i ON i.id = f.item_id").
		Joins("LEFT JOIN inventory_items inv ON inv.item_id = f.item_id").
		Where("f.user_id = ?", userID)

	if decodedCursor != nil {
		query = query.Where("(f.created_at < ?) OR (f.created_at = ? AND f.id < ?)", decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	query = query.Order("f.created_at DESC").Order("f.id DESC").Limit(limitWithBuffer)

	var records []favoriteRecord
	if err := query.Scan(&records).Error; err != nil {
		return FavoritesPageDTO{}, err
	}

	resultRows := records
	nextCursor := ""
	if len(records) > normalizedLimit {
		resultRows = records[:normalizedLimit]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.FavoriteCreatedAt,
			ID:        last.FavoriteID,
		})
	}

	items := make([]FavoriteItemDTO, 0, len(resultRows))
	for _, record := range resultRows {
		items = append(items, record.toDTO())
	}

	return FavoritesPageDTO{Items: items, NextCursor: nextCursor}, nil
}

type favoriteRecord struct {
	FavoriteID        uuid.UUID      `gorm:"column:favorite_id"`
	FavoriteCreatedAt time.Time      `gorm:"column:favorite_created_at"`
	ItemID            uuid.UUID      `gorm:"column:item_id"`
	Name              string         `gorm:"column:name"`
	Brand             sql.NullString `gorm:"column:brand"`
	PriceCents        int64          `gorm:"column:price_cents"`
	IsActive          bool           `gorm:"column:is_active"`
	InStock           bool           `gorm:"column:in_stock"`
}

func (r favoriteRecord) toDTO() FavoriteItemDTO {
	dto := FavoriteItemDTO{
		ItemID:     r.ItemID,
		Name:       r.Name,
		PriceCents: r.PriceCents,
		IsActive:   r.IsActive,
		InStock:    r.InStock,
		AddedAt:    r.FavoriteCreatedAt,
	}
	if r.Brand.Valid {
		brand := r.Brand.String
		dto.Brand = &brand
	}
	return dto
}

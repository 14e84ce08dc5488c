package catalog

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

// Repository wires together catalog persistence for categories, items,
// and their inventory rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateCategory inserts a new category row.
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

// FindCategoryByID loads a single category.
func (r *Repository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category by ID. Returns the number of rows
// deleted so callers can distinguish a missing category.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	return res.RowsAffected, res.Error
}

// CountItemsInCategory reports how many items reference the category.
func (r *Repository) CountItemsInCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// CreateItem inserts a new item row.
func (r *Repository) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Omit("Inventory").Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// FindItemByID loads the item with its inventory row.
func (r *Repository) FindItemByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).Preload("Inventory").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem persists the provided item row.
func (r *Repository) UpdateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.db.WithContext(ctx).Omit("Inventory").Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item by ID, cascading to its inventory row.
func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Item{})
	return res.RowsAffected, res.Error
}

// UpsertInventory creates or replaces the inventory row for an item.
func (r *Repository) UpsertInventory(ctx context.Context, inv *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Save(inv).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

type itemListQuery struct {
	Pagination      pagination.Params
	Filters         ItemListFilters
	IncludeInactive bool
}

// ListItemSummaries returns one cursor page of items with stock flags.
func (r *Repository) ListItemSummaries(ctx context.Context, query itemListQuery) (*ItemListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Table("items i").
		Select(strings.Join([]string{
			"i.id",
			"i.category_id",
			"i.name",
			"i.brand",
			"i.price_cents",
			"i.created_at",
			"COALESCE(inv.available_qty, 0) > 0 AS in_stock",
		}, ", ")).
		Joins("LEFT JOIN inventory_items inv ON inv.item_id = i.id")

	if !query.IncludeInactive {
		qb = qb.Where("i.is_active = ?", true)
	}

	filter := query.Filters
	if filter.CategoryID != nil {
		qb = qb.Where("i.category_id = ?", *filter.CategoryID)
	}
	if filter.PriceMinCents != nil {
		qb = qb.Where("i.price_cents >= ?", *filter.PriceMinCents)
	}
	if filter.PriceMaxCents != nil {
		qb = qb.Where("i.price_cents <= ?", *filter.PriceMaxCents)
	}
	if filter.InStockOnly {
		qb = qb.Where("COALESCE(inv.available_qty, 0) > 0")
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(i.name) LIKE ? OR LOWER(COALESCE(i.brand, '')) LIKE ?)", pattern, pattern)
	}

	if cursor != nil {
		qb = qb.Where("(i.created_at < ?) OR (i.created_at = ? AND i.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	qb = qb.Order("i.created_at DESC").Order("i.id DESC").Limit(limitWithBuffer)

	var records []itemSummaryRecord
	if err := qb.Scan(&records).Error; err != nil {
		return nil, err
	}

	resultRows := records
	nextCursor := ""
	if len(records) > pageSize {
		resultRows = records[:pageSize]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	summaries := make([]ItemSummary, 0, len(resultRows))
	for _, record := range resultRows {
		summaries = append(summaries, record.toSummary())
	}

	return &ItemListResult{Items: summaries, NextCursor: nextCursor}, nil
}

type itemSummaryRecord struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
	Name       string
	Brand      sql.NullString
	PriceCents int64
	InStock    bool
	CreatedAt  time.Time
}

func (r itemSummaryRecord) toSummary() ItemSummary {
	summary := ItemSummary{
		ID:         r.ID,
		CategoryID: r.CategoryID,
		Name:       r.Name,
		PriceCents: r.PriceCents,
		InStock:    r.InStock,
		CreatedAt:  r.CreatedAt,
	}
	if r.Brand.Valid {
		brand := r.Brand.String
		summary.Brand = &brand
	}
	return summary
}

package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aromabay/aromabay-backend/pkg/enums"
	pkgerrors "github.com/aromabay/aromabay-backend/pkg/errors"
	"github.com/aromabay/aromabay-backend/pkg/pagination"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	categories := `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS items (
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL,
  name TEXT NOT NULL,
  brand TEXT,
  description TEXT,
  price_cents INTEGER NOT NULL,
  scent_notes TEXT,
  images TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	inventoryItems := `
CREATE TABLE IF NOT EXISTS inventory_items (
  item_id TEXT PRIMARY KEY,
  available_qty INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(categories).Error)
	require.NoError(t, db.Exec(items).Error)
	require.NoError(t, db.Exec(inventoryItems).Error)
	return db
}

type catalogTxRunner struct {
	db *gorm.DB
}

func (r catalogTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newCatalogService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), catalogTxRunner{db: db})
	require.NoError(t, err)
	return svc
}

func seedCategory(t *testing.T, svc Service, name string) uuid.UUID {
	t.Helper()

	category, err := svc.CreateCategory(context.Background(), enums.UserRoleManager, CreateCategoryInput{Name: name})
	require.NoError(t, err)
	return category.ID
}

func requireCatalogCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()

	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr, "expected typed error, got %v", err)
	require.Equal(t, code, appErr.Code())
}

func TestCreateItemSeedsInventory(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	categoryID := seedCategory(t, svc, "eau de parfum")

	brand := "Maison Nuit"
	item, err := svc.CreateItem(context.Background(), enums.UserRoleManager, CreateItemInput{
		CategoryID:   categoryID,
		Name:         "Nuit Profonde",
		Brand:        &brand,
		PriceCents:   12900,
		ScentNotes:   []string{"oud", "amber"},
		InitialStock: 7,
	})
	require.NoError(t, err)
	require.Equal(t, int64(12900), item.PriceCents)
	require.Equal(t, 7, item.AvailableQty)
	require.True(t, item.IsActive)
	require.Equal(t, []string{"oud", "amber"}, item.ScentNotes)
}

func TestCreateItemRequiresManagerRole(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	categoryID := seedCategory(t, svc, "eau de toilette")

	_, err := svc.CreateItem(context.Background(), enums.UserRoleUser, CreateItemInput{
		CategoryID: categoryID,
		Name:       "Forbidden",
		PriceCents: 100,
	})
	requireCatalogCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateItemUnknownCategory(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)

	_, err := svc.CreateItem(context.Background(), enums.UserRoleManager, CreateItemInput{
		CategoryID: uuid.New(),
		Name:       "Orphan",
		PriceCents: 100,
	})
	requireCatalogCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateItemAdjustsStockAndPrice(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	categoryID := seedCategory(t, svc, "extrait")

	item, err := svc.CreateItem(context.Background(), enums.UserRoleAdministrator, CreateItemInput{
		CategoryID:   categoryID,
		Name:         "Ambre Vif",
		PriceCents:   9900,
		InitialStock: 2,
	})
	require.NoError(t, err)

	newPrice := int64(10900)
	newStock := 15
	updated, err := svc.UpdateItem(context.Background(), enums.UserRoleAdministrator, item.ID, UpdateItemInput{
		PriceCents:   &newPrice,
		AvailableQty: &newStock,
	})
	require.NoError(t, err)
	require.Equal(t, int64(10900), updated.PriceCents)
	require.Equal(t, 15, updated.AvailableQty)
}

func TestGetItemHidesInactiveFromShoppers(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	categoryID := seedCategory(t, svc, "discontinued")

	inactive := false
	item, err := svc.CreateItem(context.Background(), enums.UserRoleManager, CreateItemInput{
		CategoryID: categoryID,
		Name:       "Retired Scent",
		PriceCents: 500,
		IsActive:   &inactive,
	})
	require.NoError(t, err)

	_, err = svc.GetItem(context.Background(), enums.UserRoleUser, item.ID)
	requireCatalogCode(t, err, pkgerrors.CodeNotFound)

	visible, err := svc.GetItem(context.Background(), enums.UserRoleManager, item.ID)
	require.NoError(t, err)
	require.False(t, visible.IsActive)
}

func TestListItemsFiltersAndPaginates(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	categoryID := seedCategory(t, svc, "citrus")
	otherCategory := seedCategory(t, svc, "woody")

	for i := 0; i < 4; i++ {
		stock := 0
		if i%2 == 0 {
			stock = 3
		}
		_, err := svc.CreateItem(context.Background(), enums.UserRoleManager, CreateItemInput{
			CategoryID:   categoryID,
			Name:         fmt.Sprintf("Citrus %d", i),
			PriceCents:   int64(1000 * (i + 1)),
			InitialStock: stock,
		})
		require.NoError(t, err)
	}
	_, err := svc.CreateItem(context.Background(), enums.UserRoleManager, CreateItemInput{
		CategoryID:   otherCategory,
		Name:         "Cedar",
		PriceCents:   2500,
		InitialStock: 1,
	})
	require.NoError(t, err)

	byCategory, err := svc.ListItems(context.Background(), enums.UserRoleUser, ListItemsInput{
		Filters: ItemListFilters{CategoryID: &categoryID},
	})
	require.NoError(t, err)
	require.Len(t, byCategory.Items, 4)

	inStock, err := svc.ListItems(context.Background(), enums.UserRoleUser, ListItemsInput{
		Filters: ItemListFilters{CategoryID: &categoryID, InStockOnly: true},
	})
	require.NoError(t, err)
	require.Len(t, inStock.Items, 2)
	for _, item := range inStock.Items {
		require.True(t, item.InStock)
	}

	maxPrice := int64(2000)
	cheap, err := svc.ListItems(context.Background(), enums.UserRoleUser, ListItemsInput{
		Filters: ItemListFilters{CategoryID: &categoryID, PriceMaxCents: &maxPrice},
	})
	require.NoError(t, err)
	require.Len(t, cheap.Items, 2)

	firstPage, err := svc.ListItems(context.Background(), enums.UserRoleUser, ListItemsInput{
		Pagination: pagination.Params{Limit: 3},
	})
	require.NoError(t, err)
	require.Len(t, firstPage.Items, 3)
	require.NotEmpty(t, firstPage.NextCursor)

	secondPage, err := svc.ListItems(context.Background(), enums.UserRoleUser, ListItemsInput{
		Pagination: pagination.Params{Limit: 3, Cursor: firstPage.NextCursor},
	})
	require.NoError(t, err)
	require.Len(t, secondPage.Items, 2)
	require.Empty(t, secondPage.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, item := range append(firstPage.Items, secondPage.Items...) {
		require.False(t, seen[item.ID], "duplicate item across pages")
		seen[item.ID] = true
	}
}

func TestListItemsHidesInactiveByDefault(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	categoryID := seedCategory(t, svc, "archive")

	inactive := false
	_, err := svc.CreateItem(context.Background(), enums.UserRoleManager, CreateItemInput{
		CategoryID: categoryID,
		Name:       "Hidden",
		PriceCents: 100,
		IsActive:   &inactive,
	})
	require.NoError(t, err)
	_, err = svc.CreateItem(context.Background(), enums.UserRoleManager, CreateItemInput{
		CategoryID: categoryID,
		Name:       "Visible",
		PriceCents: 200,
	})
	require.NoError(t, err)

	public, err := svc.ListItems(context.Background(), enums.UserRoleUser, ListItemsInput{})
	require.NoError(t, err)
	require.Len(t, public.Items, 1)
	require.Equal(t, "Visible", public.Items[0].Name)

	// Shoppers cannot opt into inactive rows.
	sneaky, err := svc.ListItems(context.Background(), enums.UserRoleUser, ListItemsInput{IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, sneaky.Items, 1)

	staff, err := svc.ListItems(context.Background(), enums.UserRoleManager, ListItemsInput{IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, staff.Items, 2)
}

func TestDeleteCategoryBlockedWhileItemsRemain(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	categoryID := seedCategory(t, svc, "floral")

	item, err := svc.CreateItem(context.Background(), enums.UserRoleManager, CreateItemInput{
		CategoryID: categoryID,
		Name:       "Rose Absolue",
		PriceCents: 300,
	})
	require.NoError(t, err)

	err = svc.DeleteCategory(context.Background(), enums.UserRoleManager, categoryID)
	requireCatalogCode(t, err, pkgerrors.CodeConflict)

	require.NoError(t, svc.DeleteItem(context.Background(), enums.UserRoleManager, item.ID))
	require.NoError(t, svc.DeleteCategory(context.Background(), enums.UserRoleManager, categoryID))

	err = svc.DeleteCategory(context.Background(), enums.UserRoleManager, categoryID)
	requireCatalogCode(t, err, pkgerrors.CodeNotFound)
}

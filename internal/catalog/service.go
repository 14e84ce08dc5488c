package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aromabay/aromabay-backend/pkg/db"
	"github.com/aromabay/aromabay-backend/pkg/db/models"
	"github.com/aromabay/aromabay-backend/pkg/enums"
	pkgerrors "github.com/aromabay/aromabay-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog management and browsing operations. Mutations
// require a manager or administrator role; reads are open to everyone.
type Service interface {
	CreateCategory(ctx context.Context, role enums.UserRole, input CreateCategoryInput) (*CategoryDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	DeleteCategory(ctx context.Context, role enums.UserRole, id uuid.UUID) error

	CreateItem(ctx context.Context, role enums.UserRole, input CreateItemInput) (*ItemDTO, error)
	UpdateItem(ctx context.Context, role enums.UserRole, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	DeleteItem(ctx context.Context, role enums.UserRole, id uuid.UUID) error
	GetItem(ctx context.Context, role enums.UserRole, id uuid.UUID) (*ItemDTO, error)
	ListItems(ctx context.Context, role enums.UserRole, input ListItemsInput) (*ItemListResult, error)
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateCategory(ctx context.Context, role enums.UserRole, input CreateCategoryInput) (*CategoryDTO, error) {
	if err := requireManager(role); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	created, err := s.repo.CreateCategory(ctx, &models.Category{Name: name})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_categories_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return categoryDTO(created), nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *categoryDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) DeleteCategory(ctx context.Context, role enums.UserRole, id uuid.UUID) error {
	if err := requireManager(role); err != nil {
		return err
	}

	count, err := s.repo.CountItemsInCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category items")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has items").
			WithDetails(map[string]any{"items": count})
	}

	affected, err := s.repo.DeleteCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return nil
}

func (s *service) CreateItem(ctx context.Context, role enums.UserRole, input CreateItemInput) (*ItemDTO, error) {
	if err := requireManager(role); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if input.InitialStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial stock must be non-negative")
	}

	if _, err := s.repo.FindCategoryByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	var createdID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		item := &models.Item{
			CategoryID:  input.CategoryID,
			Name:        name,
			Brand:       input.Brand,
			Description: input.Description,
			PriceCents:  input.PriceCents,
			ScentNotes:  input.ScentNotes,
			Images:      input.Images,
			IsActive:    isActive,
		}
		created, err := txRepo.CreateItem(ctx, item)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert item")
		}
		createdID = created.ID

		if _, err := txRepo.UpsertInventory(ctx, &models.InventoryItem{
			ItemID:       created.ID,
			AvailableQty: input.InitialStock,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed inventory")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
	}

	return s.loadItemDetail(ctx, createdID)
}

func (s *service) UpdateItem(ctx context.Context, role enums.UserRole, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	if err := requireManager(role); err != nil {
		return nil, err
	}

	if input.PriceCents != nil && *input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if input.AvailableQty != nil && *input.AvailableQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "available qty must be non-negative")
	}

	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}

	if input.CategoryID != nil {
		if _, err := s.repo.FindCategoryByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		applyItemUpdate(item, input)
		if _, err := txRepo.UpdateItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
		}

		if input.AvailableQty != nil {
			if _, err := txRepo.UpsertInventory(ctx, &models.InventoryItem{
				ItemID:       item.ID,
				AvailableQty: *input.AvailableQty,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory")
			}
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
	}

	return s.loadItemDetail(ctx, item.ID)
}

func (s *service) DeleteItem(ctx context.Context, role enums.UserRole, id uuid.UUID) error {
	if err := requireManager(role); err != nil {
		return err
	}

	affected, err := s.repo.DeleteItem(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return nil
}

func (s *service) GetItem(ctx context.Context, role enums.UserRole, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}

	// Inactive items stay visible to staff only.
	if !item.IsActive && !role.IsPrivileged() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return itemDTO(item), nil
}

func (s *service) ListItems(ctx context.Context, role enums.UserRole, input ListItemsInput) (*ItemListResult, error) {
	includeInactive := input.IncludeInactive && role.IsPrivileged()

	result, err := s.repo.ListItemSummaries(ctx, itemListQuery{
		Pagination:      input.Pagination,
		Filters:         input.Filters,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	return result, nil
}

func (s *service) loadItemDetail(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item detail")
	}
	return itemDTO(item), nil
}

func requireManager(role enums.UserRole) error {
	if !role.IsPrivileged() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}
	return nil
}

func applyItemUpdate(item *models.Item, input UpdateItemInput) {
	if input.CategoryID != nil {
		item.CategoryID = *input.CategoryID
	}
	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Brand != nil {
		item.Brand = input.Brand
	}
	if input.Description != nil {
		item.Description = input.Description
	}
	if input.PriceCents != nil {
		item.PriceCents = *input.PriceCents
	}
	if input.ScentNotes != nil {
		item.ScentNotes = append([]string(nil), *input.ScentNotes...)
	}
	if input.Images != nil {
		item.Images = append([]string(nil), *input.Images...)
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
}

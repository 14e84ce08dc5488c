package favorites

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aromabay/aromabay-backend/internal/catalog"
	pkgerrors "github.com/aromabay/aromabay-backend/pkg/errors"
)

// ServiceParams groups dependencies for the favorites service.
type ServiceParams struct {
	FavoritesRepo *Repository
	CatalogRepo   *catalog.Repository
}

// Service exposes business rules for favorites management.
type Service interface {
	GetFavorites(ctx context.Context, userID uuid.UUID, cursor string, limit int) (FavoritesPageDTO, error)
	AddItem(ctx context.Context, userID, itemID uuid.UUID) error
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
}

type service struct {
	favoritesRepo *Repository
	catalogRepo   *catalog.Repository
}

// NewService builds a favorites service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.FavoritesRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "favorites repo is required")
	}
	if params.CatalogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	return &service{
		favoritesRepo: params.FavoritesRepo,
		catalogRepo:   params.CatalogRepo,
	}, nil
}

// GetFavorites returns the paginated favorites for a user.
func (s *service) GetFavorites(ctx context.Context, userID uuid.UUID, cursor string, limit int) (FavoritesPageDTO, error) {
	if userID == uuid.Nil {
		return FavoritesPageDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.favoritesRepo.ListItems(ctx, userID, cursor, limit)
}

// AddItem ensures the item exists and marks it as a favorite.
func (s *service) AddItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if _, err := s.catalogRepo.FindItemByID(ctx, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return s.favoritesRepo.AddItem(ctx, userID, itemID)
}

// RemoveItem drops the favorite regardless of prior state.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.favoritesRepo.RemoveItem(ctx, userID, itemID)
}

package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aromabay/aromabay-backend/pkg/db/models"
	"github.com/aromabay/aromabay-backend/pkg/enums"
	"github.com/aromabay/aromabay-backend/pkg/pagination"
)

// Repository defines persistence operations for the order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	// UpdateStatusFrom flips the status only when the current value still
	// matches. Returns false when another writer got there first.
	UpdateStatusFrom(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error)
	// MarkCancelled flips any non-terminal order to cancelled and stamps
	// cancelled_at. Returns false when the order was already terminal.
	MarkCancelled(ctx context.Context, orderID uuid.UUID) (bool, error)
}

package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/aromabay/aromabay-backend/pkg/enums"
)

// Actor identifies who is performing an order operation.
type Actor struct {
	Login string
	Role  enums.UserRole
}

// CheckoutLine is one requested item/quantity pair.
type CheckoutLine struct {
	ItemID uuid.UUID
	Qty    int
}

// CheckoutInput carries everything needed to create an order.
type CheckoutInput struct {
	Actor   Actor
	Address string
	Lines   []CheckoutLine
}

// ListFilters describe the inputs supported by the orders list.
type ListFilters struct {
	Owner  string
	Status *enums.OrderStatus
}

// OrderLineDetail exposes one frozen order line.
type OrderLineDetail struct {
	ID             uuid.UUID `json:"id"`
	ItemID         uuid.UUID `json:"item_id"`
	Name           string    `json:"name"`
	Qty            int       `json:"qty"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	TotalCents     int64     `json:"total_cents"`
}

// OrderDetail exposes the full order aggregate.
type OrderDetail struct {
	ID          uuid.UUID         `json:"id"`
	OwnerLogin  string            `json:"owner_login"`
	Status      enums.OrderStatus `json:"status"`
	Address     string            `json:"address"`
	TotalCents  int64             `json:"total_cents"`
	Lines       []OrderLineDetail `json:"lines"`
	CancelledAt *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// OrderSummary exposes the aggregated fields returned in the list.
type OrderSummary struct {
	ID         uuid.UUID         `json:"id"`
	OwnerLogin string            `json:"owner_login"`
	Status     enums.OrderStatus `json:"status"`
	TotalCents int64             `json:"total_cents"`
	TotalItems int               `json:"total_items"`
	CreatedAt  time.Time         `json:"created_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// CancelResult reports the cancelled order plus any stock that could not
// be returned. Warnings never fail the cancellation itself.
type CancelResult struct {
	Order    *OrderDetail `json:"order"`
	Warnings []string     `json:"warnings,omitempty"`
}

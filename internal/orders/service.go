package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/aromabay/aromabay-backend/internal/inventory"
	"github.com/aromabay/aromabay-backend/pkg/db/models"
	"github.com/aromabay/aromabay-backend/pkg/enums"
	pkgerrors "github.com/aromabay/aromabay-backend/pkg/errors"
	"github.com/aromabay/aromabay-backend/pkg/logger"
	"github.com/aromabay/aromabay-backend/pkg/metrics"
	"github.com/aromabay/aromabay-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StockLedger is the slice of the inventory ledger the order service needs.
type StockLedger interface {
	Reserve(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) (*inventory.Reservation, error)
	Release(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) error
}

// Service defines the order lifecycle operations.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*OrderDetail, error)
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDetail, error)
	List(ctx context.Context, actor Actor, params pagination.Params, filters ListFilters) (*OrderList, error)
	Advance(ctx context.Context, actor Actor, orderID uuid.UUID, target enums.OrderStatus) (*OrderDetail, error)
	Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*CancelResult, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	stock   StockLedger
	logg    *logger.Logger
	metrics *metrics.OrderMetrics
}

// NewService builds an order service with the required dependencies.
// Metrics may be nil; recording is skipped in that case.
func NewService(repo Repository, tx txRunner, stock StockLedger, logg *logger.Logger, met *metrics.OrderMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		stock:   stock,
		logg:    logg,
		metrics: met,
	}, nil
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*OrderDetail, error) {
	started := time.Now()
	detail, err := s.checkout(ctx, input)
	if err != nil {
		reason := "internal"
		if appErr := pkgerrors.As(err); appErr != nil {
			reason = strings.ToLower(string(appErr.Code()))
			if appErr.Code() == pkgerrors.CodeConflict {
				s.metrics.IncStockConflict()
			}
		}
		s.metrics.IncCheckoutFailure(reason)
		s.metrics.ObserveCheckoutDuration("failure", time.Since(started))
		return nil, err
	}
	s.metrics.IncCheckoutSuccess()
	s.metrics.ObserveCheckoutDuration("success", time.Since(started))
	return detail, nil
}

func (s *service) checkout(ctx context.Context, input CheckoutInput) (*OrderDetail, error) {
	if strings.TrimSpace(input.Actor.Login) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.Address) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	seen := make(map[uuid.UUID]struct{}, len(input.Lines))
	for _, line := range input.Lines {
		if line.ItemID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
		}
		if line.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"item_id": line.ItemID, "qty": line.Qty})
		}
		if _, dup := seen[line.ItemID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate line item").
				WithDetails(map[string]any{"item_id": line.ItemID})
		}
		seen[line.ItemID] = struct{}{}
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order := &models.Order{
			OwnerLogin: input.Actor.Login,
			Status:     enums.OrderStatusNew,
			Address:    strings.TrimSpace(input.Address),
		}

		var total int64
		for _, line := range input.Lines {
			reservation, err := s.stock.Reserve(ctx, tx, line.ItemID, line.Qty)
			if err != nil {
				return err
			}
			lineTotal := reservation.UnitPriceCents * int64(line.Qty)
			total += lineTotal
			order.Lines = append(order.Lines, models.OrderLine{
				ItemID:         reservation.ItemID,
				Name:           reservation.Name,
				Qty:            line.Qty,
				UnitPriceCents: reservation.UnitPriceCents,
				TotalCents:     lineTotal,
			})
		}
		order.TotalCents = total

		saved, err := repo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}
		created = saved
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":    created.ID,
		"owner":       created.OwnerLogin,
		"total_cents": created.TotalCents,
		"lines":       len(created.Lines),
	}), "order created")

	return toDetail(created), nil
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDetail, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !CanView(actor.Role, order.OwnerLogin, actor.Login) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return toDetail(order), nil
}

func (s *service) List(ctx context.Context, actor Actor, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	if !CanListAll(actor.Role) {
		// Regular users only ever see their own orders.
		filters.Owner = actor.Login
	}

	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) Advance(ctx context.Context, actor Actor, orderID uuid.UUID, target enums.OrderStatus) (*OrderDetail, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}
	if target == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation has its own endpoint")
	}
	if !CanAdvance(actor.Role) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "status changes require a staff role")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !order.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
				WithDetails(map[string]any{"from": order.Status, "to": target})
		}

		// Guarded flip: a concurrent transition surfaces as a conflict
		// instead of silently overwriting.
		flipped, err := repo.UpdateStatusFrom(ctx, order.ID, order.Status, target)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently").
				WithDetails(map[string]any{"to": target})
		}

		order.Status = target
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": result.ID,
		"status":   result.Status,
	}), "order status advanced")

	return toDetail(result), nil
}

func (s *service) Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*CancelResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var (
		cancelled *models.Order
		released  error
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !CanCancel(actor.Role, order.OwnerLogin, actor.Login) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}

		// The guarded flip is the idempotency barrier: stock is released
		// at most once because a second cancel never gets past it.
		flipped, err := repo.MarkCancelled(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order cancelled")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be cancelled in current state").
				WithDetails(map[string]any{"status": order.Status})
		}

		for _, line := range order.Lines {
			if err := s.stock.Release(ctx, tx, line.ItemID, line.Qty); err != nil {
				released = multierr.Append(released, fmt.Errorf("item %s: %w", line.ItemID, err))
			}
		}

		reloaded, err := repo.FindByID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		cancelled = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCancellation()

	result := &CancelResult{Order: toDetail(cancelled)}
	for _, warn := range multierr.Errors(released) {
		result.Warnings = append(result.Warnings, warn.Error())
	}
	if released != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"order_id": cancelled.ID,
			"warnings": len(result.Warnings),
		}), "order cancelled with unreleased stock")
	} else {
		s.logg.Info(s.logg.WithField(ctx, "order_id", cancelled.ID), "order cancelled")
	}
	return result, nil
}

func requireActor(actor Actor) error {
	if strings.TrimSpace(actor.Login) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !actor.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown role")
	}
	return nil
}

func toDetail(order *models.Order) *OrderDetail {
	detail := &OrderDetail{
		ID:          order.ID,
		OwnerLogin:  order.OwnerLogin,
		Status:      order.Status,
		Address:     order.Address,
		TotalCents:  order.TotalCents,
		CancelledAt: order.CancelledAt,
		CreatedAt:   order.CreatedAt,
		Lines:       make([]OrderLineDetail, 0, len(order.Lines)),
	}
	for _, line := range order.Lines {
		detail.Lines = append(detail.Lines, OrderLineDetail{
			ID:             line.ID,
			ItemID:         line.ItemID,
			Name:           line.Name,
			Qty:            line.Qty,
			UnitPriceCents: line.UnitPriceCents,
			TotalCents:     line.TotalCents,
		})
	}
	return detail
}

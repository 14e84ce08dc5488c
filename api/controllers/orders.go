package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/aromabay/aromabay-backend/api/middleware"
	"github.com/aromabay/aromabay-backend/api/responses"
	"github.com/aromabay/aromabay-backend/api/validators"
	"github.com/aromabay/aromabay-backend/internal/cart"
	"github.com/aromabay/aromabay-backend/internal/orders"
	"github.com/aromabay/aromabay-backend/pkg/enums"
	pkgerrors "github.com/aromabay/aromabay-backend/pkg/errors"
	"github.com/aromabay/aromabay-backend/pkg/logger"
	"github.com/aromabay/aromabay-backend/pkg/pagination"
)

type placeOrderLine struct {
	ItemID string `json:"item_id" validate:"required,uuid"`
	Qty    int    `json:"qty" validate:"required,gt=0"`
}

type placeOrderRequest struct {
	Address string           `json:"address" validate:"required,min=8,max=512"`
	Lines   []placeOrderLine `json:"lines,omitempty" validate:"omitempty,dive"`
}

// PlaceOrder runs checkout. Lines may be given explicitly; when omitted
// the caller's cart supplies them and is emptied once the order commits.
func PlaceOrder(svc orders.Service, carts cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := contextActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.CheckoutInput{
			Actor:   actor,
			Address: validators.SanitizeString(payload.Address, 512),
		}

		fromCart := len(payload.Lines) == 0
		if fromCart {
			if carts == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
				return
			}
			userID, err := contextUserID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			lines, err := cartCheckoutLines(r, carts, userID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Lines = lines

			order, err := svc.Checkout(r.Context(), input)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			// The order is committed; a cart that fails to clear is an
			// annoyance, not a reason to report failure.
			if err := carts.Clear(r.Context(), userID); err != nil && logg != nil {
				logg.Error(r.Context(), "clear cart after checkout", err)
			}
			responses.WriteSuccessStatus(w, http.StatusCreated, order)
			return
		}

		lines, err := parseOrderLines(payload.Lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Lines = lines

		order, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders returns the caller's orders. Staff roles may list everyone's
// and narrow by owner.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := contextActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters := orders.ListFilters{
			Owner: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("owner"))),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}

		list, err := svc.List(r.Context(), actor, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// GetOrder returns one order with its frozen lines.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := contextActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

type advanceOrderRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdvanceOrder moves an order one step through fulfilment.
func AdvanceOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := contextActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload advanceOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseOrderStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.Advance(r.Context(), actor, orderID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// CancelOrder cancels an order and returns its stock to the shelf.
func CancelOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := contextActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Cancel(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func contextActor(r *http.Request) (orders.Actor, error) {
	login := middleware.LoginFromContext(r.Context())
	if login == "" {
		return orders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return orders.Actor{Login: login, Role: actorRole(r)}, nil
}

func cartCheckoutLines(r *http.Request, carts cart.Service, userID uuid.UUID) ([]orders.CheckoutLine, error) {
	current, err := carts.GetCart(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	if len(current.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	lines := make([]orders.CheckoutLine, 0, len(current.Lines))
	for _, line := range current.Lines {
		lines = append(lines, orders.CheckoutLine{ItemID: line.ItemID, Qty: line.Qty})
	}
	return lines, nil
}

func parseOrderLines(raw []placeOrderLine) ([]orders.CheckoutLine, error) {
	lines := make([]orders.CheckoutLine, 0, len(raw))
	for _, line := range raw {
		itemID, err := uuid.Parse(strings.TrimSpace(line.ItemID))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id")
		}
		lines = append(lines, orders.CheckoutLine{ItemID: itemID, Qty: line.Qty})
	}
	return lines, nil
}

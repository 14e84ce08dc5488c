package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/aromabay/aromabay-backend/api/middleware"
	cartsvc "github.com/aromabay/aromabay-backend/internal/cart"
	"github.com/aromabay/aromabay-backend/internal/orders"
	"github.com/aromabay/aromabay-backend/pkg/enums"
	pkgerrors "github.com/aromabay/aromabay-backend/pkg/errors"
	"github.com/aromabay/aromabay-backend/pkg/pagination"
)

type stubOrderService struct {
	checkoutInput *orders.CheckoutInput
	detail        *orders.OrderDetail
	list          *orders.OrderList
	cancel        *orders.CancelResult
	err           error
}

func (s *stubOrderService) Checkout(ctx context.Context, input orders.CheckoutInput) (*orders.OrderDetail, error) {
	s.checkoutInput = &input
	return s.detail, s.err
}

func (s *stubOrderService) Get(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*orders.OrderDetail, error) {
	return s.detail, s.err
}

func (s *stubOrderService) List(ctx context.Context, actor orders.Actor, params pagination.Params, filters orders.ListFilters) (*orders.OrderList, error) {
	return s.list, s.err
}

func (s *stubOrderService) Advance(ctx context.Context, actor orders.Actor, orderID uuid.UUID, target enums.OrderStatus) (*orders.OrderDetail, error) {
	return s.detail, s.err
}

func (s *stubOrderService) Cancel(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*orders.CancelResult, error) {
	return s.cancel, s.err
}

type stubCartService struct {
	cart    *cartsvc.CartDTO
	cleared bool
	err     error
}

func (s *stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, userID uuid.UUID, input cartsvc.AddItemInput) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s *stubCartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input cartsvc.UpdateItemInput) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	s.cleared = true
	return nil
}

func authedRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := middleware.WithUserID(req.Context(), uuid.New().String())
	ctx = middleware.WithLogin(ctx, "alice")
	ctx = middleware.WithRole(ctx, string(enums.UserRoleUser))
	return req.WithContext(ctx)
}

func TestPlaceOrderWithExplicitLines(t *testing.T) {
	detail := &orders.OrderDetail{ID: uuid.New(), OwnerLogin: "alice", Status: enums.OrderStatusNew}
	svc := &stubOrderService{detail: detail}
	carts := &stubCartService{}
	handler := PlaceOrder(svc, carts, nil)

	itemID := uuid.New()
	body := `{"address":"12 Harbor Lane, Brookfield","lines":[{"item_id":"` + itemID.String() + `","qty":2}]}`
	req := authedRequest(http.MethodPost, "/api/v1/orders", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.checkoutInput == nil {
		t.Fatal("expected checkout to be invoked")
	}
	if svc.checkoutInput.Actor.Login != "alice" {
		t.Fatalf("unexpected actor login: %s", svc.checkoutInput.Actor.Login)
	}
	if len(svc.checkoutInput.Lines) != 1 || svc.checkoutInput.Lines[0].ItemID != itemID || svc.checkoutInput.Lines[0].Qty != 2 {
		t.Fatalf("unexpected checkout lines: %+v", svc.checkoutInput.Lines)
	}
	if carts.cleared {
		t.Fatal("explicit-line checkout must not touch the cart")
	}
}

func TestPlaceOrderFromCartClearsCart(t *testing.T) {
	itemID := uuid.New()
	detail := &orders.OrderDetail{ID: uuid.New(), OwnerLogin: "alice", Status: enums.OrderStatusNew}
	svc := &stubOrderService{detail: detail}
	carts := &stubCartService{cart: &cartsvc.CartDTO{Lines: []cartsvc.LineDTO{{ItemID: itemID, Qty: 3}}}}
	handler := PlaceOrder(svc, carts, nil)

	req := authedRequest(http.MethodPost, "/api/v1/orders", `{"address":"12 Harbor Lane, Brookfield"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.checkoutInput.Lines) != 1 || svc.checkoutInput.Lines[0].ItemID != itemID || svc.checkoutInput.Lines[0].Qty != 3 {
		t.Fatalf("expected cart lines to feed checkout, got %+v", svc.checkoutInput.Lines)
	}
	if !carts.cleared {
		t.Fatal("expected cart to be cleared after checkout")
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	svc := &stubOrderService{}
	carts := &stubCartService{cart: &cartsvc.CartDTO{}}
	handler := PlaceOrder(svc, carts, nil)

	req := authedRequest(http.MethodPost, "/api/v1/orders", `{"address":"12 Harbor Lane, Brookfield"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.checkoutInput != nil {
		t.Fatal("checkout must not run with an empty cart")
	}
}

func TestPlaceOrderCheckoutConflict(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")}
	carts := &stubCartService{cart: &cartsvc.CartDTO{Lines: []cartsvc.LineDTO{{ItemID: uuid.New(), Qty: 1}}}}
	handler := PlaceOrder(svc, carts, nil)

	req := authedRequest(http.MethodPost, "/api/v1/orders", `{"address":"12 Harbor Lane, Brookfield"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if carts.cleared {
		t.Fatal("cart must survive a failed checkout")
	}
}

func TestPlaceOrderRequiresIdentity(t *testing.T) {
	handler := PlaceOrder(&stubOrderService{}, &stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"address":"12 Harbor Lane, Brookfield"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestListOrdersRejectsBadStatus(t *testing.T) {
	handler := ListOrders(&stubOrderService{}, nil)

	req := authedRequest(http.MethodGet, "/api/v1/orders?status=bogus", "")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListOrdersSuccess(t *testing.T) {
	list := &orders.OrderList{Orders: []orders.OrderSummary{{ID: uuid.New(), OwnerLogin: "alice", Status: enums.OrderStatusNew}}}
	handler := ListOrders(&stubOrderService{list: list}, nil)

	req := authedRequest(http.MethodGet, "/api/v1/orders?status=placed&limit=10", "")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data orders.OrderList `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(envelope.Data.Orders))
	}
}

func TestAdvanceOrderRejectsUnknownStatus(t *testing.T) {
	handler := AdvanceOrder(&stubOrderService{}, nil)

	req := authedRequest(http.MethodPost, "/api/v1/orders/"+uuid.New().String()+"/advance", `{"status":"teleported"}`)
	req = withURLParam(req, "orderID", uuid.New().String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCancelOrderReturnsWarnings(t *testing.T) {
	result := &orders.CancelResult{
		Order:    &orders.OrderDetail{ID: uuid.New(), Status: enums.OrderStatusCancelled},
		Warnings: []string{"item no longer stocked"},
	}
	handler := CancelOrder(&stubOrderService{cancel: result}, nil)

	req := authedRequest(http.MethodPost, "/api/v1/orders/x/cancel", "")
	req = withURLParam(req, "orderID", result.Order.ID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data orders.CancelResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Warnings) != 1 {
		t.Fatalf("expected cancellation warnings to surface, got %+v", envelope.Data.Warnings)
	}
}

package orders

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aromabay/aromabay-backend/internal/inventory"
	"github.com/aromabay/aromabay-backend/pkg/db/models"
	"github.com/aromabay/aromabay-backend/pkg/enums"
	pkgerrors "github.com/aromabay/aromabay-backend/pkg/errors"
	"github.com/aromabay/aromabay-backend/pkg/logger"
	"github.com/aromabay/aromabay-backend/pkg/pagination"
)

type stubRepo struct {
	orders map[uuid.UUID]*models.Order

	created       *models.Order
	createErr     error
	listFilters   *ListFilters
	flippedFrom   enums.OrderStatus
	flippedTo     enums.OrderStatus
	markCancelled bool
	markErr       error
}

func newStubRepo() *stubRepo {
	return &stubRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.created = order
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubRepo) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubRepo) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	s.listFilters = &filters
	return &OrderList{}, nil
}

func (s *stubRepo) UpdateStatusFrom(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	order, ok := s.orders[orderID]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	s.flippedFrom = from
	s.flippedTo = to
	return true, nil
}

func (s *stubRepo) MarkCancelled(ctx context.Context, orderID uuid.UUID) (bool, error) {
	if s.markErr != nil {
		return false, s.markErr
	}
	order, ok := s.orders[orderID]
	if !ok {
		return false, nil
	}
	if order.Status.IsTerminal() {
		return false, nil
	}
	order.Status = enums.OrderStatusCancelled
	s.markCancelled = true
	return true, nil
}

type stubLedger struct {
	prices   map[uuid.UUID]int64
	names    map[uuid.UUID]string
	reserved map[uuid.UUID]int
	released map[uuid.UUID]int

	reserveErr map[uuid.UUID]error
	releaseErr map[uuid.UUID]error
}

func newStubLedger() *stubLedger {
	return &stubLedger{
		prices:     make(map[uuid.UUID]int64),
		names:      make(map[uuid.UUID]string),
		reserved:   make(map[uuid.UUID]int),
		released:   make(map[uuid.UUID]int),
		reserveErr: make(map[uuid.UUID]error),
		releaseErr: make(map[uuid.UUID]error),
	}
}

func (s *stubLedger) addItem(id uuid.UUID, name string, price int64) {
	s.prices[id] = price
	s.names[id] = name
}

func (s *stubLedger) Reserve(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) (*inventory.Reservation, error) {
	if err := s.reserveErr[itemID]; err != nil {
		return nil, err
	}
	price, ok := s.prices[itemID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	s.reserved[itemID] += qty
	return &inventory.Reservation{
		ItemID:         itemID,
		Name:           s.names[itemID],
		UnitPriceCents: price,
	}, nil
}

func (s *stubLedger) Release(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) error {
	if err := s.releaseErr[itemID]; err != nil {
		return err
	}
	s.released[itemID] += qty
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo Repository, stock StockLedger) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(repo, stubTxRunner{}, stock, logg, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code(), err)
	}
}

func TestCheckoutCreatesOrderWithFrozenPrices(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	ledger := newStubLedger()
	perfume := uuid.New()
	cologne := uuid.New()
	ledger.addItem(perfume, "Amber Nights", 12500)
	ledger.addItem(cologne, "Citrus Morning", 4300)

	svc := newTestService(t, repo, ledger)
	detail, err := svc.Checkout(context.Background(), CheckoutInput{
		Actor:   Actor{Login: "alice", Role: enums.UserRoleUser},
		Address: "1 Rosemary Ln",
		Lines: []CheckoutLine{
			{ItemID: perfume, Qty: 2},
			{ItemID: cologne, Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if detail.Status != enums.OrderStatusNew {
		t.Fatalf("expected new status, got %s", detail.Status)
	}
	if detail.OwnerLogin != "alice" {
		t.Fatalf("unexpected owner %q", detail.OwnerLogin)
	}
	if want := int64(2*12500 + 4300); detail.TotalCents != want {
		t.Fatalf("expected total %d, got %d", want, detail.TotalCents)
	}
	if len(detail.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(detail.Lines))
	}
	if ledger.reserved[perfume] != 2 || ledger.reserved[cologne] != 1 {
		t.Fatalf("unexpected reservations %v", ledger.reserved)
	}
	if detail.Lines[0].UnitPriceCents != 12500 {
		t.Fatalf("line price not frozen, got %d", detail.Lines[0].UnitPriceCents)
	}
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubRepo(), newStubLedger())
	_, err := svc.Checkout(context.Background(), CheckoutInput{
		Actor:   Actor{Login: "alice", Role: enums.UserRoleUser},
		Address: "1 Rosemary Ln",
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCheckoutRejectsDuplicateLines(t *testing.T) {
	t.Parallel()

	ledger := newStubLedger()
	item := uuid.New()
	ledger.addItem(item, "Amber Nights", 1000)

	svc := newTestService(t, newStubRepo(), ledger)
	_, err := svc.Checkout(context.Background(), CheckoutInput{
		Actor:   Actor{Login: "alice", Role: enums.UserRoleUser},
		Address: "1 Rosemary Ln",
		Lines: []CheckoutLine{
			{ItemID: item, Qty: 1},
			{ItemID: item, Qty: 2},
		},
	})
	requireCode(t, err, pkgerrors.CodeValidation)
	if len(ledger.reserved) != 0 {
		t.Fatalf("nothing should be reserved on validation failure, got %v", ledger.reserved)
	}
}

func TestCheckoutSurfacesInsufficientStock(t *testing.T) {
	t.Parallel()

	ledger := newStubLedger()
	item := uuid.New()
	ledger.addItem(item, "Amber Nights", 1000)
	ledger.reserveErr[item] = pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")

	repo := newStubRepo()
	svc := newTestService(t, repo, ledger)
	_, err := svc.Checkout(context.Background(), CheckoutInput{
		Actor:   Actor{Login: "alice", Role: enums.UserRoleUser},
		Address: "1 Rosemary Ln",
		Lines:   []CheckoutLine{{ItemID: item, Qty: 5}},
	})
	requireCode(t, err, pkgerrors.CodeConflict)
	if repo.created != nil {
		t.Fatal("order must not be persisted when reservation fails")
	}
}

func TestCheckoutRequiresIdentity(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubRepo(), newStubLedger())
	_, err := svc.Checkout(context.Background(), CheckoutInput{
		Address: "1 Rosemary Ln",
		Lines:   []CheckoutLine{{ItemID: uuid.New(), Qty: 1}},
	})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestGetEnforcesOwnership(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	order := &models.Order{
		ID:         uuid.New(),
		OwnerLogin: "alice",
		Status:     enums.OrderStatusNew,
	}
	repo.orders[order.ID] = order

	svc := newTestService(t, repo, newStubLedger())

	if _, err := svc.Get(context.Background(), Actor{Login: "alice", Role: enums.UserRoleUser}, order.ID); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}

	_, err := svc.Get(context.Background(), Actor{Login: "mallory", Role: enums.UserRoleUser}, order.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	if _, err := svc.Get(context.Background(), Actor{Login: "staff", Role: enums.UserRoleManager}, order.ID); err != nil {
		t.Fatalf("manager read failed: %v", err)
	}

	_, err = svc.Get(context.Background(), Actor{Login: "alice", Role: enums.UserRoleUser}, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestListScopesRegularUsersToOwnOrders(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	svc := newTestService(t, repo, newStubLedger())

	_, err := svc.List(context.Background(), Actor{Login: "alice", Role: enums.UserRoleUser}, pagination.Params{}, ListFilters{Owner: "bob"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if repo.listFilters.Owner != "alice" {
		t.Fatalf("expected owner filter forced to caller, got %q", repo.listFilters.Owner)
	}

	_, err = svc.List(context.Background(), Actor{Login: "admin", Role: enums.UserRoleAdministrator}, pagination.Params{}, ListFilters{Owner: "bob"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if repo.listFilters.Owner != "bob" {
		t.Fatalf("privileged owner filter should be honored, got %q", repo.listFilters.Owner)
	}
}

func TestAdvanceRequiresStaffRole(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	order := &models.Order{ID: uuid.New(), OwnerLogin: "alice", Status: enums.OrderStatusNew}
	repo.orders[order.ID] = order

	svc := newTestService(t, repo, newStubLedger())
	_, err := svc.Advance(context.Background(), Actor{Login: "alice", Role: enums.UserRoleUser}, order.ID, enums.OrderStatusProcessing)
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestAdvanceHonorsStateMachine(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	order := &models.Order{ID: uuid.New(), OwnerLogin: "alice", Status: enums.OrderStatusNew}
	repo.orders[order.ID] = order
	actor := Actor{Login: "staff", Role: enums.UserRoleManager}

	svc := newTestService(t, repo, newStubLedger())

	detail, err := svc.Advance(context.Background(), actor, order.ID, enums.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if detail.Status != enums.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", detail.Status)
	}

	detail, err = svc.Advance(context.Background(), actor, order.ID, enums.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("advance to completed failed: %v", err)
	}
	if detail.Status != enums.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", detail.Status)
	}

	_, err = svc.Advance(context.Background(), actor, order.ID, enums.OrderStatusProcessing)
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestAdvanceRejectsCancelTarget(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubRepo(), newStubLedger())
	_, err := svc.Advance(context.Background(), Actor{Login: "staff", Role: enums.UserRoleManager}, uuid.New(), enums.OrderStatusCancelled)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCancelReleasesStockAndFlipsStatus(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	ledger := newStubLedger()
	item := uuid.New()
	order := &models.Order{
		ID:         uuid.New(),
		OwnerLogin: "alice",
		Status:     enums.OrderStatusNew,
		Lines: []models.OrderLine{
			{ItemID: item, Qty: 3, UnitPriceCents: 1000, TotalCents: 3000},
		},
	}
	repo.orders[order.ID] = order

	svc := newTestService(t, repo, ledger)
	result, err := svc.Cancel(context.Background(), Actor{Login: "alice", Role: enums.UserRoleUser}, order.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if result.Order.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", result.Order.Status)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", result.Warnings)
	}
	if ledger.released[item] != 3 {
		t.Fatalf("expected 3 released, got %d", ledger.released[item])
	}
}

func TestCancelIsRejectedOnTerminalOrders(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	ledger := newStubLedger()
	item := uuid.New()
	order := &models.Order{
		ID:         uuid.New(),
		OwnerLogin: "alice",
		Status:     enums.OrderStatusCancelled,
		Lines:      []models.OrderLine{{ItemID: item, Qty: 2}},
	}
	repo.orders[order.ID] = order

	svc := newTestService(t, repo, ledger)
	_, err := svc.Cancel(context.Background(), Actor{Login: "alice", Role: enums.UserRoleUser}, order.ID)
	requireCode(t, err, pkgerrors.CodeStateConflict)
	if ledger.released[item] != 0 {
		t.Fatal("terminal cancel must not release stock twice")
	}
}

func TestCancelEnforcesOwnership(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	order := &models.Order{ID: uuid.New(), OwnerLogin: "alice", Status: enums.OrderStatusNew}
	repo.orders[order.ID] = order

	svc := newTestService(t, repo, newStubLedger())
	_, err := svc.Cancel(context.Background(), Actor{Login: "mallory", Role: enums.UserRoleUser}, order.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestCancelSurfacesReleaseWarnings(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	ledger := newStubLedger()
	good := uuid.New()
	broken := uuid.New()
	ledger.releaseErr[broken] = pkgerrors.New(pkgerrors.CodeNotFound, "inventory row not found")

	order := &models.Order{
		ID:         uuid.New(),
		OwnerLogin: "alice",
		Status:     enums.OrderStatusProcessing,
		Lines: []models.OrderLine{
			{ItemID: broken, Qty: 1},
			{ItemID: good, Qty: 2},
		},
	}
	repo.orders[order.ID] = order

	svc := newTestService(t, repo, ledger)
	result, err := svc.Cancel(context.Background(), Actor{Login: "alice", Role: enums.UserRoleUser}, order.ID)
	if err != nil {
		t.Fatalf("cancel should succeed despite release failures: %v", err)
	}
	if result.Order.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", result.Order.Status)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", result.Warnings)
	}
	if ledger.released[good] != 2 {
		t.Fatal("release must continue past a failing line")
	}
}

package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mesa-labs/mesa/internal/auth"
	"github.com/mesa-labs/mesa/internal/dto"
	"github.com/mesa-labs/mesa/internal/entity"
	repo "github.com/mesa-labs/mesa/internal/repository/order"
	"github.com/mesa-labs/mesa/pkg/errorbank"
)

var (
	waiter  = auth.Principal{Token: "w", Role: auth.RoleWaiter}
	cashier = auth.Principal{Token: "c", Role: auth.RoleCashier}
)

// fakeStore keeps orders in memory and mimics the repository's transactional
// behavior, including the table availability check.
type fakeStore struct {
	orders  map[int64]*entity.Order
	tables  map[int64]*entity.Table
	settled map[int64]bool
	nextID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:  make(map[int64]*entity.Order),
		tables:  make(map[int64]*entity.Table),
		settled: make(map[int64]bool),
		nextID:  1,
	}
}

func (f *fakeStore) GetWithItems(ctx context.Context, id int64) (*entity.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return order, nil
}

func (f *fakeStore) List(ctx context.Context) ([]*entity.Order, error) {
	out := make([]*entity.Order, 0, len(f.orders))
	for _, order := range f.orders {
		out = append(out, order)
	}
	return out, nil
}

func (f *fakeStore) Open(ctx context.Context, order *entity.Order, items []*entity.OrderItem) error {
	table, ok := f.tables[order.TableID]
	if !ok {
		return repo.ErrTableNotFound
	}
	if !table.IsAvailable {
		return repo.ErrTableUnavailable
	}
	table.IsAvailable = false

	order.ID = f.nextID
	f.nextID++
	for _, item := range items {
		item.ID = f.nextID
		f.nextID++
		item.OrderID = order.ID
	}
	order.Items = items
	order.Table = table
	f.orders[order.ID] = order
	return nil
}

func (f *fakeStore) AppendItems(ctx context.Context, order *entity.Order, items []*entity.OrderItem) error {
	stored := f.orders[order.ID]
	for _, item := range items {
		item.ID = f.nextID
		f.nextID++
		item.OrderID = order.ID
		stored.Items = append(stored.Items, item)
	}
	stored.TotalAmount = order.TotalAmount
	return nil
}

func (f *fakeStore) Close(ctx context.Context, order *entity.Order, merged []*entity.OrderItem, removedIDs []int64) error {
	// Mirror the repository's guarded update: only one close commits.
	if f.settled[order.ID] {
		return repo.ErrAlreadyClosed
	}
	f.settled[order.ID] = true

	stored := f.orders[order.ID]
	stored.Status = order.Status
	stored.ClosedAt = order.ClosedAt
	stored.TotalAmount = order.TotalAmount
	stored.TaxAmount = order.TaxAmount
	stored.ServiceCharge = order.ServiceCharge
	stored.Items = merged
	if table, ok := f.tables[order.TableID]; ok {
		table.IsAvailable = true
	}
	return nil
}

type fakeMenu struct {
	foods map[int64]*entity.Food
}

func (f *fakeMenu) GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Food, error) {
	out := make(map[int64]*entity.Food)
	for _, id := range ids {
		if food, ok := f.foods[id]; ok {
			out[id] = food
		}
	}
	return out, nil
}

func price(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	store.tables[1] = &entity.Table{ID: 1, Number: "T1", IsAvailable: true}
	store.tables[2] = &entity.Table{ID: 2, Number: "T2", IsAvailable: false}

	menu := &fakeMenu{foods: map[int64]*entity.Food{
		10: {ID: 10, Name: "Chicken Rice", Price: price(t, "12.50"), Type: entity.FoodTypeFood},
		20: {ID: 20, Name: "Iced Coffee", Price: price(t, "5.00"), Type: entity.FoodTypeBeverage},
	}}

	svc := &Service{
		store:  store,
		menu:   menu,
		logger: zap.NewNop(),
		now:    func() time.Time { return time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC) },
	}
	return svc, store
}

func kindOf(t *testing.T, err error) errorbank.Kind {
	t.Helper()
	var appErr *errorbank.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	return appErr.Kind()
}

func TestOpenSnapshotsPricesAndTotals(t *testing.T) {
	svc, store := newTestService(t)

	order, err := svc.Open(context.Background(), waiter, dto.OpenOrderRequest{
		TableID: 1,
		Items: []dto.OrderItemInput{
			{FoodID: 10, Quantity: 2},
			{FoodID: 20, Quantity: 1, SpecialInstructions: "no ice"},
		},
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if got := order.TotalAmount.StringFixed(2); got != "30.00" {
		t.Errorf("total = %s, want 30.00", got)
	}
	if order.Status != entity.OrderStatusOpen {
		t.Errorf("status = %s, want open", order.Status)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(order.Items))
	}
	if got := order.Items[0].UnitPrice.StringFixed(2); got != "12.50" {
		t.Errorf("unit price snapshot = %s, want 12.50", got)
	}
	if store.tables[1].IsAvailable {
		t.Error("table should be occupied after open")
	}
}

func TestOpenRejectsUnavailableTable(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.Open(context.Background(), waiter, dto.OpenOrderRequest{
		TableID: 2,
		Items:   []dto.OrderItemInput{{FoodID: 10, Quantity: 1}},
	})
	if kindOf(t, err) != errorbank.KindInvalidState {
		t.Errorf("kind = %s, want invalid_state", kindOf(t, err))
	}
	if len(store.orders) != 0 {
		t.Errorf("orders stored = %d, want none after rejected open", len(store.orders))
	}
	if store.tables[2].IsAvailable {
		t.Error("table availability must not change on rejected open")
	}
}

func TestOpenRejectsUnknownTable(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Open(context.Background(), waiter, dto.OpenOrderRequest{
		TableID: 99,
		Items:   []dto.OrderItemInput{{FoodID: 10, Quantity: 1}},
	})
	if kindOf(t, err) != errorbank.KindNotFound {
		t.Errorf("kind = %s, want not_found", kindOf(t, err))
	}
}

func TestOpenRejectsUnknownFood(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Open(context.Background(), waiter, dto.OpenOrderRequest{
		TableID: 1,
		Items:   []dto.OrderItemInput{{FoodID: 77, Quantity: 1}},
	})
	if kindOf(t, err) != errorbank.KindNotFound {
		t.Errorf("kind = %s, want not_found", kindOf(t, err))
	}
}

func TestOpenRequiresWaiterRole(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Open(context.Background(), cashier, dto.OpenOrderRequest{
		TableID: 1,
		Items:   []dto.OrderItemInput{{FoodID: 10, Quantity: 1}},
	})
	if kindOf(t, err) != errorbank.KindUnauthorized {
		t.Errorf("kind = %s, want unauthorized", kindOf(t, err))
	}
}

func TestAddItemsKeepsDuplicateLines(t *testing.T) {
	svc, _ := newTestService(t)

	order, err := svc.Open(context.Background(), waiter, dto.OpenOrderRequest{
		TableID: 1,
		Items:   []dto.OrderItemInput{{FoodID: 10, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	order, err = svc.AddItems(context.Background(), waiter, order.ID, dto.AddItemsRequest{
		Items: []dto.OrderItemInput{{FoodID: 10, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("AddItems() error = %v", err)
	}

	// Duplicates only collapse at close time.
	if len(order.Items) != 2 {
		t.Errorf("items = %d, want 2 separate lines", len(order.Items))
	}
	if got := order.TotalAmount.StringFixed(2); got != "37.50" {
		t.Errorf("running total = %s, want 37.50", got)
	}
}

func TestAddItemsRejectsClosedOrder(t *testing.T) {
	svc, _ := newTestService(t)

	order, err := svc.Open(context.Background(), waiter, dto.OpenOrderRequest{
		TableID: 1,
		Items:   []dto.OrderItemInput{{FoodID: 10, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := svc.Close(context.Background(), waiter, order.ID); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	_, err = svc.AddItems(context.Background(), waiter, order.ID, dto.AddItemsRequest{
		Items: []dto.OrderItemInput{{FoodID: 20, Quantity: 1}},
	})
	if kindOf(t, err) != errorbank.KindInvalidState {
		t.Errorf("kind = %s, want invalid_state", kindOf(t, err))
	}
}

func TestCloseMergesAndSettles(t *testing.T) {
	svc, store := newTestService(t)

	order, err := svc.Open(context.Background(), waiter, dto.OpenOrderRequest{
		TableID: 1,
		Items:   []dto.OrderItemInput{{FoodID: 10, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	order, err = svc.AddItems(context.Background(), waiter, order.ID, dto.AddItemsRequest{
		Items: []dto.OrderItemInput{
			{FoodID: 10, Quantity: 1},
			{FoodID: 20, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("AddItems() error = %v", err)
	}

	closed, err := svc.Close(context.Background(), waiter, order.ID)
	if err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if closed.Status != entity.OrderStatusClosed {
		t.Errorf("status = %s, want closed", closed.Status)
	}
	if closed.ClosedAt == nil {
		t.Error("closed_at not set")
	}
	if len(closed.Items) != 2 {
		t.Errorf("merged items = %d, want 2", len(closed.Items))
	}
	if got := closed.Items[0].Quantity; got != 3 {
		t.Errorf("merged quantity = %d, want 3", got)
	}
	// Merged subtotal is 3x12.50 + 1x5.00 = 42.50.
	if got := closed.TaxAmount.StringFixed(2); got != "4.25" {
		t.Errorf("tax = %s, want 4.25", got)
	}
	if got := closed.ServiceCharge.StringFixed(2); got != "2.13" {
		t.Errorf("service charge = %s, want 2.13", got)
	}
	if got := closed.TotalAmount.StringFixed(2); got != "48.88" {
		t.Errorf("grand total = %s, want 48.88", got)
	}
	if !store.tables[1].IsAvailable {
		t.Error("table should be released after close")
	}
}

func TestCloseIsNotRepeatable(t *testing.T) {
	svc, _ := newTestService(t)

	order, err := svc.Open(context.Background(), waiter, dto.OpenOrderRequest{
		TableID: 1,
		Items:   []dto.OrderItemInput{{FoodID: 10, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := svc.Close(context.Background(), waiter, order.ID); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	_, err = svc.Close(context.Background(), waiter, order.ID)
	if kindOf(t, err) != errorbank.KindInvalidState {
		t.Errorf("kind = %s, want invalid_state", kindOf(t, err))
	}
}

func TestCloseCommitsOnceUnderConcurrency(t *testing.T) {
	svc, store := newTestService(t)

	order, err := svc.Open(context.Background(), waiter, dto.OpenOrderRequest{
		TableID: 1,
		Items:   []dto.OrderItemInput{{FoodID: 10, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	// A competing close commits after this request loaded the open order;
	// the guarded update then matches zero rows.
	store.settled[order.ID] = true

	_, err = svc.Close(context.Background(), waiter, order.ID)
	if kindOf(t, err) != errorbank.KindInvalidState {
		t.Errorf("kind = %s, want invalid_state", kindOf(t, err))
	}
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		closed   bool
		wantKind errorbank.Kind
	}{
		{name: "closed performs close", status: "closed"},
		{name: "open on open order echoes", status: "open"},
		{name: "open on closed order rejected", status: "open", closed: true, wantKind: errorbank.KindInvalidState},
		{name: "unknown status rejected", status: "paused", wantKind: errorbank.KindInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			order, err := svc.Open(context.Background(), waiter, dto.OpenOrderRequest{
				TableID: 1,
				Items:   []dto.OrderItemInput{{FoodID: 10, Quantity: 1}},
			})
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if tt.closed {
				if _, err := svc.Close(context.Background(), waiter, order.ID); err != nil {
					t.Fatalf("Close() error = %v", err)
				}
			}

			_, err = svc.UpdateStatus(context.Background(), waiter, order.ID, tt.status)
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("UpdateStatus() error = %v", err)
				}
				return
			}
			if kindOf(t, err) != tt.wantKind {
				t.Errorf("kind = %s, want %s", kindOf(t, err), tt.wantKind)
			}
		})
	}
}

func TestGetRequiresKnownRole(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), auth.Principal{}, 1)
	if kindOf(t, err) != errorbank.KindUnauthorized {
		t.Errorf("kind = %s, want unauthorized", kindOf(t, err))
	}
}

func TestGetUnknownOrder(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), cashier, 404)
	if kindOf(t, err) != errorbank.KindNotFound {
		t.Errorf("kind = %s, want not_found", kindOf(t, err))
	}
}

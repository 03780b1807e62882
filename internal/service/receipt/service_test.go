package receipt

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mesa-labs/mesa/internal/entity"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func testOrder(t *testing.T) *entity.Order {
	t.Helper()
	opened := time.Date(2025, 8, 1, 18, 30, 0, 0, time.UTC)
	return &entity.Order{
		ID:       42,
		TableID:  1,
		Status:   entity.OrderStatusOpen,
		OpenedAt: opened,
		Table:    &entity.Table{ID: 1, Number: "T5", Capacity: 8},
		Items: []*entity.OrderItem{
			{
				ID: 1, FoodID: 10, Quantity: 2,
				UnitPrice: dec(t, "12.50"), Subtotal: dec(t, "25.00"),
				Food: &entity.Food{ID: 10, Name: "Chicken Rice", Type: entity.FoodTypeFood},
			},
			{
				ID: 2, FoodID: 20, Quantity: 2,
				UnitPrice: dec(t, "5.00"), Subtotal: dec(t, "10.00"),
				Food: &entity.Food{ID: 20, Name: "Iced Coffee", Type: entity.FoodTypeBeverage},
			},
		},
	}
}

func newBuildService() *Service {
	return &Service{
		logger: zap.NewNop(),
		now:    func() time.Time { return time.Date(2025, 8, 1, 20, 0, 0, 0, time.UTC) },
	}
}

func TestReceiptNumber(t *testing.T) {
	tests := []struct {
		orderID int64
		want    string
	}{
		{orderID: 1, want: "RCP-000001"},
		{orderID: 42, want: "RCP-000042"},
		{orderID: 123456, want: "RCP-123456"},
		{orderID: 9999999, want: "RCP-9999999"},
	}

	for _, tt := range tests {
		if got := ReceiptNumber(tt.orderID); got != tt.want {
			t.Errorf("ReceiptNumber(%d) = %s, want %s", tt.orderID, got, tt.want)
		}
	}
}

func TestBuildClosedOrder(t *testing.T) {
	svc := newBuildService()
	order := testOrder(t)
	closedAt := time.Date(2025, 8, 1, 19, 45, 0, 0, time.UTC)
	order.Status = entity.OrderStatusClosed
	order.ClosedAt = &closedAt

	receipt := svc.Build(order)

	if receipt.ReceiptNumber != "RCP-000042" {
		t.Errorf("receipt number = %s, want RCP-000042", receipt.ReceiptNumber)
	}
	if receipt.PaymentStatus != "paid" {
		t.Errorf("payment status = %s, want paid", receipt.PaymentStatus)
	}
	if !receipt.Date.Equal(closedAt) {
		t.Errorf("date = %s, want closed_at %s", receipt.Date, closedAt)
	}
	if receipt.Table.Number != "T5" || receipt.Table.Capacity != 8 {
		t.Errorf("table = %+v, want T5 capacity 8", receipt.Table)
	}
	if len(receipt.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(receipt.Items))
	}
	if receipt.Items[0].Name != "Chicken Rice" || receipt.Items[0].Subtotal != "25.00" {
		t.Errorf("first line = %+v", receipt.Items[0])
	}
	if receipt.Summary.Subtotal != "35.00" {
		t.Errorf("subtotal = %s, want 35.00", receipt.Summary.Subtotal)
	}
	if receipt.Summary.Tax != "3.50" || receipt.Summary.TaxRate != "10%" {
		t.Errorf("tax = %s (%s), want 3.50 (10%%)", receipt.Summary.Tax, receipt.Summary.TaxRate)
	}
	if receipt.Summary.ServiceCharge != "1.75" || receipt.Summary.ServiceChargeRate != "5%" {
		t.Errorf("service charge = %s (%s), want 1.75 (5%%)", receipt.Summary.ServiceCharge, receipt.Summary.ServiceChargeRate)
	}
	if receipt.Summary.GrandTotal != "40.25" {
		t.Errorf("grand total = %s, want 40.25", receipt.Summary.GrandTotal)
	}
}

func TestBuildOpenOrderPreview(t *testing.T) {
	svc := newBuildService()
	order := testOrder(t)

	receipt := svc.Build(order)

	if receipt.PaymentStatus != "pending" {
		t.Errorf("payment status = %s, want pending", receipt.PaymentStatus)
	}
	want := time.Date(2025, 8, 1, 20, 0, 0, 0, time.UTC)
	if !receipt.Date.Equal(want) {
		t.Errorf("date = %s, want now %s", receipt.Date, want)
	}
	if receipt.OrderInfo.ClosedAt != nil {
		t.Error("preview should not carry a closed_at")
	}
	// The preview settles at the same rates a close would apply.
	if receipt.Summary.GrandTotal != "40.25" {
		t.Errorf("grand total = %s, want 40.25", receipt.Summary.GrandTotal)
	}
}

package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/mesa-labs/mesa/internal/dto"
)

func TestRenderProducesPDF(t *testing.T) {
	renderer := NewRenderer()

	receipt := dto.Receipt{
		ReceiptNumber: "RCP-000042",
		OrderID:       42,
		Date:          time.Date(2025, 8, 1, 19, 45, 0, 0, time.UTC),
		Table:         dto.ReceiptTable{Number: "T5", Capacity: 8},
		Items: []dto.ReceiptItem{
			{Name: "Chicken Rice", Type: "food", Quantity: 2, UnitPrice: "12.50", Subtotal: "25.00", SpecialInstructions: "no onions"},
			{Name: "Iced Coffee", Type: "beverage", Quantity: 2, UnitPrice: "5.00", Subtotal: "10.00"},
		},
		Summary: dto.ReceiptSummary{
			Subtotal: "35.00", Tax: "3.50", TaxRate: "10%",
			ServiceCharge: "1.75", ServiceChargeRate: "5%", GrandTotal: "40.25",
		},
		PaymentStatus: "paid",
	}

	doc, err := renderer.Render(receipt)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Errorf("document does not start with %%PDF header")
	}
}

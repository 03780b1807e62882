package dto

import "time"

// ReceiptItem is one settled line on a receipt.
type ReceiptItem struct {
	Name                string `json:"name"`
	Type                string `json:"type"`
	Quantity            int    `json:"quantity"`
	UnitPrice           string `json:"unit_price"`
	Subtotal            string `json:"subtotal"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

// ReceiptSummary is the settlement breakdown printed at the bottom of a
// receipt.
type ReceiptSummary struct {
	Subtotal          string `json:"subtotal"`
	Tax               string `json:"tax"`
	TaxRate           string `json:"tax_rate"`
	ServiceCharge     string `json:"service_charge"`
	ServiceChargeRate string `json:"service_charge_rate"`
	GrandTotal        string `json:"grand_total"`
}

// ReceiptTable identifies the table a receipt was issued for.
type ReceiptTable struct {
	Number   string `json:"number"`
	Capacity int    `json:"capacity"`
}

// ReceiptOrderInfo carries the order lifecycle facts onto the receipt.
type ReceiptOrderInfo struct {
	OpenedAt time.Time  `json:"opened_at"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`
	Status   string     `json:"status"`
	Notes    string     `json:"notes,omitempty"`
}

// Receipt is the printable view of an order. It is derived, never stored.
type Receipt struct {
	ReceiptNumber string           `json:"receipt_number"`
	OrderID       int64            `json:"order_id"`
	Date          time.Time        `json:"date"`
	Table         ReceiptTable     `json:"table"`
	Items         []ReceiptItem    `json:"items"`
	Summary       ReceiptSummary   `json:"summary"`
	OrderInfo     ReceiptOrderInfo `json:"order_info"`
	PaymentStatus string           `json:"payment_status"`
}

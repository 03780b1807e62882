package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// OrderStatus is the two-state order lifecycle.
type OrderStatus string

const (
	OrderStatusOpen   OrderStatus = "open"
	OrderStatusClosed OrderStatus = "closed"
)

// Order is a table's running bill. While open it accepts additional items;
// closing it merges duplicate lines, fixes tax and service charge, and frees
// the table. A closed order is immutable.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID            int64           `bun:",pk,autoincrement" json:"id"`
	TableID       int64           `bun:"table_id" json:"table_id"`
	Status        OrderStatus     `bun:"status" json:"status"`
	Notes         string          `bun:"notes,nullzero" json:"notes,omitempty"`
	TotalAmount   decimal.Decimal `bun:"total_amount" json:"total_amount"`
	TaxAmount     decimal.Decimal `bun:"tax_amount" json:"tax_amount"`
	ServiceCharge decimal.Decimal `bun:"service_charge" json:"service_charge"`
	OpenedAt      time.Time       `bun:"opened_at,nullzero" json:"opened_at"`
	ClosedAt      *time.Time      `bun:"closed_at,nullzero" json:"closed_at,omitempty"`
	CreatedAt     time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `bun:"updated_at,nullzero" json:"updated_at"`
	DeletedAt     *time.Time      `bun:"deleted_at,nullzero" json:"-"`

	Table *Table       `bun:"rel:belongs-to,join:table_id=id" json:"table,omitempty"`
	Items []*OrderItem `bun:"rel:has-many,join:id=order_id" json:"items,omitempty"`
}

// IsOpen reports whether the order still accepts items.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusOpen
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// OrderItem is one line on an order. UnitPrice snapshots Food.Price at
// add-time; Subtotal is always quantity × unit price. Duplicate lines for the
// same food accumulate while the order is open and are merged at close.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID                  int64           `bun:",pk,autoincrement" json:"id"`
	OrderID             int64           `bun:"order_id" json:"order_id"`
	FoodID              int64           `bun:"food_id" json:"food_id"`
	Quantity            int             `bun:"quantity" json:"quantity"`
	UnitPrice           decimal.Decimal `bun:"unit_price" json:"unit_price"`
	Subtotal            decimal.Decimal `bun:"subtotal" json:"subtotal"`
	SpecialInstructions string          `bun:"special_instructions,nullzero" json:"special_instructions,omitempty"`
	CreatedAt           time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time       `bun:"updated_at,nullzero" json:"updated_at"`
	DeletedAt           *time.Time      `bun:"deleted_at,nullzero" json:"-"`

	Food *Food `bun:"rel:belongs-to,join:food_id=id" json:"food,omitempty"`
}

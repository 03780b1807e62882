package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// FoodType distinguishes kitchen items from the drinks menu.
type FoodType string

const (
	FoodTypeFood     FoodType = "food"
	FoodTypeBeverage FoodType = "beverage"
)

// ValidFoodType reports whether t is a known menu item type.
func ValidFoodType(t FoodType) bool {
	return t == FoodTypeFood || t == FoodTypeBeverage
}

// Food is a sellable menu item. Order items copy its price at add-time, so
// editing a Food never changes past orders.
type Food struct {
	bun.BaseModel `bun:"table:foods,alias:f"`

	ID          int64           `bun:",pk,autoincrement" json:"id"`
	Name        string          `bun:"name" json:"name"`
	Description string          `bun:"description,nullzero" json:"description,omitempty"`
	Price       decimal.Decimal `bun:"price" json:"price"`
	Type        FoodType        `bun:"type" json:"type"`
	Image       string          `bun:"image,nullzero" json:"image,omitempty"`
	IsAvailable bool            `bun:"is_available" json:"is_available"`
	CreatedAt   time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `bun:"updated_at,nullzero" json:"updated_at"`
	DeletedAt   *time.Time      `bun:"deleted_at,nullzero" json:"-"`
}

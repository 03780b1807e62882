package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Table represents a physical restaurant table. Its availability flag is a
// proxy for "has an open order assigned" and is mutated only by order
// open/close transitions.
type Table struct {
	bun.BaseModel `bun:"table:tables,alias:t"`

	ID          int64      `bun:",pk,autoincrement" json:"id"`
	Number      string     `bun:"number" json:"number"`
	Capacity    int        `bun:"capacity" json:"capacity"`
	IsAvailable bool       `bun:"is_available" json:"is_available"`
	Description string     `bun:"description,nullzero" json:"description,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero" json:"updated_at"`
	DeletedAt   *time.Time `bun:"deleted_at,nullzero" json:"-"`
}

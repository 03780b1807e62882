package dto

import "github.com/mesa-labs/mesa/internal/entity"

// TableResponse is a table as shown on the public floor view.
type TableResponse struct {
	ID          int64  `json:"id"`
	Number      string `json:"number"`
	Capacity    int    `json:"capacity"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
}

// NewTableResponse maps a Table entity onto its transport representation.
func NewTableResponse(table *entity.Table) TableResponse {
	status := "occupied"
	if table.IsAvailable {
		status = "available"
	}
	return TableResponse{
		ID:          table.ID,
		Number:      table.Number,
		Capacity:    table.Capacity,
		Status:      status,
		Description: table.Description,
	}
}

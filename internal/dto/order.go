package dto

import (
	"time"

	"github.com/mesa-labs/mesa/internal/entity"
)

// OrderItemInput is one submitted line when opening or extending an order.
type OrderItemInput struct {
	FoodID              int64  `json:"food_id" validate:"required,gt=0"`
	Quantity            int    `json:"quantity" validate:"required,gte=1"`
	SpecialInstructions string `json:"special_instructions,omitempty" validate:"max=500"`
}

// OpenOrderRequest opens a table for service with an initial set of items.
type OpenOrderRequest struct {
	TableID int64            `json:"table_id" validate:"required,gt=0"`
	Items   []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	Notes   string           `json:"notes,omitempty" validate:"max=1000"`
}

// AddItemsRequest appends items to an open order.
type AddItemsRequest struct {
	Items []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// UpdateStatusRequest drives the PATCH /orders/:id/status endpoint.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open closed"`
}

// OrderItemResponse is one order line as exposed via transport layers.
type OrderItemResponse struct {
	ID                  int64  `json:"id"`
	FoodID              int64  `json:"food_id"`
	FoodName            string `json:"food_name,omitempty"`
	FoodType            string `json:"food_type,omitempty"`
	Quantity            int    `json:"quantity"`
	UnitPrice           string `json:"unit_price"`
	Subtotal            string `json:"subtotal"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

// OrderResponse is an order as exposed via transport layers. Monetary values
// are formatted to two decimals here and nowhere earlier.
type OrderResponse struct {
	ID            int64               `json:"id"`
	TableID       int64               `json:"table_id"`
	TableNumber   string              `json:"table_number,omitempty"`
	Status        string              `json:"status"`
	Notes         string              `json:"notes,omitempty"`
	TotalAmount   string              `json:"total_amount"`
	TaxAmount     string              `json:"tax_amount"`
	ServiceCharge string              `json:"service_charge"`
	OpenedAt      time.Time           `json:"opened_at"`
	ClosedAt      *time.Time          `json:"closed_at,omitempty"`
	Items         []OrderItemResponse `json:"items"`
}

// NewOrderResponse maps an order entity (with loaded relations) onto its
// transport representation.
func NewOrderResponse(order *entity.Order) OrderResponse {
	resp := OrderResponse{
		ID:            order.ID,
		TableID:       order.TableID,
		Status:        string(order.Status),
		Notes:         order.Notes,
		TotalAmount:   order.TotalAmount.StringFixed(2),
		TaxAmount:     order.TaxAmount.StringFixed(2),
		ServiceCharge: order.ServiceCharge.StringFixed(2),
		OpenedAt:      order.OpenedAt,
		ClosedAt:      order.ClosedAt,
		Items:         make([]OrderItemResponse, 0, len(order.Items)),
	}
	if order.Table != nil {
		resp.TableNumber = order.Table.Number
	}
	for _, item := range order.Items {
		line := OrderItemResponse{
			ID:                  item.ID,
			FoodID:              item.FoodID,
			Quantity:            item.Quantity,
			UnitPrice:           item.UnitPrice.StringFixed(2),
			Subtotal:            item.Subtotal.StringFixed(2),
			SpecialInstructions: item.SpecialInstructions,
		}
		if item.Food != nil {
			line.FoodName = item.Food.Name
			line.FoodType = string(item.Food.Type)
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

package dto

import (
	"time"

	"github.com/mesa-labs/mesa/internal/entity"
)

// CreateFoodRequest adds a menu item. The image arrives as a separate
// multipart part and is stored before the entity is persisted.
type CreateFoodRequest struct {
	Name        string `json:"name" form:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty" form:"description" validate:"max=1000"`
	Price       string `json:"price" form:"price" validate:"required"`
	Type        string `json:"type" form:"type" validate:"required,oneof=food beverage"`
	IsAvailable *bool  `json:"is_available,omitempty" form:"is_available"`
}

// UpdateFoodRequest partially updates a menu item; nil fields are untouched.
type UpdateFoodRequest struct {
	Name        *string `json:"name,omitempty" form:"name" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" form:"description" validate:"omitempty,max=1000"`
	Price       *string `json:"price,omitempty" form:"price"`
	Type        *string `json:"type,omitempty" form:"type" validate:"omitempty,oneof=food beverage"`
	IsAvailable *bool   `json:"is_available,omitempty" form:"is_available"`
}

// FoodResponse is a menu item as exposed via transport layers.
type FoodResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       string    `json:"price"`
	Type        string    `json:"type"`
	Image       string    `json:"image,omitempty"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewFoodResponse maps a Food entity onto its transport representation.
func NewFoodResponse(food *entity.Food) FoodResponse {
	return FoodResponse{
		ID:          food.ID,
		Name:        food.Name,
		Description: food.Description,
		Price:       food.Price.StringFixed(2),
		Type:        string(food.Type),
		Image:       food.Image,
		IsAvailable: food.IsAvailable,
		CreatedAt:   food.CreatedAt,
	}
}

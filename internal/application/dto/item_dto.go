package dto

import "time"

// CreateItemRequest entrada para crear un ítem.
type CreateItemRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=255"`
	CostingMethod string `json:"costing_method" validate:"required"` // FIFO | WEIGHTED_AVERAGE (acepta alias)
}

// UpdateItemRequest actualización parcial de un ítem. Cambiar el método no recalcula movimientos pasados.
type UpdateItemRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=255"`
	CostingMethod *string `json:"costing_method"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CostingMethod string    `json:"costing_method"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ItemListResponse lista paginada de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

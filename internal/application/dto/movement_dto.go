package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// RecordInputRequest body para POST /api/movements/input.
type RecordInputRequest struct {
	ItemID   string           `json:"item_id" validate:"required"`
	Quantity int64            `json:"quantity" validate:"required,gt=0"`
	UnitCost *decimal.Decimal `json:"unit_cost" validate:"required" swaggertype:"string"`
}

// RecordOutputRequest body para POST /api/movements/output.
type RecordOutputRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int64  `json:"quantity" validate:"required,gt=0"`
}

// CreateMovementRequest body para POST /api/movements (administración, sin validar existencias).
type CreateMovementRequest struct {
	ItemID    string           `json:"item_id" validate:"required"`
	Kind      string           `json:"kind" validate:"required,oneof=INPUT OUTPUT"`
	Quantity  int64            `json:"quantity" validate:"required,gt=0"`
	UnitCost  *decimal.Decimal `json:"unit_cost" swaggertype:"string"`
	TotalCost *decimal.Decimal `json:"total_cost" swaggertype:"string"`
}

// UpdateMovementRequest body para PUT /api/movements/:id (parcial).
type UpdateMovementRequest struct {
	ItemID    *string          `json:"item_id" validate:"omitempty,min=1"`
	Kind      *string          `json:"kind" validate:"omitempty,oneof=INPUT OUTPUT"`
	Quantity  *int64           `json:"quantity" validate:"omitempty,gt=0"`
	UnitCost  *decimal.Decimal `json:"unit_cost" swaggertype:"string"`
	TotalCost *decimal.Decimal `json:"total_cost" swaggertype:"string"`
}

// MovementListRequest filtros de GET /api/movements.
type MovementListRequest struct {
	ItemID string `query:"item_id"`
	Kind   string `query:"kind" validate:"omitempty,oneof=INPUT OUTPUT"`
	From   string `query:"from"` // RFC3339
	To     string `query:"to"`   // RFC3339
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset int    `query:"offset" validate:"min=0"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID        string           `json:"id"`
	ItemID    string           `json:"item_id"`
	Kind      string           `json:"kind"`
	Quantity  int64            `json:"quantity"`
	UnitCost  decimal.Decimal  `json:"unit_cost" swaggertype:"string"`
	TotalCost *decimal.Decimal `json:"total_cost,omitempty" swaggertype:"string"`
	CreatedAt time.Time        `json:"created_at"`
	CreatedBy string           `json:"created_by,omitempty"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// NewMovementResponse convierte la entidad en DTO.
func NewMovementResponse(m *entity.Movement) MovementResponse {
	out := MovementResponse{
		ID:        m.ID,
		ItemID:    m.ItemID,
		Kind:      string(m.Kind),
		Quantity:  m.Quantity,
		UnitCost:  m.UnitCost,
		CreatedAt: m.CreatedAt,
		CreatedBy: m.CreatedBy,
	}
	if m.TotalCost.Valid {
		tc := m.TotalCost.Decimal
		out.TotalCost = &tc
	}
	return out
}

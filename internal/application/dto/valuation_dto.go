package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/inventory"
)

// ValuationResponse existencias y valor total de un ítem.
type ValuationResponse struct {
	ItemID              string          `json:"item_id"`
	QuantityInStock     int64           `json:"quantity_in_stock"`
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value" swaggertype:"string"`
	AsOf                *time.Time      `json:"as_of,omitempty"`
}

// ConsumptionResponse una línea de la traza de costeo.
type ConsumptionResponse struct {
	MovementID string          `json:"movement_id"`
	Quantity   int64           `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost" swaggertype:"string"`
	Cost       decimal.Decimal `json:"cost" swaggertype:"string"`
}

// OutputCostResponse costo estimado de una salida (sin registrarla).
type OutputCostResponse struct {
	ItemID        string                `json:"item_id"`
	CostingMethod string                `json:"costing_method"`
	Quantity      int64                 `json:"quantity"`
	TotalCost     decimal.Decimal       `json:"total_cost" swaggertype:"string"`
	UnitCost      decimal.Decimal       `json:"unit_cost" swaggertype:"string"`
	Trace         []ConsumptionResponse `json:"trace"`
}

// NewValuationResponse convierte la valorización en DTO (valor con 2 decimales).
func NewValuationResponse(v entity.Valuation) ValuationResponse {
	return ValuationResponse{
		ItemID:              v.ItemID,
		QuantityInStock:     v.QuantityInStock,
		TotalInventoryValue: v.TotalInventoryValue.Round(inventory.MoneyScale),
		AsOf:                v.AsOf,
	}
}

// NewOutputCostResponse convierte el resultado del costeo en DTO.
func NewOutputCostResponse(itemID string, r inventory.CostResult) OutputCostResponse {
	trace := make([]ConsumptionResponse, 0, len(r.Trace))
	for _, c := range r.Trace {
		trace = append(trace, ConsumptionResponse{
			MovementID: c.MovementID,
			Quantity:   c.Quantity,
			UnitCost:   c.UnitCost,
			Cost:       c.Cost,
		})
	}
	return OutputCostResponse{
		ItemID:        itemID,
		CostingMethod: r.Method.String(),
		Quantity:      r.Quantity,
		TotalCost:     r.TotalCost,
		UnitCost:      r.UnitCost,
		Trace:         trace,
	}
}

package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// Available devuelve las existencias disponibles: Σ INPUT − Σ OUTPUT, saturando en los límites de int64.
func Available(movements []*entity.Movement) int64 {
	var qty int64
	for _, m := range movements {
		switch m.Kind {
		case entity.MovementInput:
			qty = addQty(qty, m.Quantity)
		case entity.MovementOutput:
			qty = addQty(qty, -m.Quantity)
		}
	}
	return qty
}

// Replay recorre el ledger del ítem en orden de creación y deriva existencias y valor.
// Las entradas suman q*costo unitario; las salidas restan su costo registrado (TotalCost).
func Replay(itemID string, movements []*entity.Movement) entity.Valuation {
	var qty int64
	value := decimal.Zero
	for _, m := range movements {
		switch m.Kind {
		case entity.MovementInput:
			qty = addQty(qty, m.Quantity)
			value = value.Add(decimal.NewFromInt(m.Quantity).Mul(m.UnitCost))
		case entity.MovementOutput:
			qty = addQty(qty, -m.Quantity)
			value = value.Sub(m.CostBasis())
		}
	}
	return entity.Valuation{
		ItemID:              itemID,
		QuantityInStock:     qty,
		TotalInventoryValue: roundMoney(value),
	}
}

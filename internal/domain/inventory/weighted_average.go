package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// WeightedAverage costea al promedio ponderado de TODAS las entradas del ítem:
//
//	Total = Cantidad * Σ(q_i * c_i) / Σ(q_i)
//
// El promedio no descuenta lo ya vendido (consumed se ignora): cada salida ve el mismo
// pool mientras no haya entradas nuevas. El redondeo bancario se aplica una sola vez al total.
type WeightedAverage struct{}

// Method implementa Strategy.
func (WeightedAverage) Method() entity.CostingMethod { return entity.CostingWeightedAverage }

// Cost implementa Strategy.
func (WeightedAverage) Cost(lots []Lot, _ int64, requested int64) (CostResult, error) {
	if err := validateRequested(requested); err != nil {
		return CostResult{}, err
	}

	var (
		poolValue = decimal.Zero
		poolQty   = decimal.Zero
		trace     []Consumption
	)
	for _, lot := range sortedLots(lots) {
		cost := decimal.NewFromInt(lot.Quantity).Mul(lot.UnitCost)
		poolValue = poolValue.Add(cost)
		poolQty = poolQty.Add(decimal.NewFromInt(lot.Quantity))
		trace = append(trace, Consumption{
			MovementID: lot.MovementID,
			Quantity:   lot.Quantity,
			UnitCost:   lot.UnitCost,
			Cost:       cost,
		})
	}
	if poolQty.IsZero() {
		return CostResult{}, domain.ErrNoInputHistory
	}

	total := divRoundHalfEven(poolValue.Mul(decimal.NewFromInt(requested)), poolQty, MoneyScale)
	return CostResult{
		Method:    entity.CostingWeightedAverage,
		Quantity:  requested,
		TotalCost: total,
		UnitCost:  divRoundHalfEven(poolValue, poolQty, UnitCostScale),
		Trace:     trace,
	}, nil
}

package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// FIFO consume primero los lotes más antiguos.
// Las primeras consumed unidades (salidas previas) se descuentan de los lotes más antiguos
// antes de costear; el consumo se recalcula desde el historial completo en cada llamada.
type FIFO struct{}

// Method implementa Strategy.
func (FIFO) Method() entity.CostingMethod { return entity.CostingFIFO }

// Cost implementa Strategy.
func (FIFO) Cost(lots []Lot, consumed, requested int64) (CostResult, error) {
	if err := validateRequested(requested); err != nil {
		return CostResult{}, err
	}
	if consumed < 0 {
		consumed = 0
	}

	var (
		total  = decimal.Zero
		need   = requested
		skip   = consumed
		trace  []Consumption
		onHand int64
	)
	for _, lot := range sortedLots(lots) {
		remaining := lot.Quantity
		if skip > 0 {
			used := min(skip, remaining)
			skip -= used
			remaining -= used
		}
		onHand = addQty(onHand, remaining)
		if remaining == 0 || need == 0 {
			continue
		}
		take := min(remaining, need)
		cost := decimal.NewFromInt(take).Mul(lot.UnitCost)
		total = total.Add(cost)
		need -= take
		trace = append(trace, Consumption{
			MovementID: lot.MovementID,
			Quantity:   take,
			UnitCost:   lot.UnitCost,
			Cost:       cost,
		})
	}
	if need > 0 {
		return CostResult{}, &domain.InsufficientStockError{Requested: requested, Available: onHand}
	}

	total = roundMoney(total)
	return CostResult{
		Method:    entity.CostingFIFO,
		Quantity:  requested,
		TotalCost: total,
		UnitCost:  unitCostOf(total, requested),
		Trace:     trace,
	}, nil
}

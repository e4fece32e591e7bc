package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// Lot es un movimiento INPUT visto como lote a un costo unitario fijo.
type Lot struct {
	MovementID string
	Quantity   int64
	UnitCost   decimal.Decimal
	CreatedAt  time.Time
}

// Consumption una línea de la traza de costeo.
type Consumption struct {
	MovementID string          `json:"movement_id"`
	Quantity   int64           `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Cost       decimal.Decimal `json:"cost"`
}

// CostResult costo de una salida y la traza de lotes que lo componen.
type CostResult struct {
	Method    entity.CostingMethod
	Quantity  int64
	TotalCost decimal.Decimal // redondeado a MoneyScale
	UnitCost  decimal.Decimal // informativo: TotalCost / Quantity a UnitCostScale
	Trace     []Consumption
}

// Strategy calcula el costo de una salida a partir del historial completo de entradas.
// consumed es la cantidad ya despachada por salidas anteriores del ítem.
// Las implementaciones son funciones puras: no guardan cantidades remanentes por lote.
type Strategy interface {
	Method() entity.CostingMethod
	Cost(lots []Lot, consumed, requested int64) (CostResult, error)
}

// ForMethod devuelve la estrategia del método de costeo del ítem.
func ForMethod(m entity.CostingMethod) (Strategy, error) {
	switch m {
	case entity.CostingFIFO:
		return FIFO{}, nil
	case entity.CostingWeightedAverage:
		return WeightedAverage{}, nil
	}
	return nil, domain.InvalidInputf("método de costeo desconocido %q", string(m))
}

// LotsFrom separa el ledger de un ítem en lotes de entrada y cantidad ya consumida por salidas.
func LotsFrom(movements []*entity.Movement) (lots []Lot, consumed int64) {
	for _, m := range movements {
		switch m.Kind {
		case entity.MovementInput:
			lots = append(lots, Lot{
				MovementID: m.ID,
				Quantity:   m.Quantity,
				UnitCost:   m.UnitCost,
				CreatedAt:  m.CreatedAt,
			})
		case entity.MovementOutput:
			consumed += m.Quantity
		}
	}
	return lots, consumed
}

func validateRequested(requested int64) error {
	if requested <= 0 {
		return domain.InvalidInputf("cantidad solicitada debe ser positiva (recibido %d)", requested)
	}
	return nil
}

// sortedLots copia los lotes ordenados por CreatedAt ascendente (orden estable ante empates).
func sortedLots(lots []Lot) []Lot {
	out := make([]Lot, 0, len(lots))
	for _, l := range lots {
		if l.Quantity > 0 {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func unitCostOf(total decimal.Decimal, quantity int64) decimal.Decimal {
	return divRoundHalfEven(total, decimal.NewFromInt(quantity), UnitCostScale)
}

func (r CostResult) String() string {
	return fmt.Sprintf("%s x%d = %s", r.Method, r.Quantity, r.TotalCost.StringFixed(MoneyScale))
}

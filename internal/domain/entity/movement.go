package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento del ledger.
type MovementKind string

// Tipos de movimiento.
const (
	MovementInput  MovementKind = "INPUT"  // reposición
	MovementOutput MovementKind = "OUTPUT" // despacho
)

// IsValid indica si el tipo es INPUT u OUTPUT.
func (k MovementKind) IsValid() bool {
	return k == MovementInput || k == MovementOutput
}

// Movement representa un evento de stock sobre un ítem (referencia débil por ItemID).
// UnitCost es obligatorio en INPUT y cero en OUTPUT; TotalCost se calcula para OUTPUT
// (snapshot del costeo al momento de crearse) y es nulo en INPUT.
// CreatedAt es la única clave de orden para el costeo.
type Movement struct {
	ID        string
	ItemID    string
	Kind      MovementKind
	Quantity  int64
	UnitCost  decimal.Decimal
	TotalCost decimal.NullDecimal
	CreatedAt time.Time
	CreatedBy string
}

// CostBasis devuelve el costo registrado del movimiento: TotalCost si existe, si no Quantity*UnitCost.
func (m *Movement) CostBasis() decimal.Decimal {
	if m.TotalCost.Valid {
		return m.TotalCost.Decimal
	}
	return decimal.NewFromInt(m.Quantity).Mul(m.UnitCost)
}

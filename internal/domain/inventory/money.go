package inventory

import "github.com/shopspring/decimal"

// Escalas de redondeo: montos a 2 decimales, costos unitarios informativos a 4.
const (
	MoneyScale    int32 = 2
	UnitCostScale int32 = 4
)

// MaxMoney cota exclusiva de montos (unit_cost, total_cost): NUMERIC(38,2) admite 36 dígitos enteros.
var MaxMoney = decimal.New(1, 36)

var two = decimal.NewFromInt(2)

// divRoundHalfEven calcula num/den redondeado a places decimales con redondeo bancario.
// La división es exacta (QuoRem): el único redondeo es el final.
func divRoundHalfEven(num, den decimal.Decimal, places int32) decimal.Decimal {
	q, r := num.QuoRem(den, places)
	if r.IsZero() {
		return q
	}
	unit := decimal.New(1, -places)
	cmp := r.Abs().Mul(two).Cmp(den.Abs().Mul(unit))
	if cmp < 0 || (cmp == 0 && q.Shift(places).Mod(two).IsZero()) {
		return q
	}
	// QuoRem trunca hacia cero: alejarse de cero según el signo del cociente.
	if num.Sign()*den.Sign() < 0 {
		return q.Sub(unit)
	}
	return q.Add(unit)
}

// roundMoney aplica el redondeo bancario a la escala monetaria.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(MoneyScale)
}

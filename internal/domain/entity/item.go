package entity

import (
	"strings"
	"time"
)

// CostingMethod método de costeo configurado por ítem.
type CostingMethod string

// Métodos de costeo soportados.
const (
	CostingFIFO            CostingMethod = "FIFO"
	CostingWeightedAverage CostingMethod = "WEIGHTED_AVERAGE"
)

// ParseCostingMethod normaliza el método (acepta los alias históricos "fifo" y "weighted_mean").
func ParseCostingMethod(s string) (CostingMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fifo":
		return CostingFIFO, true
	case "weighted_average", "weighted-average", "weighted_mean":
		return CostingWeightedAverage, true
	}
	return "", false
}

// IsValid indica si el método es uno de los soportados.
func (m CostingMethod) IsValid() bool {
	return m == CostingFIFO || m == CostingWeightedAverage
}

func (m CostingMethod) String() string { return string(m) }

// Item representa un producto almacenado cuyo inventario se valoriza de forma independiente.
// Cambiar CostingMethod no recalcula movimientos pasados.
type Item struct {
	ID            string
	Name          string // único
	CostingMethod CostingMethod
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

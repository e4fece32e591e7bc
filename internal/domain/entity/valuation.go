package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Valuation existencias y valor del inventario de un ítem, derivados por replay del ledger.
type Valuation struct {
	ItemID              string          `json:"item_id"`
	QuantityInStock     int64           `json:"quantity_in_stock"`
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
	AsOf                *time.Time      `json:"as_of,omitempty"`
}

package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del Ledger Store, pasando repositorios
// atados a esa tx. Si fn devuelve error se hace Rollback; si no, Commit.
// Cada llamada al motor es exactamente una unidad de trabajo.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ctx context.Context,
		items repository.ItemRepository,
		movements repository.MovementRepository,
	) error) error
}

// ValuationLoader calcula la valorización vigente de un ítem (replay del ledger).
type ValuationLoader func(ctx context.Context) (entity.Valuation, error)

// ValuationCache vista materializada opcional de la valorización vigente.
// Invalidate se llama después de cada commit que toca el ledger del ítem.
type ValuationCache interface {
	Fetch(ctx context.Context, itemID string, load ValuationLoader) (entity.Valuation, error)
	Invalidate(ctx context.Context, itemIDs ...string)
}

// ReportData contenido del reporte de valorización de un ítem.
type ReportData struct {
	Item        *entity.Item
	Valuation   entity.Valuation
	Movements   []*entity.Movement
	GeneratedAt time.Time
}

// ReportRenderer genera el documento (PDF) del reporte de valorización.
type ReportRenderer interface {
	RenderValuation(data ReportData) ([]byte, error)
}

// NoCache implementación de ValuationCache que siempre recalcula.
type NoCache struct{}

// Fetch implementa ValuationCache.
func (NoCache) Fetch(ctx context.Context, _ string, load ValuationLoader) (entity.Valuation, error) {
	return load(ctx)
}

// Invalidate implementa ValuationCache.
func (NoCache) Invalidate(context.Context, ...string) {}

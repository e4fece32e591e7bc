package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

// ErrReportUnavailable no hay generador de reportes configurado.
var ErrReportUnavailable = errors.New("generador de reportes no configurado")

// ValuationReporter deriva existencias y valor de un ítem recorriendo su ledger.
type ValuationReporter struct {
	tx       TxRunner
	cache    ValuationCache
	renderer ReportRenderer
	now      func() time.Time
}

// NewValuationReporter construye el reporter. cache y renderer son opcionales.
func NewValuationReporter(tx TxRunner, cache ValuationCache, renderer ReportRenderer) *ValuationReporter {
	if cache == nil {
		cache = NoCache{}
	}
	return &ValuationReporter{tx: tx, cache: cache, renderer: renderer, now: time.Now}
}

// Valuation devuelve existencias y valor total del ítem. Con asOf solo considera
// movimientos creados hasta ese instante; sin asOf usa la caché si está configurada.
func (r *ValuationReporter) Valuation(ctx context.Context, itemID string, asOf *time.Time) (entity.Valuation, error) {
	if asOf != nil {
		return r.replay(ctx, itemID, asOf)
	}
	return r.cache.Fetch(ctx, itemID, func(ctx context.Context) (entity.Valuation, error) {
		return r.replay(ctx, itemID, nil)
	})
}

func (r *ValuationReporter) replay(ctx context.Context, itemID string, asOf *time.Time) (entity.Valuation, error) {
	var v entity.Valuation
	err := r.tx.Run(ctx, func(ctx context.Context, items repository.ItemRepository, movements repository.MovementRepository) error {
		_, history, err := loadLedger(ctx, items, movements, itemID, asOf)
		if err != nil {
			return err
		}
		v = inventory.Replay(itemID, history)
		return nil
	})
	if err != nil {
		return entity.Valuation{}, err
	}
	if asOf != nil {
		t := asOf.UTC()
		v.AsOf = &t
	}
	return v, nil
}

// ValuationReport genera el PDF con el ítem, su valorización vigente y su kárdex.
func (r *ValuationReporter) ValuationReport(ctx context.Context, itemID string) ([]byte, error) {
	if r.renderer == nil {
		return nil, ErrReportUnavailable
	}
	var data ReportData
	err := r.tx.Run(ctx, func(ctx context.Context, items repository.ItemRepository, movements repository.MovementRepository) error {
		item, history, err := loadLedger(ctx, items, movements, itemID, nil)
		if err != nil {
			return err
		}
		data = ReportData{
			Item:        item,
			Valuation:   inventory.Replay(itemID, history),
			Movements:   history,
			GeneratedAt: r.now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.renderer.RenderValuation(data)
}

func loadLedger(
	ctx context.Context,
	items repository.ItemRepository,
	movements repository.MovementRepository,
	itemID string,
	asOf *time.Time,
) (*entity.Item, []*entity.Movement, error) {
	item, err := items.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, domain.ErrNotFound
	}
	history, err := movements.ListByItem(ctx, itemID, asOf)
	if err != nil {
		return nil, nil, err
	}
	return item, history, nil
}

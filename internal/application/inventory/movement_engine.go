package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

// Límites de paginación de movimientos.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// MovementEngine registra movimientos de inventario de forma transaccional: bloquea el ítem
// (SELECT ... FOR UPDATE), valida existencias, costea la salida según el método del ítem
// y agrega el movimiento al ledger dentro de la misma unidad de trabajo.
type MovementEngine struct {
	tx    TxRunner
	cache ValuationCache
	log   zerolog.Logger
	now   func() time.Time
}

// EngineOption configura el motor.
type EngineOption func(*MovementEngine)

// WithCache invalida la valorización cacheada después de cada commit.
func WithCache(c ValuationCache) EngineOption {
	return func(e *MovementEngine) {
		if c != nil {
			e.cache = c
		}
	}
}

// WithLogger asigna el logger del motor.
func WithLogger(l zerolog.Logger) EngineOption {
	return func(e *MovementEngine) { e.log = l }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) EngineOption {
	return func(e *MovementEngine) { e.now = now }
}

// NewMovementEngine construye el motor.
func NewMovementEngine(tx TxRunner, opts ...EngineOption) *MovementEngine {
	e := &MovementEngine{
		tx:    tx,
		cache: NoCache{},
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordInputCommand entrada de RecordInput.
type RecordInputCommand struct {
	ItemID   string
	Quantity int64
	UnitCost decimal.Decimal
	UserID   string
}

// RecordOutputCommand entrada de RecordOutput.
type RecordOutputCommand struct {
	ItemID   string
	Quantity int64
	UserID   string
}

// RecordInput agrega una reposición al ledger del ítem.
func (e *MovementEngine) RecordInput(ctx context.Context, cmd RecordInputCommand) (*entity.Movement, error) {
	if err := validateQuantity(cmd.Quantity); err != nil {
		return nil, err
	}
	if err := validateMoney("unit_cost", cmd.UnitCost); err != nil {
		return nil, err
	}

	var mov *entity.Movement
	err := e.tx.Run(ctx, func(ctx context.Context, items repository.ItemRepository, movements repository.MovementRepository) error {
		item, err := lockItem(ctx, items, cmd.ItemID)
		if err != nil {
			return err
		}
		if err := checkCapacity(ctx, movements, item.ID, cmd.Quantity); err != nil {
			return err
		}
		createdAt, err := e.nextTimestamp(ctx, movements, item.ID)
		if err != nil {
			return err
		}
		mov = &entity.Movement{
			ID:        uuid.New().String(),
			ItemID:    item.ID,
			Kind:      entity.MovementInput,
			Quantity:  cmd.Quantity,
			UnitCost:  cmd.UnitCost,
			CreatedAt: createdAt,
			CreatedBy: cmd.UserID,
		}
		return movements.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}

	e.cache.Invalidate(ctx, mov.ItemID)
	e.log.Debug().
		Str("item_id", mov.ItemID).
		Str("movement_id", mov.ID).
		Int64("quantity", mov.Quantity).
		Str("unit_cost", mov.UnitCost.String()).
		Msg("entrada registrada")
	return mov, nil
}

// RecordOutput valida existencias, costea la salida con el método del ítem y la agrega al ledger.
// Si no hay existencias suficientes devuelve *domain.InsufficientStockError y el ledger no cambia.
func (e *MovementEngine) RecordOutput(ctx context.Context, cmd RecordOutputCommand) (*entity.Movement, error) {
	if err := validateQuantity(cmd.Quantity); err != nil {
		return nil, err
	}

	var (
		mov     *entity.Movement
		costing inventory.CostResult
	)
	err := e.tx.Run(ctx, func(ctx context.Context, items repository.ItemRepository, movements repository.MovementRepository) error {
		// El bloqueo del ítem serializa salidas concurrentes: la segunda ve la primera ya agregada.
		item, err := lockItem(ctx, items, cmd.ItemID)
		if err != nil {
			return err
		}
		history, err := movements.ListByItem(ctx, item.ID, nil)
		if err != nil {
			return err
		}
		costing, err = costOutput(item, history, cmd.Quantity)
		if err != nil {
			return err
		}
		if err := validateMoney("total_cost", costing.TotalCost); err != nil {
			return err
		}
		createdAt, err := e.nextTimestamp(ctx, movements, item.ID)
		if err != nil {
			return err
		}
		mov = &entity.Movement{
			ID:        uuid.New().String(),
			ItemID:    item.ID,
			Kind:      entity.MovementOutput,
			Quantity:  cmd.Quantity,
			UnitCost:  decimal.Zero,
			TotalCost: decimal.NewNullDecimal(costing.TotalCost),
			CreatedAt: createdAt,
			CreatedBy: cmd.UserID,
		}
		return movements.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}

	e.cache.Invalidate(ctx, mov.ItemID)
	e.log.Debug().
		Str("item_id", mov.ItemID).
		Str("movement_id", mov.ID).
		Int64("quantity", mov.Quantity).
		Str("costing", costing.String()).
		Msg("salida registrada")
	return mov, nil
}

// PreviewOutputCost calcula el costo que tendría una salida sin registrarla.
func (e *MovementEngine) PreviewOutputCost(ctx context.Context, itemID string, quantity int64) (inventory.CostResult, error) {
	if err := validateQuantity(quantity); err != nil {
		return inventory.CostResult{}, err
	}
	var res inventory.CostResult
	err := e.tx.Run(ctx, func(ctx context.Context, items repository.ItemRepository, movements repository.MovementRepository) error {
		item, err := items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		history, err := movements.ListByItem(ctx, item.ID, nil)
		if err != nil {
			return err
		}
		res, err = costOutput(item, history, quantity)
		return err
	})
	return res, err
}

// GetMovement obtiene un movimiento por ID.
func (e *MovementEngine) GetMovement(ctx context.Context, id string) (*entity.Movement, error) {
	var mov *entity.Movement
	err := e.tx.Run(ctx, func(ctx context.Context, _ repository.ItemRepository, movements repository.MovementRepository) error {
		m, err := movements.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		mov = m
		return nil
	})
	return mov, err
}

// ListMovements lista movimientos según el filtro, en orden de creación.
func (e *MovementEngine) ListMovements(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	if f.Kind != "" && !f.Kind.IsValid() {
		return nil, domain.InvalidInputf("tipo de movimiento %q inválido", string(f.Kind))
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, domain.InvalidInputf("rango de fechas inválido")
	}
	if f.Offset < 0 {
		return nil, domain.InvalidInputf("offset negativo")
	}
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultListLimit
	case f.Limit > MaxListLimit:
		f.Limit = MaxListLimit
	}

	var list []*entity.Movement
	err := e.tx.Run(ctx, func(ctx context.Context, _ repository.ItemRepository, movements repository.MovementRepository) error {
		var err error
		list, err = movements.List(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*entity.Movement{}
	}
	return list, nil
}

// costOutput valida existencias (Σ INPUT − Σ OUTPUT) y aplica la estrategia del ítem.
func costOutput(item *entity.Item, history []*entity.Movement, quantity int64) (inventory.CostResult, error) {
	available := inventory.Available(history)
	if available < quantity {
		return inventory.CostResult{}, &domain.InsufficientStockError{
			ItemID:    item.ID,
			Requested: quantity,
			Available: max(available, 0),
		}
	}
	strategy, err := inventory.ForMethod(item.CostingMethod)
	if err != nil {
		return inventory.CostResult{}, err
	}
	lots, consumed := inventory.LotsFrom(history)
	res, err := strategy.Cost(lots, consumed, quantity)
	if err != nil {
		var ise *domain.InsufficientStockError
		if errors.As(err, &ise) {
			ise.ItemID = item.ID
		}
		return inventory.CostResult{}, err
	}
	return res, nil
}

// lockItem bloquea la fila del ítem hasta el fin de la transacción.
func lockItem(ctx context.Context, items repository.ItemRepository, itemID string) (*entity.Item, error) {
	if itemID == "" {
		return nil, domain.InvalidInputf("item_id requerido")
	}
	item, err := items.GetForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// nextTimestamp asigna un CreatedAt estrictamente mayor al último movimiento del ítem.
// Debe llamarse con el ítem bloqueado.
func (e *MovementEngine) nextTimestamp(ctx context.Context, movements repository.MovementRepository, itemID string) (time.Time, error) {
	now := e.now().UTC().Truncate(time.Microsecond)
	latest, err := movements.Latest(ctx, itemID)
	if err != nil {
		return time.Time{}, err
	}
	if latest != nil && !now.After(latest.CreatedAt) {
		now = latest.CreatedAt.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return now, nil
}

// checkCapacity rechaza una entrada que desbordaría las existencias del ítem.
func checkCapacity(ctx context.Context, movements repository.MovementRepository, itemID string, quantity int64) error {
	history, err := movements.ListByItem(ctx, itemID, nil)
	if err != nil {
		return err
	}
	if available := inventory.Available(history); inventory.ExceedsCapacity(available, quantity) {
		return domain.InvalidInputf("quantity %d excede la capacidad del ítem (existencias %d)", quantity, available)
	}
	return nil
}

func validateQuantity(q int64) error {
	if q <= 0 {
		return domain.InvalidInputf("quantity debe ser mayor que cero (recibido %d)", q)
	}
	return nil
}

// validateMoney exige montos no negativos, menores que MaxMoney y con a lo sumo MoneyScale decimales.
func validateMoney(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return domain.InvalidInputf("%s no puede ser negativo", field)
	}
	if d.GreaterThanOrEqual(inventory.MaxMoney) {
		return domain.InvalidInputf("%s excede el monto máximo permitido", field)
	}
	if !d.Equal(d.Truncate(inventory.MoneyScale)) {
		return domain.InvalidInputf("%s admite máximo %d decimales", field, inventory.MoneyScale)
	}
	return nil
}

package inventory_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testUserID = "00000000-0000-0000-0000-000000000001"

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

// recordingCache registra los ítems invalidados.
type recordingCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *recordingCache) Fetch(ctx context.Context, _ string, load appinventory.ValuationLoader) (entity.Valuation, error) {
	return load(ctx)
}

func (c *recordingCache) Invalidate(_ context.Context, ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, ids...)
}

type fixture struct {
	store    *memory.Store
	engine   *appinventory.MovementEngine
	reporter *appinventory.ValuationReporter
	cache    *recordingCache
}

// newFixture crea un store en memoria con un ítem por método de costeo.
// El reloj es fijo: los timestamps monotónicos los garantiza el motor.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	err := store.Run(context.Background(), func(ctx context.Context, items repository.ItemRepository, _ repository.MovementRepository) error {
		if err := items.Create(ctx, &entity.Item{ID: "fifo", Name: "Tornillo", CostingMethod: entity.CostingFIFO, CreatedAt: fixedNow}); err != nil {
			return err
		}
		return items.Create(ctx, &entity.Item{ID: "wavg", Name: "Tuerca", CostingMethod: entity.CostingWeightedAverage, CreatedAt: fixedNow})
	})
	require.NoError(t, err)

	cache := &recordingCache{}
	return &fixture{
		store: store,
		engine: appinventory.NewMovementEngine(store,
			appinventory.WithCache(cache),
			appinventory.WithClock(func() time.Time { return fixedNow }),
		),
		reporter: appinventory.NewValuationReporter(store, cache, nil),
		cache:    cache,
	}
}

func (f *fixture) input(t *testing.T, itemID string, qty int64, cost string) *entity.Movement {
	t.Helper()
	m, err := f.engine.RecordInput(context.Background(), appinventory.RecordInputCommand{
		ItemID: itemID, Quantity: qty, UnitCost: decimal.RequireFromString(cost), UserID: testUserID,
	})
	require.NoError(t, err, "la entrada debe registrarse")
	return m
}

func (f *fixture) output(itemID string, qty int64) (*entity.Movement, error) {
	return f.engine.RecordOutput(context.Background(), appinventory.RecordOutputCommand{
		ItemID: itemID, Quantity: qty, UserID: testUserID,
	})
}

func (f *fixture) valuation(t *testing.T, itemID string) entity.Valuation {
	t.Helper()
	v, err := f.reporter.Valuation(context.Background(), itemID, nil)
	require.NoError(t, err)
	return v
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "esperado %s, obtenido %s", want, got.String())
}

// ──────────────────────────────────────────────────────────────────────────────
// Entradas y salidas
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordOutput_FIFO(t *testing.T) {
	f := newFixture(t)
	f.input(t, "fifo", 10, "100")
	f.input(t, "fifo", 10, "200")

	out, err := f.output("fifo", 15)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementOutput, out.Kind)
	require.True(t, out.TotalCost.Valid, "la salida debe llevar costo total")
	assertMoney(t, "2000", out.TotalCost.Decimal)
	assert.True(t, out.UnitCost.IsZero())
	assert.Equal(t, testUserID, out.CreatedBy)

	v := f.valuation(t, "fifo")
	assert.Equal(t, int64(5), v.QuantityInStock)
	assertMoney(t, "1000", v.TotalInventoryValue)

	// La siguiente salida parte de los lotes no consumidos.
	out, err = f.output("fifo", 5)
	require.NoError(t, err)
	assertMoney(t, "1000", out.TotalCost.Decimal)
}

func TestRecordOutput_WeightedAverage(t *testing.T) {
	f := newFixture(t)
	f.input(t, "wavg", 10, "100")
	f.input(t, "wavg", 10, "200")

	out, err := f.output("wavg", 15)
	require.NoError(t, err)
	assertMoney(t, "2250", out.TotalCost.Decimal)

	out, err = f.output("wavg", 5)
	require.NoError(t, err)
	assertMoney(t, "750", out.TotalCost.Decimal)

	v := f.valuation(t, "wavg")
	assert.Equal(t, int64(0), v.QuantityInStock)
	assertMoney(t, "0", v.TotalInventoryValue)
}

func TestRecordOutput_InsufficientStockNoModificaLedger(t *testing.T) {
	f := newFixture(t)
	f.input(t, "fifo", 10, "100")
	f.input(t, "fifo", 10, "200")

	_, err := f.output("fifo", 21)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "fifo", ise.ItemID)
	assert.Equal(t, int64(21), ise.Requested)
	assert.Equal(t, int64(20), ise.Available)

	list, err := f.engine.ListMovements(context.Background(), repository.MovementFilter{ItemID: "fifo"})
	require.NoError(t, err)
	assert.Len(t, list, 2, "el ledger no debe cambiar")

	_, err = f.output("wavg", 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "sin entradas no hay existencias")
}

func TestRecordOutput_AgotaExactamente(t *testing.T) {
	f := newFixture(t)
	f.input(t, "fifo", 10, "100")
	f.input(t, "fifo", 10, "200")

	out, err := f.output("fifo", 20)
	require.NoError(t, err)
	assertMoney(t, "3000", out.TotalCost.Decimal)

	_, err = f.output("fifo", 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestRecord_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"entrada cantidad cero", func() error {
			_, err := f.engine.RecordInput(ctx, appinventory.RecordInputCommand{ItemID: "fifo", Quantity: 0, UnitCost: decimal.NewFromInt(1)})
			return err
		}, domain.ErrInvalidInput},
		{"entrada costo negativo", func() error {
			_, err := f.engine.RecordInput(ctx, appinventory.RecordInputCommand{ItemID: "fifo", Quantity: 1, UnitCost: decimal.NewFromInt(-1)})
			return err
		}, domain.ErrInvalidInput},
		{"entrada costo con tres decimales", func() error {
			_, err := f.engine.RecordInput(ctx, appinventory.RecordInputCommand{ItemID: "fifo", Quantity: 1, UnitCost: decimal.RequireFromString("1.005")})
			return err
		}, domain.ErrInvalidInput},
		{"entrada ítem inexistente", func() error {
			_, err := f.engine.RecordInput(ctx, appinventory.RecordInputCommand{ItemID: "nope", Quantity: 1, UnitCost: decimal.NewFromInt(1)})
			return err
		}, domain.ErrNotFound},
		{"salida cantidad negativa", func() error {
			_, err := f.output("fifo", -2)
			return err
		}, domain.ErrInvalidInput},
		{"salida ítem inexistente", func() error {
			_, err := f.output("nope", 1)
			return err
		}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}
}

func TestRecord_TimestampsMonotonicos(t *testing.T) {
	f := newFixture(t)
	a := f.input(t, "fifo", 1, "1")
	b := f.input(t, "fifo", 1, "1")
	c, err := f.output("fifo", 1)
	require.NoError(t, err)

	assert.True(t, b.CreatedAt.After(a.CreatedAt), "con reloj fijo el motor debe avanzar 1µs")
	assert.True(t, c.CreatedAt.After(b.CreatedAt))
	assert.Equal(t, time.Microsecond, b.CreatedAt.Sub(a.CreatedAt))
}

func TestRecord_InvalidaCache(t *testing.T) {
	f := newFixture(t)
	f.input(t, "fifo", 3, "10")
	_, err := f.output("fifo", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"fifo", "fifo"}, f.cache.invalidated)

	_, _ = f.output("fifo", 50)
	assert.Len(t, f.cache.invalidated, 2, "una salida rechazada no invalida la caché")
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordOutput_ConcurrentesPorTodoElStock(t *testing.T) {
	f := newFixture(t)
	f.input(t, "fifo", 10, "100")

	var (
		wg       sync.WaitGroup
		start    = make(chan struct{})
		errs     = make([]error, 2)
		attempts = len(errs)
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.output("fifo", 10)
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactamente una salida debe registrarse")
	assert.Equal(t, 1, rejected, "la otra debe fallar por stock insuficiente")
	assert.Equal(t, int64(0), f.valuation(t, "fifo").QuantityInStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Vista previa
// ──────────────────────────────────────────────────────────────────────────────

func TestPreviewOutputCost(t *testing.T) {
	f := newFixture(t)
	f.input(t, "fifo", 10, "100")
	f.input(t, "fifo", 10, "200")

	res, err := f.engine.PreviewOutputCost(context.Background(), "fifo", 15)
	require.NoError(t, err)
	assertMoney(t, "2000", res.TotalCost)
	assert.Len(t, res.Trace, 2)

	list, err := f.engine.ListMovements(context.Background(), repository.MovementFilter{ItemID: "fifo"})
	require.NoError(t, err)
	assert.Len(t, list, 2, "la vista previa no escribe en el ledger")

	_, err = f.engine.PreviewOutputCost(context.Background(), "fifo", 25)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	_, err = f.engine.PreviewOutputCost(context.Background(), "nope", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestListMovements_Filtros(t *testing.T) {
	f := newFixture(t)
	f.input(t, "fifo", 5, "1")
	f.input(t, "wavg", 5, "1")
	_, err := f.output("fifo", 2)
	require.NoError(t, err)

	ctx := context.Background()
	outs, err := f.engine.ListMovements(ctx, repository.MovementFilter{Kind: entity.MovementOutput})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, "fifo", outs[0].ItemID)

	_, err = f.engine.ListMovements(ctx, repository.MovementFilter{Kind: "TRANSFER"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	from := fixedNow.Add(time.Hour)
	to := fixedNow
	_, err = f.engine.ListMovements(ctx, repository.MovementFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := f.engine.GetMovement(ctx, outs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, outs[0].ID, got.ID)

	_, err = f.engine.GetMovement(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Operaciones administrativas
// ──────────────────────────────────────────────────────────────────────────────

func TestAdmin_CreateOmiteValidacionDeStock(t *testing.T) {
	f := newFixture(t)
	total := decimal.NewFromInt(50)

	m, err := f.engine.CreateMovement(context.Background(), appinventory.CreateMovementCommand{
		ItemID: "fifo", Kind: entity.MovementOutput, Quantity: 5, TotalCost: &total, UserID: testUserID,
	})
	require.NoError(t, err, "la creación administrativa no valida existencias")
	assert.True(t, m.TotalCost.Valid)

	v := f.valuation(t, "fifo")
	assert.Equal(t, int64(-5), v.QuantityInStock)
	assertMoney(t, "-50", v.TotalInventoryValue)

	_, err = f.engine.CreateMovement(context.Background(), appinventory.CreateMovementCommand{
		ItemID: "fifo", Kind: "ADJUSTMENT", Quantity: 5,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la validación estructural se mantiene")
}

func TestAdmin_UpdateNoRecalculaSalidas(t *testing.T) {
	f := newFixture(t)
	in := f.input(t, "fifo", 10, "100")
	out, err := f.output("fifo", 5)
	require.NoError(t, err)

	newCost := decimal.NewFromInt(300)
	upd, err := f.engine.UpdateMovement(context.Background(), in.ID, appinventory.UpdateMovementCommand{UnitCost: &newCost})
	require.NoError(t, err)
	assertMoney(t, "300", upd.UnitCost)

	stored, err := f.engine.GetMovement(context.Background(), out.ID)
	require.NoError(t, err)
	assertMoney(t, "500", stored.TotalCost.Decimal)

	v := f.valuation(t, "fifo")
	assertMoney(t, "2500", v.TotalInventoryValue)

	bad := int64(0)
	_, err = f.engine.UpdateMovement(context.Background(), in.ID, appinventory.UpdateMovementCommand{Quantity: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.engine.UpdateMovement(context.Background(), "nope", appinventory.UpdateMovementCommand{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdmin_UpdateCambiaItem(t *testing.T) {
	f := newFixture(t)
	in := f.input(t, "fifo", 10, "100")

	target := "wavg"
	upd, err := f.engine.UpdateMovement(context.Background(), in.ID, appinventory.UpdateMovementCommand{ItemID: &target})
	require.NoError(t, err)
	assert.Equal(t, "wavg", upd.ItemID)
	assert.Contains(t, f.cache.invalidated, "fifo")
	assert.Contains(t, f.cache.invalidated, "wavg")

	missing := "nope"
	_, err = f.engine.UpdateMovement(context.Background(), in.ID, appinventory.UpdateMovementCommand{ItemID: &missing})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdmin_Delete(t *testing.T) {
	f := newFixture(t)
	in := f.input(t, "fifo", 10, "100")

	require.NoError(t, f.engine.DeleteMovement(context.Background(), in.ID, testUserID))
	assert.Equal(t, int64(0), f.valuation(t, "fifo").QuantityInStock)
	assert.ErrorIs(t, f.engine.DeleteMovement(context.Background(), in.ID, testUserID), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Límites numéricos
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordInput_RechazaDesbordeDeExistencias(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.input(t, "fifo", math.MaxInt64, "1")

	_, err := f.engine.RecordInput(ctx, appinventory.RecordInputCommand{
		ItemID: "fifo", Quantity: 1, UnitCost: decimal.NewFromInt(1), UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la entrada desbordaría las existencias")

	_, err = f.engine.CreateMovement(ctx, appinventory.CreateMovementCommand{
		ItemID: "fifo", Kind: entity.MovementInput, Quantity: 1, UnitCost: decimal.NewFromInt(1), UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el alta administrativa tampoco puede desbordar")

	v := f.valuation(t, "fifo")
	assert.Equal(t, int64(math.MaxInt64), v.QuantityInStock, "el ledger no cambia")

	out, err := f.output("fifo", 5)
	require.NoError(t, err, "el ítem sigue operativo")
	assertMoney(t, "5", out.TotalCost.Decimal)
	assert.Equal(t, int64(math.MaxInt64-5), f.valuation(t, "fifo").QuantityInStock)

	// Con espacio libre la entrada vuelve a aceptarse.
	f.input(t, "fifo", 5, "1")
}

func TestRecord_MontosFueraDeRango(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.RecordInput(ctx, appinventory.RecordInputCommand{
		ItemID: "wavg", Quantity: 1, UnitCost: inventory.MaxMoney, UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "unit_cost debe ser menor que el máximo")

	// 9e35 es válido como costo unitario, pero una salida de 2 unidades costaría 1.8e36.
	f.input(t, "wavg", 10, "900000000000000000000000000000000000")
	_, err = f.output("wavg", 2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "total_cost fuera de rango se rechaza antes de escribir")

	v := f.valuation(t, "wavg")
	assert.Equal(t, int64(10), v.QuantityInStock, "la salida rechazada no se registra")

	out, err := f.output("wavg", 1)
	require.NoError(t, err)
	assertMoney(t, "900000000000000000000000000000000000", out.TotalCost.Decimal)
}

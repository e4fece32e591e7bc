package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var tracer = otel.Tracer("warehouse-ledger/postgres")

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED).
// La serialización por ítem la da el SELECT ... FOR UPDATE sobre items.
type TxRunner struct {
	pool             *pgxpool.Pool
	statementTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. statementTimeout <= 0 desactiva el límite.
func NewTxRunner(pool *pgxpool.Pool, statementTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, statementTimeout: statementTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	items repository.ItemRepository,
	movements repository.MovementRepository,
) error) (err error) {
	ctx, span := tracer.Start(ctx, "ledger.transaction",
		trace.WithAttributes(attribute.String("tx.isolation", string(pgx.ReadCommitted))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return storageError("begin transaction", err)
	}
	// Rollback con contexto propio: debe completarse aunque ctx esté cancelado.
	defer func() { _ = tx.Rollback(context.Background()) }()

	if r.statementTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", r.statementTimeout.Milliseconds())); err != nil {
			return storageError("set statement_timeout", err)
		}
	}

	if err := fn(ctx, NewItemRepository(tx), NewMovementRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storageError("commit transaction", err)
	}
	return nil
}

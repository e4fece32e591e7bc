// Package sqlite implementa el Ledger Store sobre SQLite (modo embebido / desarrollo).
//
// Los montos se guardan como TEXT (representación exacta de shopspring/decimal) y los
// timestamps como INTEGER en nanosegundos Unix, que preservan el orden de creación.
// Las transacciones abren con BEGIN IMMEDIATE (_txlock=immediate): hay un único escritor
// a la vez y los demás esperan hasta _busy_timeout.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

const dsnOptions = "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"

// Store Ledger Store SQLite.
type Store struct {
	db *sql.DB
}

// New abre (o crea) la base en path y aplica el esquema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	if path == ":memory:" {
		// Cada conexión de :memory: es una base distinta.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrar sqlite: %w", err)
	}
	return s, nil
}

// Close cierra la base.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL UNIQUE,
		costing_method TEXT NOT NULL CHECK (costing_method IN ('FIFO', 'WEIGHTED_AVERAGE')),
		created_at     INTEGER NOT NULL,
		updated_at     INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS movements (
		id         TEXT PRIMARY KEY,
		item_id    TEXT NOT NULL REFERENCES items (id) ON DELETE CASCADE,
		kind       TEXT NOT NULL CHECK (kind IN ('INPUT', 'OUTPUT')),
		quantity   INTEGER NOT NULL CHECK (quantity > 0),
		unit_cost  TEXT NOT NULL DEFAULT '0',
		total_cost TEXT,
		created_at INTEGER NOT NULL,
		created_by TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_movements_item_created
		ON movements (item_id, created_at, id);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Run ejecuta fn dentro de una transacción (BEGIN IMMEDIATE) con repos atados a ella.
func (s *Store) Run(ctx context.Context, fn func(
	ctx context.Context,
	items repository.ItemRepository,
	movements repository.MovementRepository,
) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, &itemRepo{q: tx}, newMovementRepo(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageError("commit transaction", err)
	}
	return nil
}

// querier lo implementan *sql.DB y *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func sqliteCode(err error) (sqlite3.ErrNo, sqlite3.ErrNoExtended, bool) {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code, se.ExtendedCode, true
	}
	return 0, 0, false
}

func isUniqueViolation(err error) bool {
	_, ext, ok := sqliteCode(err)
	return ok && (ext == sqlite3.ErrConstraintUnique || ext == sqlite3.ErrConstraintPrimaryKey)
}

func isForeignKeyViolation(err error) bool {
	_, ext, ok := sqliteCode(err)
	return ok && ext == sqlite3.ErrConstraintForeignKey
}

// storageError envuelve el error como *domain.StorageError; SQLITE_BUSY/LOCKED son reintentables.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.StorageError
	if errors.As(err, &de) {
		return err
	}
	code, _, ok := sqliteCode(err)
	retryable := ok && (code == sqlite3.ErrBusy || code == sqlite3.ErrLocked)
	return &domain.StorageError{Op: op, Err: err, Retryable: retryable}
}

func rowsAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageError(op, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

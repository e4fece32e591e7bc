package repository

import (
	"context"
	"time"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// MovementFilter filtros para listar movimientos. Campos vacíos no filtran.
type MovementFilter struct {
	ItemID string
	Kind   entity.MovementKind
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// MovementRepository define el puerto de persistencia del ledger de movimientos.
type MovementRepository interface {
	// Create agrega un movimiento al ledger.
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
	// ListByItem devuelve los movimientos del ítem en orden de creación ascendente.
	// Si asOf no es nil solo incluye los creados hasta ese instante (inclusive).
	ListByItem(ctx context.Context, itemID string, asOf *time.Time) ([]*entity.Movement, error)
	// Latest devuelve el último movimiento del ítem o nil.
	Latest(ctx context.Context, itemID string) (*entity.Movement, error)
	Update(ctx context.Context, movement *entity.Movement) error
	Delete(ctx context.Context, id string) error
}

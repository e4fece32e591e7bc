package repository

import (
	"context"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para Item (DIP).
// Las lecturas devuelven (nil, nil) cuando el ítem no existe; Update/Delete devuelven domain.ErrNotFound.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetByName(ctx context.Context, name string) (*entity.Item, error)
	// GetForUpdate bloquea el ítem hasta el fin de la transacción (serializa movimientos del ítem).
	GetForUpdate(ctx context.Context, id string) (*entity.Item, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	// Delete elimina el ítem y sus movimientos (cascada).
	Delete(ctx context.Context, id string) error
}

package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

// Las operaciones administrativas corrigen el ledger sin validar existencias ni recalcular
// costos de salidas posteriores. Solo validan estructura y quedan registradas en WARN.

// CreateMovementCommand entrada de CreateMovement.
type CreateMovementCommand struct {
	ItemID    string
	Kind      entity.MovementKind
	Quantity  int64
	UnitCost  decimal.Decimal
	TotalCost *decimal.Decimal
	UserID    string
}

// UpdateMovementCommand actualización parcial: solo se aplican los campos no nulos.
type UpdateMovementCommand struct {
	ItemID    *string
	Kind      *entity.MovementKind
	Quantity  *int64
	UnitCost  *decimal.Decimal
	TotalCost *decimal.Decimal
	UserID    string
}

// CreateMovement agrega un movimiento sin validar existencias ni costear.
func (e *MovementEngine) CreateMovement(ctx context.Context, cmd CreateMovementCommand) (*entity.Movement, error) {
	mov := &entity.Movement{
		ID:        uuid.New().String(),
		ItemID:    cmd.ItemID,
		Kind:      cmd.Kind,
		Quantity:  cmd.Quantity,
		UnitCost:  cmd.UnitCost,
		CreatedBy: cmd.UserID,
	}
	if cmd.TotalCost != nil {
		mov.TotalCost = decimal.NewNullDecimal(*cmd.TotalCost)
	}
	if err := validateStructure(mov); err != nil {
		return nil, err
	}

	err := e.tx.Run(ctx, func(ctx context.Context, items repository.ItemRepository, movements repository.MovementRepository) error {
		item, err := lockItem(ctx, items, mov.ItemID)
		if err != nil {
			return err
		}
		if mov.Kind == entity.MovementInput {
			if err := checkCapacity(ctx, movements, item.ID, mov.Quantity); err != nil {
				return err
			}
		}
		mov.CreatedAt, err = e.nextTimestamp(ctx, movements, item.ID)
		if err != nil {
			return err
		}
		return movements.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}

	e.cache.Invalidate(ctx, mov.ItemID)
	e.log.Warn().
		Str("movement_id", mov.ID).
		Str("item_id", mov.ItemID).
		Str("kind", string(mov.Kind)).
		Int64("quantity", mov.Quantity).
		Str("user_id", cmd.UserID).
		Msg("movimiento creado por administración sin validar existencias")
	return mov, nil
}

// UpdateMovement modifica un movimiento existente. No recalcula salidas posteriores.
func (e *MovementEngine) UpdateMovement(ctx context.Context, id string, cmd UpdateMovementCommand) (*entity.Movement, error) {
	var (
		mov       *entity.Movement
		oldItemID string
	)
	err := e.tx.Run(ctx, func(ctx context.Context, items repository.ItemRepository, movements repository.MovementRepository) error {
		m, err := movements.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		oldItemID = m.ItemID

		if cmd.ItemID != nil && *cmd.ItemID != m.ItemID {
			item, err := lockItem(ctx, items, *cmd.ItemID)
			if err != nil {
				return err
			}
			m.ItemID = item.ID
		}
		if cmd.Kind != nil {
			m.Kind = *cmd.Kind
		}
		if cmd.Quantity != nil {
			m.Quantity = *cmd.Quantity
		}
		if cmd.UnitCost != nil {
			m.UnitCost = *cmd.UnitCost
		}
		if cmd.TotalCost != nil {
			m.TotalCost = decimal.NewNullDecimal(*cmd.TotalCost)
		}
		if err := validateStructure(m); err != nil {
			return err
		}
		mov = m
		return movements.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	e.cache.Invalidate(ctx, oldItemID, mov.ItemID)
	e.log.Warn().
		Str("movement_id", mov.ID).
		Str("item_id", mov.ItemID).
		Str("user_id", cmd.UserID).
		Msg("movimiento modificado por administración; costos posteriores no recalculados")
	return mov, nil
}

// DeleteMovement elimina un movimiento sin validar el ledger resultante.
func (e *MovementEngine) DeleteMovement(ctx context.Context, id, userID string) error {
	var itemID string
	err := e.tx.Run(ctx, func(ctx context.Context, _ repository.ItemRepository, movements repository.MovementRepository) error {
		m, err := movements.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		itemID = m.ItemID
		return movements.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	e.cache.Invalidate(ctx, itemID)
	e.log.Warn().
		Str("movement_id", id).
		Str("item_id", itemID).
		Str("user_id", userID).
		Msg("movimiento eliminado por administración")
	return nil
}

func validateStructure(m *entity.Movement) error {
	if m.ItemID == "" {
		return domain.InvalidInputf("item_id requerido")
	}
	if !m.Kind.IsValid() {
		return domain.InvalidInputf("tipo de movimiento %q inválido", string(m.Kind))
	}
	if err := validateQuantity(m.Quantity); err != nil {
		return err
	}
	if err := validateMoney("unit_cost", m.UnitCost); err != nil {
		return err
	}
	if m.TotalCost.Valid {
		if err := validateMoney("total_cost", m.TotalCost.Decimal); err != nil {
			return err
		}
	}
	return nil
}

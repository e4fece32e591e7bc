package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, s *memory.Store) {
	t.Helper()
	err := s.Run(context.Background(), func(ctx context.Context, items repository.ItemRepository, movs repository.MovementRepository) error {
		require.NoError(t, items.Create(ctx, &entity.Item{ID: "item-1", Name: "Tornillo", CostingMethod: entity.CostingFIFO, CreatedAt: t0}))
		require.NoError(t, items.Create(ctx, &entity.Item{ID: "item-2", Name: "Tuerca", CostingMethod: entity.CostingWeightedAverage, CreatedAt: t0.Add(time.Second)}))
		for i, q := range []int64{10, 5, 7} {
			require.NoError(t, movs.Create(ctx, &entity.Movement{
				ID:        string(rune('a' + i)),
				ItemID:    "item-1",
				Kind:      entity.MovementInput,
				Quantity:  q,
				UnitCost:  decimal.NewFromInt(100),
				CreatedAt: t0.Add(time.Duration(i) * time.Minute),
			}))
		}
		return nil
	})
	require.NoError(t, err)
}

func TestStore_RollbackEnError(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)
	boom := errors.New("boom")

	err := s.Run(context.Background(), func(ctx context.Context, items repository.ItemRepository, movs repository.MovementRepository) error {
		require.NoError(t, movs.Create(ctx, &entity.Movement{ID: "z", ItemID: "item-1", Kind: entity.MovementOutput, Quantity: 1, CreatedAt: t0.Add(time.Hour)}))
		require.NoError(t, items.Delete(ctx, "item-2"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_ = s.Run(context.Background(), func(ctx context.Context, items repository.ItemRepository, movs repository.MovementRepository) error {
		m, err := movs.GetByID(ctx, "z")
		require.NoError(t, err)
		assert.Nil(t, m, "el movimiento de la tx fallida no debe persistir")
		it, err := items.GetByID(ctx, "item-2")
		require.NoError(t, err)
		assert.NotNil(t, it, "el borrado de la tx fallida no debe persistir")
		return nil
	})
}

func TestStore_ListByItemOrdenYAsOf(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)

	_ = s.Run(context.Background(), func(ctx context.Context, _ repository.ItemRepository, movs repository.MovementRepository) error {
		all, err := movs.ListByItem(ctx, "item-1", nil)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})

		cut := t0.Add(time.Minute)
		upTo, err := movs.ListByItem(ctx, "item-1", &cut)
		require.NoError(t, err)
		assert.Len(t, upTo, 2, "as_of incluye movimientos creados exactamente en el corte")

		latest, err := movs.Latest(ctx, "item-1")
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, "c", latest.ID)

		none, err := movs.Latest(ctx, "item-2")
		require.NoError(t, err)
		assert.Nil(t, none)
		return nil
	})
}

func TestStore_FiltroYPaginacion(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)

	_ = s.Run(context.Background(), func(ctx context.Context, _ repository.ItemRepository, movs repository.MovementRepository) error {
		list, err := movs.List(ctx, repository.MovementFilter{ItemID: "item-1", Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "b", list[0].ID)

		list, err = movs.List(ctx, repository.MovementFilter{Kind: entity.MovementOutput})
		require.NoError(t, err)
		assert.Empty(t, list)
		return nil
	})
}

func TestStore_NombreDuplicadoYCascada(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)

	err := s.Run(context.Background(), func(ctx context.Context, items repository.ItemRepository, _ repository.MovementRepository) error {
		return items.Create(ctx, &entity.Item{ID: "item-3", Name: "Tornillo", CostingMethod: entity.CostingFIFO})
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	err = s.Run(context.Background(), func(ctx context.Context, items repository.ItemRepository, movs repository.MovementRepository) error {
		if err := items.Delete(ctx, "item-1"); err != nil {
			return err
		}
		left, err := movs.ListByItem(ctx, "item-1", nil)
		require.NoError(t, err)
		assert.Empty(t, left, "borrar el ítem elimina sus movimientos")
		return nil
	})
	require.NoError(t, err)

	err = s.Run(context.Background(), func(ctx context.Context, items repository.ItemRepository, _ repository.MovementRepository) error {
		return items.Delete(ctx, "item-1")
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

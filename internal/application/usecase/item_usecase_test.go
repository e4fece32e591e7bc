package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/usecase"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
)

func ptr[T any](v T) *T { return &v }

func newItemUseCase() *usecase.ItemUseCase {
	return usecase.NewItemUseCase(memory.NewStore(), nil)
}

func TestItemUseCase_Create(t *testing.T) {
	uc := newItemUseCase()
	ctx := context.Background()

	it, err := uc.Create(ctx, dto.CreateItemRequest{Name: "Tornillo", CostingMethod: "fifo"})
	require.NoError(t, err)
	assert.NotEmpty(t, it.ID)
	assert.Equal(t, "FIFO", it.CostingMethod, "el alias se normaliza al nombre canónico")

	it, err = uc.Create(ctx, dto.CreateItemRequest{Name: "Tuerca", CostingMethod: "weighted_mean"})
	require.NoError(t, err)
	assert.Equal(t, "WEIGHTED_AVERAGE", it.CostingMethod)

	_, err = uc.Create(ctx, dto.CreateItemRequest{Name: "Tornillo", CostingMethod: "FIFO"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.CreateItemRequest{Name: "Arandela", CostingMethod: "LIFO"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateItemRequest{Name: "   ", CostingMethod: "FIFO"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestItemUseCase_UpdateGetDelete(t *testing.T) {
	uc := newItemUseCase()
	ctx := context.Background()

	a, err := uc.Create(ctx, dto.CreateItemRequest{Name: "Tornillo", CostingMethod: "FIFO"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateItemRequest{Name: "Tuerca", CostingMethod: "FIFO"})
	require.NoError(t, err)

	upd, err := uc.Update(ctx, a.ID, dto.UpdateItemRequest{CostingMethod: ptr("WEIGHTED_AVERAGE")})
	require.NoError(t, err)
	assert.Equal(t, "WEIGHTED_AVERAGE", upd.CostingMethod)
	assert.Equal(t, "Tornillo", upd.Name)

	_, err = uc.Update(ctx, a.ID, dto.UpdateItemRequest{Name: ptr("Tuerca")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Update(ctx, "nope", dto.UpdateItemRequest{Name: ptr("X")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := uc.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "WEIGHTED_AVERAGE", got.CostingMethod)

	list, err := uc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)

	require.NoError(t, uc.Delete(ctx, a.ID))
	_, err = uc.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, a.ID), domain.ErrNotFound)
}

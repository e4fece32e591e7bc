package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	appinventory "github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

// ItemUseCase casos de uso CRUD para ítems. Existencias y costo se derivan del ledger.
type ItemUseCase struct {
	tx    appinventory.TxRunner
	cache appinventory.ValuationCache
	now   func() time.Time
}

// NewItemUseCase construye el caso de uso. cache es opcional.
func NewItemUseCase(tx appinventory.TxRunner, cache appinventory.ValuationCache) *ItemUseCase {
	if cache == nil {
		cache = appinventory.NoCache{}
	}
	return &ItemUseCase{tx: tx, cache: cache, now: time.Now}
}

// Create crea un ítem con nombre único.
func (uc *ItemUseCase) Create(ctx context.Context, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.InvalidInputf("name requerido")
	}
	method, ok := entity.ParseCostingMethod(in.CostingMethod)
	if !ok {
		return nil, domain.InvalidInputf("método de costeo %q inválido", in.CostingMethod)
	}

	now := uc.now().UTC().Truncate(time.Microsecond)
	item := &entity.Item{
		ID:            uuid.New().String(),
		Name:          name,
		CostingMethod: method,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := uc.tx.Run(ctx, func(ctx context.Context, items repository.ItemRepository, _ repository.MovementRepository) error {
		existing, err := items.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		return items.Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetByID obtiene un ítem por ID.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	var item *entity.Item
	err := uc.tx.Run(ctx, func(ctx context.Context, items repository.ItemRepository, _ repository.MovementRepository) error {
		var err error
		item, err = items.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return toItemResponse(item), nil
}

// Update renombra el ítem o cambia su método de costeo (no retroactivo).
func (uc *ItemUseCase) Update(ctx context.Context, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	var item *entity.Item
	err := uc.tx.Run(ctx, func(ctx context.Context, items repository.ItemRepository, _ repository.MovementRepository) error {
		current, err := items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return domain.InvalidInputf("name requerido")
			}
			if name != current.Name {
				other, err := items.GetByName(ctx, name)
				if err != nil {
					return err
				}
				if other != nil {
					return domain.ErrDuplicate
				}
			}
			current.Name = name
		}
		if in.CostingMethod != nil {
			method, ok := entity.ParseCostingMethod(*in.CostingMethod)
			if !ok {
				return domain.InvalidInputf("método de costeo %q inválido", *in.CostingMethod)
			}
			current.CostingMethod = method
		}
		current.UpdatedAt = uc.now().UTC().Truncate(time.Microsecond)
		item = current
		return items.Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// List lista ítems con paginación.
func (uc *ItemUseCase) List(ctx context.Context, limit, offset int) (*dto.ItemListResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var list []*entity.Item
	err := uc.tx.Run(ctx, func(ctx context.Context, items repository.ItemRepository, _ repository.MovementRepository) error {
		var err error
		list, err = items.List(ctx, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, *toItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: out,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina el ítem y en cascada todos sus movimientos.
func (uc *ItemUseCase) Delete(ctx context.Context, id string) error {
	err := uc.tx.Run(ctx, func(ctx context.Context, items repository.ItemRepository, _ repository.MovementRepository) error {
		return items.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.cache.Invalidate(ctx, id)
	return nil
}

func toItemResponse(it *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:            it.ID,
		Name:          it.Name,
		CostingMethod: it.CostingMethod.String(),
		CreatedAt:     it.CreatedAt,
		UpdatedAt:     it.UpdatedAt,
	}
}

// Package memory implementa el Ledger Store en memoria (tests y desarrollo).
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

// Store guarda ítems y movimientos en mapas protegidos por un único mutex.
// Cada unidad de trabajo trabaja sobre una copia del estado que solo se publica si fn no falla.
type Store struct {
	mu    sync.Mutex
	state state
}

type storedMovement struct {
	m   entity.Movement
	seq int64
}

type state struct {
	items     map[string]entity.Item
	movements map[string]storedMovement
	seq       int64
}

func (s state) clone() state {
	return state{
		items:     maps.Clone(s.items),
		movements: maps.Clone(s.movements),
		seq:       s.seq,
	}
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{state: state{
		items:     make(map[string]entity.Item),
		movements: make(map[string]storedMovement),
	}}
}

// Run ejecuta fn con el store bloqueado (serializa todas las unidades de trabajo).
// Si fn devuelve error los cambios se descartan.
func (s *Store) Run(ctx context.Context, fn func(
	ctx context.Context,
	items repository.ItemRepository,
	movements repository.MovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.state.clone()
	if err := fn(ctx, &itemRepo{st: &work}, &movementRepo{st: &work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// ─── Items ───────────────────────────────────────────────────────────────────

type itemRepo struct {
	st *state
}

func (r *itemRepo) Create(_ context.Context, item *entity.Item) error {
	if _, ok := r.st.items[item.ID]; ok {
		return domain.ErrDuplicate
	}
	if r.nameTaken(item.Name, "") {
		return domain.ErrDuplicate
	}
	r.st.items[item.ID] = *item
	return nil
}

func (r *itemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	it, ok := r.st.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *itemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *itemRepo) GetByName(_ context.Context, name string) (*entity.Item, error) {
	for _, it := range r.st.items {
		if it.Name == name {
			return &it, nil
		}
	}
	return nil, nil
}

func (r *itemRepo) List(_ context.Context, limit, offset int) ([]*entity.Item, error) {
	all := make([]entity.Item, 0, len(r.st.items))
	for _, it := range r.st.items {
		all = append(all, it)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	out := make([]*entity.Item, 0, limit)
	for _, it := range page(all, limit, offset) {
		out = append(out, &it)
	}
	return out, nil
}

func (r *itemRepo) Update(_ context.Context, item *entity.Item) error {
	if _, ok := r.st.items[item.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.nameTaken(item.Name, item.ID) {
		return domain.ErrDuplicate
	}
	r.st.items[item.ID] = *item
	return nil
}

// Delete elimina el ítem y en cascada sus movimientos.
func (r *itemRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.st.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.st.items, id)
	for mid, sm := range r.st.movements {
		if sm.m.ItemID == id {
			delete(r.st.movements, mid)
		}
	}
	return nil
}

func (r *itemRepo) nameTaken(name, exceptID string) bool {
	for id, it := range r.st.items {
		if id != exceptID && it.Name == name {
			return true
		}
	}
	return false
}

// ─── Movements ───────────────────────────────────────────────────────────────

type movementRepo struct {
	st *state
}

func (r *movementRepo) Create(_ context.Context, m *entity.Movement) error {
	if _, ok := r.st.movements[m.ID]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := r.st.items[m.ItemID]; !ok {
		return domain.ErrNotFound
	}
	r.st.seq++
	r.st.movements[m.ID] = storedMovement{m: *m, seq: r.st.seq}
	return nil
}

func (r *movementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	sm, ok := r.st.movements[id]
	if !ok {
		return nil, nil
	}
	return &sm.m, nil
}

func (r *movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	matched := r.sorted(func(m *entity.Movement) bool {
		if f.ItemID != "" && m.ItemID != f.ItemID {
			return false
		}
		if f.Kind != "" && m.Kind != f.Kind {
			return false
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			return false
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			return false
		}
		return true
	})
	return page(matched, f.Limit, f.Offset), nil
}

func (r *movementRepo) ListByItem(_ context.Context, itemID string, asOf *time.Time) ([]*entity.Movement, error) {
	return r.sorted(func(m *entity.Movement) bool {
		return m.ItemID == itemID && (asOf == nil || !m.CreatedAt.After(*asOf))
	}), nil
}

func (r *movementRepo) Latest(_ context.Context, itemID string) (*entity.Movement, error) {
	list := r.sorted(func(m *entity.Movement) bool { return m.ItemID == itemID })
	if len(list) == 0 {
		return nil, nil
	}
	return list[len(list)-1], nil
}

func (r *movementRepo) Update(_ context.Context, m *entity.Movement) error {
	sm, ok := r.st.movements[m.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.st.items[m.ItemID]; !ok {
		return domain.ErrNotFound
	}
	sm.m = *m
	r.st.movements[m.ID] = sm
	return nil
}

func (r *movementRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.st.movements[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.st.movements, id)
	return nil
}

// sorted devuelve copias de los movimientos que cumplen keep, por CreatedAt y orden de inserción.
func (r *movementRepo) sorted(keep func(*entity.Movement) bool) []*entity.Movement {
	list := make([]storedMovement, 0, len(r.st.movements))
	for _, sm := range r.st.movements {
		if keep(&sm.m) {
			list = append(list, sm)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].m.CreatedAt.Equal(list[j].m.CreatedAt) {
			return list[i].m.CreatedAt.Before(list[j].m.CreatedAt)
		}
		return list[i].seq < list[j].seq
	})
	out := make([]*entity.Movement, len(list))
	for i := range list {
		m := list[i].m
		out[i] = &m
	}
	return out
}

func page[T any](list []T, limit, offset int) []T {
	offset = max(offset, 0)
	if offset >= len(list) {
		return list[:0]
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

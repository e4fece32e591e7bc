package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

var itemColumns = []string{"id", "name", "costing_method", "created_at", "updated_at"}

type itemRow struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	CostingMethod string    `db:"costing_method"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r itemRow) toEntity() *entity.Item {
	return &entity.Item{
		ID:            r.ID,
		Name:          r.Name,
		CostingMethod: entity.CostingMethod(r.CostingMethod),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q       Querier
	builder squirrel.StatementBuilderType
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{
		q:       q,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create persiste un ítem. Nombre repetido → domain.ErrDuplicate.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	sql, args, err := r.builder.Insert("items").
		Columns(itemColumns...).
		Values(item.ID, item.Name, string(item.CostingMethod), item.CreatedAt, item.UpdatedAt).
		ToSql()
	if err != nil {
		return storageError("build create item", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return storageError("create item", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID; nil si no existe.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "get item", r.builder.Select(itemColumns...).From("items").Where(squirrel.Eq{"id": id}))
}

// GetForUpdate obtiene el ítem y bloquea su fila hasta el fin de la tx (SELECT FOR UPDATE).
// Es el candado que serializa los movimientos del ítem.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "get item for update", r.builder.Select(itemColumns...).From("items").Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"))
}

// GetByName obtiene un ítem por nombre exacto.
func (r *ItemRepo) GetByName(ctx context.Context, name string) (*entity.Item, error) {
	return r.getOne(ctx, "get item by name", r.builder.Select(itemColumns...).From("items").Where(squirrel.Eq{"name": name}))
}

// List lista ítems por fecha de creación.
func (r *ItemRepo) List(ctx context.Context, limit, offset int) ([]*entity.Item, error) {
	q := r.builder.Select(itemColumns...).From("items").OrderBy("created_at ASC", "id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, storageError("build list items", err)
	}
	var rows []itemRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, storageError("list items", err)
	}
	out := make([]*entity.Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// Update actualiza nombre, método y updated_at.
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	if !validID(item.ID) {
		return domain.ErrNotFound
	}
	sql, args, err := r.builder.Update("items").
		Set("name", item.Name).
		Set("costing_method", string(item.CostingMethod)).
		Set("updated_at", item.UpdatedAt).
		Where(squirrel.Eq{"id": item.ID}).
		ToSql()
	if err != nil {
		return storageError("build update item", err)
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return storageError("update item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el ítem; los movimientos se borran por ON DELETE CASCADE.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	tag, err := r.q.Exec(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return storageError("delete item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItemRepo) getOne(ctx context.Context, op string, q squirrel.SelectBuilder) (*entity.Item, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, storageError("build "+op, err)
	}
	var row itemRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, storageError(op, err)
	}
	return row.toEntity(), nil
}

package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

var movementColumns = []string{"id", "item_id", "kind", "quantity", "unit_cost", "total_cost", "created_at", "created_by"}

type movementRow struct {
	ID        string              `db:"id"`
	ItemID    string              `db:"item_id"`
	Kind      string              `db:"kind"`
	Quantity  int64               `db:"quantity"`
	UnitCost  decimal.Decimal     `db:"unit_cost"`
	TotalCost decimal.NullDecimal `db:"total_cost"`
	CreatedAt time.Time           `db:"created_at"`
	CreatedBy *string             `db:"created_by"`
}

func (r movementRow) toEntity() *entity.Movement {
	m := &entity.Movement{
		ID:        r.ID,
		ItemID:    r.ItemID,
		Kind:      entity.MovementKind(r.Kind),
		Quantity:  r.Quantity,
		UnitCost:  r.UnitCost,
		TotalCost: r.TotalCost,
		CreatedAt: r.CreatedAt,
	}
	if r.CreatedBy != nil {
		m.CreatedBy = *r.CreatedBy
	}
	return m
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// MovementRepo implementación de MovementRepository sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q       Querier
	builder squirrel.StatementBuilderType
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{
		q:       q,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create agrega un movimiento al ledger. Ítem inexistente → domain.ErrNotFound.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	sql, args, err := r.builder.Insert("movements").
		Columns(movementColumns...).
		Values(m.ID, m.ItemID, string(m.Kind), m.Quantity, m.UnitCost, m.TotalCost, m.CreatedAt, nullableString(m.CreatedBy)).
		ToSql()
	if err != nil {
		return storageError("build create movement", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		switch {
		case isForeignKeyViolation(err):
			return domain.ErrNotFound
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		}
		return storageError("create movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	if !validID(id) {
		return nil, nil
	}
	list, err := r.selectMovements(ctx, "get movement", r.builder.Select(movementColumns...).From("movements").Where(squirrel.Eq{"id": id}))
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// List lista movimientos según el filtro (orden de creación ascendente).
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	if f.ItemID != "" && !validID(f.ItemID) {
		return []*entity.Movement{}, nil
	}
	return r.selectMovements(ctx, "list movements", r.listQuery(f))
}

// listQuery construye el SELECT filtrado de movimientos.
func (r *MovementRepo) listQuery(f repository.MovementFilter) squirrel.SelectBuilder {
	q := r.builder.Select(movementColumns...).From("movements")
	if f.ItemID != "" {
		q = q.Where(squirrel.Eq{"item_id": f.ItemID})
	}
	if f.Kind != "" {
		q = q.Where(squirrel.Eq{"kind": string(f.Kind)})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *f.To})
	}
	q = q.OrderBy("created_at ASC", "id ASC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q
}

// ListByItem devuelve el ledger del ítem en orden de creación, opcionalmente hasta asOf (inclusive).
func (r *MovementRepo) ListByItem(ctx context.Context, itemID string, asOf *time.Time) ([]*entity.Movement, error) {
	if !validID(itemID) {
		return []*entity.Movement{}, nil
	}
	return r.selectMovements(ctx, "list item movements", r.listQuery(repository.MovementFilter{ItemID: itemID, To: asOf}))
}

// Latest devuelve el último movimiento del ítem; nil si no tiene.
func (r *MovementRepo) Latest(ctx context.Context, itemID string) (*entity.Movement, error) {
	if !validID(itemID) {
		return nil, nil
	}
	q := r.builder.Select(movementColumns...).From("movements").
		Where(squirrel.Eq{"item_id": itemID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1)
	list, err := r.selectMovements(ctx, "latest movement", q)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// Update reemplaza los campos editables del movimiento (corrección administrativa).
func (r *MovementRepo) Update(ctx context.Context, m *entity.Movement) error {
	if !validID(m.ID) {
		return domain.ErrNotFound
	}
	sql, args, err := r.builder.Update("movements").
		Set("item_id", m.ItemID).
		Set("kind", string(m.Kind)).
		Set("quantity", m.Quantity).
		Set("unit_cost", m.UnitCost).
		Set("total_cost", m.TotalCost).
		Where(squirrel.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		return storageError("build update movement", err)
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return storageError("update movement", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un movimiento.
func (r *MovementRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	tag, err := r.q.Exec(ctx, "DELETE FROM movements WHERE id = $1", id)
	if err != nil {
		return storageError("delete movement", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MovementRepo) selectMovements(ctx context.Context, op string, q squirrel.SelectBuilder) ([]*entity.Movement, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, storageError("build "+op, err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, storageError(op, err)
	}
	out := make([]*entity.Movement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

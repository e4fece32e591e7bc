package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

func toNanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ─── Items ───────────────────────────────────────────────────────────────────

const itemSelect = `SELECT id, name, costing_method, created_at, updated_at FROM items`

type itemRepo struct {
	q querier
}

func scanItem(row interface{ Scan(...any) error }) (*entity.Item, error) {
	var (
		it                   entity.Item
		method               string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&it.ID, &it.Name, &method, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	it.CostingMethod = entity.CostingMethod(method)
	it.CreatedAt = fromNanos(createdAt)
	it.UpdatedAt = fromNanos(updatedAt)
	return &it, nil
}

func (r *itemRepo) getOne(ctx context.Context, op, where string, arg any) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRowContext(ctx, itemSelect+" WHERE "+where+" = ?", arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(op, err)
	}
	return it, nil
}

func (r *itemRepo) Create(ctx context.Context, item *entity.Item) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO items (id, name, costing_method, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.Name, string(item.CostingMethod), toNanos(item.CreatedAt), toNanos(item.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return storageError("create item", err)
	}
	return nil
}

func (r *itemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	return r.getOne(ctx, "get item", "id", id)
}

// GetForUpdate equivale a GetByID: la tx BEGIN IMMEDIATE ya tiene el candado de escritura.
func (r *itemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.getOne(ctx, "get item for update", "id", id)
}

func (r *itemRepo) GetByName(ctx context.Context, name string) (*entity.Item, error) {
	return r.getOne(ctx, "get item by name", "name", name)
}

func (r *itemRepo) List(ctx context.Context, limit, offset int) ([]*entity.Item, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.q.QueryContext(ctx, itemSelect+` ORDER BY created_at, id LIMIT ? OFFSET ?`, limit, max(offset, 0))
	if err != nil {
		return nil, storageError("list items", err)
	}
	defer rows.Close()

	out := []*entity.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, storageError("scan item", err)
		}
		out = append(out, it)
	}
	return out, storageError("list items", rows.Err())
}

func (r *itemRepo) Update(ctx context.Context, item *entity.Item) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE items SET name = ?, costing_method = ?, updated_at = ? WHERE id = ?`,
		item.Name, string(item.CostingMethod), toNanos(item.UpdatedAt), item.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return storageError("update item", err)
	}
	return rowsAffected(res, "update item")
}

func (r *itemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return storageError("delete item", err)
	}
	return rowsAffected(res, "delete item")
}

// ─── Movements ───────────────────────────────────────────────────────────────

var movementColumns = []string{"id", "item_id", "kind", "quantity", "unit_cost", "total_cost", "created_at", "created_by"}

type movementRepo struct {
	q       querier
	builder squirrel.StatementBuilderType
}

func newMovementRepo(q querier) *movementRepo {
	return &movementRepo{q: q, builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)}
}

func (r *movementRepo) Create(ctx context.Context, m *entity.Movement) error {
	sqlStr, args, err := r.builder.Insert("movements").
		Columns(movementColumns...).
		Values(m.ID, m.ItemID, string(m.Kind), m.Quantity, m.UnitCost, m.TotalCost, toNanos(m.CreatedAt), nullString(m.CreatedBy)).
		ToSql()
	if err != nil {
		return storageError("build create movement", err)
	}
	if _, err := r.q.ExecContext(ctx, sqlStr, args...); err != nil {
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

func (r *movementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	list, err := r.selectMovements(ctx, "get movement", r.builder.Select(movementColumns...).From("movements").Where(squirrel.Eq{"id": id}))
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *movementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	q := r.builder.Select(movementColumns...).From("movements")
	if f.ItemID != "" {
		q = q.Where(squirrel.Eq{"item_id": f.ItemID})
	}
	if f.Kind != "" {
		q = q.Where(squirrel.Eq{"kind": string(f.Kind)})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": toNanos(*f.From)})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": toNanos(*f.To)})
	}
	q = q.OrderBy("created_at ASC", "id ASC")
	switch {
	case f.Limit > 0:
		q = q.Limit(uint64(f.Limit))
	case f.Offset > 0:
		// SQLite exige LIMIT antes de OFFSET.
		q = q.Limit(math.MaxInt64)
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return r.selectMovements(ctx, "list movements", q)
}

func (r *movementRepo) ListByItem(ctx context.Context, itemID string, asOf *time.Time) ([]*entity.Movement, error) {
	return r.List(ctx, repository.MovementFilter{ItemID: itemID, To: asOf})
}

func (r *movementRepo) Latest(ctx context.Context, itemID string) (*entity.Movement, error) {
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

func (r *movementRepo) Update(ctx context.Context, m *entity.Movement) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE movements SET item_id = ?, kind = ?, quantity = ?, unit_cost = ?, total_cost = ? WHERE id = ?`,
		m.ItemID, string(m.Kind), m.Quantity, m.UnitCost, m.TotalCost, m.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return storageError("update movement", err)
	}
	return rowsAffected(res, "update movement")
}

func (r *movementRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM movements WHERE id = ?`, id)
	if err != nil {
		return storageError("delete movement", err)
	}
	return rowsAffected(res, "delete movement")
}

func (r *movementRepo) selectMovements(ctx context.Context, op string, q squirrel.SelectBuilder) ([]*entity.Movement, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, storageError("build "+op, err)
	}
	rows, err := r.q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer rows.Close()

	out := []*entity.Movement{}
	for rows.Next() {
		var (
			m         entity.Movement
			kind      string
			unitCost  decimal.Decimal
			total     decimal.NullDecimal
			createdAt int64
			createdBy sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.ItemID, &kind, &m.Quantity, &unitCost, &total, &createdAt, &createdBy); err != nil {
			return nil, storageError("scan movement", err)
		}
		m.Kind = entity.MovementKind(kind)
		m.UnitCost = unitCost
		m.TotalCost = total
		m.CreatedAt = fromNanos(createdAt)
		m.CreatedBy = createdBy.String
		out = append(out, &m)
	}
	return out, storageError(op, rows.Err())
}

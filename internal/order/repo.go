package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ListQuery carries pagination and sorting for List. Zero values mean
// defaults: page 0, size 10, sorted by id ascending.
type ListQuery struct {
	Page int
	Size int
	Sort string
	Desc bool
}

const defaultPageSize = 10

// sortColumns whitelists the ORDER BY targets; anything else falls back
// to id.
var sortColumns = map[string]bool{
	"id":          true,
	"external_id": true,
	"status":      true,
	"total":       true,
	"created_at":  true,
	"updated_at":  true,
}

func (q ListQuery) normalized() ListQuery {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Size <= 0 || q.Size > 100 {
		q.Size = defaultPageSize
	}
	if !sortColumns[q.Sort] {
		q.Sort = "id"
	}
	return q
}

type Repository interface {
	// Save inserts when the order has no id yet and updates otherwise.
	// Items are replaced wholesale with their parent. The returned order
	// carries store-assigned ids and timestamps.
	Save(ctx context.Context, o *Order) (*Order, error)
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
	FindByID(ctx context.Context, id int64) (*Order, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	DeleteByID(ctx context.Context, id int64) error
	List(ctx context.Context, q ListQuery) ([]Order, int64, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Save(ctx context.Context, o *Order) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	saved := *o
	if o.ID == 0 {
		err = tx.QueryRow(ctx, `
      INSERT INTO orders (external_id, status, total, created_at, updated_at)
      VALUES ($1,$2,$3,NOW(),NOW())
      RETURNING id, created_at, updated_at
    `, o.ExternalID, o.Status, o.Total.String()).Scan(&saved.ID, &saved.CreatedAt, &saved.UpdatedAt)
	} else {
		err = tx.QueryRow(ctx, `
      UPDATE orders
      SET status = $2, total = $3, updated_at = NOW()
      WHERE id = $1
      RETURNING created_at, updated_at
    `, o.ID, o.Status, o.Total.String()).Scan(&saved.CreatedAt, &saved.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err == nil {
			_, err = tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, o.ID)
		}
	}
	if err != nil {
		return nil, err
	}

	saved.Items = append([]Item(nil), o.Items...)
	for i := range saved.Items {
		it := &saved.Items[i]
		it.OrderID = saved.ID
		unitPrice := decimal.Zero
		if it.UnitPrice != nil {
			unitPrice = *it.UnitPrice
		}
		if err := tx.QueryRow(ctx, `
      INSERT INTO order_items (order_id, product_id, unit_price, quantity, subtotal, created_at, updated_at)
      VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
      RETURNING id, created_at, updated_at
    `, it.OrderID, it.ProductID, unitPrice.String(), it.Quantity, it.Subtotal.String()).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *PGRepo) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `
    SELECT EXISTS(SELECT 1 FROM orders WHERE external_id = $1)
  `, externalID).Scan(&exists)
	return exists, err
}

func (r *PGRepo) FindByID(ctx context.Context, id int64) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	var total string
	err := r.db.QueryRow(ctx, `
    SELECT id, external_id, status, total::text, created_at, updated_at
    FROM orders WHERE id = $1
  `, id).Scan(&o.ID, &o.ExternalID, &o.Status, &total, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	items, err := r.itemsFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	if o.Items == nil {
		o.Items = []Item{}
	}
	return &o, nil
}

func (r *PGRepo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `
    SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)
  `, id).Scan(&exists)
	return exists, err
}

func (r *PGRepo) DeleteByID(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// order_items rows go with the order via ON DELETE CASCADE
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, q ListQuery) ([]Order, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.normalized()
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, err
	}

	// q.Sort is whitelisted in normalized(), safe to interpolate.
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
    SELECT id, external_id, status, total::text, created_at, updated_at
    FROM orders
    ORDER BY %s %s LIMIT $1 OFFSET $2
  `, q.Sort, dir), q.Size, q.Page*q.Size)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Order
	var ids []int64
	for rows.Next() {
		var o Order
		var totalStr string
		if err := rows.Scan(&o.ID, &o.ExternalID, &o.Status, &totalStr, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if o.Total, err = decimal.NewFromString(totalStr); err != nil {
			return nil, 0, fmt.Errorf("parse total: %w", err)
		}
		o.Items = []Item{}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		items, err := r.itemsFor(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range out {
			if its := items[out[i].ID]; its != nil {
				out[i].Items = its
			}
		}
	}
	return out, total, nil
}

func (r *PGRepo) itemsFor(ctx context.Context, orderIDs []int64) (map[int64][]Item, error) {
	rows, err := r.db.Query(ctx, `
    SELECT id, order_id, product_id, unit_price::text, quantity, subtotal::text, created_at, updated_at
    FROM order_items WHERE order_id = ANY($1)
    ORDER BY id
  `, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]Item)
	for rows.Next() {
		var it Item
		var unitPrice, subtotal string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &unitPrice, &it.Quantity, &subtotal, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		up, err := decimal.NewFromString(unitPrice)
		if err != nil {
			return nil, fmt.Errorf("parse unit_price: %w", err)
		}
		it.UnitPrice = &up
		if it.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, fmt.Errorf("parse subtotal: %w", err)
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

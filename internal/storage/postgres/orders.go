package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const orderColumns = `id, user_id, total_price, status, shipping_address, payment_reference, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	if err := row.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.Status, &o.ShippingAddress, &o.PaymentReference, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	const insertOrder = `INSERT INTO orders (id, user_id, total_price, status, shipping_address, created_at, updated_at)
                         VALUES ($1, $2, $3, $4, $5, $6, $7)`
	const insertItem = `INSERT INTO order_items (order_id, position, product_id, unit_price) VALUES ($1, $2, $3, $4)`

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertOrder,
			order.ID, order.UserID, order.TotalPrice, order.Status, order.ShippingAddress, order.CreatedAt, order.UpdatedAt); err != nil {
			return err
		}
		for i, item := range order.Items {
			if _, err := tx.Exec(ctx, insertItem, order.ID, i, item.ProductID, item.UnitPrice); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	out := *order
	out.Items = append([]model.OrderItem(nil), order.Items...)
	return &out, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return r.getOne(ctx, query, id)
}

func (r *orderRepository) GetForUser(ctx context.Context, id string, userID int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 AND user_id=$2`
	return r.getOne(ctx, query, id, userID)
}

func (r *orderRepository) getOne(ctx context.Context, query string, args ...any) (*model.Order, error) {
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if err := r.attachItems(ctx, []*model.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Order, int, error) {
	const countQuery = `SELECT COUNT(*) FROM orders WHERE user_id=$1`
	const listQuery = `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1
                       ORDER BY created_at DESC, id DESC
                       LIMIT $2 OFFSET $3`

	var total int
	if err := r.storage.pool.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	orders, err := r.list(ctx, listQuery, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) UpdateShippingAddress(ctx context.Context, id string, userID int64, address string) (*model.Order, error) {
	const query = `UPDATE orders SET shipping_address=$3, updated_at=NOW()
                   WHERE id=$1 AND user_id=$2 AND status NOT IN ('cancelled', 'delivered')
                   RETURNING ` + orderColumns
	order, err := r.updateOne(ctx, query, id, userID, address)
	if !errors.Is(err, pgx.ErrNoRows) {
		return order, err
	}
	if _, err := r.GetForUser(ctx, id, userID); err != nil {
		return nil, err
	}
	return nil, domainErrors.ErrInvalidState
}

func (r *orderRepository) SetPaymentReference(ctx context.Context, id string, reference string) (*model.Order, error) {
	const query = `UPDATE orders SET payment_reference=$2, updated_at=NOW()
                   WHERE id=$1 AND status='pending'
                   RETURNING ` + orderColumns
	order, err := r.updateOne(ctx, query, id, reference)
	if !errors.Is(err, pgx.ErrNoRows) {
		return order, err
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, domainErrors.ErrInvalidState
}

// TransitionStatus is a compare-and-set on the status column. When another
// writer got there first the current row is returned with applied=false.
func (r *orderRepository) TransitionStatus(ctx context.Context, id string, from, to model.OrderStatus) (*model.Order, bool, error) {
	const query = `UPDATE orders SET status=$3, updated_at=NOW()
                   WHERE id=$1 AND status=$2
                   RETURNING ` + orderColumns
	order, err := r.updateOne(ctx, query, id, from, to)
	if err == nil {
		return order, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

// ClaimAwaitingPayment stamps the selected rows in the same statement, so
// orders whose intent is still open rotate to the back of the queue.
func (r *orderRepository) ClaimAwaitingPayment(ctx context.Context, claimedAt, staleBefore time.Time, limit int) ([]model.Order, error) {
	const query = `UPDATE orders SET payment_checked_at = $1
                   WHERE id IN (
                       SELECT id FROM orders
                       WHERE status='pending' AND payment_reference IS NOT NULL
                         AND updated_at < $2
                         AND (payment_checked_at IS NULL OR payment_checked_at < $2)
                       ORDER BY payment_checked_at NULLS FIRST, updated_at
                       LIMIT $3
                       FOR UPDATE SKIP LOCKED
                   )
                   RETURNING ` + orderColumns
	return r.list(ctx, query, claimedAt, staleBefore, limit)
}

// updateOne returns pgx.ErrNoRows untouched so callers can tell a missed
// condition from a failure.
func (r *orderRepository) updateOne(ctx context.Context, query string, args ...any) (*model.Order, error) {
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, []*model.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(result) == 0 {
		return result, nil
	}
	ptrs := make([]*model.Order, len(result))
	for i := range result {
		ptrs[i] = &result[i]
	}
	if err := r.attachItems(ctx, ptrs); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) attachItems(ctx context.Context, orders []*model.Order) error {
	const query = `SELECT order_id, product_id, unit_price FROM order_items
                   WHERE order_id = ANY($1)
                   ORDER BY order_id, position`

	ids := make([]string, 0, len(orders))
	byID := make(map[string]*model.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	rows, err := r.storage.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			item    model.OrderItem
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.UnitPrice); err != nil {
			return err
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

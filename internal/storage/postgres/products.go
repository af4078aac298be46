package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const productColumns = `id, name, description, category, price, stock_quantity, created_at, updated_at`

// productFilterClause matches $1 category exactly and $2 as a substring of name or description.
const productFilterClause = `($1 = '' OR category = $1)
                   AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	const query = `INSERT INTO products (` + productColumns + `)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.storage.pool.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.Category,
		product.Price, product.StockQuantity, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	out := *product
	return &out, nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	p, err := scanProduct(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	const countQuery = `SELECT COUNT(*) FROM products WHERE ` + productFilterClause
	const listQuery = `SELECT ` + productColumns + ` FROM products WHERE ` + productFilterClause + `
                   ORDER BY name, id
                   LIMIT $3 OFFSET $4`

	var total int
	if err := r.storage.pool.QueryRow(ctx, countQuery, filter.Category, filter.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if offset < 0 {
		offset = 0
	}
	rows, err := r.storage.pool.Query(ctx, listQuery, filter.Category, filter.Search, filter.Limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := make([]model.Product, 0, filter.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *productRepository) Update(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	const query = `UPDATE products SET
                       name = COALESCE($2, name),
                       description = COALESCE($3, description),
                       category = COALESCE($4, category),
                       price = COALESCE($5, price),
                       stock_quantity = COALESCE($6, stock_quantity),
                       updated_at = NOW()
                   WHERE id=$1
                   RETURNING ` + productColumns
	p, err := scanProduct(r.storage.pool.QueryRow(ctx, query,
		id, patch.Name, patch.Description, patch.Category, patch.Price, patch.StockQuantity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM products WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// --- InventoryLedger implementation ---

// Reserve decrements stock in a single conditional statement so concurrent
// reservations of the last unit cannot both succeed.
func (r *productRepository) Reserve(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", domainErrors.ErrValidation)
	}
	const query = `UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = NOW()
                   WHERE id=$1 AND stock_quantity >= $2
                   RETURNING stock_quantity`
	var remaining int
	err := r.storage.pool.QueryRow(ctx, query, productID, quantity).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	exists, err := r.exists(ctx, productID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, domainErrors.ErrNotFound
	}
	return 0, domainErrors.ErrOutOfStock
}

func (r *productRepository) Release(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", domainErrors.ErrValidation)
	}
	const query = `UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = NOW()
                   WHERE id=$1
                   RETURNING stock_quantity`
	var remaining int
	if err := r.storage.pool.QueryRow(ctx, query, productID, quantity).Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrNotFound
		}
		return 0, err
	}
	return remaining, nil
}

func (r *productRepository) exists(ctx context.Context, productID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1)`
	var exists bool
	if err := r.storage.pool.QueryRow(ctx, query, productID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

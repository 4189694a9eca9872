package repositories

import (
	"context"
	"fmt"

	"github.com/mvaldes/almacen/internal/database"
	"github.com/mvaldes/almacen/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductFilter narrows product listings
type ProductFilter struct {
	Category string
	Limit    int
	Offset   int
}

// ProductStore provides product persistence. GetByIDForUpdate takes a row
// lock and is only meaningful inside a transaction.
type ProductStore interface {
	WithTx(tx pgx.Tx) ProductStore
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByIDForUpdate(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, id string, product *models.Product) (*models.Product, error)
	SetStock(ctx context.Context, id string, stock int) error
	SoftDelete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (*models.ProductStats, error)
}

type ProductRepository struct {
	q database.Querier
}

func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{q: db.Pool}
}

func (r *ProductRepository) WithTx(tx pgx.Tx) ProductStore {
	return &ProductRepository{q: tx}
}

const productColumns = `id, name, description, price, stock, category, is_active, created_at, updated_at`

func scanProductRow(scanner rowScanner) (*models.Product, error) {
	var product models.Product
	err := scanner.Scan(
		&product.ID, &product.Name, &product.Description,
		&product.Price, &product.Stock, &product.Category,
		&product.IsActive, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &product, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND is_active = true`
	return scanProductRow(r.q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate locks the product row against concurrent stock mutations
func (r *ProductRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND is_active = true FOR UPDATE`
	return scanProductRow(r.q.QueryRow(ctx, query, id))
}

func (r *ProductRepository) List(ctx context.Context, filter ProductFilter) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active = true`
	args := []any{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		product, err := scanProductRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	query := `
		INSERT INTO products (id, name, description, price, stock, category, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING ` + productColumns

	return scanProductRow(r.q.QueryRow(ctx, query,
		uuid.New().String(), product.Name, product.Description,
		product.Price, product.Stock, product.Category))
}

func (r *ProductRepository) Update(ctx context.Context, id string, product *models.Product) (*models.Product, error) {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, category = $5, updated_at = NOW()
		WHERE id = $1 AND is_active = true
		RETURNING ` + productColumns

	return scanProductRow(r.q.QueryRow(ctx, query,
		id, product.Name, product.Description, product.Price, product.Category))
}

// SetStock writes an absolute stock value; callers decide the arithmetic
// under their own row lock
func (r *ProductRepository) SetStock(ctx context.Context, id string, stock int) error {
	query := `UPDATE products SET stock = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, stock)
	return err
}

func (r *ProductRepository) SoftDelete(ctx context.Context, id string) (bool, error) {
	query := `UPDATE products SET is_active = false, updated_at = NOW() WHERE id = $1 AND is_active = true`

	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// Stats aggregates inventory counts for the stats endpoint
func (r *ProductRepository) Stats(ctx context.Context) (*models.ProductStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE is_active AND stock = 0),
			COUNT(*) FILTER (WHERE is_active AND stock > 0 AND stock <= 10)
		FROM products
	`

	var stats models.ProductStats
	err := r.q.QueryRow(ctx, query).Scan(&stats.Total, &stats.Active, &stats.OutOfStock, &stats.LowStock)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

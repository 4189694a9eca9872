package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mvaldes/almacen/internal/database"
	"github.com/mvaldes/almacen/internal/models"
	"github.com/mvaldes/almacen/internal/repositories"
	"github.com/jackc/pgx/v5"
)

// CreateProductInput carries validated fields for product creation
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	Category    string
}

// UpdateProductInput carries validated fields for product updates
type UpdateProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
}

// ProductService handles product business logic. Every mutation runs inside
// the transactional boundary and returns its uniform Result.
type ProductService struct {
	products repositories.ProductStore
	runner   TransactionRunner
	logger   *slog.Logger
}

func NewProductService(products repositories.ProductStore, runner TransactionRunner, logger *slog.Logger) *ProductService {
	return &ProductService{
		products: products,
		runner:   runner,
		logger:   logger,
	}
}

// ListProducts returns active products matching the filter
func (s *ProductService) ListProducts(ctx context.Context, filter repositories.ProductFilter) database.Result {
	return s.runner.RunQuery(ctx, "listProducts", func(ctx context.Context) (any, error) {
		return s.products.List(ctx, filter)
	})
}

// GetProduct returns a single active product
func (s *ProductService) GetProduct(ctx context.Context, id string) database.Result {
	return s.runner.RunQuery(ctx, "getProduct", func(ctx context.Context) (any, error) {
		product, err := s.products.GetByID(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			return nil, errors.New(ReasonProductNotFound)
		}
		return product, err
	})
}

// Stats aggregates inventory counts
func (s *ProductService) Stats(ctx context.Context) database.Result {
	return s.runner.RunQuery(ctx, "productStats", func(ctx context.Context) (any, error) {
		return s.products.Stats(ctx)
	})
}

// CreateProduct inserts a new product
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) database.Result {
	return s.runner.RunMutation(ctx, "createProduct", func(ctx context.Context, tx pgx.Tx) (database.Outcome, error) {
		product, err := s.products.WithTx(tx).Create(ctx, &models.Product{
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			Stock:       input.Stock,
			Category:    input.Category,
		})
		if err != nil {
			return database.Outcome{}, err
		}
		return database.Commit(product), nil
	})
}

// UpdateProduct modifies product fields other than stock
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) database.Result {
	return s.runner.RunMutation(ctx, "updateProduct", func(ctx context.Context, tx pgx.Tx) (database.Outcome, error) {
		product, err := s.products.WithTx(tx).Update(ctx, id, &models.Product{
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			Category:    input.Category,
		})
		if errors.Is(err, models.ErrNotFound) {
			return database.Rollback(ReasonProductNotFound, nil), nil
		}
		if err != nil {
			return database.Outcome{}, err
		}
		return database.Commit(product), nil
	})
}

// UpdateStock adjusts inventory under a row lock. An insufficient subtract
// rolls back and reports the current stock alongside the requested amount.
func (s *ProductService) UpdateStock(ctx context.Context, id string, quantity int, op models.StockOperation) database.Result {
	return s.runner.RunMutation(ctx, "updateStock", func(ctx context.Context, tx pgx.Tx) (database.Outcome, error) {
		store := s.products.WithTx(tx)

		product, err := store.GetByIDForUpdate(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			return database.Rollback(ReasonProductNotFound, nil), nil
		}
		if err != nil {
			return database.Outcome{}, err
		}

		oldStock := product.Stock
		newStock := oldStock

		switch op {
		case models.StockAdd:
			newStock += quantity
		case models.StockSubtract:
			if oldStock < quantity {
				return database.Rollback(ReasonInsufficientStock, map[string]int{
					"current_stock": oldStock,
					"requested":     quantity,
				}), nil
			}
			newStock -= quantity
		case models.StockSet:
			if quantity < 0 {
				return database.Rollback(ReasonNegativeStock, nil), nil
			}
			newStock = quantity
		default:
			return database.Rollback(ReasonInvalidOperation, nil), nil
		}

		if err := store.SetStock(ctx, id, newStock); err != nil {
			return database.Outcome{}, err
		}

		s.logger.Info("stock updated",
			slog.String("product_id", product.ID),
			slog.String("operation", string(op)),
			slog.Int("old_stock", oldStock),
			slog.Int("new_stock", newStock))

		return database.Commit(&models.StockChange{
			ProductID: product.ID,
			Name:      product.Name,
			OldStock:  oldStock,
			NewStock:  newStock,
			Operation: string(op),
		}), nil
	})
}

// DeleteProduct soft-deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id string) database.Result {
	return s.runner.RunMutation(ctx, "deleteProduct", func(ctx context.Context, tx pgx.Tx) (database.Outcome, error) {
		deleted, err := s.products.WithTx(tx).SoftDelete(ctx, id)
		if err != nil {
			return database.Outcome{}, err
		}
		if !deleted {
			return database.Rollback(ReasonProductNotFound, nil), nil
		}
		return database.Commit(map[string]string{"id": id}), nil
	})
}

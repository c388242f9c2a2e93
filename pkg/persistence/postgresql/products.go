package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence"
	"github.com/google/uuid"
)

// ProductRepository handles product database operations.
type ProductRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *sql.DB, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{db: db, logger: logger}
}

// Create inserts a new product with a generated ID.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate product ID: %w", err)
	}

	now := time.Now().UTC()
	product.ID = id.String()
	product.CreatedAt = now
	product.UpdatedAt = now

	query := `
		INSERT INTO products (id, name, description, price, stock, category, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		product.ID, product.Name, product.Description, product.Price,
		product.Stock, product.Category, product.ImageURL,
		product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

// GetAll returns all products.
func (r *ProductRepository) GetAll(ctx context.Context) ([]*models.Product, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , price
		  , stock
		  , category
		  , image_url
		  , created_at
		  , updated_at
		FROM products
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	products := make([]*models.Product, 0)

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		products = append(products, product)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetByID returns a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , price
		  , stock
		  , category
		  , image_url
		  , created_at
		  , updated_at
		FROM products
		WHERE id = $1
	`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewEntityError("GetByID", "product", id, persistence.ErrProductNotFound)
		}

		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	return product, nil
}

// Update replaces the mutable fields of an existing product.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, category = $6, image_url = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		product.ID, product.Name, product.Description, product.Price,
		product.Stock, product.Category, product.ImageURL, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return requireRowAffected(result, "Update", "product", product.ID, persistence.ErrProductNotFound)
}

// Delete removes a product without cascading to publications.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return requireRowAffected(result, "Delete", "product", id, persistence.ErrProductNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var product models.Product

	err := row.Scan(
		&product.ID, &product.Name, &product.Description, &product.Price,
		&product.Stock, &product.Category, &product.ImageURL,
		&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &product, nil
}

// requireRowAffected converts a zero-row write into the entity's not-found error.
func requireRowAffected(result sql.Result, op, entity, id string, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}

	if affected == 0 {
		return persistence.NewEntityError(op, entity, id, notFound)
	}

	return nil
}

package file

import (
	"context"
	"fmt"
	"time"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence"
	"github.com/google/uuid"
)

const productCollection = "products"

// ProductRepository handles product file operations.
type ProductRepository struct {
	root string
}

// NewProductRepository creates a new product repository.
func NewProductRepository(root string) *ProductRepository {
	return &ProductRepository{root: root}
}

// Create stores a new product with a generated ID and creation timestamp.
func (pr *ProductRepository) Create(_ context.Context, product *models.Product) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate product ID: %w", err)
	}

	now := time.Now().UTC()
	product.ID = id.String()
	product.CreatedAt = now
	product.UpdatedAt = now

	return writeDocument(pr.root, productCollection, product.ID, product)
}

// GetAll returns every product in the collection.
func (pr *ProductRepository) GetAll(ctx context.Context) ([]*models.Product, error) {
	ids, err := documentIDs(pr.root, productCollection)
	if err != nil {
		return nil, err
	}

	products := make([]*models.Product, 0, len(ids))

	for _, id := range ids {
		product, err := pr.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	return products, nil
}

// GetByID retrieves a product by its ID.
func (pr *ProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	var product models.Product

	found, err := readDocument(pr.root, productCollection, id, &product)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.NewEntityError("GetByID", "product", id, persistence.ErrProductNotFound)
	}

	return &product, nil
}

// Update replaces an existing product.
func (pr *ProductRepository) Update(_ context.Context, product *models.Product) error {
	if !documentExists(pr.root, productCollection, product.ID) {
		return persistence.NewEntityError("Update", "product", product.ID, persistence.ErrProductNotFound)
	}

	product.UpdatedAt = time.Now().UTC()

	return writeDocument(pr.root, productCollection, product.ID, product)
}

// Delete removes a product. Publications referencing it keep their dangling
// line items; deletion does not cascade.
func (pr *ProductRepository) Delete(_ context.Context, id string) error {
	found, err := deleteDocument(pr.root, productCollection, id)
	if err != nil {
		return err
	}

	if !found {
		return persistence.NewEntityError("Delete", "product", id, persistence.ErrProductNotFound)
	}

	return nil
}

package services

import (
	"context"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence"
)

// Products manages the product catalog.
type Products struct {
	persistence persistence.Persistence
}

// NewProducts creates a new product service.
func NewProducts(persistence persistence.Persistence) *Products {
	return &Products{persistence: persistence}
}

// CreateProductCommand carries the fields for a new product.
type CreateProductCommand struct {
	Name        string  `json:"name"        validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"       validate:"gte=0"`
	Stock       int     `json:"stock"       validate:"gte=0"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
}

// Create validates and stores a new product.
func (s *Products) Create(ctx context.Context, cmd CreateProductCommand) (*models.Product, error) {
	product := &models.Product{
		Name:        cmd.Name,
		Description: cmd.Description,
		Price:       cmd.Price,
		Stock:       cmd.Stock,
		Category:    cmd.Category,
		ImageURL:    cmd.ImageURL,
	}

	if err := product.Validate(); err != nil {
		return nil, &ServiceError{Op: "CreateProduct", Err: err}
	}

	if err := s.persistence.Products().Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// List returns all products.
func (s *Products) List(ctx context.Context) ([]*models.Product, error) {
	return s.persistence.Products().GetAll(ctx)
}

// Fetch returns one product by ID.
func (s *Products) Fetch(ctx context.Context, id string) (*models.Product, error) {
	return s.persistence.Products().GetByID(ctx, id)
}

// Update replaces the mutable fields of an existing product and re-validates.
func (s *Products) Update(ctx context.Context, id string, cmd CreateProductCommand) (*models.Product, error) {
	product, err := s.persistence.Products().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = cmd.Name
	product.Description = cmd.Description
	product.Price = cmd.Price
	product.Stock = cmd.Stock
	product.Category = cmd.Category
	product.ImageURL = cmd.ImageURL

	if err := product.Validate(); err != nil {
		return nil, &ServiceError{Op: "UpdateProduct", Err: err}
	}

	if err := s.persistence.Products().Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Delete removes a product. Publications keep any line items referencing it.
func (s *Products) Delete(ctx context.Context, id string) error {
	return s.persistence.Products().Delete(ctx, id)
}

// Package models defines the core domain models for recurring social publishing.
package models

import "time"

// Product is a catalog entry that publications bundle into their content.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"        validate:"required"`
	Description string    `json:"description"`
	Price       float64   `json:"price"       validate:"gte=0"`
	Stock       int       `json:"stock"       validate:"gte=0"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the required-field and range rules for a product.
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrNameRequired
	}

	if p.Price < 0 {
		return ErrNegativePrice
	}

	if p.Stock < 0 {
		return ErrNegativeStock
	}

	return nil
}

package models

import "time"

// PublicationStatus represents the lifecycle state of a publication.
type PublicationStatus string

const (
	PublicationStatusDraft  PublicationStatus = "draft"  // Editable, not schedulable content
	PublicationStatusActive PublicationStatus = "active" // Ready to be posted by schedules
	PublicationStatusPaused PublicationStatus = "paused" // Temporarily withheld from posting
)

// LineItem references a product bundled into a publication. Product references
// are advisory: deleting a product leaves a dangling reference that readers
// must tolerate.
type LineItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"   validate:"min=1"`
}

// Publication is a reusable content bundle that a schedule posts repeatedly.
type Publication struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"       validate:"required"`
	Description string            `json:"description"`
	ImageURL    string            `json:"image_url,omitempty"`
	LineItems   []LineItem        `json:"line_items"`
	Status      PublicationStatus `json:"status"      validate:"required"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Validate checks the required-field rules for a publication.
func (p *Publication) Validate() error {
	if p.Title == "" {
		return ErrNameRequired
	}

	switch p.Status {
	case PublicationStatusDraft, PublicationStatusActive, PublicationStatusPaused:
	default:
		return ErrInvalidPublicationStatus
	}

	for _, item := range p.LineItems {
		if item.ProductID == "" || item.Quantity < 1 {
			return ErrInvalidLineItem
		}
	}

	return nil
}

package publisher

import (
	"context"
	"fmt"
	"strings"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence"
	"github.com/getdivulga/divulga/pkg/platform"
)

// ComposeContent renders a publication into postable content. Line items are
// resolved against the catalog; dangling product references are listed
// without price details rather than failing the whole post.
func ComposeContent(ctx context.Context, products persistence.ProductRepository, publication *models.Publication) platform.PostContent {
	var sb strings.Builder

	sb.WriteString(publication.Title)

	if publication.Description != "" {
		sb.WriteString("\n\n")
		sb.WriteString(publication.Description)
	}

	for _, item := range publication.LineItems {
		product, err := products.GetByID(ctx, item.ProductID)
		if err != nil {
			continue
		}

		sb.WriteString("\n")
		sb.WriteString(formatLineItem(product, item.Quantity))
	}

	return platform.PostContent{
		Message:  sb.String(),
		Link:     publication.ImageURL,
		ImageURL: publication.ImageURL,
	}
}

func formatLineItem(product *models.Product, quantity int) string {
	if quantity > 1 {
		return fmt.Sprintf("%dx %s - $%.2f", quantity, product.Name, product.Price)
	}

	return fmt.Sprintf("%s - $%.2f", product.Name, product.Price)
}

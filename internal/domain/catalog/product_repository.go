package catalog

import (
	"context"

	"github.com/ecom/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence.
// Update replaces all mutable fields in one transaction; Delete also removes
// the order lines that reference the product.
type ProductRepository interface {
	shared.Repository[Product]

	// FindByIDs finds the products with the given IDs, ordered by ID
	FindByIDs(ctx context.Context, ids []uint) ([]Product, error)
}

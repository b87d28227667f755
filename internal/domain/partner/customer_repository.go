package partner

import (
	"context"

	"github.com/ecom/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	shared.Repository[Customer]

	// ExistsByID checks whether a customer exists
	ExistsByID(ctx context.Context, id uint) (bool, error)
}

package trade

import "context"

// OrderRepository defines the interface for order and order line persistence.
// Lines are written only through AddLine, UpdateLine and RemoveLine.
type OrderRepository interface {
	// Create inserts an order header and assigns its ID
	Create(ctx context.Context, order *Order) error

	// FindByID finds an order header by ID
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindAll returns all order headers ordered by ID
	FindAll(ctx context.Context) ([]Order, error)

	// FindByCustomer returns the order headers of a customer ordered by ID
	FindByCustomer(ctx context.Context, customerID uint) ([]Order, error)

	// Delete removes an order and its lines
	Delete(ctx context.Context, id uint) error

	// AddLine inserts an association row
	AddLine(ctx context.Context, line *OrderProduct) error

	// FindLine finds one association row by its composite key
	FindLine(ctx context.Context, orderID, productID uint) (*OrderProduct, error)

	// UpdateLine replaces the quantity of an existing association row
	UpdateLine(ctx context.Context, line *OrderProduct) error

	// RemoveLine deletes one association row
	RemoveLine(ctx context.Context, orderID, productID uint) error

	// FindLines returns the lines of an order joined with product names,
	// ordered by product ID
	FindLines(ctx context.Context, orderID uint) ([]OrderLine, error)
}

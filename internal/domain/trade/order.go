package trade

import (
	"fmt"
	"time"

	"github.com/ecom/backend/internal/domain/shared"
)

// DefaultLineQuantity is used when an order line does not specify a quantity
const DefaultLineQuantity = 1

// Order is an order header placed by a customer.
// Its lines live in OrderProduct rows keyed by (order ID, product ID).
type Order struct {
	shared.BaseEntity
	Date       time.Time
	CustomerID uint
}

// NewOrder creates an order header dated on the calendar day of at (UTC)
func NewOrder(customerID uint, at time.Time) (*Order, error) {
	if customerID == 0 {
		return nil, shared.NewValidationError("customer_id", "Customer ID cannot be empty")
	}
	return &Order{
		BaseEntity: shared.NewBaseEntity(),
		Date:       OrderDate(at),
		CustomerID: customerID,
	}, nil
}

// OrderDate truncates t to midnight UTC
func OrderDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// OrderProduct is the association between an order and a product.
// It is addressed by its composite key and carries the ordered quantity.
type OrderProduct struct {
	OrderID   uint
	ProductID uint
	Quantity  int
}

// NewOrderProduct creates an order line
func NewOrderProduct(orderID, productID uint, quantity int) (*OrderProduct, error) {
	if orderID == 0 {
		return nil, shared.NewValidationError("order_id", "Order ID cannot be empty")
	}
	if productID == 0 {
		return nil, shared.NewValidationError("product_id", "Product ID cannot be empty")
	}
	line := &OrderProduct{OrderID: orderID, ProductID: productID}
	if err := line.SetQuantity(quantity); err != nil {
		return nil, err
	}
	return line, nil
}

// SetQuantity replaces the ordered quantity
func (l *OrderProduct) SetQuantity(quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	l.Quantity = quantity
	return nil
}

// OrderLine is the read model of one order line joined with its product
type OrderLine struct {
	ProductID   uint
	ProductName string
	Quantity    int
}

// LineItem is a requested (product, quantity) pair
type LineItem struct {
	ProductID uint
	Quantity  int
}

// MergeLineItems validates requested lines and merges repeated product IDs by
// summing their quantities. The order of first occurrence is kept.
func MergeLineItems(items []LineItem) ([]LineItem, error) {
	if len(items) == 0 {
		return nil, shared.NewValidationError("products", "An order needs at least one product")
	}

	merged := make([]LineItem, 0, len(items))
	index := make(map[uint]int, len(items))
	for _, item := range items {
		if item.ProductID == 0 {
			return nil, shared.NewValidationError("product_id", "Product ID cannot be empty")
		}
		if err := validateQuantity(item.Quantity); err != nil {
			return nil, err
		}
		if i, ok := index[item.ProductID]; ok {
			// Both addends are within bounds, so the check cannot overflow
			if merged[i].Quantity > shared.MaxQuantity-item.Quantity {
				return nil, shared.NewValidationError("quantity",
					fmt.Sprintf("Total quantity of product %d cannot exceed 2147483647", item.ProductID))
			}
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

func validateQuantity(quantity int) error {
	if quantity < 1 {
		return shared.NewValidationError("quantity", "Quantity must be at least 1")
	}
	if quantity > shared.MaxQuantity {
		return shared.NewValidationError("quantity", "Quantity cannot exceed 2147483647")
	}
	return nil
}

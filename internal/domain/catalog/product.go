package catalog

import (
	"strings"

	"github.com/ecom/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const maxProductNameLength = 255

// maxPrice fits a decimal(10,2) column
var maxPrice = decimal.RequireFromString("99999999.99")

// Product is an item for sale.
// Quantity is the on-hand count; it is independent of quantities on orders.
type Product struct {
	shared.BaseEntity
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// NewProduct creates a new product
func NewProduct(name string, price decimal.Decimal, quantity int) (*Product, error) {
	p := &Product{BaseEntity: shared.NewBaseEntity()}
	if err := p.apply(name, price, quantity); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces name, price and quantity together.
// On error the product is left unchanged.
func (p *Product) Update(name string, price decimal.Decimal, quantity int) error {
	if err := p.apply(name, price, quantity); err != nil {
		return err
	}
	p.Touch()
	return nil
}

func (p *Product) apply(name string, price decimal.Decimal, quantity int) error {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return err
	}
	// Rounded first so the bound applies to the stored value
	price = price.Round(2)
	if err := validatePrice(price); err != nil {
		return err
	}
	if quantity < 0 {
		return shared.NewValidationError("quantity", "Quantity cannot be negative")
	}
	if quantity > shared.MaxQuantity {
		return shared.NewValidationError("quantity", "Quantity cannot exceed 2147483647")
	}

	p.Name = name
	p.Price = price
	p.Quantity = quantity
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewValidationError("name", "Product name cannot be empty")
	}
	if len(name) > maxProductNameLength {
		return shared.NewValidationError("name", "Product name cannot exceed 255 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("price", "Price cannot be negative")
	}
	if price.GreaterThan(maxPrice) {
		return shared.NewValidationError("price", "Price cannot exceed 99999999.99")
	}
	return nil
}

package catalog

import (
	"github.com/ecom/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a new product.
// Price and Quantity are pointers so that an explicit zero passes "required".
type CreateProductRequest struct {
	Name     string   `json:"name" binding:"required,max=255"`
	Price    *float64 `json:"price" binding:"required,gte=0"`
	Quantity *int     `json:"quantity" binding:"required,gte=0,lte=2147483647"`
}

// UpdateProductRequest replaces every field of a product
type UpdateProductRequest struct {
	Name     string   `json:"name" binding:"required,max=255"`
	Price    *float64 `json:"price" binding:"required,gte=0"`
	Quantity *int     `json:"quantity" binding:"required,gte=0,lte=2147483647"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price.InexactFloat64(),
		Quantity: p.Quantity,
	}
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

package trade

import (
	"github.com/ecom/backend/internal/domain/trade"
)

// DateLayout is the wire format of an order date
const DateLayout = "2006-01-02"

// OrderLineRequest is one requested product of an order.
// Quantity defaults to 1 when omitted.
type OrderLineRequest struct {
	ProductID uint `json:"product_id" binding:"required,gt=0"`
	Quantity  *int `json:"quantity" binding:"omitempty,gte=1,lte=2147483647"`
}

// CreateOrderRequest represents a request to place an order
type CreateOrderRequest struct {
	CustomerID uint               `json:"customer_id" binding:"required,gt=0"`
	Products   []OrderLineRequest `json:"products" binding:"required,min=1,dive"`
}

// AddOrderLineRequest adds a product to an existing order
type AddOrderLineRequest struct {
	ProductID uint `json:"product_id" binding:"required,gt=0"`
	Quantity  *int `json:"quantity" binding:"omitempty,gte=1,lte=2147483647"`
}

// UpdateOrderLineRequest replaces the quantity of an order line
type UpdateOrderLineRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=1,lte=2147483647"`
}

// OrderLineResponse is one line of the composed order view
type OrderLineResponse struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// OrderResponse is the composed view of an order and its lines
type OrderResponse struct {
	ID         uint                `json:"id"`
	Date       string              `json:"date"`
	CustomerID uint                `json:"customer_id"`
	Products   []OrderLineResponse `json:"products"`
}

// ToOrderResponse composes an order header with its lines
func ToOrderResponse(o *trade.Order, lines []trade.OrderLine) OrderResponse {
	products := make([]OrderLineResponse, len(lines))
	for i, line := range lines {
		products[i] = OrderLineResponse{
			ProductID: line.ProductID,
			Name:      line.ProductName,
			Quantity:  line.Quantity,
		}
	}
	return OrderResponse{
		ID:         o.ID,
		Date:       o.Date.Format(DateLayout),
		CustomerID: o.CustomerID,
		Products:   products,
	}
}

func lineQuantity(q *int) int {
	if q == nil {
		return trade.DefaultLineQuantity
	}
	return *q
}

func toLineItems(lines []OrderLineRequest) []trade.LineItem {
	items := make([]trade.LineItem, len(lines))
	for i, line := range lines {
		items[i] = trade.LineItem{ProductID: line.ProductID, Quantity: lineQuantity(line.Quantity)}
	}
	return items
}

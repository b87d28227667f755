package models

import (
	"time"

	"github.com/ecom/backend/internal/domain/trade"
)

// OrderModel is the persistence model for the Order domain entity.
type OrderModel struct {
	BaseModel
	Date       time.Time           `gorm:"type:date;not null"`
	CustomerID uint                `gorm:"not null;index:idx_orders_customer"`
	Lines      []OrderProductModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "Orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *trade.Order {
	return &trade.Order{
		BaseEntity: m.BaseModel.ToDomain(),
		Date:       trade.OrderDate(m.Date),
		CustomerID: m.CustomerID,
	}
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.Date = o.Date
	m.CustomerID = o.CustomerID
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderProductModel is the Order_Product association row with its quantity.
// The primary key is the (order_id, product_id) pair.
type OrderProductModel struct {
	OrderID   uint `gorm:"primaryKey;autoIncrement:false"`
	ProductID uint `gorm:"primaryKey;autoIncrement:false;index:idx_order_product_product"`
	Quantity  int  `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (OrderProductModel) TableName() string {
	return "Order_Product"
}

// ToDomain converts the persistence model to a domain OrderProduct.
func (m *OrderProductModel) ToDomain() *trade.OrderProduct {
	return &trade.OrderProduct{
		OrderID:   m.OrderID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
	}
}

// OrderProductModelFromDomain creates a new persistence model from a domain OrderProduct.
func OrderProductModelFromDomain(l *trade.OrderProduct) *OrderProductModel {
	return &OrderProductModel{
		OrderID:   l.OrderID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
	}
}

// OrderLineRow is the scan target of the order line join with product names.
type OrderLineRow struct {
	ProductID   uint
	ProductName string
	Quantity    int
}

// ToDomain converts the row to a domain OrderLine.
func (r OrderLineRow) ToDomain() trade.OrderLine {
	return trade.OrderLine{
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		Quantity:    r.Quantity,
	}
}

package persistence

import (
	"context"
	"errors"

	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/domain/trade"
	"github.com/ecom/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts an order header and assigns its ID
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return shared.NewNotFoundError("Customer not found")
		}
		return err
	}
	order.BaseEntity = model.BaseModel.ToDomain()
	return nil
}

// FindByID finds an order header by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uint) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Order not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all order headers ordered by ID
func (r *GormOrderRepository) FindAll(ctx context.Context) ([]trade.Order, error) {
	return r.findOrders(r.db.WithContext(ctx))
}

// FindByCustomer returns the order headers of a customer ordered by ID
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uint) ([]trade.Order, error) {
	return r.findOrders(r.db.WithContext(ctx).Where("customer_id = ?", customerID))
}

func (r *GormOrderRepository) findOrders(query *gorm.DB) ([]trade.Order, error) {
	var orderModels []models.OrderModel
	if err := query.Order("id ASC").Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]trade.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// Delete removes an order and its lines
func (r *GormOrderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderProductModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.OrderModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError("Order not found")
		}
		return nil
	})
}

// AddLine inserts an association row
func (r *GormOrderRepository) AddLine(ctx context.Context, line *trade.OrderProduct) error {
	model := models.OrderProductModelFromDomain(line)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return shared.NewConflictError("Product %d is already on order %d", line.ProductID, line.OrderID)
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return shared.NewNotFoundError("Order %d or product %d not found", line.OrderID, line.ProductID)
		}
		return err
	}
	return nil
}

// FindLine finds one association row by its composite key
func (r *GormOrderRepository) FindLine(ctx context.Context, orderID, productID uint) (*trade.OrderProduct, error) {
	var model models.OrderProductModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Product %d is not on order %d", productID, orderID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpdateLine replaces the quantity of an existing association row
func (r *GormOrderRepository) UpdateLine(ctx context.Context, line *trade.OrderProduct) error {
	result := r.db.WithContext(ctx).Model(&models.OrderProductModel{}).
		Where("order_id = ? AND product_id = ?", line.OrderID, line.ProductID).
		Update("quantity", line.Quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Product %d is not on order %d", line.ProductID, line.OrderID)
	}
	return nil
}

// RemoveLine deletes one association row
func (r *GormOrderRepository) RemoveLine(ctx context.Context, orderID, productID uint) error {
	result := r.db.WithContext(ctx).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Delete(&models.OrderProductModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Product %d is not on order %d", productID, orderID)
	}
	return nil
}

// FindLines returns the lines of an order joined with product names
func (r *GormOrderRepository) FindLines(ctx context.Context, orderID uint) ([]trade.OrderLine, error) {
	var rows []models.OrderLineRow
	if err := r.db.WithContext(ctx).
		Table("? AS op", clause.Table{Name: models.OrderProductModel{}.TableName()}).
		Select("op.product_id AS product_id, p.name AS product_name, op.quantity AS quantity").
		Joins("JOIN ? AS p ON p.id = op.product_id", clause.Table{Name: models.ProductModel{}.TableName()}).
		Where("op.order_id = ?", orderID).
		Order("op.product_id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	lines := make([]trade.OrderLine, len(rows))
	for i, row := range rows {
		lines[i] = row.ToDomain()
	}
	return lines, nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)

package trade

import (
	"context"

	"github.com/ecom/backend/internal/domain/catalog"
	"github.com/ecom/backend/internal/domain/partner"
	"github.com/ecom/backend/internal/domain/trade"
)

// TransactionScope runs a unit of order work atomically.
// If fn returns an error every write made through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to the repositories an order
// placement touches. All of them share the same database transaction.
type TransactionalRepositories interface {
	CustomerRepo() partner.CustomerRepository
	ProductRepo() catalog.ProductRepository
	OrderRepo() trade.OrderRepository
}

// NoOpTransactionScope runs the function against plain repositories without
// a transaction. Used in unit tests.
type NoOpTransactionScope struct {
	customerRepo partner.CustomerRepository
	productRepo  catalog.ProductRepository
	orderRepo    trade.OrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	customerRepo partner.CustomerRepository,
	productRepo catalog.ProductRepository,
	orderRepo trade.OrderRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		customerRepo: customerRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
	}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// CustomerRepo returns the customer repository.
func (s *NoOpTransactionScope) CustomerRepo() partner.CustomerRepository {
	return s.customerRepo
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() trade.OrderRepository {
	return s.orderRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)

package main

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	catalogapp "github.com/ecom/backend/internal/application/catalog"
	partnerapp "github.com/ecom/backend/internal/application/partner"
	tradeapp "github.com/ecom/backend/internal/application/trade"
	"go.uber.org/zap"
)

// Counts selects how many rows of each kind the seeder creates
type Counts struct {
	Customers int
	Products  int
	Orders    int
	// MaxLines caps the number of order lines per order
	MaxLines int
}

// Summary reports what a seeding run created
type Summary struct {
	Customers int
	Accounts  int
	Products  int
	Orders    int
	Lines     int
}

// Seeder fills an empty database with fake data through the application
// services, so every row passes the same validation as API traffic.
type Seeder struct {
	customers *partnerapp.CustomerService
	accounts  *partnerapp.CustomerAccountService
	products  *catalogapp.ProductService
	orders    *tradeapp.OrderService
	faker     *gofakeit.Faker
	logger    *zap.Logger
}

// NewSeeder creates a seeder. The same seed produces the same data.
func NewSeeder(
	customers *partnerapp.CustomerService,
	accounts *partnerapp.CustomerAccountService,
	products *catalogapp.ProductService,
	orders *tradeapp.OrderService,
	seed uint64,
	log *zap.Logger,
) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{
		customers: customers,
		accounts:  accounts,
		products:  products,
		orders:    orders,
		faker:     gofakeit.New(seed),
		logger:    log,
	}
}

// Run creates customers (each with an account), products and orders
func (s *Seeder) Run(ctx context.Context, counts Counts) (Summary, error) {
	var sum Summary
	if counts.Orders > 0 && (counts.Customers == 0 || counts.Products == 0) {
		return sum, fmt.Errorf("orders need at least one customer and one product")
	}
	if counts.MaxLines <= 0 {
		counts.MaxLines = 1
	}

	customerIDs := make([]uint, 0, counts.Customers)
	for i := 0; i < counts.Customers; i++ {
		customer, err := s.customers.Create(ctx, partnerapp.CreateCustomerRequest{
			Name:  s.faker.Name(),
			Email: s.faker.Email(),
			Phone: s.faker.Phone(),
		})
		if err != nil {
			return sum, fmt.Errorf("create customer %d: %w", i+1, err)
		}
		customerIDs = append(customerIDs, customer.ID)
		sum.Customers++

		// The index suffix keeps usernames unique whatever the faker returns
		_, err = s.accounts.Create(ctx, customer.ID, partnerapp.CreateCustomerAccountRequest{
			Username: fmt.Sprintf("%s%d", s.faker.Username(), i+1),
			Password: s.faker.Password(true, true, true, false, false, 16),
		})
		if err != nil {
			return sum, fmt.Errorf("create account for customer %d: %w", customer.ID, err)
		}
		sum.Accounts++
	}

	productIDs := make([]uint, 0, counts.Products)
	for i := 0; i < counts.Products; i++ {
		price := s.faker.Price(1, 500)
		quantity := s.faker.IntRange(0, 500)
		product, err := s.products.Create(ctx, catalogapp.CreateProductRequest{
			Name:     s.faker.ProductName(),
			Price:    &price,
			Quantity: &quantity,
		})
		if err != nil {
			return sum, fmt.Errorf("create product %d: %w", i+1, err)
		}
		productIDs = append(productIDs, product.ID)
		sum.Products++
	}

	for i := 0; i < counts.Orders; i++ {
		req := tradeapp.CreateOrderRequest{
			CustomerID: customerIDs[s.faker.IntRange(0, len(customerIDs)-1)],
		}
		lines := s.faker.IntRange(1, min(counts.MaxLines, len(productIDs)))
		for _, idx := range s.pick(len(productIDs), lines) {
			qty := s.faker.IntRange(1, 5)
			req.Products = append(req.Products, tradeapp.OrderLineRequest{
				ProductID: productIDs[idx],
				Quantity:  &qty,
			})
		}
		order, err := s.orders.Place(ctx, req)
		if err != nil {
			return sum, fmt.Errorf("place order %d: %w", i+1, err)
		}
		sum.Orders++
		sum.Lines += len(order.Products)
	}

	s.logger.Info("Seeding complete",
		zap.Int("customers", sum.Customers),
		zap.Int("accounts", sum.Accounts),
		zap.Int("products", sum.Products),
		zap.Int("orders", sum.Orders),
		zap.Int("order_lines", sum.Lines),
	)
	return sum, nil
}

// pick returns k distinct indexes in [0, n)
func (s *Seeder) pick(n, k int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	s.faker.ShuffleAnySlice(idx)
	return idx[:k]
}

package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ecom/backend/internal/domain/catalog"
	"github.com/ecom/backend/internal/domain/partner"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2024, 5, 17, 22, 30, 0, 0, time.UTC)

type orderFixture struct {
	orders    *MockOrderRepository
	customers *MockCustomerRepository
	products  *MockProductRepository
	store     *MockIdempotencyStore
	svc       *OrderService
}

func newOrderFixture(log *zap.Logger) *orderFixture {
	f := &orderFixture{
		orders:    new(MockOrderRepository),
		customers: new(MockCustomerRepository),
		products:  new(MockProductRepository),
		store:     new(MockIdempotencyStore),
	}
	scope := NewNoOpTransactionScope(f.customers, f.products, f.orders)
	f.svc = NewOrderService(scope, f.orders, f.customers, log)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func intPtr(v int) *int { return &v }

func testCustomer(id uint) *partner.Customer {
	return &partner.Customer{BaseEntity: shared.BaseEntity{ID: id}, Name: "C", Email: "c@example.com", Phone: "1"}
}

func testProduct(id uint, name string) *catalog.Product {
	return &catalog.Product{BaseEntity: shared.BaseEntity{ID: id}, Name: name, Price: decimal.NewFromInt(1), Quantity: 10}
}

func testOrder(id, customerID uint) *trade.Order {
	return &trade.Order{BaseEntity: shared.BaseEntity{ID: id}, Date: trade.OrderDate(fixedNow), CustomerID: customerID}
}

func assignOrderID(id uint) func(mock.Arguments) {
	return func(args mock.Arguments) {
		args.Get(1).(*trade.Order).ID = id
	}
}

func TestOrderService_Place(t *testing.T) {
	ctx := context.Background()

	t.Run("places order with lines", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.customers.On("FindByID", ctx, uint(1)).Return(testCustomer(1), nil)
		f.orders.On("Create", ctx, mock.MatchedBy(func(o *trade.Order) bool {
			return o.CustomerID == 1 && o.Date.Equal(time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC))
		})).Run(assignOrderID(11)).Return(nil)
		f.products.On("FindByIDs", ctx, []uint{5}).Return([]catalog.Product{*testProduct(5, "Pen")}, nil)
		f.orders.On("AddLine", ctx, &trade.OrderProduct{OrderID: 11, ProductID: 5, Quantity: 3}).Return(nil)
		f.orders.On("FindLines", ctx, uint(11)).Return([]trade.OrderLine{{ProductID: 5, ProductName: "Pen", Quantity: 3}}, nil)

		resp, err := f.svc.Place(ctx, CreateOrderRequest{
			CustomerID: 1,
			Products:   []OrderLineRequest{{ProductID: 5, Quantity: intPtr(3)}},
		})

		require.NoError(t, err)
		assert.Equal(t, OrderResponse{
			ID:         11,
			Date:       "2024-05-17",
			CustomerID: 1,
			Products:   []OrderLineResponse{{ProductID: 5, Name: "Pen", Quantity: 3}},
		}, *resp)
		f.orders.AssertExpectations(t)
	})

	t.Run("defaults quantity and merges repeated products", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.customers.On("FindByID", ctx, uint(1)).Return(testCustomer(1), nil)
		f.orders.On("Create", ctx, mock.Anything).Run(assignOrderID(12)).Return(nil)
		f.products.On("FindByIDs", ctx, []uint{5, 6}).
			Return([]catalog.Product{*testProduct(5, "Pen"), *testProduct(6, "Ink")}, nil).Once()
		f.orders.On("AddLine", ctx, &trade.OrderProduct{OrderID: 12, ProductID: 5, Quantity: 3}).Return(nil).Once()
		f.orders.On("AddLine", ctx, &trade.OrderProduct{OrderID: 12, ProductID: 6, Quantity: 1}).Return(nil).Once()
		f.orders.On("FindLines", ctx, uint(12)).Return([]trade.OrderLine{}, nil)

		_, err := f.svc.Place(ctx, CreateOrderRequest{
			CustomerID: 1,
			Products: []OrderLineRequest{
				{ProductID: 5},
				{ProductID: 6},
				{ProductID: 5, Quantity: intPtr(2)},
			},
		})

		require.NoError(t, err)
		f.orders.AssertExpectations(t)
	})

	t.Run("unknown customer fails before any write", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.customers.On("FindByID", ctx, uint(99)).Return(nil, shared.NewNotFoundError("Customer not found"))

		_, err := f.svc.Place(ctx, CreateOrderRequest{CustomerID: 99, Products: []OrderLineRequest{{ProductID: 5}}})

		require.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, "Customer not found", err.Error())
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown product names the product and writes nothing", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.customers.On("FindByID", ctx, uint(1)).Return(testCustomer(1), nil)
		f.products.On("FindByIDs", ctx, []uint{5, 7, 8}).Return([]catalog.Product{*testProduct(5, "Pen")}, nil)

		_, err := f.svc.Place(ctx, CreateOrderRequest{
			CustomerID: 1,
			Products:   []OrderLineRequest{{ProductID: 5}, {ProductID: 7}, {ProductID: 8}},
		})

		require.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, "Product 7 not found", err.Error())
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.orders.AssertNotCalled(t, "AddLine", mock.Anything, mock.Anything)
		f.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("product lookup failure is returned", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.customers.On("FindByID", ctx, uint(1)).Return(testCustomer(1), nil)
		f.products.On("FindByIDs", ctx, []uint{5}).Return(nil, errors.New("db down"))

		_, err := f.svc.Place(ctx, CreateOrderRequest{CustomerID: 1, Products: []OrderLineRequest{{ProductID: 5}}})

		assert.EqualError(t, err, "db down")
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("empty product list", func(t *testing.T) {
		f := newOrderFixture(nil)

		_, err := f.svc.Place(ctx, CreateOrderRequest{CustomerID: 1})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "products", domainErr.Field)
		f.customers.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestOrderService_PlaceIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := shared.IdempotencyConfig{TTL: time.Hour, PendingTTL: time.Minute, Enabled: true}
	req := CreateOrderRequest{CustomerID: 1, Products: []OrderLineRequest{{ProductID: 5}}}

	expectPlacement := func(f *orderFixture, orderID uint) {
		f.customers.On("FindByID", ctx, uint(1)).Return(testCustomer(1), nil)
		f.orders.On("Create", ctx, mock.Anything).Run(assignOrderID(orderID)).Return(nil)
		f.products.On("FindByIDs", ctx, []uint{5}).Return([]catalog.Product{*testProduct(5, "Pen")}, nil)
		f.orders.On("AddLine", ctx, mock.Anything).Return(nil)
		f.orders.On("FindLines", ctx, orderID).Return([]trade.OrderLine{{ProductID: 5, ProductName: "Pen", Quantity: 1}}, nil)
	}

	t.Run("first request claims and completes the key", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.svc.SetIdempotencyStore(f.store, cfg)
		f.store.On("Claim", ctx, "key-1", time.Minute).Return(true, nil)
		expectPlacement(f, 21)
		f.store.On("Complete", ctx, "key-1", "21:"+requestFingerprint(req), time.Hour).Return(nil)

		resp, replayed, err := f.svc.PlaceIdempotent(ctx, "key-1", req)

		require.NoError(t, err)
		assert.False(t, replayed)
		assert.Equal(t, uint(21), resp.ID)
		f.store.AssertExpectations(t)
	})

	t.Run("completed key replays the stored order", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.svc.SetIdempotencyStore(f.store, cfg)
		f.store.On("Claim", ctx, "key-1", time.Minute).Return(false, nil)
		f.store.On("Lookup", ctx, "key-1").Return(&shared.IdempotencyRecord{
			State: shared.IdempotencyCompleted,
			Value: "21:" + requestFingerprint(req),
		}, nil)
		f.orders.On("FindByID", ctx, uint(21)).Return(testOrder(21, 1), nil)
		f.orders.On("FindLines", ctx, uint(21)).Return([]trade.OrderLine{{ProductID: 5, ProductName: "Pen", Quantity: 1}}, nil)

		resp, replayed, err := f.svc.PlaceIdempotent(ctx, "key-1", req)

		require.NoError(t, err)
		assert.True(t, replayed)
		assert.Equal(t, uint(21), resp.ID)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("completed key with a different body is rejected", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.svc.SetIdempotencyStore(f.store, cfg)
		f.store.On("Claim", ctx, "key-1", time.Minute).Return(false, nil)
		f.store.On("Lookup", ctx, "key-1").Return(&shared.IdempotencyRecord{
			State: shared.IdempotencyCompleted,
			Value: "21:" + requestFingerprint(req),
		}, nil)
		other := CreateOrderRequest{CustomerID: 1, Products: []OrderLineRequest{{ProductID: 5, Quantity: intPtr(3)}}}

		resp, replayed, err := f.svc.PlaceIdempotent(ctx, "key-1", other)

		assert.ErrorIs(t, err, shared.ErrKeyReused)
		assert.Nil(t, resp)
		assert.False(t, replayed)
		f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("value without a fingerprint replays unchecked", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.svc.SetIdempotencyStore(f.store, cfg)
		f.store.On("Claim", ctx, "key-5", time.Minute).Return(false, nil)
		f.store.On("Lookup", ctx, "key-5").Return(&shared.IdempotencyRecord{State: shared.IdempotencyCompleted, Value: "24"}, nil)
		f.orders.On("FindByID", ctx, uint(24)).Return(testOrder(24, 1), nil)
		f.orders.On("FindLines", ctx, uint(24)).Return([]trade.OrderLine{{ProductID: 5, ProductName: "Pen", Quantity: 1}}, nil)

		resp, replayed, err := f.svc.PlaceIdempotent(ctx, "key-5", req)

		require.NoError(t, err)
		assert.True(t, replayed)
		assert.Equal(t, uint(24), resp.ID)
	})

	t.Run("pending key is rejected", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.svc.SetIdempotencyStore(f.store, cfg)
		f.store.On("Claim", ctx, "key-2", time.Minute).Return(false, nil)
		f.store.On("Lookup", ctx, "key-2").Return(&shared.IdempotencyRecord{State: shared.IdempotencyPending}, nil)

		_, _, err := f.svc.PlaceIdempotent(ctx, "key-2", req)

		assert.ErrorIs(t, err, shared.ErrRequestPending)
	})

	t.Run("failed placement releases the key", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.svc.SetIdempotencyStore(f.store, cfg)
		f.store.On("Claim", ctx, "key-3", time.Minute).Return(true, nil)
		f.customers.On("FindByID", ctx, uint(1)).Return(nil, shared.NewNotFoundError("Customer not found"))
		f.store.On("Release", ctx, "key-3").Return(nil)

		_, _, err := f.svc.PlaceIdempotent(ctx, "key-3", req)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.store.AssertExpectations(t)
		f.store.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no key places directly", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.svc.SetIdempotencyStore(f.store, cfg)
		expectPlacement(f, 22)

		resp, replayed, err := f.svc.PlaceIdempotent(ctx, "", req)

		require.NoError(t, err)
		assert.False(t, replayed)
		assert.Equal(t, uint(22), resp.ID)
		f.store.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("completion failure still returns the order", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		f := newOrderFixture(zap.New(core))
		f.svc.SetIdempotencyStore(f.store, cfg)
		f.store.On("Claim", ctx, "key-4", time.Minute).Return(true, nil)
		expectPlacement(f, 23)
		f.store.On("Complete", ctx, "key-4", "23:"+requestFingerprint(req), time.Hour).Return(errors.New("redis down"))

		resp, _, err := f.svc.PlaceIdempotent(ctx, "key-4", req)

		require.NoError(t, err)
		assert.Equal(t, uint(23), resp.ID)
		assert.Equal(t, 1, logs.FilterMessage("Failed to record idempotency key").Len())
	})
}

func TestRequestFingerprint(t *testing.T) {
	base := CreateOrderRequest{
		CustomerID: 1,
		Products:   []OrderLineRequest{{ProductID: 5, Quantity: intPtr(3)}, {ProductID: 6}},
	}
	fp := requestFingerprint(base)
	assert.Len(t, fp, 64)

	t.Run("same order is the same fingerprint", func(t *testing.T) {
		same := []CreateOrderRequest{
			{CustomerID: 1, Products: []OrderLineRequest{{ProductID: 6}, {ProductID: 5, Quantity: intPtr(3)}}},
			{CustomerID: 1, Products: []OrderLineRequest{{ProductID: 5}, {ProductID: 6}, {ProductID: 5, Quantity: intPtr(2)}}},
			{CustomerID: 1, Products: []OrderLineRequest{{ProductID: 5, Quantity: intPtr(3)}, {ProductID: 6, Quantity: intPtr(1)}}},
		}
		for _, req := range same {
			assert.Equal(t, fp, requestFingerprint(req))
		}
	})

	t.Run("different order is a different fingerprint", func(t *testing.T) {
		different := []CreateOrderRequest{
			{CustomerID: 2, Products: base.Products},
			{CustomerID: 1, Products: []OrderLineRequest{{ProductID: 5, Quantity: intPtr(4)}, {ProductID: 6}}},
			{CustomerID: 1, Products: []OrderLineRequest{{ProductID: 5, Quantity: intPtr(3)}}},
			{CustomerID: 1, Products: []OrderLineRequest{{ProductID: 5, Quantity: intPtr(3)}, {ProductID: 7}}},
		}
		for _, req := range different {
			assert.NotEqual(t, fp, requestFingerprint(req))
		}
	})
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("quantities come from the order lines", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.orders.On("FindByID", ctx, uint(3)).Return(testOrder(3, 1), nil)
		f.orders.On("FindLines", ctx, uint(3)).Return([]trade.OrderLine{
			{ProductID: 1, ProductName: "A", Quantity: 4},
			{ProductID: 2, ProductName: "B", Quantity: 1},
		}, nil)

		resp, err := f.svc.GetByID(ctx, 3)

		require.NoError(t, err)
		require.Len(t, resp.Products, 2)
		assert.Equal(t, 4, resp.Products[0].Quantity)
		assert.Equal(t, "B", resp.Products[1].Name)
	})

	t.Run("not found", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.orders.On("FindByID", ctx, uint(3)).Return(nil, shared.NewNotFoundError("Order not found"))

		_, err := f.svc.GetByID(ctx, 3)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOrderService_List_SkipsBrokenOrders(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	f := newOrderFixture(zap.New(core))

	f.orders.On("FindAll", ctx).Return([]trade.Order{*testOrder(1, 1), *testOrder(2, 1), *testOrder(3, 2)}, nil)
	f.orders.On("FindLines", ctx, uint(1)).Return([]trade.OrderLine{{ProductID: 1, ProductName: "A", Quantity: 1}}, nil)
	f.orders.On("FindLines", ctx, uint(2)).Return(nil, errors.New("broken row"))
	f.orders.On("FindLines", ctx, uint(3)).Return([]trade.OrderLine{}, nil)

	resp, err := f.svc.List(ctx)

	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, uint(1), resp[0].ID)
	assert.Equal(t, uint(3), resp[1].ID)
	assert.NotNil(t, resp[1].Products)

	skipped := logs.FilterMessage("Skipping order that could not be composed").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, uint64(2), skipped[0].ContextMap()["order_id"])
}

func TestOrderService_ListByCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("lists the customer's orders", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.customers.On("ExistsByID", ctx, uint(1)).Return(true, nil)
		f.orders.On("FindByCustomer", ctx, uint(1)).Return([]trade.Order{*testOrder(4, 1)}, nil)
		f.orders.On("FindLines", ctx, uint(4)).Return([]trade.OrderLine{}, nil)

		resp, err := f.svc.ListByCustomer(ctx, 1)

		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, uint(4), resp[0].ID)
	})

	t.Run("unknown customer", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.customers.On("ExistsByID", ctx, uint(9)).Return(false, nil)

		_, err := f.svc.ListByCustomer(ctx, 9)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOrderService_Lines(t *testing.T) {
	ctx := context.Background()

	t.Run("add line", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.orders.On("FindByID", ctx, uint(5)).Return(testOrder(5, 1), nil)
		f.products.On("FindByID", ctx, uint(8)).Return(testProduct(8, "Cup"), nil)
		f.orders.On("AddLine", ctx, &trade.OrderProduct{OrderID: 5, ProductID: 8, Quantity: 1}).Return(nil)
		f.orders.On("FindLines", ctx, uint(5)).Return([]trade.OrderLine{{ProductID: 8, ProductName: "Cup", Quantity: 1}}, nil)

		resp, err := f.svc.AddLine(ctx, 5, AddOrderLineRequest{ProductID: 8})

		require.NoError(t, err)
		assert.Len(t, resp.Products, 1)
	})

	t.Run("add line for unknown product", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.orders.On("FindByID", ctx, uint(5)).Return(testOrder(5, 1), nil)
		f.products.On("FindByID", ctx, uint(8)).Return(nil, shared.NewNotFoundError("Product not found"))

		_, err := f.svc.AddLine(ctx, 5, AddOrderLineRequest{ProductID: 8})

		require.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, "Product 8 not found", err.Error())
	})

	t.Run("add line twice is a conflict", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.orders.On("FindByID", ctx, uint(5)).Return(testOrder(5, 1), nil)
		f.products.On("FindByID", ctx, uint(8)).Return(testProduct(8, "Cup"), nil)
		f.orders.On("AddLine", ctx, mock.Anything).Return(shared.NewConflictError("Product 8 is already on order 5"))

		_, err := f.svc.AddLine(ctx, 5, AddOrderLineRequest{ProductID: 8, Quantity: intPtr(2)})

		assert.ErrorIs(t, err, shared.ErrConflict)
	})

	t.Run("update line quantity", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.orders.On("FindByID", ctx, uint(5)).Return(testOrder(5, 1), nil)
		f.orders.On("FindLine", ctx, uint(5), uint(8)).Return(&trade.OrderProduct{OrderID: 5, ProductID: 8, Quantity: 1}, nil)
		f.orders.On("UpdateLine", ctx, &trade.OrderProduct{OrderID: 5, ProductID: 8, Quantity: 6}).Return(nil)
		f.orders.On("FindLines", ctx, uint(5)).Return([]trade.OrderLine{{ProductID: 8, ProductName: "Cup", Quantity: 6}}, nil)

		resp, err := f.svc.UpdateLine(ctx, 5, 8, UpdateOrderLineRequest{Quantity: intPtr(6)})

		require.NoError(t, err)
		assert.Equal(t, 6, resp.Products[0].Quantity)
	})

	t.Run("update line with zero quantity", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.orders.On("FindByID", ctx, uint(5)).Return(testOrder(5, 1), nil)
		f.orders.On("FindLine", ctx, uint(5), uint(8)).Return(&trade.OrderProduct{OrderID: 5, ProductID: 8, Quantity: 1}, nil)

		_, err := f.svc.UpdateLine(ctx, 5, 8, UpdateOrderLineRequest{Quantity: intPtr(0)})

		assert.ErrorIs(t, err, shared.NewValidationError("", ""))
		f.orders.AssertNotCalled(t, "UpdateLine", mock.Anything, mock.Anything)
	})

	t.Run("remove missing line", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.orders.On("FindByID", ctx, uint(5)).Return(testOrder(5, 1), nil)
		f.orders.On("RemoveLine", ctx, uint(5), uint(8)).Return(shared.NewNotFoundError("Product 8 is not on order 5"))

		_, err := f.svc.RemoveLine(ctx, 5, 8)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("delete order", func(t *testing.T) {
		f := newOrderFixture(nil)
		f.orders.On("Delete", ctx, uint(5)).Return(nil)

		require.NoError(t, f.svc.Delete(ctx, 5))
	})
}

type countingMetrics struct {
	placed  int
	lines   int
	replays int
}

func (m *countingMetrics) RecordOrderPlaced(lines int) {
	m.placed++
	m.lines += lines
}

func (m *countingMetrics) RecordIdempotentReplay() { m.replays++ }

func TestOrderService_Metrics(t *testing.T) {
	ctx := context.Background()
	metrics := &countingMetrics{}

	f := newOrderFixture(nil)
	f.svc.SetMetrics(metrics)
	f.svc.SetIdempotencyStore(f.store, shared.IdempotencyConfig{TTL: time.Hour, PendingTTL: time.Minute, Enabled: true})

	f.customers.On("FindByID", ctx, uint(1)).Return(testCustomer(1), nil)
	f.orders.On("Create", ctx, mock.Anything).Run(assignOrderID(31)).Return(nil)
	f.products.On("FindByIDs", ctx, []uint{5, 6}).Return([]catalog.Product{*testProduct(5, "Pen"), *testProduct(6, "Ink")}, nil)
	f.orders.On("AddLine", ctx, mock.Anything).Return(nil)
	f.orders.On("FindLines", ctx, uint(31)).Return([]trade.OrderLine{
		{ProductID: 5, ProductName: "Pen", Quantity: 1},
		{ProductID: 6, ProductName: "Ink", Quantity: 2},
	}, nil)
	f.orders.On("FindByID", ctx, uint(31)).Return(testOrder(31, 1), nil)

	req := CreateOrderRequest{
		CustomerID: 1,
		Products:   []OrderLineRequest{{ProductID: 5}, {ProductID: 6, Quantity: intPtr(2)}},
	}
	value := "31:" + requestFingerprint(req)

	f.store.On("Claim", ctx, "k", time.Minute).Return(true, nil).Once()
	f.store.On("Complete", ctx, "k", value, time.Hour).Return(nil)
	_, _, err := f.svc.PlaceIdempotent(ctx, "k", req)
	require.NoError(t, err)

	f.store.On("Claim", ctx, "k", time.Minute).Return(false, nil).Once()
	f.store.On("Lookup", ctx, "k").Return(&shared.IdempotencyRecord{State: shared.IdempotencyCompleted, Value: value}, nil)
	_, replayed, err := f.svc.PlaceIdempotent(ctx, "k", req)
	require.NoError(t, err)
	assert.True(t, replayed)

	assert.Equal(t, 1, metrics.placed)
	assert.Equal(t, 2, metrics.lines)
	assert.Equal(t, 1, metrics.replays)
}

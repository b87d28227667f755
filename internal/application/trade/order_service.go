package trade

import (
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ecom/backend/internal/domain/catalog"
	"github.com/ecom/backend/internal/domain/partner"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/domain/trade"
	"github.com/ecom/backend/internal/infrastructure/logger"
	"github.com/ecom/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// OrderMetrics receives counters about order placement
type OrderMetrics interface {
	RecordOrderPlaced(lines int)
	RecordIdempotentReplay()
}

// OrderService places, reads and maintains orders
type OrderService struct {
	scope        TransactionScope
	orderRepo    trade.OrderRepository
	customerRepo partner.CustomerRepository
	idempotency  shared.IdempotencyStore
	idemConfig   shared.IdempotencyConfig
	metrics      OrderMetrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(
	scope TransactionScope,
	orderRepo trade.OrderRepository,
	customerRepo partner.CustomerRepository,
	log *zap.Logger,
) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		scope:        scope,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		logger:       log,
		now:          time.Now,
	}
}

// SetIdempotencyStore enables Idempotency-Key handling for order placement
func (s *OrderService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotency = store
	s.idemConfig = cfg
}

// SetMetrics enables order placement counters
func (s *OrderService) SetMetrics(m OrderMetrics) {
	s.metrics = m
}

// Place creates an order with all its lines in one transaction.
// A missing customer or product aborts the whole order.
func (s *OrderService) Place(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int64(telemetry.SpanAttrCustomerID, int64(req.CustomerID)))

	items, err := trade.MergeLineItems(toLineItems(req.Products))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var response OrderResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.CustomerRepo().FindByID(ctx, req.CustomerID); err != nil {
			return err
		}

		if err := resolveProducts(ctx, repos.ProductRepo(), items); err != nil {
			return err
		}

		order, err := trade.NewOrder(req.CustomerID, s.now())
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().Create(ctx, order); err != nil {
			return err
		}

		for _, item := range items {
			line, err := trade.NewOrderProduct(order.ID, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if err := repos.OrderRepo().AddLine(ctx, line); err != nil {
				return err
			}
		}

		lines, err := repos.OrderRepo().FindLines(ctx, order.ID)
		if err != nil {
			return err
		}
		response = ToOrderResponse(order, lines)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64(telemetry.SpanAttrOrderID, int64(response.ID)),
		attribute.Int(telemetry.SpanAttrLineCount, len(response.Products)),
	)
	if s.metrics != nil {
		s.metrics.RecordOrderPlaced(len(response.Products))
	}

	logger.FromContextOr(ctx, s.logger).Info("Order placed",
		logger.OrderID(response.ID),
		logger.CustomerID(response.CustomerID),
		zap.Int("lines", len(response.Products)),
	)
	return &response, nil
}

// resolveProducts loads every requested product in one query and fails on the
// first requested ID that does not exist
func resolveProducts(ctx context.Context, repo catalog.ProductRepository, items []trade.LineItem) error {
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	products, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}

	found := make(map[uint]struct{}, len(products))
	for _, p := range products {
		found[p.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return shared.NewNotFoundError("Product %d not found", id)
		}
	}
	return nil
}

// PlaceIdempotent places an order at most once per idempotency key.
// replayed is true when the key was already completed and the stored order is
// returned. A key whose first request is still running yields ErrRequestPending,
// and a key completed by a request for a different order yields ErrKeyReused.
func (s *OrderService) PlaceIdempotent(ctx context.Context, key string, req CreateOrderRequest) (resp *OrderResponse, replayed bool, err error) {
	if key == "" || s.idempotency == nil || !s.idemConfig.Enabled {
		resp, err = s.Place(ctx, req)
		return resp, false, err
	}

	log := logger.FromContextOr(ctx, s.logger).With(zap.String("idempotency_key", key))
	fingerprint := requestFingerprint(req)

	claimed, err := s.idempotency.Claim(ctx, key, s.idemConfig.PendingTTL)
	if err != nil {
		return nil, false, err
	}
	if !claimed {
		resp, err = s.replay(ctx, key, fingerprint)
		if err != nil {
			if errors.Is(err, shared.ErrKeyReused) {
				log.Warn("Idempotency key reused with a different request")
			}
			return nil, false, err
		}
		log.Info("Replayed order placement", logger.OrderID(resp.ID))
		if s.metrics != nil {
			s.metrics.RecordIdempotentReplay()
		}
		return resp, true, nil
	}

	resp, err = s.Place(ctx, req)
	if err != nil {
		if releaseErr := s.idempotency.Release(ctx, key); releaseErr != nil {
			log.Warn("Failed to release idempotency key", zap.Error(releaseErr))
		}
		return nil, false, err
	}

	value := strconv.FormatUint(uint64(resp.ID), 10) + ":" + fingerprint
	if err := s.idempotency.Complete(ctx, key, value, s.idemConfig.TTL); err != nil {
		log.Warn("Failed to record idempotency key", zap.Error(err), logger.OrderID(resp.ID))
	}
	return resp, false, nil
}

// replay answers a retried placement from the recorded "<orderID>:<fingerprint>"
// value. Values recorded without a fingerprint are replayed unchecked.
func (s *OrderService) replay(ctx context.Context, key, fingerprint string) (*OrderResponse, error) {
	record, err := s.idempotency.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil || record.State != shared.IdempotencyCompleted {
		return nil, shared.ErrRequestPending
	}

	rawID, stored, hasFingerprint := strings.Cut(record.Value, ":")
	if hasFingerprint && stored != fingerprint {
		return nil, shared.ErrKeyReused
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, uint(id))
}

// requestFingerprint hashes the order a request would place: the customer and
// its merged lines by product ID. Requests that differ only in line order or in
// how a product's quantity is split across lines share a fingerprint.
func requestFingerprint(req CreateOrderRequest) string {
	items, err := trade.MergeLineItems(toLineItems(req.Products))
	if err != nil {
		items = toLineItems(req.Products)
	}
	slices.SortFunc(items, func(a, b trade.LineItem) int {
		return cmp.Or(cmp.Compare(a.ProductID, b.ProductID), cmp.Compare(a.Quantity, b.Quantity))
	})

	h := sha256.New()
	fmt.Fprintf(h, "customer=%d", req.CustomerID)
	for _, item := range items {
		fmt.Fprintf(h, ";%d=%d", item.ProductID, item.Quantity)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// GetByID returns the composed view of an order
func (s *OrderService) GetByID(ctx context.Context, id uint) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.compose(ctx, s.orderRepo, order)
}

// List returns the composed views of all orders. An order whose view cannot
// be built is logged and left out.
func (s *OrderService) List(ctx context.Context) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.composeAll(ctx, orders), nil
}

// ListByCustomer returns the composed views of a customer's orders
func (s *OrderService) ListByCustomer(ctx context.Context, customerID uint) ([]OrderResponse, error) {
	exists, err := s.customerRepo.ExistsByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewNotFoundError("Customer not found")
	}

	orders, err := s.orderRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.composeAll(ctx, orders), nil
}

// Delete removes an order and its lines
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContextOr(ctx, s.logger).Info("Order deleted", logger.OrderID(id))
	return nil
}

// AddLine puts a product on an existing order
func (s *OrderService) AddLine(ctx context.Context, orderID uint, req AddOrderLineRequest) (*OrderResponse, error) {
	var response *OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if _, err := repos.ProductRepo().FindByID(ctx, req.ProductID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("Product %d not found", req.ProductID)
			}
			return err
		}

		line, err := trade.NewOrderProduct(orderID, req.ProductID, lineQuantity(req.Quantity))
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().AddLine(ctx, line); err != nil {
			return err
		}

		response, err = s.compose(ctx, repos.OrderRepo(), order)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOr(ctx, s.logger).Info("Order line added", logger.OrderID(orderID), logger.ProductID(req.ProductID))
	return response, nil
}

// UpdateLine replaces the quantity of an order line
func (s *OrderService) UpdateLine(ctx context.Context, orderID, productID uint, req UpdateOrderLineRequest) (*OrderResponse, error) {
	if req.Quantity == nil {
		return nil, shared.NewValidationError("quantity", "This field is required")
	}

	var response *OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		line, err := repos.OrderRepo().FindLine(ctx, orderID, productID)
		if err != nil {
			return err
		}
		if err := line.SetQuantity(*req.Quantity); err != nil {
			return err
		}
		if err := repos.OrderRepo().UpdateLine(ctx, line); err != nil {
			return err
		}

		response, err = s.compose(ctx, repos.OrderRepo(), order)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOr(ctx, s.logger).Info("Order line updated", logger.OrderID(orderID), logger.ProductID(productID))
	return response, nil
}

// RemoveLine takes a product off an order
func (s *OrderService) RemoveLine(ctx context.Context, orderID, productID uint) (*OrderResponse, error) {
	var response *OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().RemoveLine(ctx, orderID, productID); err != nil {
			return err
		}

		response, err = s.compose(ctx, repos.OrderRepo(), order)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOr(ctx, s.logger).Info("Order line removed", logger.OrderID(orderID), logger.ProductID(productID))
	return response, nil
}

func (s *OrderService) compose(ctx context.Context, repo trade.OrderRepository, order *trade.Order) (*OrderResponse, error) {
	lines, err := repo.FindLines(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order, lines)
	return &response, nil
}

func (s *OrderService) composeAll(ctx context.Context, orders []trade.Order) []OrderResponse {
	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		view, err := s.compose(ctx, s.orderRepo, &orders[i])
		if err != nil {
			logger.FromContextOr(ctx, s.logger).Warn("Skipping order that could not be composed",
				logger.OrderID(orders[i].ID),
				zap.Error(err),
			)
			continue
		}
		responses = append(responses, *view)
	}
	return responses
}

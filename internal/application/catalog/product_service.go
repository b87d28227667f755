package catalog

import (
	"context"

	"github.com/ecom/backend/internal/domain/catalog"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, log *zap.Logger) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		logger:      log,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	price, quantity, err := productValues(req.Price, req.Quantity)
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.Name, price, quantity)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	logger.FromContextOr(ctx, s.logger).Info("Product created", logger.ProductID(product.ID))
	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uint) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List returns every product ordered by ID
func (s *ProductService) List(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// Update replaces name, price and quantity of a product in one write
func (s *ProductService) Update(ctx context.Context, id uint, req UpdateProductRequest) (*ProductResponse, error) {
	price, quantity, err := productValues(req.Price, req.Quantity)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := product.Update(req.Name, price, quantity); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	logger.FromContextOr(ctx, s.logger).Info("Product updated", logger.ProductID(product.ID))
	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product and the order lines that reference it
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContextOr(ctx, s.logger).Info("Product deleted", logger.ProductID(id))
	return nil
}

func productValues(price *float64, quantity *int) (decimal.Decimal, int, error) {
	if price == nil {
		return decimal.Zero, 0, shared.NewValidationError("price", "This field is required")
	}
	if quantity == nil {
		return decimal.Zero, 0, shared.NewValidationError("quantity", "This field is required")
	}
	return decimal.NewFromFloat(*price), *quantity, nil
}

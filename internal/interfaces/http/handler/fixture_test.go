package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	catalogapp "github.com/ecom/backend/internal/application/catalog"
	partnerapp "github.com/ecom/backend/internal/application/partner"
	tradeapp "github.com/ecom/backend/internal/application/trade"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/infrastructure/auth"
	"github.com/ecom/backend/internal/infrastructure/cache"
	"github.com/ecom/backend/internal/infrastructure/config"
	"github.com/ecom/backend/internal/infrastructure/persistence"
	"github.com/ecom/backend/internal/interfaces/http/middleware"
	"github.com/ecom/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "handler-test-secret-that-is-long-enough"

// fixture wires every handler to SQLite-backed services
type fixture struct {
	t      *testing.T
	engine *gin.Engine
	db     *persistence.Database
	tokens *auth.JWTService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDatabase(t)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	accountRepo := persistence.NewGormCustomerAccountRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	tokens := auth.NewJWTService(config.JWTConfig{
		Secret:                testJWTSecret,
		AccessTokenExpiration: time.Hour,
		Issuer:                "ecom-test",
	})

	customerService := partnerapp.NewCustomerService(customerRepo, nil)
	accountService := partnerapp.NewCustomerAccountService(accountRepo, customerRepo, tokens, nil)
	productService := catalogapp.NewProductService(productRepo, nil)
	orderService := tradeapp.NewOrderService(persistence.NewGormTransactionScope(db.DB), orderRepo, customerRepo, nil)

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	orderService.SetIdempotencyStore(store, shared.DefaultIdempotencyConfig())

	customers := NewCustomerHandler(customerService, orderService)
	accounts := NewCustomerAccountHandler(accountService)
	products := NewProductHandler(productService)
	orders := NewOrderHandler(orderService)
	system := NewSystemHandler("ecom-backend", "test", db)

	r := gin.New()
	r.Use(middleware.RequestID())

	r.GET("/health", system.Health)
	r.GET("/system/info", system.GetSystemInfo)

	r.GET("/customers", customers.List)
	r.POST("/customers", customers.Create)
	r.GET("/customers/by-id", customers.GetByQueryID)
	r.GET("/customers/:id", customers.GetByID)
	r.PUT("/customers/:id", customers.Update)
	r.DELETE("/customers/:id", customers.Delete)
	r.GET("/customers/:id/orders", customers.ListOrders)

	r.POST("/customer_accounts/login", accounts.Login)
	r.GET("/customer_accounts/me", middleware.JWTAuth(tokens), accounts.Me)
	r.GET("/customer_accounts/by-username", accounts.GetByUsername)
	r.PUT("/customer_accounts/by-username", accounts.UpdateByUsername)
	r.POST("/customer_accounts/:customerId", accounts.Create)
	r.DELETE("/customer_accounts/:accountId", accounts.Delete)

	r.GET("/products", products.List)
	r.POST("/products", products.Create)
	r.GET("/products/by-id", products.GetByQueryID)
	r.GET("/products/:id", products.GetByID)
	r.PUT("/products/:id", products.Update)
	r.DELETE("/products/:id", products.Delete)

	r.GET("/orders", orders.List)
	r.POST("/orders", orders.Place)
	r.GET("/orders/:id", orders.GetByID)
	r.DELETE("/orders/:id", orders.Delete)
	r.POST("/orders/:id/products", orders.AddLine)
	r.PUT("/orders/:id/products/:product_id", orders.UpdateLine)
	r.DELETE("/orders/:id/products/:product_id", orders.RemoveLine)

	return &fixture{t: t, engine: r, db: db, tokens: tokens}
}

func (f *fixture) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	f.t.Helper()
	return testutil.Do(f.t, f.engine, method, path, body, headers)
}

func (f *fixture) createCustomer(name string) partnerapp.CustomerResponse {
	f.t.Helper()
	w := f.do(http.MethodPost, "/customers", map[string]any{
		"name":  name,
		"email": fmt.Sprintf("%s@example.com", name),
		"phone": "555-0100",
	}, nil)
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.Decode[partnerapp.CustomerResponse](f.t, w).Data
}

func (f *fixture) createProduct(name string, price float64, quantity int) catalogapp.ProductResponse {
	f.t.Helper()
	w := f.do(http.MethodPost, "/products", map[string]any{
		"name":     name,
		"price":    price,
		"quantity": quantity,
	}, nil)
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.Decode[catalogapp.ProductResponse](f.t, w).Data
}

func (f *fixture) createAccount(customerID uint, username, password string) partnerapp.CustomerAccountResponse {
	f.t.Helper()
	w := f.do(http.MethodPost, fmt.Sprintf("/customer_accounts/%d", customerID), map[string]any{
		"username": username,
		"password": password,
	}, nil)
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.Decode[partnerapp.CustomerAccountResponse](f.t, w).Data
}

func (f *fixture) count(table string) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.DB.Table(table).Count(&n).Error)
	return n
}

package router

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	catalogapp "github.com/ecom/backend/internal/application/catalog"
	partnerapp "github.com/ecom/backend/internal/application/partner"
	tradeapp "github.com/ecom/backend/internal/application/trade"
	"github.com/ecom/backend/internal/infrastructure/auth"
	"github.com/ecom/backend/internal/infrastructure/config"
	"github.com/ecom/backend/internal/infrastructure/persistence"
	"github.com/ecom/backend/internal/infrastructure/telemetry"
	"github.com/ecom/backend/internal/interfaces/http/handler"
	"github.com/ecom/backend/internal/interfaces/http/middleware"
	"github.com/ecom/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T, mutate func(*EngineConfig)) (*gin.Engine, *telemetry.Metrics) {
	t.Helper()

	db := testutil.NewTestDatabase(t)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	tokens := auth.NewJWTService(config.JWTConfig{
		Secret:                "router-test-secret-that-is-long-enough",
		AccessTokenExpiration: time.Hour,
		Issuer:                "ecom-test",
	})
	orderService := tradeapp.NewOrderService(
		persistence.NewGormTransactionScope(db.DB),
		persistence.NewGormOrderRepository(db.DB),
		customerRepo,
		nil,
	)
	handlers := Handlers{
		Customers: handler.NewCustomerHandler(partnerapp.NewCustomerService(customerRepo, nil), orderService),
		Accounts: handler.NewCustomerAccountHandler(partnerapp.NewCustomerAccountService(
			persistence.NewGormCustomerAccountRepository(db.DB), customerRepo, tokens, nil,
		)),
		Products: handler.NewProductHandler(catalogapp.NewProductService(persistence.NewGormProductRepository(db.DB), nil)),
		Orders:   handler.NewOrderHandler(orderService),
		System:   handler.NewSystemHandler("ecom-backend", "test", db),
	}

	metrics := telemetry.NewMetrics("")
	cfg := EngineConfig{
		Tracing:     middleware.TracingConfig{Enabled: false},
		Metrics:     metrics,
		Security:    middleware.DefaultSecurityConfig(),
		CORS:        middleware.DefaultCORSConfig(),
		MaxBodySize: 1 << 20,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	r := NewRouter(engine)
	for _, g := range APIGroups(handlers, tokens) {
		r.Register(g)
	}
	r.Setup()
	RegisterSystemRoutes(engine, handlers.System, "", metrics.Handler())

	return engine, metrics
}

func TestAPIGroups_RouteTable(t *testing.T) {
	engine, _ := newAPI(t, nil)

	var got []string
	for _, route := range engine.Routes() {
		got = append(got, route.Method+" "+route.Path)
	}
	sort.Strings(got)

	want := []string{
		"DELETE /customer_accounts/:accountId",
		"DELETE /customers/:id",
		"DELETE /orders/:id",
		"DELETE /orders/:id/products/:product_id",
		"DELETE /products/:id",
		"GET /customer_accounts/by-username",
		"GET /customer_accounts/me",
		"GET /customers",
		"GET /customers/:id",
		"GET /customers/:id/orders",
		"GET /customers/by-id",
		"GET /health",
		"GET /metrics",
		"GET /orders",
		"GET /orders/:id",
		"GET /products",
		"GET /products/:id",
		"GET /products/by-id",
		"GET /system/info",
		"POST /customer_accounts/:customerId",
		"POST /customer_accounts/login",
		"POST /customers",
		"POST /orders",
		"POST /orders/:id/products",
		"POST /products",
		"PUT /customer_accounts/by-username",
		"PUT /customers/:id",
		"PUT /orders/:id/products/:product_id",
		"PUT /products/:id",
	}
	assert.Equal(t, want, got)
}

func TestNewEngine_EndToEnd(t *testing.T) {
	engine, _ := newAPI(t, nil)

	w := testutil.Do(t, engine, http.MethodPost, "/customers", map[string]any{
		"name": "Ada", "email": "ada@example.com", "phone": "555-0100",
	}, map[string]string{middleware.RequestIDHeader: "trace-me"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "trace-me", w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	customer := testutil.Decode[partnerapp.CustomerResponse](t, w).Data

	w = testutil.Do(t, engine, http.MethodPost, "/products", map[string]any{
		"name": "pen", "price": 1.25, "quantity": 4,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := testutil.Decode[catalogapp.ProductResponse](t, w).Data

	w = testutil.Do(t, engine, http.MethodPost, "/orders", map[string]any{
		"customer_id": customer.ID,
		"products":    []map[string]any{{"product_id": product.ID, "quantity": 2}},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = testutil.Do(t, engine, http.MethodGet, fmt.Sprintf("/customers/%d/orders", customer.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders := testutil.Decode[[]tradeapp.OrderResponse](t, w).Data
	require.Len(t, orders, 1)
	assert.Equal(t, 2, orders[0].Products[0].Quantity)

	w = testutil.Do(t, engine, http.MethodGet, "/customer_accounts/me", nil, nil)
	testutil.AssertErrorCode(t, w, http.StatusUnauthorized, "UNAUTHORIZED")

	w = testutil.Do(t, engine, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewEngine_MetricsEndpoint(t *testing.T) {
	engine, _ := newAPI(t, nil)

	testutil.Do(t, engine, http.MethodGet, "/products", nil, nil)
	testutil.Do(t, engine, http.MethodGet, "/products/42", nil, nil)

	w := testutil.Do(t, engine, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `ecom_http_requests_total{method="GET",route="/products",status="200"} 1`)
	assert.Contains(t, body, `ecom_http_requests_total{method="GET",route="/products/:id",status="404"} 1`)
	assert.NotContains(t, body, `route="/metrics"`)
}

func TestNewEngine_BodyLimit(t *testing.T) {
	engine, _ := newAPI(t, func(cfg *EngineConfig) { cfg.MaxBodySize = 64 })

	w := testutil.Do(t, engine, http.MethodPost, "/customers",
		`{"name":"`+strings.Repeat("a", 100)+`","email":"a@example.com","phone":"1"}`, nil)

	testutil.AssertErrorCode(t, w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE")
}

func TestNewEngine_RateLimit(t *testing.T) {
	limiter := middleware.NewRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Stop)
	engine, _ := newAPI(t, func(cfg *EngineConfig) { cfg.RateLimiter = limiter })

	for i := 0; i < 2; i++ {
		w := testutil.Do(t, engine, http.MethodGet, "/products", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := testutil.Do(t, engine, http.MethodGet, "/products", nil, nil)
	testutil.AssertErrorCode(t, w, http.StatusTooManyRequests, "RATE_LIMITED")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestNewEngine_CORSPreflight(t *testing.T) {
	engine, _ := newAPI(t, func(cfg *EngineConfig) {
		cfg.CORS.AllowOrigins = []string{"https://shop.example.com"}
	})

	w := testutil.Do(t, engine, http.MethodOptions, "/orders", nil, map[string]string{
		"Origin":                        "https://shop.example.com",
		"Access-Control-Request-Method": http.MethodPost,
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
}

func TestNewEngine_Recovery(t *testing.T) {
	engine, _ := newAPI(t, nil)
	engine.GET("/boom", func(*gin.Context) { panic("boom") })

	w := testutil.Do(t, engine, http.MethodGet, "/boom", nil, nil)

	testutil.AssertErrorCode(t, w, http.StatusInternalServerError, "INTERNAL_ERROR")
}

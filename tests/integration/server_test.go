package integration

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	catalogapp "github.com/ecom/backend/internal/application/catalog"
	partnerapp "github.com/ecom/backend/internal/application/partner"
	tradeapp "github.com/ecom/backend/internal/application/trade"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/infrastructure/auth"
	"github.com/ecom/backend/internal/infrastructure/cache"
	"github.com/ecom/backend/internal/infrastructure/config"
	"github.com/ecom/backend/internal/infrastructure/persistence"
	"github.com/ecom/backend/internal/infrastructure/telemetry"
	"github.com/ecom/backend/internal/interfaces/http/handler"
	"github.com/ecom/backend/internal/interfaces/http/middleware"
	"github.com/ecom/backend/internal/interfaces/http/router"
	"github.com/ecom/backend/tests/testutil"
	"github.com/stretchr/testify/require"
)

// apiServer is the full HTTP stack over PostgreSQL and a Redis-backed
// idempotency store
type apiServer struct {
	t       *testing.T
	db      *TestDB
	handler http.Handler
	metrics *telemetry.Metrics
	redis   *miniredis.Miniredis
	tokens  *auth.JWTService
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()

	db := NewTestDB(t)
	metrics := telemetry.NewMetrics("")
	require.NoError(t, db.DB.Use(telemetry.NewDBMetricsPlugin(metrics)))

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	store, err := cache.NewIdempotencyStoreFactory(config.RedisConfig{
		Enabled: true,
		Host:    mr.Host(),
		Port:    port,
	}, cache.WithInMemoryFallback(false)).CreateStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tokens := auth.NewJWTService(config.JWTConfig{
		Secret:                "integration-test-secret-long-enough",
		AccessTokenExpiration: time.Hour,
		Issuer:                "ecom-integration",
	})

	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	orderService := tradeapp.NewOrderService(
		persistence.NewGormTransactionScope(db.DB),
		persistence.NewGormOrderRepository(db.DB),
		customerRepo,
		nil,
	)
	orderService.SetIdempotencyStore(store, shared.DefaultIdempotencyConfig())
	orderService.SetMetrics(metrics)

	handlers := router.Handlers{
		Customers: handler.NewCustomerHandler(partnerapp.NewCustomerService(customerRepo, nil), orderService),
		Accounts: handler.NewCustomerAccountHandler(partnerapp.NewCustomerAccountService(
			persistence.NewGormCustomerAccountRepository(db.DB), customerRepo, tokens, nil,
		)),
		Products: handler.NewProductHandler(catalogapp.NewProductService(persistence.NewGormProductRepository(db.DB), nil)),
		Orders:   handler.NewOrderHandler(orderService),
		System:   handler.NewSystemHandler("ecom-backend", "integration", db),
	}

	engine, err := router.NewEngine(router.EngineConfig{
		Tracing:     middleware.TracingConfig{Enabled: false},
		Metrics:     metrics,
		Security:    middleware.DefaultSecurityConfig(),
		CORS:        middleware.DefaultCORSConfig(),
		MaxBodySize: 1 << 20,
	})
	require.NoError(t, err)

	r := router.NewRouter(engine)
	for _, g := range router.APIGroups(handlers, tokens) {
		r.Register(g)
	}
	r.Setup()
	router.RegisterSystemRoutes(engine, handlers.System, "", metrics.Handler())

	return &apiServer{t: t, db: db, handler: engine, metrics: metrics, redis: mr, tokens: tokens}
}

func (s *apiServer) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	s.t.Helper()
	return testutil.Do(s.t, s.handler, method, path, body, headers)
}

func (s *apiServer) createCustomer(name string) partnerapp.CustomerResponse {
	s.t.Helper()
	w := s.do(http.MethodPost, "/customers", map[string]any{
		"name":  name,
		"email": name + "@example.com",
		"phone": "555-0100",
	}, nil)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.Decode[partnerapp.CustomerResponse](s.t, w).Data
}

func (s *apiServer) createProduct(name string, price float64, quantity int) catalogapp.ProductResponse {
	s.t.Helper()
	w := s.do(http.MethodPost, "/products", map[string]any{
		"name":     name,
		"price":    price,
		"quantity": quantity,
	}, nil)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.Decode[catalogapp.ProductResponse](s.t, w).Data
}

package router

import (
	"net/http"

	"github.com/ecom/backend/internal/interfaces/http/handler"
	"github.com/ecom/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers served by the API
type Handlers struct {
	Customers *handler.CustomerHandler
	Accounts  *handler.CustomerAccountHandler
	Products  *handler.ProductHandler
	Orders    *handler.OrderHandler
	System    *handler.SystemHandler
}

// APIGroups builds the domain route groups. tokens verifies the bearer
// token of /customer_accounts/me.
func APIGroups(h Handlers, tokens middleware.TokenValidator) []*DomainGroup {
	customers := NewDomainGroup("/customers")
	customers.GET("", h.Customers.List)
	customers.POST("", h.Customers.Create)
	customers.GET("/by-id", h.Customers.GetByQueryID)
	customers.GET("/:id", h.Customers.GetByID)
	customers.PUT("/:id", h.Customers.Update)
	customers.DELETE("/:id", h.Customers.Delete)
	customers.GET("/:id/orders", h.Customers.ListOrders)

	accounts := NewDomainGroup("/customer_accounts")
	accounts.POST("/login", h.Accounts.Login)
	accounts.GET("/by-username", h.Accounts.GetByUsername)
	accounts.PUT("/by-username", h.Accounts.UpdateByUsername)
	accounts.POST("/:customerId", h.Accounts.Create)
	accounts.DELETE("/:accountId", h.Accounts.Delete)
	accounts.Group("").
		Use(middleware.JWTAuth(tokens)).
		GET("/me", h.Accounts.Me)

	products := NewDomainGroup("/products")
	products.GET("", h.Products.List)
	products.POST("", h.Products.Create)
	products.GET("/by-id", h.Products.GetByQueryID)
	products.GET("/:id", h.Products.GetByID)
	products.PUT("/:id", h.Products.Update)
	products.DELETE("/:id", h.Products.Delete)

	orders := NewDomainGroup("/orders")
	orders.GET("", h.Orders.List)
	orders.POST("", h.Orders.Place)
	orders.GET("/:id", h.Orders.GetByID)
	orders.DELETE("/:id", h.Orders.Delete)
	orders.POST("/:id/products", h.Orders.AddLine)
	orders.PUT("/:id/products/:product_id", h.Orders.UpdateLine)
	orders.DELETE("/:id/products/:product_id", h.Orders.RemoveLine)

	return []*DomainGroup{customers, accounts, products, orders}
}

// RegisterSystemRoutes mounts health, build info and, when metrics is not
// nil, the Prometheus exposition endpoint at the engine root.
func RegisterSystemRoutes(engine *gin.Engine, system *handler.SystemHandler, metricsPath string, metrics http.Handler) {
	engine.GET("/health", system.Health)
	engine.GET("/system/info", system.GetSystemInfo)
	if metrics != nil {
		if metricsPath == "" {
			metricsPath = DefaultMetricsPath
		}
		engine.GET(metricsPath, gin.WrapH(metrics))
	}
}

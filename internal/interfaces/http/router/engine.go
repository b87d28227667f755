package router

import (
	"github.com/ecom/backend/internal/infrastructure/logger"
	"github.com/ecom/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultMetricsPath is where the Prometheus scrape endpoint is mounted
const DefaultMetricsPath = "/metrics"

// EngineConfig selects the global middleware of the HTTP engine
type EngineConfig struct {
	Logger         *zap.Logger
	TrustedProxies []string
	Tracing        middleware.TracingConfig
	// Metrics is optional; nil disables request metrics.
	Metrics     middleware.HTTPMetricsRecorder
	MetricsPath string
	Security    middleware.SecurityConfig
	CORS        middleware.CORSConfig
	MaxBodySize int64
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *middleware.RateLimiter
	// Profiling labels requests for the continuous profiler
	Profiling bool
}

// NewEngine creates a gin engine with the global middleware stack applied in
// order: request ID, panic recovery, tracing, request logging, metrics,
// profiling labels, security headers, CORS, body limit and rate limiting.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = DefaultMetricsPath
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	// Tracing runs before the request logger so log lines carry the trace ID
	engine.Use(middleware.Tracing(cfg.Tracing))
	engine.Use(middleware.SpanAttributes())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(cfg.Metrics, metricsPath))
	engine.Use(middleware.Profiling(cfg.Profiling, "/health", metricsPath))
	engine.Use(middleware.SecureWithConfig(cfg.Security))
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	return engine, nil
}

package telemetry

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

const metricsStartKey = "ecom:metrics_query_start"

// DBMetricsPlugin is a GORM plugin that reports statement latency and
// failures to Metrics.
type DBMetricsPlugin struct {
	metrics *Metrics
}

// NewDBMetricsPlugin creates a plugin reporting to metrics
func NewDBMetricsPlugin(metrics *Metrics) *DBMetricsPlugin {
	return &DBMetricsPlugin{metrics: metrics}
}

// Name implements gorm.Plugin
func (p *DBMetricsPlugin) Name() string {
	return "ecom:db_metrics"
}

// Initialize implements gorm.Plugin
func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	return registerAround(db, "ecom_metrics", markStart(metricsStartKey), p.observe)
}

func (p *DBMetricsPlugin) observe(db *gorm.DB) {
	elapsed, ok := elapsedSince(db, metricsStartKey)
	if !ok {
		return
	}

	table := db.Statement.Table
	if table == "" {
		table = "unknown"
	}
	failed := db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound)
	p.metrics.ObserveQuery(operationOf(db), table, elapsed, failed)
}

// operationOf classifies a statement by its leading SQL keyword
func operationOf(db *gorm.DB) string {
	fields := strings.Fields(db.Statement.SQL.String())
	if len(fields) == 0 {
		return "OTHER"
	}
	switch word := strings.ToUpper(fields[0]); word {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return word
	default:
		return "OTHER"
	}
}

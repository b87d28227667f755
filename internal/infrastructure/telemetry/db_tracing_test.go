package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := setupTestDB(t)

	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), nil)
	require.NoError(t, plugin.Register(db))

	_, registered := db.Config.Plugins["otelgorm"]
	assert.False(t, registered)
}

func TestDBTracingPlugin_SpansAndSlowQueries(t *testing.T) {
	db := setupTestDB(t)

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	}()

	core, logs := observer.New(zap.WarnLevel)
	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Nanosecond,
		DBSystem:        "sqlite",
	}, zap.New(core))
	require.NoError(t, plugin.Register(db))

	ctx, parent := tp.Tracer("test").Start(context.Background(), "request")
	require.NoError(t, db.WithContext(ctx).Create(&widget{Name: "gear"}).Error)
	parent.End()

	var names []string
	var slowEvents int
	for _, s := range sr.Ended() {
		names = append(names, s.Name())
		for _, e := range s.Events() {
			if e.Name == "slow_query" {
				slowEvents++
			}
		}
	}
	assert.Contains(t, names, "request")
	assert.Contains(t, names, "gorm.Create")
	assert.NotZero(t, slowEvents)
	assert.NotZero(t, logs.FilterMessage("Slow database query").Len())
}

func TestDBTracingPlugin_FastQueriesAreQuiet(t *testing.T) {
	db := setupTestDB(t)

	core, logs := observer.New(zap.WarnLevel)
	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Hour,
		DBSystem:        "sqlite",
	}, zap.New(core))
	require.NoError(t, plugin.Register(db))

	var found []widget
	require.NoError(t, db.Find(&found).Error)
	assert.Zero(t, logs.Len())
}

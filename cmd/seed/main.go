package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	catalogapp "github.com/ecom/backend/internal/application/catalog"
	partnerapp "github.com/ecom/backend/internal/application/partner"
	tradeapp "github.com/ecom/backend/internal/application/trade"
	"github.com/ecom/backend/internal/infrastructure/auth"
	"github.com/ecom/backend/internal/infrastructure/config"
	"github.com/ecom/backend/internal/infrastructure/logger"
	"github.com/ecom/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var (
		counts   Counts
		seed     uint64
		migrate  bool
		logLevel string
	)
	flag.IntVar(&counts.Customers, "customers", 20, "Number of customers (each gets an account)")
	flag.IntVar(&counts.Products, "products", 50, "Number of products")
	flag.IntVar(&counts.Orders, "orders", 100, "Number of orders")
	flag.IntVar(&counts.MaxLines, "max-lines", 5, "Maximum products per order")
	flag.Uint64Var(&seed, "seed", 0, "Random seed (0 picks one from the clock)")
	flag.BoolVar(&migrate, "migrate", false, "Auto-migrate the schema before seeding")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	if migrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to auto-migrate schema", zap.Error(err))
		}
	}

	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	log.Info("Seeding database",
		zap.String("driver", cfg.Database.Driver),
		zap.Uint64("seed", seed),
		zap.Int("customers", counts.Customers),
		zap.Int("products", counts.Products),
		zap.Int("orders", counts.Orders),
	)

	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	seeder := NewSeeder(
		partnerapp.NewCustomerService(customerRepo, log),
		partnerapp.NewCustomerAccountService(
			persistence.NewGormCustomerAccountRepository(db.DB), customerRepo, auth.NewJWTService(cfg.JWT), log),
		catalogapp.NewProductService(persistence.NewGormProductRepository(db.DB), log),
		tradeapp.NewOrderService(persistence.NewGormTransactionScope(db.DB),
			persistence.NewGormOrderRepository(db.DB), customerRepo, log),
		seed,
		log,
	)

	if _, err := seeder.Run(context.Background(), counts); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
}

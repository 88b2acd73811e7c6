package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/calebmonroy/stocktrail-backend/api/routes"
	"github.com/calebmonroy/stocktrail-backend/internal/inventories"
	"github.com/calebmonroy/stocktrail-backend/internal/items"
	"github.com/calebmonroy/stocktrail-backend/internal/managers"
	"github.com/calebmonroy/stocktrail-backend/internal/stocklog"
	"github.com/calebmonroy/stocktrail-backend/internal/transfer"
	"github.com/calebmonroy/stocktrail-backend/pkg/config"
	"github.com/calebmonroy/stocktrail-backend/pkg/db"
	"github.com/calebmonroy/stocktrail-backend/pkg/logger"
	"github.com/calebmonroy/stocktrail-backend/pkg/metrics"
	"github.com/calebmonroy/stocktrail-backend/pkg/migrate"
	"github.com/calebmonroy/stocktrail-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	stockMetrics := metrics.NewStockMetrics(registry)

	inventoryRepo := inventories.NewRepository(dbClient.DB())
	managerRepo := managers.NewRepository(dbClient.DB())
	itemRepo := items.NewRepository(dbClient.DB())
	stockLogRepo := stocklog.NewRepository(dbClient.DB())

	inventoryService, err := inventories.NewService(inventoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	managerService, err := managers.NewService(managerRepo, inventoryRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create manager service", err)
		os.Exit(1)
	}

	stockLogService, err := stocklog.NewService(stockLogRepo, inventoryRepo, stockMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create stock log service", err)
		os.Exit(1)
	}

	itemService, err := items.NewService(itemRepo, inventoryRepo, managerRepo, stockLogService, dbClient, stockMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create item service", err)
		os.Exit(1)
	}

	transferService, err := transfer.NewService(inventoryRepo, itemRepo, itemService)
	if err != nil {
		logg.Error(context.Background(), "failed to create transfer service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, routes.Services{
			Inventories: inventoryService,
			Managers:    managerService,
			Items:       itemService,
			StockLogs:   stockLogService,
			Transfer:    transferService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/dmbaptista/stockwise/internal/catalog"
	catalogStore "github.com/dmbaptista/stockwise/internal/catalog/store"
	"github.com/dmbaptista/stockwise/internal/config"
	"github.com/dmbaptista/stockwise/internal/database"
	stockwiseHttp "github.com/dmbaptista/stockwise/internal/http"
	catalogHandler "github.com/dmbaptista/stockwise/internal/http/catalog"
	exportHandler "github.com/dmbaptista/stockwise/internal/http/export"
	importHandler "github.com/dmbaptista/stockwise/internal/http/importsales"
	salesHandler "github.com/dmbaptista/stockwise/internal/http/sales"
	statsHandler "github.com/dmbaptista/stockwise/internal/http/stats"
	syncHandler "github.com/dmbaptista/stockwise/internal/http/sync"
	"github.com/dmbaptista/stockwise/internal/importer"
	"github.com/dmbaptista/stockwise/internal/reconcile"
	"github.com/dmbaptista/stockwise/internal/sale"
	saleStore "github.com/dmbaptista/stockwise/internal/sale/store"
	"github.com/dmbaptista/stockwise/internal/stats"
	"github.com/dmbaptista/stockwise/internal/syncer"
)

func main() {
	// Local development convenience; production sets real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		catalogService = catalog.NewService(catalogStore.New(db))
		saleService    = sale.NewService(saleStore.New(db))
		importService  = importer.NewService()
		engine         = reconcile.NewEngine()
		aggregator     = stats.NewAggregator(engine)
		syncService    = syncer.NewService(catalogService, cfg.Sync.ChunkSize)
	)

	var (
		catalogH = catalogHandler.NewHandler(catalogService, saleService, engine)
		salesH   = salesHandler.NewHandler(saleService, engine)
		importH  = importHandler.NewHandler(importService, saleService, engine)
		statsH   = statsHandler.NewHandler(catalogService, saleService, aggregator)
		syncH    = syncHandler.NewHandler(catalogService, saleService, syncService)
		exportH  = exportHandler.NewHandler(catalogService, saleService, engine, aggregator)
	)

	router := stockwiseHttp.New(catalogH, salesH, importH, statsH, syncH, exportH, cfg.Auth.Secret)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

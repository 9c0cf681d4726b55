// Command report writes the current stock report to an XLSX file.
// Meant for cron jobs and end-of-month closings where the dashboard is
// not running.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmbaptista/stockwise/internal/catalog"
	catalogStore "github.com/dmbaptista/stockwise/internal/catalog/store"
	"github.com/dmbaptista/stockwise/internal/config"
	"github.com/dmbaptista/stockwise/internal/database"
	"github.com/dmbaptista/stockwise/internal/export"
	"github.com/dmbaptista/stockwise/internal/reconcile"
	"github.com/dmbaptista/stockwise/internal/sale"
	saleStore "github.com/dmbaptista/stockwise/internal/sale/store"
	"github.com/dmbaptista/stockwise/internal/stats"
)

func main() {
	output := flag.String("o", "", "output file (default stock-report-YYYY-MM-DD.xlsx)")
	flag.Parse()

	if err := run(*output); err != nil {
		slog.Error("report failed", "error", err)
		os.Exit(1)
	}
}

func run(output string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	catalogService := catalog.NewService(catalogStore.New(db))
	saleService := sale.NewService(saleStore.New(db))
	engine := reconcile.NewEngine()
	aggregator := stats.NewAggregator(engine)

	products, err := catalogService.List(ctx, catalog.ListFilter{})
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	sales, err := saleService.List(ctx, sale.ListFilter{})
	if err != nil {
		return fmt.Errorf("list sales: %w", err)
	}

	rows := make([]export.Row, 0, len(products))

	for _, p := range products {
		res, err := engine.Reconcile(p, sales)
		if err != nil {
			if errors.Is(err, catalog.ErrInvalidSnapshot) {
				slog.Warn("skipping product with invalid snapshot", "product", p.Name, "error", err)
				continue
			}

			return fmt.Errorf("reconcile %s: %w", p.Name, err)
		}

		rows = append(rows, export.FromResult(p, res))
	}

	summary, err := aggregator.Aggregate(ctx, products, sales)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	if output == "" {
		output = fmt.Sprintf("stock-report-%s.xlsx", time.Now().Format(time.DateOnly))
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if err := export.WriteReport(f, rows, summary); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	slog.Info("report written", "file", output, "products", len(rows),
		"inconsistent", summary.Inconsistent, "low_stock", summary.LowStock)

	return nil
}

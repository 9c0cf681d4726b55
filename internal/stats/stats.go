// Package stats rolls reconciled per-product results up into fleet-wide
// inventory metrics.
package stats

import (
	"context"
	"errors"

	"github.com/dmbaptista/stockwise/internal/catalog"
	"github.com/dmbaptista/stockwise/internal/match"
	"github.com/dmbaptista/stockwise/internal/reconcile"
	"github.com/dmbaptista/stockwise/internal/sale"
)

// Summary is the fleet-wide roll-up of one reconciliation pass.
type Summary struct {
	// TotalProducts counts products that reconciled successfully; products
	// with an invalid snapshot are counted in InvalidSnapshots instead.
	TotalProducts int
	// TotalStock is the raw sum of per-product final stock, including
	// negative values, so the total reconciles arithmetically with the
	// per-product figures. Presentation layers may clamp for display.
	TotalStock int
	TotalSold  int
	// TotalRevenue sums the authoritative sale totals of attributed sales,
	// in cents. Never recomputed from quantity and unit price.
	TotalRevenue int64
	OutOfStock   int
	LowStock     int
	Inconsistent int
	// UnmatchedSales counts sale records that resolve to no catalog
	// product at all. They contribute to no product's stock and are
	// surfaced here rather than silently dropped.
	UnmatchedSales   int
	InvalidSnapshots int
}

// Aggregator runs reconciliation across the whole catalog. It shares the
// engine (and therefore its memoization cache) with other callers.
type Aggregator struct {
	engine *reconcile.Engine
}

func NewAggregator(engine *reconcile.Engine) *Aggregator {
	return &Aggregator{engine: engine}
}

// Aggregate reconciles every product against the sale history and sums
// the results. Empty inputs yield a zero summary, not an error.
// Cancellation is checked between product iterations; a cancelled run
// returns the context error and no partial summary.
func (a *Aggregator) Aggregate(ctx context.Context, products []*catalog.Product, sales []*sale.Sale) (Summary, error) {
	var sum Summary

	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}

		res, err := a.engine.Reconcile(p, sales)
		if err != nil {
			if errors.Is(err, catalog.ErrInvalidSnapshot) {
				sum.InvalidSnapshots++
				continue
			}

			return Summary{}, err
		}

		sum.TotalProducts++
		sum.TotalStock += res.FinalStock

		for _, s := range res.Attributed {
			sum.TotalSold += s.Quantity
			sum.TotalRevenue += s.Total
		}

		switch {
		case res.FinalStock == 0:
			sum.OutOfStock++
		case res.FinalStock > 0 && res.FinalStock <= p.MinStock:
			sum.LowStock++
		}

		if res.Inconsistent {
			sum.Inconsistent++
		}
	}

	for _, s := range sales {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}

		if p, _ := match.Match(s.ProductName, s.Category, products); p == nil {
			sum.UnmatchedSales++
		}
	}

	return sum, nil
}

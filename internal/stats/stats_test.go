package stats_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmbaptista/stockwise/internal/catalog"
	"github.com/dmbaptista/stockwise/internal/reconcile"
	"github.com/dmbaptista/stockwise/internal/sale"
	"github.com/dmbaptista/stockwise/internal/stats"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregator_EmptyInputs(t *testing.T) {
	agg := stats.NewAggregator(reconcile.NewEngine())

	sum, err := agg.Aggregate(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, stats.Summary{}, sum)
}

func TestAggregator_Aggregate(t *testing.T) {
	products := []*catalog.Product{
		{ID: uuid.New(), Name: "Coca Cola", Category: "Boissons", InitialStock: 50, MinStock: 10},
		{ID: uuid.New(), Name: "Evian", Category: "Boissons", InitialStock: 4, MinStock: 5},
		{ID: uuid.New(), Name: "Marlboro Gold", Category: "Tabac", InitialStock: 3, MinStock: 5},
		{ID: uuid.New(), Name: "Chips Paprika", Category: "Snacks", InitialStock: -2, MinStock: 5},
	}

	sales := []*sale.Sale{
		// 8 units of cola at a discounted total.
		{ID: uuid.New(), ProductName: "Coca Cola", Category: "Boissons", Quantity: 8, UnitPrice: 250, Total: 1900, OccurredAt: date(2024, 1, 15)},
		// Sells Marlboro below zero: 3 - 5 = -2.
		{ID: uuid.New(), ProductName: "Marlboro Gold 20s", Category: "Tabac", Quantity: 5, UnitPrice: 1200, Total: 6000, OccurredAt: date(2024, 1, 16)},
		// No catalog entry for this one.
		{ID: uuid.New(), ProductName: "Red Bull", Category: "Boissons", Quantity: 2, UnitPrice: 180, Total: 360, OccurredAt: date(2024, 1, 17)},
	}

	agg := stats.NewAggregator(reconcile.NewEngine())

	sum, err := agg.Aggregate(context.Background(), products, sales)
	require.NoError(t, err)

	// The invalid snapshot (negative initial stock) is excluded from the
	// totals and reported separately.
	assert.Equal(t, 3, sum.TotalProducts)
	assert.Equal(t, 1, sum.InvalidSnapshots)

	// 42 (cola) + 4 (evian) + -2 (marlboro): raw sum keeps the negative.
	assert.Equal(t, 44, sum.TotalStock)
	assert.Equal(t, 13, sum.TotalSold)

	// Revenue comes from the authoritative totals, not quantity x price.
	assert.Equal(t, int64(7900), sum.TotalRevenue)

	assert.Equal(t, 0, sum.OutOfStock)
	assert.Equal(t, 1, sum.LowStock)      // Evian: 4 <= 5
	assert.Equal(t, 1, sum.Inconsistent)  // Marlboro went negative
	assert.Equal(t, 1, sum.UnmatchedSales) // Red Bull
}

func TestAggregator_OutOfStock(t *testing.T) {
	products := []*catalog.Product{
		{ID: uuid.New(), Name: "Evian", Category: "Boissons", InitialStock: 2, MinStock: 5},
	}

	sales := []*sale.Sale{
		{ID: uuid.New(), ProductName: "Evian", Category: "Boissons", Quantity: 2, Total: 240, OccurredAt: date(2024, 1, 15)},
	}

	agg := stats.NewAggregator(reconcile.NewEngine())

	sum, err := agg.Aggregate(context.Background(), products, sales)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.OutOfStock)
	assert.Equal(t, 0, sum.LowStock)
	assert.Equal(t, 0, sum.TotalStock)
}

func TestAggregator_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	products := []*catalog.Product{
		{ID: uuid.New(), Name: "Coca Cola", Category: "Boissons", InitialStock: 50},
	}

	agg := stats.NewAggregator(reconcile.NewEngine())

	sum, err := agg.Aggregate(ctx, products, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, stats.Summary{}, sum)
}

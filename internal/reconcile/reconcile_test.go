package reconcile_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmbaptista/stockwise/internal/catalog"
	"github.com/dmbaptista/stockwise/internal/reconcile"
	"github.com/dmbaptista/stockwise/internal/sale"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateAt(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func cola(id uuid.UUID, qty int, occurredAt time.Time) *sale.Sale {
	return &sale.Sale{
		ID:          id,
		ProductName: "Coca Cola",
		Category:    "Boissons",
		Quantity:    qty,
		UnitPrice:   250,
		Total:       int64(qty) * 250,
		OccurredAt:  occurredAt,
	}
}

func TestEngine_Reconcile_PreSnapshotSalesAreIgnored(t *testing.T) {
	snapshot := date(2024, 1, 10)
	p := &catalog.Product{
		ID:               uuid.New(),
		Name:             "Coca Cola",
		Category:         "Boissons",
		MinStock:         10,
		InitialStock:     50,
		InitialStockDate: &snapshot,
	}

	t1 := cola(uuid.New(), 5, date(2024, 1, 5))
	t2 := cola(uuid.New(), 8, date(2024, 1, 15))
	t3 := cola(uuid.New(), 3, date(2024, 1, 20))

	res, err := reconcile.NewEngine().Reconcile(p, []*sale.Sale{t1, t2, t3})
	require.NoError(t, err)

	assert.Equal(t, 39, res.FinalStock)
	assert.Equal(t, []*sale.Sale{t2, t3}, res.Attributed)
	assert.Equal(t, []*sale.Sale{t1}, res.Ignored)
	assert.True(t, res.Inconsistent)
	assert.Contains(t, res.Warning, "1 sale(s) totalling 5 unit(s)")
	assert.Contains(t, res.Warning, "2024-01-10")
}

func TestEngine_Reconcile_SameDayIsAttributable(t *testing.T) {
	snapshot := date(2024, 1, 10)
	p := &catalog.Product{
		ID:               uuid.New(),
		Name:             "Coca Cola",
		Category:         "Boissons",
		InitialStock:     50,
		InitialStockDate: &snapshot,
	}

	// Sold at 09:00 on the snapshot day: time of day is ignored, the sale
	// counts against the snapshot.
	s := cola(uuid.New(), 4, dateAt(2024, 1, 10, 9))

	res, err := reconcile.NewEngine().Reconcile(p, []*sale.Sale{s})
	require.NoError(t, err)

	assert.Equal(t, 46, res.FinalStock)
	assert.Len(t, res.Attributed, 1)
	assert.Empty(t, res.Ignored)
	assert.False(t, res.Inconsistent)
	assert.Empty(t, res.Warning)
}

func TestEngine_Reconcile_NoSnapshotDateAttributesEverything(t *testing.T) {
	p := &catalog.Product{
		ID:           uuid.New(),
		Name:         "Coca Cola",
		Category:     "Boissons",
		InitialStock: 10,
	}

	sales := []*sale.Sale{
		cola(uuid.New(), 2, date(2019, 6, 1)),
		cola(uuid.New(), 3, date(2024, 1, 1)),
	}

	res, err := reconcile.NewEngine().Reconcile(p, sales)
	require.NoError(t, err)

	assert.Equal(t, 5, res.FinalStock)
	assert.Len(t, res.Attributed, 2)
	assert.Empty(t, res.Ignored)
}

func TestEngine_Reconcile_NegativeStockIsPreservedAndFlagged(t *testing.T) {
	p := &catalog.Product{
		ID:           uuid.New(),
		Name:         "Coca Cola",
		Category:     "Boissons",
		InitialStock: 5,
	}

	res, err := reconcile.NewEngine().Reconcile(p, []*sale.Sale{
		cola(uuid.New(), 8, date(2024, 1, 15)),
	})
	require.NoError(t, err)

	assert.Equal(t, -3, res.FinalStock)
	assert.True(t, res.Inconsistent)
	assert.Contains(t, res.Warning, "final stock is -3")
}

func TestEngine_Reconcile_UnmatchedSalesAreExcluded(t *testing.T) {
	p := &catalog.Product{
		ID:           uuid.New(),
		Name:         "Coca Cola",
		Category:     "Boissons",
		InitialStock: 50,
	}

	unrelated := &sale.Sale{
		ID:          uuid.New(),
		ProductName: "Marlboro Gold",
		Category:    "Tabac",
		Quantity:    2,
		OccurredAt:  date(2024, 1, 15),
	}

	// A record missing its category fails every tier and is excluded,
	// never an error.
	malformed := &sale.Sale{
		ID:          uuid.New(),
		ProductName: "Coca Cola",
		Quantity:    7,
		OccurredAt:  date(2024, 1, 15),
	}

	res, err := reconcile.NewEngine().Reconcile(p, []*sale.Sale{unrelated, malformed})
	require.NoError(t, err)

	assert.Equal(t, 50, res.FinalStock)
	assert.Empty(t, res.Attributed)
	assert.Empty(t, res.Ignored)
	assert.False(t, res.Inconsistent)
}

func TestEngine_Reconcile_Conservation(t *testing.T) {
	// FinalStock + sum(attributed quantities) == InitialStock must hold
	// exactly, even when FinalStock goes negative.
	snapshot := date(2024, 1, 10)

	tests := []struct {
		name         string
		initialStock int
		quantities   []int
	}{
		{name: "NoSales", initialStock: 20, quantities: nil},
		{name: "PartialDeduction", initialStock: 50, quantities: []int{8, 3}},
		{name: "ExactDepletion", initialStock: 11, quantities: []int{8, 3}},
		{name: "Oversold", initialStock: 5, quantities: []int{8, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &catalog.Product{
				ID:               uuid.New(),
				Name:             "Coca Cola",
				Category:         "Boissons",
				InitialStock:     tt.initialStock,
				InitialStockDate: &snapshot,
			}

			var sales []*sale.Sale
			for _, q := range tt.quantities {
				sales = append(sales, cola(uuid.New(), q, date(2024, 1, 15)))
			}

			res, err := reconcile.NewEngine().Reconcile(p, sales)
			require.NoError(t, err)

			attributed := 0
			for _, s := range res.Attributed {
				attributed += s.Quantity
			}

			assert.Equal(t, tt.initialStock, res.FinalStock+attributed)
		})
	}
}

func TestEngine_Reconcile_Idempotent(t *testing.T) {
	snapshot := date(2024, 1, 10)
	p := &catalog.Product{
		ID:               uuid.New(),
		Name:             "Coca Cola",
		Category:         "Boissons",
		InitialStock:     50,
		InitialStockDate: &snapshot,
	}

	sales := []*sale.Sale{
		cola(uuid.New(), 5, date(2024, 1, 5)),
		cola(uuid.New(), 8, date(2024, 1, 15)),
	}

	engine := reconcile.NewEngine()

	first, err := engine.Reconcile(p, sales)
	require.NoError(t, err)

	second, err := engine.Reconcile(p, sales)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Same inputs through a fresh engine (no cache) agree too.
	third, err := reconcile.NewEngine().Reconcile(p, sales)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestEngine_Reconcile_CacheTracksInputChanges(t *testing.T) {
	p := &catalog.Product{
		ID:           uuid.New(),
		Name:         "Coca Cola",
		Category:     "Boissons",
		InitialStock: 50,
	}

	sales := []*sale.Sale{cola(uuid.New(), 8, date(2024, 1, 15))}

	engine := reconcile.NewEngine()

	res, err := engine.Reconcile(p, sales)
	require.NoError(t, err)
	assert.Equal(t, 42, res.FinalStock)

	// A new sale changes the fingerprint; the cached result must not be
	// served.
	sales = append(sales, cola(uuid.New(), 2, date(2024, 1, 16)))

	res, err = engine.Reconcile(p, sales)
	require.NoError(t, err)
	assert.Equal(t, 40, res.FinalStock)

	// So does a change to the snapshot itself.
	p.InitialStock = 60

	res, err = engine.Reconcile(p, sales)
	require.NoError(t, err)
	assert.Equal(t, 50, res.FinalStock)
}

func TestEngine_Invalidate(t *testing.T) {
	p := &catalog.Product{
		ID:           uuid.New(),
		Name:         "Coca Cola",
		Category:     "Boissons",
		InitialStock: 50,
	}

	sales := []*sale.Sale{cola(uuid.New(), 8, date(2024, 1, 15))}

	engine := reconcile.NewEngine()

	first, err := engine.Reconcile(p, sales)
	require.NoError(t, err)

	engine.Invalidate(p.ID)

	second, err := engine.Reconcile(p, sales)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Invalidating everything is also allowed.
	engine.Invalidate()

	third, err := engine.Reconcile(p, sales)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestEngine_Reconcile_InvalidSnapshot(t *testing.T) {
	engine := reconcile.NewEngine()

	_, err := engine.Reconcile(&catalog.Product{
		ID:           uuid.New(),
		Name:         "Coca Cola",
		InitialStock: -1,
	}, nil)
	assert.ErrorIs(t, err, catalog.ErrInvalidSnapshot)

	_, err = engine.Reconcile(&catalog.Product{
		ID:       uuid.New(),
		Name:     "Coca Cola",
		MinStock: -1,
	}, nil)
	assert.ErrorIs(t, err, catalog.ErrInvalidSnapshot)

	_, err = engine.Reconcile(nil, nil)
	assert.Error(t, err)
}

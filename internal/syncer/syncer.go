// Package syncer discovers products that exist only in the sale history
// and materializes catalog entries for them with estimated attributes.
package syncer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmbaptista/stockwise/internal/catalog"
	"github.com/dmbaptista/stockwise/internal/match"
	"github.com/dmbaptista/stockwise/internal/normalize"
	"github.com/dmbaptista/stockwise/internal/sale"
)

// Writer persists one chunk of synthesized products atomically: either
// the whole chunk commits or none of it does.
type Writer interface {
	CreateProducts(ctx context.Context, products []*catalog.Product) error
}

const (
	defaultChunkSize = 50

	// Floors for estimated attributes of synthesized products.
	minInitialStock = 10
	minMinStock     = 5
)

type Service struct {
	writer    Writer
	chunkSize int
}

func NewService(writer Writer, chunkSize int) *Service {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	return &Service{writer: writer, chunkSize: chunkSize}
}

// Result reports one sync run. Created lists only products whose chunk
// commit was confirmed; on a chunk failure it holds the chunks that made
// it, so partial success is visible rather than hidden.
type Result struct {
	Created []*catalog.Product
	Groups  int
	Missing int
	Summary string
}

// group accumulates one (normalized name, normalized category) bucket of
// sales.
type group struct {
	name      string // representative spelling, first seen
	category  string
	quantity  int
	records   int
	meanPrice decimal.Decimal // incremental mean in cents, weighted by record count
	firstSale time.Time
	lastSale  time.Time
}

// Sync groups the sale history, finds groups no catalog product matches,
// and persists a synthesized product per missing group in chunked
// all-or-nothing writes.
func (s *Service) Sync(ctx context.Context, sales []*sale.Sale, products []*catalog.Product) (*Result, error) {
	groups := groupSales(sales)

	var missing []*group

	for _, g := range groups {
		if p, _ := match.Match(g.name, g.category, products); p != nil {
			continue
		}

		missing = append(missing, g)
	}

	res := &Result{Groups: len(groups), Missing: len(missing)}

	if len(missing) == 0 {
		res.Summary = fmt.Sprintf("all %d sale group(s) already match catalog products; nothing to create", len(groups))
		return res, nil
	}

	var committed []*group

	for start := 0; start < len(missing); start += s.chunkSize {
		if err := ctx.Err(); err != nil {
			res.Summary = partialSummary(len(committed), len(missing))
			return res, err
		}

		end := min(start+s.chunkSize, len(missing))
		chunkGroups := missing[start:end]

		chunk := make([]*catalog.Product, len(chunkGroups))
		for i, g := range chunkGroups {
			chunk[i] = synthesize(g)
		}

		if err := s.writer.CreateProducts(ctx, chunk); err != nil {
			res.Summary = partialSummary(len(committed), len(missing))
			return res, fmt.Errorf("persisting products %d-%d: %w", start+1, end, err)
		}

		res.Created = append(res.Created, chunk...)
		committed = append(committed, chunkGroups...)
	}

	res.Summary = summarize(committed)

	return res, nil
}

// groupSales buckets sales by normalized identity, keeping the first seen
// spelling for display. Groups come back sorted by that spelling so a
// sync run is deterministic for a given sale set.
func groupSales(sales []*sale.Sale) []*group {
	byKey := make(map[string]*group)

	for _, s := range sales {
		name := normalize.Normalize(s.ProductName)
		if name == "" {
			continue
		}

		key := name + "\x00" + normalize.Category(s.Category)

		g, ok := byKey[key]
		if !ok {
			g = &group{
				name:      strings.TrimSpace(s.ProductName),
				category:  strings.TrimSpace(s.Category),
				firstSale: s.OccurredAt,
				lastSale:  s.OccurredAt,
			}
			byKey[key] = g
		}

		g.quantity += s.Quantity

		// Incremental mean of unit prices, weighted by record count (not
		// by quantity): mean += (price - mean) / n.
		g.records++
		g.meanPrice = g.meanPrice.Add(
			decimal.NewFromInt(s.UnitPrice).Sub(g.meanPrice).Div(decimal.NewFromInt(int64(g.records))))

		if s.OccurredAt.Before(g.firstSale) {
			g.firstSale = s.OccurredAt
		}

		if s.OccurredAt.After(g.lastSale) {
			g.lastSale = s.OccurredAt
		}
	}

	groups := make([]*group, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, g)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].name != groups[j].name {
			return groups[i].name < groups[j].name
		}

		return groups[i].category < groups[j].category
	})

	return groups
}

// synthesize estimates catalog attributes for a product known only from
// its sales. CurrentStock stays zero: what is actually on hand is unknown
// until an operator counts it.
func synthesize(g *group) *catalog.Product {
	initialStock := g.quantity
	if initialStock < minInitialStock {
		initialStock = minInitialStock
	}

	minStock := (g.quantity + 9) / 10
	if minStock < minMinStock {
		minStock = minMinStock
	}

	return &catalog.Product{
		Name:         g.name,
		Category:     g.category,
		UnitPrice:    g.meanPrice.Round(0).IntPart(),
		MinStock:     minStock,
		InitialStock: initialStock,
		CurrentStock: 0,
		Description: fmt.Sprintf("Created from sales history: %d sale(s) since %s",
			g.records, g.firstSale.Format(time.DateOnly)),
	}
}

func summarize(committed []*group) string {
	units := 0
	records := 0
	byCategory := make(map[string]int)

	for _, g := range committed {
		units += g.quantity
		records += g.records

		category := g.category
		if category == "" {
			category = "(uncategorized)"
		}

		byCategory[category]++
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}

	sort.Strings(categories)

	parts := make([]string, 0, len(categories)+1)
	parts = append(parts, fmt.Sprintf("created %d product(s) covering %d unit(s) across %d sale(s)",
		len(committed), units, records))

	for _, c := range categories {
		parts = append(parts, fmt.Sprintf("%s: %d", c, byCategory[c]))
	}

	return strings.Join(parts, "; ")
}

func partialSummary(committed, missing int) string {
	return fmt.Sprintf("committed %d of %d missing product(s) before the run stopped", committed, missing)
}

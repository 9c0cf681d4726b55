// Package reconcile computes a product's current stock level from its
// initial-stock snapshot and the stream of point-of-sale records
// attributable to it.
package reconcile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmbaptista/stockwise/internal/catalog"
	"github.com/dmbaptista/stockwise/internal/match"
	"github.com/dmbaptista/stockwise/internal/sale"
)

// Result is the outcome of reconciling one product. It is a value object:
// a pure function of the product snapshot and the sale set.
type Result struct {
	FinalStock int
	// Attributed are the matched sales deducted from the initial count.
	Attributed []*sale.Sale
	// Ignored are matched sales that predate the initial stock count and
	// therefore must not be deducted a second time.
	Ignored []*sale.Sale
	// Inconsistent flags results that need operator attention: a negative
	// final stock, or sales older than the stock count itself.
	Inconsistent bool
	Warning      string
}

// Engine reconciles products against sale history. Reconciliation is
// O(sales) per product with all matching done in memory, so results are
// memoized per product and reused while the input fingerprint is
// unchanged. The engine is safe for concurrent use.
type Engine struct {
	cache *Cache
}

func NewEngine() *Engine {
	return &Engine{cache: NewCache()}
}

// Reconcile computes the current stock of the product from its snapshot
// and the given sales. Sales that do not match the product are excluded,
// never an error; only a structurally invalid snapshot is rejected.
func (e *Engine) Reconcile(p *catalog.Product, sales []*sale.Sale) (Result, error) {
	if p == nil {
		return Result{}, errors.New("reconcile: nil product")
	}

	if err := catalog.ValidateSnapshot(p.InitialStock, p.MinStock); err != nil {
		return Result{}, err
	}

	fp, fpErr := fingerprint(p, sales)
	if fpErr == nil {
		if res, ok := e.cache.get(p.ID, fp); ok {
			return res, nil
		}
	}

	res := compute(p, sales)

	if fpErr == nil {
		e.cache.put(p.ID, fp, res)
	}

	return res, nil
}

// Invalidate drops cached results for the given products, or for every
// product when called with no arguments. Callers invalidate eagerly on
// any mutation of products or sales; stale reads are never acceptable.
func (e *Engine) Invalidate(ids ...uuid.UUID) {
	e.cache.Invalidate(ids...)
}

func compute(p *catalog.Product, sales []*sale.Sale) Result {
	var res Result

	sold := 0
	ignoredUnits := 0

	for _, s := range sales {
		if _, ok := match.Matches(s.ProductName, s.Category, p); !ok {
			continue
		}

		if attributable(s.OccurredAt, p.InitialStockDate) {
			res.Attributed = append(res.Attributed, s)
			sold += s.Quantity
		} else {
			res.Ignored = append(res.Ignored, s)
			ignoredUnits += s.Quantity
		}
	}

	res.FinalStock = p.InitialStock - sold

	var warnings []string

	if res.FinalStock < 0 {
		warnings = append(warnings, fmt.Sprintf(
			"final stock is %d: %d units sold against an initial count of %d",
			res.FinalStock, sold, p.InitialStock))
	}

	if len(res.Ignored) > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d sale(s) totalling %d unit(s) predate the initial stock count of %s; the count itself may be unreliable",
			len(res.Ignored), ignoredUnits, p.InitialStockDate.Format(time.DateOnly)))
	}

	if len(warnings) > 0 {
		res.Inconsistent = true
		res.Warning = strings.Join(warnings, "; ")
	}

	return res
}

// attributable compares at day resolution: a sale on the same day as the
// stock count still counts against it. A product without a count date is
// treated as counted at the dawn of time, so every sale is attributable.
func attributable(occurredAt time.Time, countDate *time.Time) bool {
	if countDate == nil {
		return true
	}

	return !day(occurredAt).Before(day(*countDate))
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

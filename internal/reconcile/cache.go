package reconcile

import (
	"sync"

	"github.com/google/uuid"
	"github.com/mitchellh/hashstructure/v2"

	"github.com/dmbaptista/stockwise/internal/catalog"
	"github.com/dmbaptista/stockwise/internal/sale"
)

// fingerprintInput captures every field the reconciliation result depends
// on. Any change to the snapshot or the sale set changes the hash, so a
// stale cache entry can never be served.
type fingerprintInput struct {
	Name             string
	Category         string
	InitialStock     int
	InitialStockDate int64
	Sales            []saleKey
}

type saleKey struct {
	ID       uuid.UUID
	Name     string
	Category string
	Quantity int
	Total    int64
	Occurred int64
}

func fingerprint(p *catalog.Product, sales []*sale.Sale) (uint64, error) {
	in := fingerprintInput{
		Name:         p.Name,
		Category:     p.Category,
		InitialStock: p.InitialStock,
		Sales:        make([]saleKey, 0, len(sales)),
	}

	if p.InitialStockDate != nil {
		in.InitialStockDate = day(*p.InitialStockDate).Unix()
	}

	for _, s := range sales {
		in.Sales = append(in.Sales, saleKey{
			ID:       s.ID,
			Name:     s.ProductName,
			Category: s.Category,
			Quantity: s.Quantity,
			Total:    s.Total,
			Occurred: s.OccurredAt.Unix(),
		})
	}

	return hashstructure.Hash(in, hashstructure.FormatV2, nil)
}

// Cache memoizes reconciliation results per product, validated by input
// fingerprint. Readers never observe a half-written entry; a miss simply
// recomputes, there is no waiting on another goroutine's computation.
type Cache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]cacheEntry
}

type cacheEntry struct {
	fingerprint uint64
	result      Result
}

func NewCache() *Cache {
	return &Cache{entries: make(map[uuid.UUID]cacheEntry)}
}

func (c *Cache) get(id uuid.UUID, fp uint64) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok || e.fingerprint != fp {
		return Result{}, false
	}

	return e.result, true
}

func (c *Cache) put(id uuid.UUID, fp uint64, res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[id] = cacheEntry{fingerprint: fp, result: res}
}

// Invalidate drops entries for the given products, or everything when
// called with no arguments.
func (c *Cache) Invalidate(ids ...uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(ids) == 0 {
		c.entries = make(map[uuid.UUID]cacheEntry)
		return
	}

	for _, id := range ids {
		delete(c.entries, id)
	}
}

// Package match resolves free-text sale records to catalog products.
//
// Resolution is a prioritized rule chain: exact normalized equality, then
// name containment, then fuzzy token overlap. The first tier with a
// qualifying product wins; later tiers never run once one matched.
package match

import (
	"math"
	"strings"

	"github.com/dmbaptista/stockwise/internal/catalog"
	"github.com/dmbaptista/stockwise/internal/normalize"
)

// Tier identifies which matching rule resolved a record.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierContains
	TierTokens
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierContains:
		return "contains"
	case TierTokens:
		return "tokens"
	default:
		return "none"
	}
}

// tokenOverlapRatio is the share of a sale's tokens that must relate to
// catalog tokens for a token-overlap match.
const tokenOverlapRatio = 0.7

// query carries the pre-normalized sale fields so a single sale record is
// normalized once regardless of catalog size.
type query struct {
	name     string
	category string
	tokens   []string
}

func newQuery(name, category string) query {
	return query{
		name:     normalize.Normalize(name),
		category: normalize.Category(category),
		tokens:   normalize.Tokens(name),
	}
}

type rule struct {
	tier Tier
	fn   func(q query, p *catalog.Product) bool
}

// rules are evaluated strictly in order.
var rules = []rule{
	{TierExact, matchExact},
	{TierContains, matchContains},
	{TierTokens, matchTokens},
}

// Match resolves a sale's name and category against the catalog. Within a
// tier, the first qualifying product in catalog order wins. A nil product
// means the record is unmatched; that is a diagnostic condition for the
// caller, not an error.
func Match(name, category string, products []*catalog.Product) (*catalog.Product, Tier) {
	q := newQuery(name, category)
	if q.name == "" {
		return nil, TierNone
	}

	for _, r := range rules {
		for _, p := range products {
			if r.fn(q, p) {
				return p, r.tier
			}
		}
	}

	return nil, TierNone
}

// Matches reports whether a sale record resolves to this specific product,
// and at which tier. This is the pairwise test reconciliation uses to
// attribute sales to a product.
func Matches(name, category string, p *catalog.Product) (Tier, bool) {
	q := newQuery(name, category)
	if q.name == "" {
		return TierNone, false
	}

	for _, r := range rules {
		if r.fn(q, p) {
			return r.tier, true
		}
	}

	return TierNone, false
}

func sameCategory(q query, p *catalog.Product) bool {
	return q.category == normalize.Category(p.Category)
}

func matchExact(q query, p *catalog.Product) bool {
	return sameCategory(q, p) && q.name == normalize.Normalize(p.Name)
}

func matchContains(q query, p *catalog.Product) bool {
	if !sameCategory(q, p) {
		return false
	}

	name := normalize.Normalize(p.Name)
	if name == "" {
		return false
	}

	return strings.Contains(name, q.name) || strings.Contains(q.name, name)
}

func matchTokens(q query, p *catalog.Product) bool {
	if !sameCategory(q, p) {
		return false
	}

	if len(q.tokens) == 0 {
		return false
	}

	catalogTokens := normalize.Tokens(p.Name)
	if len(catalogTokens) == 0 {
		return false
	}

	needed := int(math.Ceil(tokenOverlapRatio * float64(len(q.tokens))))

	hits := 0

	for _, qt := range q.tokens {
		for _, ct := range catalogTokens {
			if strings.Contains(ct, qt) || strings.Contains(qt, ct) {
				hits++
				break
			}
		}
	}

	return hits >= needed
}

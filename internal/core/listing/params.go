// Package listing derives display lists from fetched collections: status tabs,
// text search, category and condition filters, stable sorting and catalog
// grouping. Everything here is pure; inputs are never mutated.
package listing

import "strings"

// SortKey selects the order of a derived view.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortPriceLow  SortKey = "price_low"
	SortPriceHigh SortKey = "price_high"

	DefaultSort = SortNewest
)

// ParseSortKey accepts the canonical keys and the hyphenated spellings
// ("price-low") older clients send. Anything else falls back to DefaultSort.
func ParseSortKey(s string) SortKey {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case string(SortOldest):
		return SortOldest
	case string(SortPriceLow):
		return SortPriceLow
	case string(SortPriceHigh):
		return SortPriceHigh
	default:
		return DefaultSort
	}
}

// Params is the mutable, client-only state of a listing screen.
type Params struct {
	Search    string  `json:"search"`
	Category  string  `json:"category"`
	Condition string  `json:"condition"`
	Tab       string  `json:"tab"`
	Sort      SortKey `json:"sort"`
}

// DefaultParams returns params with the default sort and the given tab.
func DefaultParams(tab string) Params {
	return Params{Tab: tab, Sort: DefaultSort}
}

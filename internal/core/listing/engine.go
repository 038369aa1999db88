package listing

import (
	"slices"
	"strings"

	"github.com/99minutos/storefront/internal/core/domain"
)

type conditioned interface {
	ConditionKey() string
}

// Filter keeps the entities matching every active parameter, in input order.
// The sort key is ignored. Search is matched as typed: only "" matches everything.
func Filter[T domain.Entity](items []T, tabs *TabSet, p Params) []T {
	needle := strings.ToLower(p.Search)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !tabs.Match(p.Tab, it.EntityStatus()) {
			continue
		}
		if p.Category != "" && it.CategoryKey() != p.Category {
			continue
		}
		if p.Condition != "" {
			c, ok := any(it).(conditioned)
			if !ok || c.ConditionKey() != p.Condition {
				continue
			}
		}
		if needle != "" && !matchesSearch(it, needle) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matchesSearch(it domain.Entity, needle string) bool {
	if strings.Contains(strings.ToLower(it.EntityName()), needle) {
		return true
	}
	label := it.CategoryLabel()
	return label != "" && strings.Contains(strings.ToLower(label), needle)
}

// Sort orders items in place by key. Ties keep their relative order.
func Sort[T domain.Entity](items []T, key SortKey) {
	var cmp func(a, b T) int
	switch key {
	case SortOldest:
		cmp = func(a, b T) int { return a.EntityCreatedAt().Compare(b.EntityCreatedAt()) }
	case SortPriceLow:
		cmp = func(a, b T) int { return compareFloat(a.EntityPrice(), b.EntityPrice()) }
	case SortPriceHigh:
		cmp = func(a, b T) int { return compareFloat(b.EntityPrice(), a.EntityPrice()) }
	default:
		cmp = func(a, b T) int { return b.EntityCreatedAt().Compare(a.EntityCreatedAt()) }
	}
	slices.SortStableFunc(items, cmp)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Derive filters then sorts. The returned slice is freshly allocated.
func Derive[T domain.Entity](items []T, tabs *TabSet, p Params) []T {
	out := Filter(items, tabs, p)
	Sort(out, p.Sort)
	return out
}

// Group is one category section of the public catalog.
type Group[T domain.Entity] struct {
	Name  string `json:"name"`
	Items []T    `json:"items"`
}

// GroupByCategory partitions the filtered collection by category label.
// Groups appear in first-seen order and members keep their input order.
func GroupByCategory[T domain.Entity](items []T, tabs *TabSet, p Params) []Group[T] {
	filtered := Filter(items, tabs, p)
	index := make(map[string]int)
	var groups []Group[T]
	for _, it := range filtered {
		name := it.CategoryLabel()
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group[T]{Name: name})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// Counts returns how many entities each tab would show, ignoring the other
// filters. Unrecognised statuses are not counted anywhere.
func Counts[T domain.Entity](items []T, tabs *TabSet) map[string]int {
	counts := make(map[string]int)
	for _, t := range tabs.Tabs() {
		counts[t.Name] = 0
	}
	for _, it := range items {
		if name, ok := tabs.TabOf(it.EntityStatus()); ok {
			counts[name]++
		}
	}
	return counts
}

package listing

import (
	"fmt"

	"github.com/99minutos/storefront/internal/core/domain"
)

// Tab maps a screen's tab name to the status value it shows.
type Tab struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// TabSet is the status vocabulary of one screen. Statuses are unique across
// tabs, so an entity matches at most one tab; entities whose status is not in
// the vocabulary match none.
type TabSet struct {
	tabs     []Tab
	byName   map[string]string
	byStatus map[string]string
}

// NewTabSet validates that names and statuses are non-empty and unique.
func NewTabSet(tabs ...Tab) (*TabSet, error) {
	ts := &TabSet{
		tabs:     make([]Tab, 0, len(tabs)),
		byName:   make(map[string]string, len(tabs)),
		byStatus: make(map[string]string, len(tabs)),
	}
	for _, t := range tabs {
		if t.Name == "" || t.Status == "" {
			return nil, fmt.Errorf("tab %+v: name and status are required", t)
		}
		if _, dup := ts.byName[t.Name]; dup {
			return nil, fmt.Errorf("duplicate tab name %q", t.Name)
		}
		if other, dup := ts.byStatus[t.Status]; dup {
			return nil, fmt.Errorf("status %q claimed by tabs %q and %q", t.Status, other, t.Name)
		}
		ts.tabs = append(ts.tabs, t)
		ts.byName[t.Name] = t.Status
		ts.byStatus[t.Status] = t.Name
	}
	return ts, nil
}

// MustTabSet is NewTabSet for package-level vocabularies.
func MustTabSet(tabs ...Tab) *TabSet {
	ts, err := NewTabSet(tabs...)
	if err != nil {
		panic(err)
	}
	return ts
}

var (
	// ProductTabs is the seller dashboard vocabulary.
	ProductTabs = MustTabSet(
		Tab{Name: "draft", Status: domain.ProductStatusDraft},
		Tab{Name: "for_sale", Status: domain.ProductStatusPublished},
	)
	// ShowcaseTabs is the public profile vocabulary.
	ShowcaseTabs = MustTabSet(
		Tab{Name: "for_sale", Status: domain.ProductStatusPublished},
		Tab{Name: "sold", Status: domain.ProductStatusSold},
	)
	// OrderStatusTabs is the order table vocabulary.
	OrderStatusTabs = MustTabSet(
		Tab{Name: "pending", Status: domain.OrderStatusPending},
		Tab{Name: "processing", Status: domain.OrderStatusProcessing},
		Tab{Name: "shipped", Status: domain.OrderStatusShipped},
		Tab{Name: "completed", Status: domain.OrderStatusCompleted},
		Tab{Name: "cancelled", Status: domain.OrderStatusCancelled},
	)
)

// Tabs returns the tabs in declaration order.
func (ts *TabSet) Tabs() []Tab {
	if ts == nil {
		return nil
	}
	out := make([]Tab, len(ts.tabs))
	copy(out, ts.tabs)
	return out
}

// Has reports whether name is a tab of this set.
func (ts *TabSet) Has(name string) bool {
	if ts == nil {
		return false
	}
	_, ok := ts.byName[name]
	return ok
}

// TabOf returns the tab an entity status belongs to.
func (ts *TabSet) TabOf(status string) (string, bool) {
	if ts == nil {
		return "", false
	}
	name, ok := ts.byStatus[status]
	return name, ok
}

// Match reports whether an entity with status is shown under tab. A nil set
// shows everything. An empty tab shows every recognised status.
func (ts *TabSet) Match(tab, status string) bool {
	if ts == nil {
		return true
	}
	owner, known := ts.byStatus[status]
	if !known {
		return false
	}
	if tab == "" {
		return true
	}
	return owner == tab
}

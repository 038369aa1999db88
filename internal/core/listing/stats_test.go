package listing

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/99minutos/storefront/internal/core/domain"
)

func TestSummarize(t *testing.T) {
	items := []domain.Product{
		{ID: "1", Status: domain.ProductStatusPublished, Price: 10.5, StockQuantity: 2, Condition: domain.ConditionNew},
		{ID: "2", Status: domain.ProductStatusDraft, Price: 20, StockQuantity: 1, Condition: domain.ConditionNew},
		{ID: "3", Status: domain.ProductStatusSold, Price: 5, StockQuantity: 0, Condition: domain.ConditionUsedGood},
		{ID: "4", Status: domain.ProductStatusPublished, Price: 1, StockQuantity: 3, Condition: "refurbished"},
		{ID: "5", Status: domain.ProductStatusDraft, Price: 0, StockQuantity: -1},
	}

	want := Stats{
		Total:      5,
		Published:  2,
		Draft:      2,
		Sold:       1,
		TotalStock: 6,
		TotalValue: 44,
		AvgPrice:   7.3,
		Conditions: map[string]int{
			domain.ConditionNew:          2,
			domain.ConditionLikeNew:      0,
			domain.ConditionLightlyUsed:  0,
			domain.ConditionUsedGood:     1,
			domain.ConditionUsedFrequent: 0,
			"refurbished":                1,
		},
	}
	if diff := cmp.Diff(want, Summarize(items)); diff != "" {
		t.Fatalf("stats (-want +got):\n%s", diff)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.AvgPrice != 0 || s.TotalValue != 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if len(s.Conditions) != len(Conditions) {
		t.Fatalf("every condition should be listed, got %v", s.Conditions)
	}
}

func TestSummarize_RoundsToCents(t *testing.T) {
	s := Summarize([]domain.Product{{Price: 1}, {Price: 1}, {Price: 2}})
	if s.AvgPrice != 1.33 {
		t.Fatalf("expected 1.33, got %v", s.AvgPrice)
	}
}

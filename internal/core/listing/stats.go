package listing

import (
	"math"

	"github.com/99minutos/storefront/internal/core/domain"
)

// Conditions is the condition vocabulary of the listing form, in display order.
var Conditions = []string{
	domain.ConditionNew,
	domain.ConditionLikeNew,
	domain.ConditionLightlyUsed,
	domain.ConditionUsedGood,
	domain.ConditionUsedFrequent,
}

// Stats summarises a seller's products for the dashboard.
type Stats struct {
	Total      int     `json:"total_products"`
	Published  int     `json:"published_products"`
	Draft      int     `json:"draft_products"`
	Sold       int     `json:"sold_products"`
	TotalStock int     `json:"total_stock"`
	TotalValue float64 `json:"total_value"`
	AvgPrice   float64 `json:"avg_price"`
	// Conditions always carries every known condition; products with an
	// unknown condition get their own key, products with none are skipped.
	Conditions map[string]int `json:"condition_breakdown"`
}

// Summarize computes the dashboard figures. TotalValue is price times stock;
// AvgPrice is the mean listed price. Money is rounded to cents.
func Summarize(products []domain.Product) Stats {
	s := Stats{Conditions: make(map[string]int, len(Conditions))}
	for _, c := range Conditions {
		s.Conditions[c] = 0
	}

	var priceSum float64
	for _, p := range products {
		s.Total++
		switch p.Status {
		case domain.ProductStatusPublished:
			s.Published++
		case domain.ProductStatusDraft:
			s.Draft++
		case domain.ProductStatusSold:
			s.Sold++
		}
		if p.StockQuantity > 0 {
			s.TotalStock += p.StockQuantity
			s.TotalValue += float64(p.Price) * float64(p.StockQuantity)
		}
		priceSum += float64(p.Price)
		if p.Condition != "" {
			s.Conditions[p.Condition]++
		}
	}
	if s.Total > 0 {
		s.AvgPrice = cents(priceSum / float64(s.Total))
	}
	s.TotalValue = cents(s.TotalValue)
	return s
}

func cents(v float64) float64 {
	return math.Round(v*100) / 100
}

package kpi

import (
	"fmt"
	"math"
)

// Summary is the human-readable interpretation of a scenario's results.
type Summary struct {
	Recommendation    string `json:"recommendation"`
	Insight           string `json:"insight"`
	ElasticityInsight string `json:"elasticity_insight"`
	KeyTakeaway       string `json:"key_takeaway"`
}

// Summarize builds recommendation text. It branches only on IsProfitable.
func Summarize(s SensitivityBlock, p PerformanceBlock) Summary {
	out := Summary{
		ElasticityInsight: fmt.Sprintf("Price elasticity is %s (%.2f).", s.ElasticityClassification, math.Abs(s.PriceElasticity)),
	}

	if p.IsProfitable {
		out.Recommendation = "Discount is profitable. Consider implementing this pricing strategy."
		out.Insight = fmt.Sprintf("The discount increased units sold by %.1f%% and generated additional profit of $%.2f.",
			p.DiscountLift, p.ProfitDifference)
		out.KeyTakeaway = "Discount strategy is effective for this product."
		return out
	}

	out.Recommendation = "Discount is not profitable. Consider alternative pricing strategies."
	out.Insight = fmt.Sprintf("The discount decreased profit by $%.2f despite increasing units sold by %.1f%%.",
		math.Abs(p.ProfitDifference), p.DiscountLift)
	out.KeyTakeaway = "Product is price sensitive; discount strategy needs adjustment."
	return out
}

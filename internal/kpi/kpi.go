// Package kpi computes pricing-sensitivity KPIs for a baseline price versus a
// proposed discount. Every function is pure: the same inputs always produce the
// same result and nothing is shared between calls, so callers may run any number
// of calculations concurrently.
//
// Figures are rounded to two decimals where each stage produces them, and later
// stages consume the rounded values.
package kpi

import "fmt"

// AnalysisResult aggregates every block produced for one ScenarioInputs.
type AnalysisResult struct {
	Baseline    MetricBlock      `json:"baseline"`
	Discount    DiscountBlock    `json:"discount"`
	Sensitivity SensitivityBlock `json:"sensitivity"`
	Performance PerformanceBlock `json:"performance"`
	Summary     Summary          `json:"summary"`
}

// CalculateAll validates in and runs baseline, discounted, sensitivity and
// performance stages in order, then summarizes. It returns either a fully
// populated result or an *InputError; never a partial result.
func CalculateAll(in ScenarioInputs) (AnalysisResult, error) {
	if err := in.Validate(); err != nil {
		return AnalysisResult{}, err
	}

	baseline := BaselineMetrics(in.CostPrice, in.SellingPrice, in.UnitsSold, in.FixedCost, in.VariableCost)
	discount := DiscountedMetrics(in.CostPrice, in.SellingPrice, in.DiscountPercentage, in.UnitsSoldDiscount, in.FixedCost, in.VariableCost)

	sensitivity := SensitivityMetrics(SensitivityInput{
		OriginalPrice:   in.SellingPrice,
		OriginalQty:     float64(in.UnitsSold),
		NewPrice:        discount.DiscountedPrice,
		NewQty:          float64(in.UnitsSoldDiscount),
		OriginalRevenue: baseline.Revenue,
		NewRevenue:      discount.Revenue,
		OriginalProfit:  baseline.Profit,
		NewProfit:       discount.Profit,
	})

	performance := PerformanceMetrics(PerformanceInput{
		BaselineUnits:  in.UnitsSold,
		DiscountUnits:  in.UnitsSoldDiscount,
		BaselineProfit: baseline.Profit,
		DiscountProfit: discount.Profit,
		CostPrice:      in.CostPrice,
		SellingPrice:   in.SellingPrice,
		VariableCost:   in.VariableCost,
	})

	result := AnalysisResult{
		Baseline:    baseline,
		Discount:    discount,
		Sensitivity: sensitivity,
		Performance: performance,
		Summary:     Summarize(sensitivity, performance),
	}
	if !result.finite() {
		return AnalysisResult{}, &InputError{
			Kind:   ErrInvalidInput,
			Fields: []string{"scenario"},
			Reason: fmt.Sprintf("inputs overflow the representable range (cost_price=%g selling_price=%g)", in.CostPrice, in.SellingPrice),
		}
	}

	return result, nil
}

func (r AnalysisResult) finite() bool {
	return finite(
		r.Baseline.Revenue, r.Baseline.Profit, r.Baseline.ProfitMargin, r.Baseline.ASP, r.Baseline.TotalCost,
		r.Discount.DiscountedPrice, r.Discount.Revenue, r.Discount.Profit, r.Discount.ProfitMargin, r.Discount.ASP, r.Discount.TotalCost,
		r.Sensitivity.PriceElasticity, r.Sensitivity.RevenueElasticity, r.Sensitivity.ProfitSensitivityIndex,
		r.Performance.DiscountLift, r.Performance.IncrementalProfit, r.Performance.BreakEvenDiscount, r.Performance.ProfitDifference,
	)
}

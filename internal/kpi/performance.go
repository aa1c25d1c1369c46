package kpi

// PerformanceInput carries what the performance stage needs from the scenario
// and the two metric blocks. Fixed cost reaches break-even through BaselineProfit.
type PerformanceInput struct {
	BaselineUnits  int
	DiscountUnits  int
	BaselineProfit float64
	DiscountProfit float64
	CostPrice      float64
	SellingPrice   float64
	VariableCost   float64
}

// PerformanceBlock reports how the discounted case performed against the baseline.
// IncrementalProfit and ProfitDifference always carry the same value.
type PerformanceBlock struct {
	DiscountLift      float64 `json:"discount_lift"`
	IncrementalProfit float64 `json:"incremental_profit"`
	BreakEvenDiscount float64 `json:"break_even_discount"`
	ProfitDifference  float64 `json:"profit_difference"`
	IsProfitable      bool    `json:"is_profitable"`
}

// PerformanceMetrics computes discount lift, the profit delta and break-even discount.
// A discount is profitable only when it strictly beats baseline profit.
func PerformanceMetrics(in PerformanceInput) PerformanceBlock {
	lift := 0.0
	if in.BaselineUnits != 0 {
		lift = float64(in.DiscountUnits-in.BaselineUnits) / float64(in.BaselineUnits) * 100
	}
	delta := Round2(in.DiscountProfit - in.BaselineProfit)

	return PerformanceBlock{
		DiscountLift:      Round2(lift),
		IncrementalProfit: delta,
		BreakEvenDiscount: BreakEvenDiscount(in.BaselineUnits, in.CostPrice, in.SellingPrice, in.VariableCost, in.BaselineProfit),
		ProfitDifference:  delta,
		IsProfitable:      in.DiscountProfit > in.BaselineProfit,
	}
}

// BreakEvenDiscount returns the discount percentage at which profit per baseline
// unit is preserved, holding baseline volume fixed. It is a single-variable
// approximation: it ignores the volume change the discount produces, and since
// the required price is derived from profit per unit it differs from the exact
// flat-profit discount by the fixed cost spread over baseline units.
//
// The result is 0 when there is no contribution margin or when no discount
// keeps the required price below sellingPrice; otherwise it is rounded to two
// decimals and clamped to [0, 100].
func BreakEvenDiscount(baselineUnits int, costPrice, sellingPrice, variableCost, baselineProfit float64) float64 {
	if baselineUnits <= 0 || sellingPrice <= 0 {
		return 0
	}

	unitCost := costPrice + variableCost
	if sellingPrice-unitCost <= 0 {
		return 0
	}

	required := unitCost + baselineProfit/float64(baselineUnits)
	if required >= sellingPrice {
		return 0
	}

	pct := Round2((sellingPrice - required) / sellingPrice * 100)
	return max(0, min(100, pct))
}

// Package dashboard aggregates stored scenario KPIs into portfolio views:
// overview figures, side-by-side comparison and simple trend heuristics.
package dashboard

import (
	"errors"
	"math"

	"github.com/Simplici0/pricesense/internal/kpi"
)

// ErrTooFewScenarios is returned when a comparison has fewer than two scenarios.
var ErrTooFewScenarios = errors.New("at least 2 scenarios are required to compare")

// ScenarioKPI is the subset of a stored scenario the overview needs.
type ScenarioKPI struct {
	DiscountPercentage float64
	DiscountProfit     float64
	PriceElasticity    float64
	ProfitDifference   float64
	IsProfitable       bool
}

// OverviewKPIs summarizes every scenario a user owns.
type OverviewKPIs struct {
	TotalScenarios    int     `json:"total_scenarios"`
	AverageProfit     float64 `json:"average_profit"`
	AverageElasticity float64 `json:"average_elasticity"`
	BestDiscount      float64 `json:"best_discount"`
	DiscountWinRate   float64 `json:"discount_win_rate"`
}

// Overview averages discounted profit and |elasticity|, reports the discount
// of the scenario with the largest profit difference and the share of
// profitable scenarios. An empty input yields all zeros.
func Overview(rows []ScenarioKPI) OverviewKPIs {
	if len(rows) == 0 {
		return OverviewKPIs{}
	}

	var totalProfit, totalElasticity float64
	profitable := 0
	best := rows[0]
	for i, r := range rows {
		totalProfit += r.DiscountProfit
		totalElasticity += math.Abs(r.PriceElasticity)
		if r.IsProfitable {
			profitable++
		}
		if i > 0 && r.ProfitDifference > best.ProfitDifference {
			best = r
		}
	}

	n := float64(len(rows))
	return OverviewKPIs{
		TotalScenarios:    len(rows),
		AverageProfit:     kpi.Round2(totalProfit / n),
		AverageElasticity: kpi.Round2(totalElasticity / n),
		BestDiscount:      best.DiscountPercentage,
		DiscountWinRate:   kpi.Round2(float64(profitable) / n * 100),
	}
}

// ComparisonRow is one scenario in a comparison.
type ComparisonRow struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	DiscountPercentage float64 `json:"discount_percentage"`
	BaselineProfit     float64 `json:"baseline_profit"`
	DiscountProfit     float64 `json:"discount_profit"`
	ProfitDifference   float64 `json:"profit_difference"`
	PriceElasticity    float64 `json:"price_elasticity"`
	DiscountLift       float64 `json:"discount_lift"`
	IsProfitable       bool    `json:"is_profitable"`
}

// ComparisonSummary highlights the best scenario of a comparison.
type ComparisonSummary struct {
	BestPerformingDiscount float64 `json:"best_performing_discount"`
	HighestProfitIncrease  float64 `json:"highest_profit_increase"`
	AverageElasticity      float64 `json:"average_elasticity"`
	ProfitableCount        int     `json:"profitable_count"`
	TotalCount             int     `json:"total_count"`
}

// Compare picks the row with the largest profit difference (first wins ties).
func Compare(rows []ComparisonRow) (ComparisonSummary, error) {
	if len(rows) < 2 {
		return ComparisonSummary{}, ErrTooFewScenarios
	}

	best := rows[0]
	var totalElasticity float64
	profitable := 0
	for i, r := range rows {
		if i > 0 && r.ProfitDifference > best.ProfitDifference {
			best = r
		}
		totalElasticity += math.Abs(r.PriceElasticity)
		if r.IsProfitable {
			profitable++
		}
	}

	return ComparisonSummary{
		BestPerformingDiscount: best.DiscountPercentage,
		HighestProfitIncrease:  best.ProfitDifference,
		AverageElasticity:      kpi.Round2(totalElasticity / float64(len(rows))),
		ProfitableCount:        profitable,
		TotalCount:             len(rows),
	}, nil
}

package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverview_Empty(t *testing.T) {
	assert.Equal(t, OverviewKPIs{}, Overview(nil))
}

func TestOverview_AggregatesScenarios(t *testing.T) {
	rows := []ScenarioKPI{
		{DiscountPercentage: 20, DiscountProfit: 32500, PriceElasticity: -2.5, ProfitDifference: -7500},
		{DiscountPercentage: 10, DiscountProfit: 51000, PriceElasticity: -4, ProfitDifference: 6000, IsProfitable: true},
		{DiscountPercentage: 5, DiscountProfit: 1000, PriceElasticity: 0.5, ProfitDifference: 6000, IsProfitable: true},
	}

	got := Overview(rows)

	assert.Equal(t, 3, got.TotalScenarios)
	assert.Equal(t, 28166.67, got.AverageProfit)
	assert.Equal(t, 2.33, got.AverageElasticity)
	assert.Equal(t, 10.0, got.BestDiscount, "first of tied best scenarios wins")
	assert.Equal(t, 66.67, got.DiscountWinRate)
}

func TestCompare_RequiresTwoRows(t *testing.T) {
	_, err := Compare([]ComparisonRow{{ID: "a"}})
	require.ErrorIs(t, err, ErrTooFewScenarios)
}

func TestCompare_PicksLargestProfitDifference(t *testing.T) {
	rows := []ComparisonRow{
		{ID: "a", DiscountPercentage: 20, ProfitDifference: -7500, PriceElasticity: -2.5},
		{ID: "b", DiscountPercentage: 10, ProfitDifference: 6000, PriceElasticity: -4, IsProfitable: true},
		{ID: "c", DiscountPercentage: 15, ProfitDifference: 1200, PriceElasticity: 1.5, IsProfitable: true},
	}

	got, err := Compare(rows)
	require.NoError(t, err)

	assert.Equal(t, ComparisonSummary{
		BestPerformingDiscount: 10,
		HighestProfitIncrease:  6000,
		AverageElasticity:      2.67,
		ProfitableCount:        2,
		TotalCount:             3,
	}, got)
}

func TestCompare_AllLosingKeepsLeastBad(t *testing.T) {
	got, err := Compare([]ComparisonRow{
		{DiscountPercentage: 30, ProfitDifference: -900},
		{DiscountPercentage: 25, ProfitDifference: -100},
	})
	require.NoError(t, err)

	assert.Equal(t, 25.0, got.BestPerformingDiscount)
	assert.Equal(t, -100.0, got.HighestProfitIncrease)
	assert.Zero(t, got.ProfitableCount)
}

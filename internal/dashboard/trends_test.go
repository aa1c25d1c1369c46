package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverages(t *testing.T) {
	got := MovingAverages([]float64{10, 20, 30, 40, 55}, 3)

	require.Len(t, got, 5)
	assert.Nil(t, got[0])
	assert.Nil(t, got[1])
	require.NotNil(t, got[2])
	assert.Equal(t, 20.0, *got[2])
	assert.Equal(t, 30.0, *got[3])
	assert.Equal(t, 41.67, *got[4])
}

func TestMovingAverages_ShortSeriesAndDefaultWindow(t *testing.T) {
	assert.Empty(t, MovingAverages(nil, 3))
	assert.Equal(t, []*float64{nil, nil}, MovingAverages([]float64{1, 2}, 0))
}

func TestAnalyzeTrend(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Trend
	}{
		{"empty", nil, TrendInsufficientData},
		{"single", []float64{5}, TrendInsufficientData},
		{"strong up", []float64{100, 100, 150, 150}, TrendStrongUpward},
		{"up", []float64{100, 105}, TrendUpward},
		{"stable", []float64{100, 101}, TrendStable},
		{"down", []float64{100, 95}, TrendDownward},
		{"strong down", []float64{100, 50}, TrendStrongDownward},
		{"negative base improving", []float64{-100, -50}, TrendStrongUpward},
		{"odd length puts middle in second half", []float64{10, 10, 13}, TrendStrongUpward},
		{"zero base rising", []float64{0, 0, 5, 5}, TrendStrongUpward},
		{"zero base falling", []float64{0, -1}, TrendStrongDownward},
		{"all zero", []float64{0, 0, 0}, TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalyzeTrend(tt.values))
		})
	}
}

func TestRecommendations_NeedsThreePoints(t *testing.T) {
	assert.Equal(t, []string{"Collect more data to generate meaningful insights"}, Recommendations(make([]TrendPoint, 2)))
}

func TestRecommendations_EffectiveStrategy(t *testing.T) {
	points := []TrendPoint{
		{DiscountPercentage: 10, ProfitChange: 100, Elasticity: -1},
		{DiscountPercentage: 10, ProfitChange: 200, Elasticity: -1},
		{DiscountPercentage: 10, ProfitChange: 300, Elasticity: -1},
		{DiscountPercentage: 10, ProfitChange: 50, Elasticity: -1},
	}

	assert.Equal(t, []string{
		"Your discount strategies are generally effective. Consider scaling successful approaches.",
	}, Recommendations(points))
}

func TestRecommendations_HighDiscountsAndRisingSensitivity(t *testing.T) {
	points := []TrendPoint{
		{DiscountPercentage: 40, ProfitChange: -10, Elasticity: -1},
		{DiscountPercentage: 35, ProfitChange: 5, Elasticity: 1.2},
		{DiscountPercentage: 50, ProfitChange: -20, Elasticity: -3},
		{DiscountPercentage: 20, ProfitChange: -1, Elasticity: -4},
	}

	assert.Equal(t, []string{
		"Review discount strategies. Less than 70% of scenarios are profitable.",
		"Average discount is high (>30%). Consider testing smaller discounts for better margins.",
		"Price sensitivity is increasing. Monitor customer response to price changes closely.",
	}, Recommendations(points))
}

func TestTrends_NumbersPointsAndSummarizes(t *testing.T) {
	report := Trends([]TrendPoint{
		{DiscountPercentage: 10, Profit: 1000, ProfitChange: 50},
		{DiscountPercentage: 20, Profit: 1200, ProfitChange: -10},
		{DiscountPercentage: 15, Profit: 1500, ProfitChange: 30},
	})

	require.Len(t, report.Trends, 3)
	for i, p := range report.Trends {
		assert.Equal(t, i+1, p.Period)
	}
	require.Len(t, report.MovingAverages, 3)
	require.NotNil(t, report.MovingAverages[2])
	assert.Equal(t, 1233.33, *report.MovingAverages[2])

	assert.Equal(t, TrendStrongUpward, report.Analysis.OverallTrend)
	assert.Equal(t, 15.0, report.Analysis.AverageDiscount)
	assert.Equal(t, 66.67, report.Analysis.SuccessRate)
	assert.Len(t, report.Analysis.Recommendations, 1)
}

func TestTrends_Empty(t *testing.T) {
	report := Trends(nil)

	assert.Empty(t, report.Trends)
	assert.Empty(t, report.MovingAverages)
	assert.Equal(t, TrendInsufficientData, report.Analysis.OverallTrend)
	assert.Zero(t, report.Analysis.SuccessRate)
}

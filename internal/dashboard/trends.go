package dashboard

import (
	"math"
	"time"

	"github.com/Simplici0/pricesense/internal/kpi"
)

const defaultWindow = 3

// Trend is the direction of a series, comparing its first half with its second.
type Trend string

const (
	TrendInsufficientData Trend = "insufficient_data"
	TrendStrongUpward     Trend = "strong_upward"
	TrendUpward           Trend = "upward"
	TrendStable           Trend = "stable"
	TrendDownward         Trend = "downward"
	TrendStrongDownward   Trend = "strong_downward"
)

// TrendPoint is one scenario in creation order.
type TrendPoint struct {
	Period             int       `json:"period"`
	Date               time.Time `json:"date"`
	DiscountPercentage float64   `json:"discount_percentage"`
	Profit             float64   `json:"profit"`
	Elasticity         float64   `json:"elasticity"`
	ProfitChange       float64   `json:"profit_change"`
}

// TrendAnalysis is the heuristic reading of a series of TrendPoints.
type TrendAnalysis struct {
	OverallTrend    Trend    `json:"overall_trend"`
	AverageDiscount float64  `json:"average_discount"`
	SuccessRate     float64  `json:"success_rate"`
	Recommendations []string `json:"recommendations"`
}

// TrendReport bundles points, their profit moving averages and the analysis.
type TrendReport struct {
	Trends         []TrendPoint  `json:"trends"`
	MovingAverages []*float64    `json:"moving_averages"`
	Analysis       TrendAnalysis `json:"analysis"`
}

// Trends numbers points from 1 and analyses their profit series.
func Trends(points []TrendPoint) TrendReport {
	profits := make([]float64, len(points))
	for i := range points {
		points[i].Period = i + 1
		profits[i] = points[i].Profit
	}

	analysis := TrendAnalysis{
		OverallTrend:    AnalyzeTrend(profits),
		Recommendations: Recommendations(points),
	}
	if len(points) > 0 {
		var discounts float64
		wins := 0
		for _, p := range points {
			discounts += p.DiscountPercentage
			if p.ProfitChange > 0 {
				wins++
			}
		}
		analysis.AverageDiscount = kpi.Round2(discounts / float64(len(points)))
		analysis.SuccessRate = kpi.Round2(float64(wins) / float64(len(points)) * 100)
	}

	return TrendReport{
		Trends:         points,
		MovingAverages: MovingAverages(profits, defaultWindow),
		Analysis:       analysis,
	}
}

// MovingAverages returns the trailing mean over window values; entries before
// the window fills are nil. A non-positive window uses the default of 3.
func MovingAverages(values []float64, window int) []*float64 {
	if window <= 0 {
		window = defaultWindow
	}

	out := make([]*float64, len(values))
	for i := window - 1; i < len(values); i++ {
		avg := kpi.Round2(mean(values[i-window+1 : i+1]))
		out[i] = &avg
	}
	return out
}

// AnalyzeTrend compares the mean of the second half of values against the
// first. A zero first-half mean counts as an unbounded change in the
// direction of the second half.
func AnalyzeTrend(values []float64) Trend {
	if len(values) < 2 {
		return TrendInsufficientData
	}

	mid := len(values) / 2
	first := mean(values[:mid])
	second := mean(values[mid:])

	var change float64
	if first == 0 {
		switch {
		case second > 0:
			change = math.Inf(1)
		case second < 0:
			change = math.Inf(-1)
		}
	} else {
		change = (second - first) / math.Abs(first) * 100
	}

	switch {
	case change > 10:
		return TrendStrongUpward
	case change > 2:
		return TrendUpward
	case change < -10:
		return TrendStrongDownward
	case change < -2:
		return TrendDownward
	default:
		return TrendStable
	}
}

// Recommendations turns a series of points into advice lines.
func Recommendations(points []TrendPoint) []string {
	if len(points) < 3 {
		return []string{"Collect more data to generate meaningful insights"}
	}

	var recs []string
	profitable := 0
	var discounts float64
	elasticities := make([]float64, len(points))
	for i, p := range points {
		if p.ProfitChange > 0 {
			profitable++
		}
		discounts += p.DiscountPercentage
		elasticities[i] = math.Abs(p.Elasticity)
	}

	if float64(profitable)/float64(len(points)) > 0.7 {
		recs = append(recs, "Your discount strategies are generally effective. Consider scaling successful approaches.")
	} else {
		recs = append(recs, "Review discount strategies. Less than 70% of scenarios are profitable.")
	}

	if discounts/float64(len(points)) > 30 {
		recs = append(recs, "Average discount is high (>30%). Consider testing smaller discounts for better margins.")
	}

	if t := AnalyzeTrend(elasticities); t == TrendUpward || t == TrendStrongUpward {
		recs = append(recs, "Price sensitivity is increasing. Monitor customer response to price changes closely.")
	}

	return recs
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

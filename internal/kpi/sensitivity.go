package kpi

import "math"

// ElasticityClass labels the magnitude of price elasticity of demand.
type ElasticityClass string

const (
	PerfectlyInelastic ElasticityClass = "Perfectly Inelastic"
	Inelastic          ElasticityClass = "Inelastic"
	UnitElastic        ElasticityClass = "Unit Elastic"
	Elastic            ElasticityClass = "Elastic"
	HighlyElastic      ElasticityClass = "Highly Elastic"
)

// SensitivityInput is the baseline/discounted pair the sensitivity stage compares.
type SensitivityInput struct {
	OriginalPrice   float64
	OriginalQty     float64
	NewPrice        float64
	NewQty          float64
	OriginalRevenue float64
	NewRevenue      float64
	OriginalProfit  float64
	NewProfit       float64
}

// SensitivityBlock holds elasticity figures derived from a SensitivityInput.
type SensitivityBlock struct {
	PriceElasticity          float64         `json:"price_elasticity"`
	RevenueElasticity        float64         `json:"revenue_elasticity"`
	ProfitSensitivityIndex   float64         `json:"profit_sensitivity_index"`
	ElasticityClassification ElasticityClass `json:"elasticity_classification"`
}

// SensitivityMetrics computes price elasticity of demand, revenue elasticity and
// the profit sensitivity index.
//
// Price elasticity keeps the signed price change in its denominator, so a price
// cut that raises volume yields a negative value. Revenue elasticity and the
// profit index divide by the absolute price change; their sign follows only the
// direction of revenue or profit. Classification uses the unrounded elasticity.
func SensitivityMetrics(in SensitivityInput) SensitivityBlock {
	priceChange := percentChange(in.OriginalPrice, in.NewPrice)
	qtyChange := percentChange(in.OriginalQty, in.NewQty)
	revenueChange := percentChange(in.OriginalRevenue, in.NewRevenue)

	profitChange := 0.0
	if in.OriginalProfit != 0 {
		profitChange = (in.NewProfit - in.OriginalProfit) / math.Abs(in.OriginalProfit) * 100
	}

	var elasticity, revenueElasticity, profitIndex float64
	if priceChange != 0 {
		elasticity = qtyChange / priceChange
		revenueElasticity = revenueChange / math.Abs(priceChange)
		profitIndex = profitChange / math.Abs(priceChange)
	}

	return SensitivityBlock{
		PriceElasticity:          Round2(elasticity),
		RevenueElasticity:        Round2(revenueElasticity),
		ProfitSensitivityIndex:   Round2(profitIndex),
		ElasticityClassification: ClassifyElasticity(elasticity),
	}
}

// ClassifyElasticity buckets |elasticity|. Exactly 1 is Unit Elastic and the
// Elastic band is open at both ends, so 5 is Highly Elastic.
func ClassifyElasticity(elasticity float64) ElasticityClass {
	abs := math.Abs(elasticity)
	switch {
	case abs == 0:
		return PerfectlyInelastic
	case abs < 1:
		return Inelastic
	case abs == 1:
		return UnitElastic
	case abs < 5:
		return Elastic
	default:
		return HighlyElastic
	}
}

// percentChange returns 0 when from is 0.
func percentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}

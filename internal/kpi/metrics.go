package kpi

// MetricBlock contains revenue, cost and profit figures for one pricing case.
type MetricBlock struct {
	Revenue      float64 `json:"revenue"`
	Profit       float64 `json:"profit"`
	ProfitMargin float64 `json:"profit_margin"`
	ASP          float64 `json:"asp"`
	TotalCost    float64 `json:"total_cost"`
}

// DiscountBlock is the MetricBlock of the discounted case plus the price after discount.
type DiscountBlock struct {
	DiscountedPrice float64 `json:"discounted_price"`
	MetricBlock
}

// BaselineMetrics computes the no-discount case.
func BaselineMetrics(costPrice, sellingPrice float64, units int, fixedCost, variableCost float64) MetricBlock {
	return metricBlock(sellingPrice, costPrice, units, fixedCost, variableCost)
}

// DiscountedMetrics computes the case where sellingPrice is reduced by
// discountPct percent and units are sold at that price.
func DiscountedMetrics(costPrice, sellingPrice, discountPct float64, units int, fixedCost, variableCost float64) DiscountBlock {
	price := sellingPrice * (1 - discountPct/100)
	return DiscountBlock{
		DiscountedPrice: Round2(price),
		MetricBlock:     metricBlock(price, costPrice, units, fixedCost, variableCost),
	}
}

func metricBlock(unitPrice, costPrice float64, units int, fixedCost, variableCost float64) MetricBlock {
	qty := float64(units)
	totalCost := (costPrice+variableCost)*qty + fixedCost
	revenue := unitPrice * qty
	profit := revenue - totalCost

	margin := 0.0
	if revenue > 0 {
		margin = profit / revenue * 100
	}

	return MetricBlock{
		Revenue:      Round2(revenue),
		Profit:       Round2(profit),
		ProfitMargin: Round2(margin),
		ASP:          Round2(unitPrice),
		TotalCost:    Round2(totalCost),
	}
}

package kpi

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds x to two decimal places, half away from zero, using the
// shortest decimal representation of x (so 1.005 rounds to 1.01).
// Non-finite values are returned unchanged.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

package kpi

import "math"

// ScenarioInputs holds the business inputs of a single what-if scenario.
// FixedCost and VariableCost default to zero when omitted.
type ScenarioInputs struct {
	CostPrice          float64 `json:"cost_price" yaml:"cost_price"`
	SellingPrice       float64 `json:"selling_price" yaml:"selling_price"`
	UnitsSold          int     `json:"units_sold" yaml:"units_sold"`
	DiscountPercentage float64 `json:"discount_percentage" yaml:"discount_percentage"`
	UnitsSoldDiscount  int     `json:"units_sold_discount" yaml:"units_sold_discount"`
	FixedCost          float64 `json:"fixed_cost" yaml:"fixed_cost"`
	VariableCost       float64 `json:"variable_cost" yaml:"variable_cost"`
}

// Validate checks required fields first and then value domains.
// A zero discount is valid; zero prices or unit counts are reported as missing.
func (in ScenarioInputs) Validate() error {
	var absent []string
	if in.CostPrice == 0 {
		absent = append(absent, "cost_price")
	}
	if in.SellingPrice == 0 {
		absent = append(absent, "selling_price")
	}
	if in.UnitsSold == 0 {
		absent = append(absent, "units_sold")
	}
	if in.UnitsSoldDiscount == 0 {
		absent = append(absent, "units_sold_discount")
	}
	if len(absent) > 0 {
		return missing(absent...)
	}

	for _, f := range []struct {
		name  string
		value float64
	}{
		{"cost_price", in.CostPrice},
		{"selling_price", in.SellingPrice},
		{"discount_percentage", in.DiscountPercentage},
		{"fixed_cost", in.FixedCost},
		{"variable_cost", in.VariableCost},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return invalid(f.name, "must be a finite number")
		}
		if f.value < 0 {
			return invalid(f.name, "must not be negative")
		}
	}

	if in.UnitsSold < 1 {
		return invalid("units_sold", "must be at least 1")
	}
	if in.UnitsSoldDiscount < 1 {
		return invalid("units_sold_discount", "must be at least 1")
	}
	if in.DiscountPercentage > 100 {
		return invalid("discount_percentage", "must be between 0 and 100")
	}
	if in.SellingPrice <= in.CostPrice {
		return invalid("selling_price", "must be greater than cost_price")
	}

	return nil
}

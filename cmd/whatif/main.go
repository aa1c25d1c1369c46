// Command whatif runs the KPI engine on one scenario and prints the result as JSON.
//
//	whatif -f scenario.yaml
//	whatif -cost 50 -price 100 -units 1000 -discount 10 -units-discount 1400 -fixed 5000
//
// Flags given explicitly override values read from the file.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/pricesense/internal/kpi"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("whatif", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		in   kpi.ScenarioInputs
		file string
	)
	fs.StringVar(&file, "f", "", "YAML file with the scenario inputs")
	fs.Float64Var(&in.CostPrice, "cost", 0, "unit cost price")
	fs.Float64Var(&in.SellingPrice, "price", 0, "unit selling price")
	fs.IntVar(&in.UnitsSold, "units", 0, "units sold at full price")
	fs.Float64Var(&in.DiscountPercentage, "discount", 0, "discount percentage (0-100)")
	fs.IntVar(&in.UnitsSoldDiscount, "units-discount", 0, "units sold at the discounted price")
	fs.Float64Var(&in.FixedCost, "fixed", 0, "fixed cost for the period")
	fs.Float64Var(&in.VariableCost, "variable", 0, "additional variable cost per unit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if file != "" {
		fromFile, err := readScenario(file)
		if err != nil {
			fmt.Fprintf(stderr, "whatif: %v\n", err)
			return 1
		}
		in = overrideSetFlags(fs, fromFile, in)
	}

	result, err := kpi.CalculateAll(in)
	if err != nil {
		fmt.Fprintf(stderr, "whatif: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(stderr, "whatif: write result: %v\n", err)
		return 1
	}
	return 0
}

func readScenario(path string) (kpi.ScenarioInputs, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return kpi.ScenarioInputs{}, fmt.Errorf("read scenario: %w", err)
	}

	var in kpi.ScenarioInputs
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		return kpi.ScenarioInputs{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return in, nil
}

// overrideSetFlags copies the explicitly set flag values from flagged onto base.
func overrideSetFlags(fs *flag.FlagSet, base, flagged kpi.ScenarioInputs) kpi.ScenarioInputs {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "cost":
			base.CostPrice = flagged.CostPrice
		case "price":
			base.SellingPrice = flagged.SellingPrice
		case "units":
			base.UnitsSold = flagged.UnitsSold
		case "discount":
			base.DiscountPercentage = flagged.DiscountPercentage
		case "units-discount":
			base.UnitsSoldDiscount = flagged.UnitsSoldDiscount
		case "fixed":
			base.FixedCost = flagged.FixedCost
		case "variable":
			base.VariableCost = flagged.VariableCost
		}
	})
	return base
}

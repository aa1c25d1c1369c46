package seed

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/pricesense/internal/kpi"
	"github.com/Simplici0/pricesense/internal/store"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
	// Demo adds sample scenarios to the admin account.
	Demo bool
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

type demoScenario struct {
	meta   store.ScenarioMeta
	inputs kpi.ScenarioInputs
}

var demoScenarios = []demoScenario{
	{
		meta: store.ScenarioMeta{
			Name:        "Spring promotion 10%",
			Description: "Moderate discount with a strong volume response",
			TimePeriod:  "monthly",
		},
		inputs: kpi.ScenarioInputs{
			CostPrice:          50,
			SellingPrice:       100,
			UnitsSold:          1000,
			DiscountPercentage: 10,
			UnitsSoldDiscount:  1400,
			FixedCost:          5000,
		},
	},
	{
		meta: store.ScenarioMeta{
			Name:        "Clearance 20%",
			Description: "Deep discount where extra volume does not cover the margin",
			TimePeriod:  "monthly",
		},
		inputs: kpi.ScenarioInputs{
			CostPrice:          50,
			SellingPrice:       100,
			UnitsSold:          1000,
			DiscountPercentage: 20,
			UnitsSoldDiscount:  1500,
			FixedCost:          5000,
			VariableCost:       5,
		},
	},
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, st *store.Store, cfg Config) (Stats, error) {
	stats := Stats{}

	adminID, err := seedAdmin(ctx, st, cfg.AdminEmail, cfg.AdminPassword, &stats)
	if err != nil {
		return Stats{}, err
	}
	if !cfg.Demo || adminID == "" {
		return stats, nil
	}

	for _, d := range demoScenarios {
		if err := ensureScenario(ctx, st, adminID, d, &stats); err != nil {
			return Stats{}, err
		}
	}

	return stats, nil
}

func seedAdmin(ctx context.Context, st *store.Store, email, password string, stats *Stats) (string, error) {
	if email == "" || password == "" {
		return "", nil
	}

	existing, err := st.UserByEmail(ctx, email)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("check admin user existence: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}

	u, err := st.CreateUser(ctx, email, string(hash), "")
	if err != nil {
		return "", fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return u.ID, nil
}

func ensureScenario(ctx context.Context, st *store.Store, userID string, d demoScenario, stats *Stats) error {
	exists, err := st.HasScenarioNamed(ctx, userID, d.meta.Name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	result, err := kpi.CalculateAll(d.inputs)
	if err != nil {
		return fmt.Errorf("calculate demo scenario %q: %w", d.meta.Name, err)
	}
	if _, err := st.CreateScenario(ctx, userID, d.meta, d.inputs, result); err != nil {
		return fmt.Errorf("insert demo scenario %q: %w", d.meta.Name, err)
	}
	stats.Inserts++
	return nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Simplici0/pricesense/internal/dashboard"
	"github.com/Simplici0/pricesense/internal/kpi"
)

// TimePeriods lists the accepted reporting periods of a scenario.
var TimePeriods = []string{"daily", "weekly", "monthly", "yearly"}

const defaultTimePeriod = "monthly"

// ScenarioMeta describes a scenario apart from its numbers.
type ScenarioMeta struct {
	Name            string
	Description     string
	TimePeriod      string
	CompetitorPrice *float64
}

// Scenario is the stored header of an analysis.
type Scenario struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"-"`
	Name        string    `db:"scenario_name" json:"scenario_name"`
	Description string    `db:"description" json:"description"`
	TimePeriod  string    `db:"time_period" json:"time_period"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Inputs are the numbers a scenario was analysed with.
type Inputs struct {
	kpi.ScenarioInputs
	CompetitorPrice *float64 `json:"competitor_price,omitempty"`
}

// StoredKPIs are the flat KPI columns written when the scenario was created.
type StoredKPIs struct {
	BaselineRevenue          float64 `db:"baseline_revenue" json:"baseline_revenue"`
	BaselineProfit           float64 `db:"baseline_profit" json:"baseline_profit"`
	BaselineProfitMargin     float64 `db:"baseline_profit_margin" json:"baseline_profit_margin"`
	BaselineASP              float64 `db:"baseline_asp" json:"baseline_asp"`
	DiscountRevenue          float64 `db:"discount_revenue" json:"discount_revenue"`
	DiscountProfit           float64 `db:"discount_profit" json:"discount_profit"`
	DiscountProfitMargin     float64 `db:"discount_profit_margin" json:"discount_profit_margin"`
	DiscountASP              float64 `db:"discount_asp" json:"discount_asp"`
	PriceElasticity          float64 `db:"price_elasticity" json:"price_elasticity"`
	RevenueElasticity        float64 `db:"revenue_elasticity" json:"revenue_elasticity"`
	ProfitSensitivityIndex   float64 `db:"profit_sensitivity_index" json:"profit_sensitivity_index"`
	ElasticityClassification string  `db:"elasticity_classification" json:"elasticity_classification"`
	DiscountLift             float64 `db:"discount_lift" json:"discount_lift"`
	IncrementalProfit        float64 `db:"incremental_profit" json:"incremental_profit"`
	BreakEvenDiscount        float64 `db:"break_even_discount" json:"break_even_discount"`
	ProfitDifference         float64 `db:"profit_difference" json:"profit_difference"`
	IsProfitable             bool    `db:"is_profitable" json:"is_profitable"`
}

// FlattenKPIs projects an analysis result onto the stored KPI columns.
func FlattenKPIs(r kpi.AnalysisResult) StoredKPIs {
	return StoredKPIs{
		BaselineRevenue:          r.Baseline.Revenue,
		BaselineProfit:           r.Baseline.Profit,
		BaselineProfitMargin:     r.Baseline.ProfitMargin,
		BaselineASP:              r.Baseline.ASP,
		DiscountRevenue:          r.Discount.Revenue,
		DiscountProfit:           r.Discount.Profit,
		DiscountProfitMargin:     r.Discount.ProfitMargin,
		DiscountASP:              r.Discount.ASP,
		PriceElasticity:          r.Sensitivity.PriceElasticity,
		RevenueElasticity:        r.Sensitivity.RevenueElasticity,
		ProfitSensitivityIndex:   r.Sensitivity.ProfitSensitivityIndex,
		ElasticityClassification: string(r.Sensitivity.ElasticityClassification),
		DiscountLift:             r.Performance.DiscountLift,
		IncrementalProfit:        r.Performance.IncrementalProfit,
		BreakEvenDiscount:        r.Performance.BreakEvenDiscount,
		ProfitDifference:         r.Performance.ProfitDifference,
		IsProfitable:             r.Performance.IsProfitable,
	}
}

// Record is a scenario with its inputs, stored KPI columns and full result snapshot.
type Record struct {
	Scenario Scenario           `json:"scenario"`
	Inputs   Inputs             `json:"inputs"`
	KPIs     StoredKPIs         `json:"kpis"`
	Result   kpi.AnalysisResult `json:"result"`
}

type inputColumns struct {
	CostPrice          float64         `db:"cost_price"`
	SellingPrice       float64         `db:"selling_price"`
	UnitsSold          int             `db:"units_sold"`
	DiscountPercentage float64         `db:"discount_percentage"`
	UnitsSoldDiscount  int             `db:"units_sold_discount"`
	FixedCost          float64         `db:"fixed_cost"`
	VariableCost       float64         `db:"variable_cost"`
	CompetitorPrice    sql.NullFloat64 `db:"competitor_price"`
}

type recordRow struct {
	Scenario
	inputColumns
	StoredKPIs
	ResultJSON string `db:"result_json"`
}

func (r recordRow) record() (Record, error) {
	rec := Record{
		Scenario: r.Scenario,
		Inputs: Inputs{ScenarioInputs: kpi.ScenarioInputs{
			CostPrice:          r.CostPrice,
			SellingPrice:       r.SellingPrice,
			UnitsSold:          r.UnitsSold,
			DiscountPercentage: r.DiscountPercentage,
			UnitsSoldDiscount:  r.UnitsSoldDiscount,
			FixedCost:          r.FixedCost,
			VariableCost:       r.VariableCost,
		}},
		KPIs: r.StoredKPIs,
	}
	if r.CompetitorPrice.Valid {
		v := r.CompetitorPrice.Float64
		rec.Inputs.CompetitorPrice = &v
	}
	if err := json.Unmarshal([]byte(r.ResultJSON), &rec.Result); err != nil {
		return Record{}, fmt.Errorf("decode result of scenario %s: %w", r.ID, err)
	}
	return rec, nil
}

const recordSelect = `
	SELECT
		s.id, s.user_id, s.scenario_name, COALESCE(s.description, '') AS description,
		s.time_period, s.created_at, s.updated_at,
		i.cost_price, i.selling_price, i.units_sold, i.discount_percentage,
		i.units_sold_discount, i.fixed_cost, i.variable_cost, i.competitor_price,
		k.baseline_revenue, k.baseline_profit, k.baseline_profit_margin, k.baseline_asp,
		k.discount_revenue, k.discount_profit, k.discount_profit_margin, k.discount_asp,
		k.price_elasticity, k.revenue_elasticity, k.profit_sensitivity_index,
		k.elasticity_classification, k.discount_lift, k.incremental_profit,
		k.break_even_discount, k.profit_difference, k.is_profitable, k.result_json
	FROM scenarios s
	JOIN scenario_inputs i ON i.scenario_id = s.id
	JOIN scenario_kpis k ON k.scenario_id = s.id
`

// CreateScenario stores the scenario header, inputs and KPIs in one transaction.
func (s *Store) CreateScenario(ctx context.Context, userID string, meta ScenarioMeta, in kpi.ScenarioInputs, result kpi.AnalysisResult) (Record, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return Record{}, fmt.Errorf("encode analysis result: %w", err)
	}

	period := meta.TimePeriod
	if period == "" {
		period = defaultTimePeriod
	}
	now := s.now()
	rec := Record{
		Scenario: Scenario{
			ID:          uuid.NewString(),
			UserID:      userID,
			Name:        strings.TrimSpace(meta.Name),
			Description: meta.Description,
			TimePeriod:  period,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Inputs: Inputs{ScenarioInputs: in, CompetitorPrice: meta.CompetitorPrice},
		KPIs:   FlattenKPIs(result),
		Result: result,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("begin create scenario transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sc := rec.Scenario
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO scenarios (id, user_id, scenario_name, description, time_period, created_at, updated_at)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?)
	`, sc.ID, sc.UserID, sc.Name, sc.Description, sc.TimePeriod, sc.CreatedAt, sc.UpdatedAt); err != nil {
		return Record{}, fmt.Errorf("insert scenario: %w", err)
	}

	var competitor sql.NullFloat64
	if meta.CompetitorPrice != nil {
		competitor = sql.NullFloat64{Float64: *meta.CompetitorPrice, Valid: true}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO scenario_inputs (
			scenario_id, cost_price, selling_price, units_sold, discount_percentage,
			units_sold_discount, fixed_cost, variable_cost, competitor_price
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sc.ID, in.CostPrice, in.SellingPrice, in.UnitsSold, in.DiscountPercentage,
		in.UnitsSoldDiscount, in.FixedCost, in.VariableCost, competitor); err != nil {
		return Record{}, fmt.Errorf("insert scenario inputs: %w", err)
	}

	k := rec.KPIs
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO scenario_kpis (
			scenario_id,
			baseline_revenue, baseline_profit, baseline_profit_margin, baseline_asp,
			discount_revenue, discount_profit, discount_profit_margin, discount_asp,
			price_elasticity, revenue_elasticity, profit_sensitivity_index, elasticity_classification,
			discount_lift, incremental_profit, break_even_discount, profit_difference,
			is_profitable, result_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sc.ID,
		k.BaselineRevenue, k.BaselineProfit, k.BaselineProfitMargin, k.BaselineASP,
		k.DiscountRevenue, k.DiscountProfit, k.DiscountProfitMargin, k.DiscountASP,
		k.PriceElasticity, k.RevenueElasticity, k.ProfitSensitivityIndex, k.ElasticityClassification,
		k.DiscountLift, k.IncrementalProfit, k.BreakEvenDiscount, k.ProfitDifference,
		k.IsProfitable, string(resultJSON)); err != nil {
		return Record{}, fmt.Errorf("insert scenario kpis: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit create scenario transaction: %w", err)
	}
	return rec, nil
}

// Page selects one slice of a user's scenarios.
type Page struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

var sortColumns = map[string]string{
	"created_at":    "s.created_at",
	"scenario_name": "s.scenario_name",
	"updated_at":    "s.updated_at",
}

// Normalize clamps the page into range and falls back to newest-first.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if _, ok := sortColumns[p.SortBy]; !ok {
		p.SortBy = "created_at"
	}
	if p.SortOrder = strings.ToLower(p.SortOrder); p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
	return p
}

// ListResult is one page of records plus the user's total scenario count.
type ListResult struct {
	Items      []Record `json:"items"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"total_pages"`
}

// ListScenarios returns one page of the user's scenarios.
func (s *Store) ListScenarios(ctx context.Context, userID string, p Page) (ListResult, error) {
	p = p.Normalize()

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM scenarios WHERE user_id = ?`, userID); err != nil {
		return ListResult{}, fmt.Errorf("count scenarios: %w", err)
	}

	query := recordSelect + fmt.Sprintf(`
		WHERE s.user_id = ?
		ORDER BY %s %s, s.id %s
		LIMIT ? OFFSET ?
	`, sortColumns[p.SortBy], p.SortOrder, p.SortOrder)

	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, query, userID, p.Limit, (p.Page-1)*p.Limit); err != nil {
		return ListResult{}, fmt.Errorf("query scenarios: %w", err)
	}

	items, err := toRecords(rows)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: (total + p.Limit - 1) / p.Limit,
	}, nil
}

// GetScenario loads one scenario owned by userID.
func (s *Store) GetScenario(ctx context.Context, userID, id string) (Record, error) {
	var row recordRow
	err := s.db.GetContext(ctx, &row, recordSelect+` WHERE s.id = ? AND s.user_id = ?`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("query scenario %s: %w", id, err)
	}
	return row.record()
}

// DeleteScenario removes a scenario; inputs and KPIs cascade.
func (s *Store) DeleteScenario(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete scenario %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete scenario %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ComparisonRows loads the requested scenarios in the order given. Every id
// must exist and belong to userID.
func (s *Store) ComparisonRows(ctx context.Context, userID string, ids []string) ([]dashboard.ComparisonRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT
			s.id, s.scenario_name, i.discount_percentage,
			k.baseline_profit, k.discount_profit, k.profit_difference,
			k.price_elasticity, k.discount_lift, k.is_profitable
		FROM scenarios s
		JOIN scenario_inputs i ON i.scenario_id = s.id
		JOIN scenario_kpis k ON k.scenario_id = s.id
		WHERE s.user_id = ? AND s.id IN (?)
	`, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("build comparison query: %w", err)
	}

	var rows []struct {
		ID                 string  `db:"id"`
		Name               string  `db:"scenario_name"`
		DiscountPercentage float64 `db:"discount_percentage"`
		BaselineProfit     float64 `db:"baseline_profit"`
		DiscountProfit     float64 `db:"discount_profit"`
		ProfitDifference   float64 `db:"profit_difference"`
		PriceElasticity    float64 `db:"price_elasticity"`
		DiscountLift       float64 `db:"discount_lift"`
		IsProfitable       bool    `db:"is_profitable"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query comparison rows: %w", err)
	}

	byID := make(map[string]dashboard.ComparisonRow, len(rows))
	for _, r := range rows {
		byID[r.ID] = dashboard.ComparisonRow(r)
	}

	out := make([]dashboard.ComparisonRow, 0, len(ids))
	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("scenario %s: %w", id, ErrNotFound)
		}
		out = append(out, row)
	}
	return out, nil
}

// DashboardRows loads the KPI subset the overview aggregates.
func (s *Store) DashboardRows(ctx context.Context, userID string) ([]dashboard.ScenarioKPI, error) {
	var rows []struct {
		DiscountPercentage float64 `db:"discount_percentage"`
		DiscountProfit     float64 `db:"discount_profit"`
		PriceElasticity    float64 `db:"price_elasticity"`
		ProfitDifference   float64 `db:"profit_difference"`
		IsProfitable       bool    `db:"is_profitable"`
	}
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT i.discount_percentage, k.discount_profit, k.price_elasticity, k.profit_difference, k.is_profitable
		FROM scenarios s
		JOIN scenario_inputs i ON i.scenario_id = s.id
		JOIN scenario_kpis k ON k.scenario_id = s.id
		WHERE s.user_id = ?
		ORDER BY s.created_at ASC, s.id ASC
	`, userID); err != nil {
		return nil, fmt.Errorf("query dashboard rows: %w", err)
	}

	out := make([]dashboard.ScenarioKPI, len(rows))
	for i, r := range rows {
		out[i] = dashboard.ScenarioKPI(r)
	}
	return out, nil
}

// RecentScenario is a short listing entry for the dashboard.
type RecentScenario struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"scenario_name" json:"scenario_name"`
	Description      string    `db:"description" json:"description"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	BaselineProfit   float64   `db:"baseline_profit" json:"baseline_profit"`
	DiscountProfit   float64   `db:"discount_profit" json:"discount_profit"`
	ProfitDifference float64   `db:"profit_difference" json:"profit_difference"`
	IsProfitable     bool      `db:"is_profitable" json:"is_profitable"`
}

const recentSelect = `
	SELECT
		s.id, s.scenario_name, COALESCE(s.description, '') AS description, s.created_at,
		k.baseline_profit, k.discount_profit, k.profit_difference, k.is_profitable
	FROM scenarios s
	JOIN scenario_kpis k ON k.scenario_id = s.id
	WHERE s.user_id = ?
`

// RecentScenarios returns the user's n newest scenarios.
func (s *Store) RecentScenarios(ctx context.Context, userID string, n int) ([]RecentScenario, error) {
	out := []RecentScenario{}
	if err := s.db.SelectContext(ctx, &out, recentSelect+`
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT ?
	`, userID, n); err != nil {
		return nil, fmt.Errorf("query recent scenarios: %w", err)
	}
	return out, nil
}

// BestScenario returns the scenario with the largest profit difference, or
// nil when the user has none. The oldest scenario wins ties.
func (s *Store) BestScenario(ctx context.Context, userID string) (*RecentScenario, error) {
	var best RecentScenario
	err := s.db.GetContext(ctx, &best, recentSelect+`
		ORDER BY k.profit_difference DESC, s.created_at ASC, s.id ASC
		LIMIT 1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query best scenario: %w", err)
	}
	return &best, nil
}

// TrendPoints returns the user's scenarios for one time period, oldest first.
func (s *Store) TrendPoints(ctx context.Context, userID, period string) ([]dashboard.TrendPoint, error) {
	if period == "" {
		period = defaultTimePeriod
	}

	var rows []struct {
		CreatedAt          time.Time `db:"created_at"`
		DiscountPercentage float64   `db:"discount_percentage"`
		DiscountProfit     float64   `db:"discount_profit"`
		PriceElasticity    float64   `db:"price_elasticity"`
		ProfitDifference   float64   `db:"profit_difference"`
	}
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT s.created_at, i.discount_percentage, k.discount_profit, k.price_elasticity, k.profit_difference
		FROM scenarios s
		JOIN scenario_inputs i ON i.scenario_id = s.id
		JOIN scenario_kpis k ON k.scenario_id = s.id
		WHERE s.user_id = ? AND s.time_period = ?
		ORDER BY s.created_at ASC, s.id ASC
	`, userID, period); err != nil {
		return nil, fmt.Errorf("query trend points: %w", err)
	}

	out := make([]dashboard.TrendPoint, len(rows))
	for i, r := range rows {
		out[i] = dashboard.TrendPoint{
			Date:               r.CreatedAt,
			DiscountPercentage: r.DiscountPercentage,
			Profit:             r.DiscountProfit,
			Elasticity:         r.PriceElasticity,
			ProfitChange:       r.ProfitDifference,
		}
	}
	return out, nil
}

func toRecords(rows []recordRow) ([]Record, error) {
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// HasScenarioNamed reports whether the user already owns a scenario called name.
func (s *Store) HasScenarioNamed(ctx context.Context, userID, name string) (bool, error) {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM scenarios WHERE user_id = ? AND scenario_name = ? LIMIT 1)
	`, userID, name); err != nil {
		return false, fmt.Errorf("check scenario existence: %w", err)
	}
	return exists, nil
}

package main

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/pricesense/internal/store"
)

func profitableBody(name string) map[string]any {
	return map[string]any{
		"scenario_name":       name,
		"description":         "10% off",
		"cost_price":          50,
		"selling_price":       100,
		"units_sold":          1000,
		"discount_percentage": 10,
		"units_sold_discount": 1400,
		"fixed_cost":          5000,
		"time_period":         "monthly",
	}
}

func unprofitableBody(name string) map[string]any {
	return map[string]any{
		"scenario_name":       name,
		"cost_price":          50,
		"selling_price":       100,
		"units_sold":          1000,
		"discount_percentage": 20,
		"units_sold_discount": 1500,
		"fixed_cost":          5000,
		"variable_cost":       5,
	}
}

func (e *testEnv) createAnalysis(t *testing.T, token string, body map[string]any) store.Record {
	t.Helper()

	rr := e.do(t, http.MethodPost, "/api/analysis/create", body, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var rec store.Record
	decodeEnvelope(t, rr, &rec)
	return rec
}

func TestPreview(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "a@example.com")

	rr := e.do(t, http.MethodPost, "/api/analysis/preview", profitableBody("ignored"), token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res analysisResponse
	decodeEnvelope(t, rr, &res)
	assert.Equal(t, 6000.0, res.KPIs.Performance.ProfitDifference)
	assert.Equal(t, -4.0, res.KPIs.Sensitivity.PriceElasticity)
	assert.True(t, res.KPIs.Performance.IsProfitable)

	list, err := e.srv.store.ListScenarios(context.Background(), mustUserID(t, e, token), store.Page{})
	require.NoError(t, err)
	assert.Zero(t, list.Total, "preview must not persist")

	assert.Equal(t, 1.0, testutil.ToFloat64(e.srv.metrics.Calculations.WithLabelValues(sourcePreview, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.srv.metrics.ProfitableResults))
}

func TestPreviewValidation(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "a@example.com")

	tests := []struct {
		name   string
		body   map[string]any
		fields []string
	}{
		{
			name:   "missing required",
			body:   map[string]any{"discount_percentage": 10},
			fields: []string{"cost_price", "selling_price", "units_sold", "units_sold_discount"},
		},
		{
			name: "selling not above cost",
			body: map[string]any{
				"cost_price": 100, "selling_price": 100, "units_sold": 10,
				"discount_percentage": 10, "units_sold_discount": 12,
			},
			fields: []string{"selling_price"},
		},
		{
			name: "discount above 100",
			body: map[string]any{
				"cost_price": 50, "selling_price": 100, "units_sold": 10,
				"discount_percentage": 150, "units_sold_discount": 12,
			},
			fields: []string{"discount_percentage"},
		},
		{
			name: "negative costs",
			body: map[string]any{
				"cost_price": 50, "selling_price": 100, "units_sold": 10,
				"discount_percentage": 10, "units_sold_discount": 12,
				"fixed_cost": -1, "variable_cost": -2,
			},
			fields: []string{"fixed_cost", "variable_cost"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := e.do(t, http.MethodPost, "/api/analysis/preview", tt.body, token)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			env := decodeEnvelope(t, rr, nil)
			assert.False(t, env.Success)
			assert.ElementsMatch(t, tt.fields, fieldNames(env.Errors))
		})
	}

	rr := e.do(t, http.MethodPost, "/api/analysis/preview", map[string]any{
		"cost_price": 50, "selling_price": 100, "units_sold": 1.5, "units_sold_discount": 2,
	}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "fractional units are rejected")
}

func TestCreateValidation(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "a@example.com")

	body := profitableBody("ab")
	body["time_period"] = "hourly"
	body["competitor_price"] = -3
	body["description"] = strings.Repeat("x", 1001)

	rr := e.do(t, http.MethodPost, "/api/analysis/create", body, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	env := decodeEnvelope(t, rr, nil)
	assert.ElementsMatch(t, []string{"scenario_name", "time_period", "competitor_price", "description"}, fieldNames(env.Errors))
}

func TestAnalysisLifecycle(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "a@example.com")

	body := profitableBody("Spring promotion")
	body["competitor_price"] = 95
	created := e.createAnalysis(t, token, body)
	assert.Equal(t, "Spring promotion", created.Scenario.Name)
	assert.Equal(t, 6000.0, created.KPIs.ProfitDifference)
	require.NotNil(t, created.Inputs.CompetitorPrice)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.srv.metrics.ScenariosCreated))

	path := "/api/analysis/" + created.Scenario.ID
	rr := e.do(t, http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var detail analysisDetail
	decodeEnvelope(t, rr, &detail)
	assert.Equal(t, created.Scenario.ID, detail.Scenario.ID)
	assert.Equal(t, detail.StoredKPIs.ProfitDifference, detail.CalculatedKPIs.Performance.ProfitDifference)
	assert.Equal(t, detail.StoredKPIs.BreakEvenDiscount, detail.CalculatedKPIs.Performance.BreakEvenDiscount)
	assert.Equal(t, created.Result, detail.CalculatedKPIs)

	intruder := e.register(t, "b@example.com")
	rr = e.do(t, http.MethodGet, path, nil, intruder)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = e.do(t, http.MethodDelete, path, nil, intruder)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = e.do(t, http.MethodGet, "/api/analysis/all", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var list store.ListResult
	decodeEnvelope(t, rr, &list)
	assert.Equal(t, 1, list.Total)

	rr = e.do(t, http.MethodDelete, path, nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.srv.metrics.ScenariosDeleted))

	rr = e.do(t, http.MethodGet, path, nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListAnalysesQuery(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "a@example.com")

	for _, name := range []string{"Charlie", "Alpha", "Bravo"} {
		e.createAnalysis(t, token, profitableBody(name))
	}

	rr := e.do(t, http.MethodGet, "/api/analysis/all?page=1&limit=2&sortBy=scenario_name&sortOrder=asc", nil, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var list store.ListResult
	decodeEnvelope(t, rr, &list)
	assert.Equal(t, 3, list.Total)
	assert.Equal(t, 2, list.TotalPages)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Alpha", list.Items[0].Scenario.Name)
	assert.Equal(t, "Bravo", list.Items[1].Scenario.Name)

	for _, q := range []string{"page=0", "limit=101", "page=abc", "sortBy=price", "sortOrder=sideways"} {
		rr := e.do(t, http.MethodGet, "/api/analysis/all?"+q, nil, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestCompare(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "a@example.com")

	loss := e.createAnalysis(t, token, unprofitableBody("Clearance"))
	win := e.createAnalysis(t, token, profitableBody("Spring promotion"))

	rr := e.do(t, http.MethodPost, "/api/analysis/compare", map[string]any{
		"analysisIds": []string{loss.Scenario.ID, win.Scenario.ID},
	}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res comparisonResponse
	decodeEnvelope(t, rr, &res)
	require.Len(t, res.Scenarios, 2)
	assert.Equal(t, "Clearance", res.Scenarios[0].Name)
	assert.Equal(t, 10.0, res.Summary.BestPerformingDiscount)
	assert.Equal(t, 6000.0, res.Summary.HighestProfitIncrease)
	assert.Equal(t, 1, res.Summary.ProfitableCount)
	assert.Equal(t, 2, res.Summary.TotalCount)

	rr = e.do(t, http.MethodPost, "/api/analysis/compare", map[string]any{
		"analysisIds": []string{win.Scenario.ID},
	}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(t, http.MethodPost, "/api/analysis/compare", map[string]any{
		"analysisIds": []string{win.Scenario.ID, "not-a-uuid"},
	}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	env := decodeEnvelope(t, rr, nil)
	assert.Equal(t, []string{"analysisIds[1]"}, fieldNames(env.Errors))

	rr = e.do(t, http.MethodPost, "/api/analysis/compare", map[string]any{
		"analysisIds": []string{win.Scenario.ID, uuid.NewString()},
	}, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func mustUserID(t *testing.T, e *testEnv, token string) string {
	t.Helper()
	id, err := e.srv.auth.parseToken(token)
	require.NoError(t, err)
	return id
}

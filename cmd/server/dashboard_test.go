package main

import (
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/pricesense/internal/dashboard"
)

func TestOverviewCachesAndInvalidates(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "a@example.com")

	rr := e.do(t, http.MethodGet, "/api/dashboard/overview", nil, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var empty overviewResponse
	decodeEnvelope(t, rr, &empty)
	assert.Zero(t, empty.KPIs.TotalScenarios)
	assert.Empty(t, empty.RecentScenarios)
	assert.Nil(t, empty.BestPerformingScenario)

	e.createAnalysis(t, token, unprofitableBody("Clearance"))
	win := e.createAnalysis(t, token, profitableBody("Spring promotion"))

	rr = e.do(t, http.MethodGet, "/api/dashboard/overview", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var overview overviewResponse
	decodeEnvelope(t, rr, &overview)
	assert.Equal(t, 2, overview.KPIs.TotalScenarios)
	assert.Equal(t, 10.0, overview.KPIs.BestDiscount)
	assert.Equal(t, 50.0, overview.KPIs.DiscountWinRate)
	require.Len(t, overview.RecentScenarios, 2)
	assert.Equal(t, win.Scenario.ID, overview.RecentScenarios[0].ID)
	require.NotNil(t, overview.BestPerformingScenario)
	assert.Equal(t, win.Scenario.ID, overview.BestPerformingScenario.ID)

	misses := testutil.ToFloat64(e.srv.metrics.CacheMisses)
	assert.Equal(t, 2.0, misses, "creates invalidate the cached overview")
	assert.Zero(t, testutil.ToFloat64(e.srv.metrics.CacheHits))

	rr = e.do(t, http.MethodGet, "/api/dashboard/overview", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var cached overviewResponse
	decodeEnvelope(t, rr, &cached)
	assert.Equal(t, overview, cached)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.srv.metrics.CacheHits))

	rr = e.do(t, http.MethodDelete, "/api/analysis/"+win.Scenario.ID, nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = e.do(t, http.MethodGet, "/api/dashboard/overview", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeEnvelope(t, rr, &overview)
	assert.Equal(t, 1, overview.KPIs.TotalScenarios)
	assert.Equal(t, misses+1, testutil.ToFloat64(e.srv.metrics.CacheMisses))
}

func TestOverviewIsPerUser(t *testing.T) {
	e := newTestEnv(t)
	owner := e.register(t, "a@example.com")
	other := e.register(t, "b@example.com")

	e.createAnalysis(t, owner, profitableBody("Spring promotion"))

	rr := e.do(t, http.MethodGet, "/api/dashboard/overview", nil, other)
	require.Equal(t, http.StatusOK, rr.Code)
	var overview overviewResponse
	decodeEnvelope(t, rr, &overview)
	assert.Zero(t, overview.KPIs.TotalScenarios)
}

func TestTrends(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "a@example.com")

	for _, body := range []map[string]any{
		unprofitableBody("First"),
		profitableBody("Second"),
		profitableBody("Third"),
	} {
		body["time_period"] = "weekly"
		e.createAnalysis(t, token, body)
	}
	e.createAnalysis(t, token, profitableBody("Monthly one"))

	rr := e.do(t, http.MethodGet, "/api/dashboard/trends?period=weekly", nil, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var report dashboard.TrendReport
	decodeEnvelope(t, rr, &report)
	require.Len(t, report.Trends, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{report.Trends[0].Period, report.Trends[1].Period, report.Trends[2].Period})
	assert.Equal(t, 32500.0, report.Trends[0].Profit)
	require.Len(t, report.MovingAverages, 3)
	assert.Nil(t, report.MovingAverages[0])
	require.NotNil(t, report.MovingAverages[2])
	assert.InDelta(t, (32500.0+51000+51000)/3, *report.MovingAverages[2], 0.005)
	assert.InDelta(t, 66.67, report.Analysis.SuccessRate, 1e-9)

	rr = e.do(t, http.MethodGet, "/api/dashboard/trends", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeEnvelope(t, rr, &report)
	assert.Len(t, report.Trends, 1, "defaults to monthly")

	rr = e.do(t, http.MethodGet, "/api/dashboard/trends?period=hourly", nil, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "a@example.com")
	e.do(t, http.MethodPost, "/api/analysis/preview", profitableBody("x"), token)

	rr := e.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, "test_engine_calculations_total"))
	assert.True(t, strings.Contains(body, `route="/api/analysis/preview"`))
}

package main

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/pricesense/internal/cache"
	"github.com/Simplici0/pricesense/internal/dashboard"
	"github.com/Simplici0/pricesense/internal/kpi"
	"github.com/Simplici0/pricesense/internal/store"
)

const (
	sourcePreview  = "preview"
	sourceCreate   = "create"
	sourceReadback = "readback"
)

type inputsRequest struct {
	CostPrice          float64 `json:"cost_price" validate:"required,gt=0"`
	SellingPrice       float64 `json:"selling_price" validate:"required,gt=0,gtfield=CostPrice"`
	UnitsSold          int     `json:"units_sold" validate:"required,min=1"`
	DiscountPercentage float64 `json:"discount_percentage" validate:"gte=0,lte=100"`
	UnitsSoldDiscount  int     `json:"units_sold_discount" validate:"required,min=1"`
	FixedCost          float64 `json:"fixed_cost" validate:"gte=0"`
	VariableCost       float64 `json:"variable_cost" validate:"gte=0"`
}

func (r inputsRequest) scenarioInputs() kpi.ScenarioInputs {
	return kpi.ScenarioInputs{
		CostPrice:          r.CostPrice,
		SellingPrice:       r.SellingPrice,
		UnitsSold:          r.UnitsSold,
		DiscountPercentage: r.DiscountPercentage,
		UnitsSoldDiscount:  r.UnitsSoldDiscount,
		FixedCost:          r.FixedCost,
		VariableCost:       r.VariableCost,
	}
}

type analysisRequest struct {
	ScenarioName    string   `json:"scenario_name" validate:"required,min=3,max=255"`
	Description     string   `json:"description" validate:"max=1000"`
	TimePeriod      string   `json:"time_period" validate:"omitempty,oneof=daily weekly monthly yearly"`
	CompetitorPrice *float64 `json:"competitor_price" validate:"omitempty,gt=0"`
	inputsRequest
}

type compareRequest struct {
	AnalysisIDs []string `json:"analysisIds" validate:"required,min=2,max=10,dive,uuid4"`
}

type listQuery struct {
	Page      int    `json:"page" validate:"min=1"`
	Limit     int    `json:"limit" validate:"min=1,max=100"`
	SortBy    string `json:"sortBy" validate:"oneof=created_at scenario_name updated_at"`
	SortOrder string `json:"sortOrder" validate:"oneof=asc desc"`
}

type analysisResponse struct {
	Inputs kpi.ScenarioInputs `json:"inputs"`
	KPIs   kpi.AnalysisResult `json:"kpis"`
}

type analysisDetail struct {
	Scenario       store.Scenario     `json:"scenario"`
	Inputs         store.Inputs       `json:"inputs"`
	StoredKPIs     store.StoredKPIs   `json:"stored_kpis"`
	CalculatedKPIs kpi.AnalysisResult `json:"calculated_kpis"`
}

type comparisonResponse struct {
	Scenarios []dashboard.ComparisonRow   `json:"scenarios"`
	Summary   dashboard.ComparisonSummary `json:"summary"`
}

// calculate runs the engine and records its outcome.
func (s *server) calculate(source string, in kpi.ScenarioInputs) (kpi.AnalysisResult, error) {
	start := time.Now()
	res, err := kpi.CalculateAll(in)
	s.metrics.ObserveCalculation(source, time.Since(start), err, res.Performance.IsProfitable)
	if err != nil {
		return kpi.AnalysisResult{}, err
	}

	s.log.Debug("break-even discount",
		zap.String("source", source),
		zap.Int("units_sold", in.UnitsSold),
		zap.Float64("cost_price", in.CostPrice),
		zap.Float64("selling_price", in.SellingPrice),
		zap.Float64("variable_cost", in.VariableCost),
		zap.Float64("baseline_profit", res.Baseline.Profit),
		zap.Float64("break_even_discount", res.Performance.BreakEvenDiscount))
	return res, nil
}

func (s *server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req inputsRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	in := req.scenarioInputs()
	res, err := s.calculate(sourcePreview, in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "", analysisResponse{Inputs: in, KPIs: res})
}

func (s *server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	in := req.scenarioInputs()
	res, err := s.calculate(sourceCreate, in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	userID := userIDFrom(r.Context())
	rec, err := s.store.CreateScenario(r.Context(), userID, store.ScenarioMeta{
		Name:            req.ScenarioName,
		Description:     strings.TrimSpace(req.Description),
		TimePeriod:      req.TimePeriod,
		CompetitorPrice: req.CompetitorPrice,
	}, in, res)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.metrics.ScenariosCreated.Inc()
	s.invalidateDashboard(r.Context(), userID)
	respond(w, http.StatusCreated, "Analysis created successfully", rec)
}

func (s *server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.validate.Struct(q); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.store.ListScenarios(r.Context(), userIDFrom(r.Context()), store.Page(q))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "", res)
}

func parseListQuery(r *http.Request) (listQuery, error) {
	v := r.URL.Query()
	q := listQuery{
		Page:      1,
		Limit:     store.DefaultLimit,
		SortBy:    "created_at",
		SortOrder: "desc",
	}

	for name, dst := range map[string]*int{"page": &q.Page, "limit": &q.Limit} {
		raw := v.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return listQuery{}, badRequest("%s must be an integer", name)
		}
		*dst = n
	}
	if raw := v.Get("sortBy"); raw != "" {
		q.SortBy = raw
	}
	if raw := v.Get("sortOrder"); raw != "" {
		q.SortOrder = strings.ToLower(raw)
	}
	return q, nil
}

func (s *server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetScenario(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	calculated, err := s.calculate(sourceReadback, rec.Inputs.ScenarioInputs)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "", analysisDetail{
		Scenario:       rec.Scenario,
		Inputs:         rec.Inputs,
		StoredKPIs:     rec.KPIs,
		CalculatedKPIs: calculated,
	})
}

func (s *server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	if err := s.store.DeleteScenario(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.metrics.ScenariosDeleted.Inc()
	s.invalidateDashboard(r.Context(), userID)
	respond(w, http.StatusOK, "Analysis deleted successfully", nil)
}

func (s *server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	rows, err := s.store.ComparisonRows(r.Context(), userIDFrom(r.Context()), req.AnalysisIDs)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	summary, err := dashboard.Compare(rows)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "", comparisonResponse{Scenarios: rows, Summary: summary})
}

func (s *server) invalidateDashboard(ctx context.Context, userID string) {
	if err := s.cache.Del(ctx, cache.OverviewKey(userID)); err != nil {
		s.log.Warn("dashboard cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}

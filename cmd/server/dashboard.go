package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Simplici0/pricesense/internal/cache"
	"github.com/Simplici0/pricesense/internal/dashboard"
	"github.com/Simplici0/pricesense/internal/store"
)

const recentScenarioCount = 5

type overviewResponse struct {
	KPIs                   dashboard.OverviewKPIs `json:"kpis"`
	RecentScenarios        []store.RecentScenario `json:"recent_scenarios"`
	BestPerformingScenario *store.RecentScenario  `json:"best_performing_scenario"`
}

type trendsQuery struct {
	Period string `json:"period" validate:"oneof=daily weekly monthly yearly"`
}

func (s *server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userIDFrom(ctx)
	key := cache.OverviewKey(userID)

	cached, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		s.metrics.CacheHits.Inc()
		respond(w, http.StatusOK, "", json.RawMessage(cached))
		return
	case !errors.Is(err, cache.ErrMiss):
		s.log.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
	}
	s.metrics.CacheMisses.Inc()

	overview, err := s.buildOverview(r, userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	payload, err := json.Marshal(overview)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		s.log.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
	respond(w, http.StatusOK, "", json.RawMessage(payload))
}

func (s *server) buildOverview(r *http.Request, userID string) (overviewResponse, error) {
	ctx := r.Context()

	rows, err := s.store.DashboardRows(ctx, userID)
	if err != nil {
		return overviewResponse{}, err
	}
	recent, err := s.store.RecentScenarios(ctx, userID, recentScenarioCount)
	if err != nil {
		return overviewResponse{}, err
	}
	best, err := s.store.BestScenario(ctx, userID)
	if err != nil {
		return overviewResponse{}, err
	}

	return overviewResponse{
		KPIs:                   dashboard.Overview(rows),
		RecentScenarios:        recent,
		BestPerformingScenario: best,
	}, nil
}

func (s *server) handleTrends(w http.ResponseWriter, r *http.Request) {
	q := trendsQuery{Period: r.URL.Query().Get("period")}
	if q.Period == "" {
		q.Period = "monthly"
	}
	if err := s.validate.Struct(q); err != nil {
		s.respondError(w, r, err)
		return
	}

	points, err := s.store.TrendPoints(r.Context(), userIDFrom(r.Context()), q.Period)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "", dashboard.Trends(points))
}

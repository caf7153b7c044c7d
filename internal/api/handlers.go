package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/argussky/argus/internal/aggregate"
	"github.com/argussky/argus/internal/category"
	"github.com/argussky/argus/internal/score"
	"github.com/argussky/argus/internal/store"
	"github.com/argussky/argus/internal/threat"
)

// periodPoints maps the chart period parameter to hourly data points.
var periodPoints = map[string]int{
	"24h": 24,
	"7d":  168,
	"30d": 720,
}

func periodWindow(r *http.Request) (string, int) {
	period := r.URL.Query().Get("period")
	points, ok := periodPoints[period]
	if !ok {
		return "24h", periodPoints["24h"]
	}
	return period, points
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"version":   s.version,
		"timestamp": s.now().UTC(),
		"uptime":    time.Since(s.startedAt).Seconds(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	index := s.store.Index()
	subscribers := 0
	if s.broadcaster != nil {
		subscribers = s.broadcaster.Count()
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"status":        "operational",
		"uptime":        time.Since(s.startedAt).Seconds(),
		"analyzing":     s.pipeline != nil && s.pipeline.Running(),
		"lastAnalysis":  index.LastUpdated,
		"activeThreats": s.store.ActiveCount(),
		"totalThreats":  s.store.Count(),
		"sseClients":    subscribers,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	index := s.store.Index()
	trend := aggregate.Trend(s.store.History(24), 24)

	respondData(w, http.StatusOK, map[string]interface{}{
		"totalIndex":    index.TotalIndex,
		"threatLevel":   index.Level,
		"categories":    s.store.Categories(),
		"change24h":     trend.Change,
		"changePercent": trend.ChangePercent,
		"activeThreats": s.store.ActiveCount(),
		"lastUpdated":   index.LastUpdated,
	})
}

func (s *Server) handleThreatList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.Filter{
		Category: category.ID(q.Get("category")),
		Status:   threat.Status(q.Get("status")),
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = v
	}

	threats, total := s.store.Threats(filter)
	limit := filter.Limit
	if limit <= 0 {
		limit = store.DefaultLimit
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"threats": threats,
		"total":   total,
		"limit":   limit,
		"offset":  filter.Offset,
	})
}

func (s *Server) handleThreatGet(w http.ResponseWriter, r *http.Request) {
	th, err := s.store.ThreatByID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Threat not found")
		return
	}
	respondData(w, http.StatusOK, th)
}

func (s *Server) handleThreatUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status threat.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	th, err := s.store.UpdateStatus(chi.URLParam(r, "id"), body.Status, s.now())
	switch {
	case errors.Is(err, store.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest,
			"Invalid status. Allowed: active, resolved, dismissed, investigating")
		return
	case errors.Is(err, store.ErrThreatNotFound):
		respondError(w, http.StatusNotFound, "Threat not found")
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Info("threat status updated",
		zap.String("id", th.ID),
		zap.String("status", string(th.Status)))
	respondData(w, http.StatusOK, th)
}

// trendPoint is one chart sample: the index plus per-category scores.
type trendPoint struct {
	Timestamp  time.Time           `json:"timestamp"`
	TotalIndex int                 `json:"totalIndex"`
	Categories map[category.ID]int `json:"categories"`
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	period, points := periodWindow(r)
	history := s.store.History(points)

	out := make([]trendPoint, len(history))
	for i, entry := range history {
		scores := make(map[category.ID]int, len(entry.Categories))
		for id, state := range entry.Categories {
			scores[id] = state.Score
		}
		out[i] = trendPoint{
			Timestamp:  entry.Timestamp,
			TotalIndex: entry.TotalIndex,
			Categories: scores,
		}
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"period":  period,
		"points":  out,
		"summary": aggregate.Trend(history, points),
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	period, points := periodWindow(r)
	history := s.store.History(points)

	averageIndex := 0
	if len(history) > 0 {
		sum := 0
		for _, entry := range history {
			sum += entry.TotalIndex
		}
		averageIndex = int(float64(sum)/float64(len(history)) + 0.5)
	}

	cutoff := s.now().Add(-time.Duration(points) * time.Hour)
	all, _ := s.store.Threats(store.Filter{Limit: store.MaxThreats})

	var periodThreats, resolved int
	distribution := make(map[category.ID]int, len(category.IDs()))
	for _, id := range category.IDs() {
		distribution[id] = 0
	}
	for _, th := range all {
		if th.DetectedAt.Before(cutoff) {
			continue
		}
		periodThreats++
		if th.Status == threat.StatusResolved {
			resolved++
		}
		if _, ok := distribution[th.Category]; ok {
			distribution[th.Category]++
		}
	}

	resolutionRate := 0
	if periodThreats > 0 {
		resolutionRate = int(float64(resolved)/float64(periodThreats)*100 + 0.5)
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"period":               period,
		"averageIndex":         averageIndex,
		"totalThreats":         periodThreats,
		"resolvedThreats":      resolved,
		"resolutionRate":       resolutionRate,
		"categoryDistribution": distribution,
		"trend":                aggregate.Trend(history, points),
	})
}

func (s *Server) handleEvidence(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{
		"categories":        category.All(),
		"levels":            category.Levels(),
		"sourceCredibility": score.CredibilityTable(),
		"temporalDecay":     score.DecayTable(),
		"formulas": map[string]interface{}{
			"threatScore": map[string]interface{}{
				"name":        "Individual threat score",
				"formula":     "clamp(round(severity × category_weight × source_credibility × temporal_factor × max(0.5, confidence) × 2), 0, 100)",
				"description": "Weights the classified severity by source trust, freshness, and analysis confidence",
				"parameters": []map[string]string{
					{"name": "severity", "description": "Classified severity", "range": "0-100"},
					{"name": "category_weight", "description": "Fixed per-category weight", "range": "0.10-0.25"},
					{"name": "source_credibility", "description": "Source trust factor", "range": "0.20-1.00"},
					{"name": "temporal_factor", "description": "Age-based decay", "range": "0.1-1.0"},
					{"name": "confidence", "description": "Analysis confidence, floored at 0.5", "range": "0.5-1.0"},
				},
			},
			"totalIndex": map[string]interface{}{
				"name":        "Overall threat index",
				"formula":     "clamp(round(Σ(category_score × category_weight) / Σ(category_weight) × 1.5), 0, 100)",
				"description": "Scaled weighted mean of the per-category scores",
				"parameters": []map[string]string{
					{"name": "category_score", "description": "Per-category mean threat score", "range": "0-100"},
					{"name": "category_weight", "description": "Fixed per-category weight", "range": "0.10-0.25"},
				},
			},
		},
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	summary, err := s.pipeline.Run(r.Context(), "manual", nil)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	message := "Analysis pipeline completed"
	if summary.Attached {
		message = "Joined analysis already in progress"
	}
	respond(w, http.StatusOK, envelope{
		Success: true,
		Message: message,
		Data: map[string]interface{}{
			"totalIndex":   summary.Index.TotalIndex,
			"threatLevel":  summary.Index.Level,
			"newThreats":   summary.NewThreats,
			"threatsCount": summary.TotalThreats,
			"lastUpdated":  summary.Index.LastUpdated,
			"attached":     summary.Attached,
		},
	})
}

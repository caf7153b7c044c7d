// Package api exposes the HTTP surface: dashboard and threat queries,
// manual and streaming analysis triggers, live alert streaming, CCTV
// simulator control, and scoring-evidence documentation.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/argussky/argus/internal/broadcast"
	"github.com/argussky/argus/internal/observability"
	"github.com/argussky/argus/internal/pipeline"
	"github.com/argussky/argus/internal/simulator"
	"github.com/argussky/argus/internal/store"
)

// Server wires handlers to the pipeline state.
type Server struct {
	store       *store.Store
	pipeline    *pipeline.Pipeline
	broadcaster *broadcast.Broadcaster
	simulator   *simulator.Simulator
	telemetry   *observability.Telemetry
	logger      *zap.Logger
	version     string
	startedAt   time.Time
	now         func() time.Time
}

// New creates the API server. telemetry may be nil in tests.
func New(
	st *store.Store,
	p *pipeline.Pipeline,
	b *broadcast.Broadcaster,
	sim *simulator.Simulator,
	telemetry *observability.Telemetry,
	logger *zap.Logger,
	version string,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:       st,
		pipeline:    p,
		broadcaster: b,
		simulator:   sim,
		telemetry:   telemetry,
		logger:      logger,
		version:     version,
		startedAt:   time.Now(),
		now:         time.Now,
	}
}

// Router builds the chi router. limiter may be nil, in which case the
// trigger endpoints run unthrottled.
func (s *Server) Router(limiter func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestMetrics)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/dashboard", s.handleDashboard)

		r.Route("/threats", func(r chi.Router) {
			r.Get("/", s.handleThreatList)
			r.Get("/{id}", s.handleThreatGet)
			r.Patch("/{id}", s.handleThreatUpdate)
		})

		r.Get("/trend", s.handleTrend)
		r.Get("/analytics", s.handleAnalytics)
		r.Get("/evidence", s.handleEvidence)

		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter)
			}
			r.Post("/analyze", s.handleAnalyze)
			r.Get("/analyze/stream", s.handleAnalyzeStream)
		})

		r.Get("/alerts/stream", s.handleAlertStream)

		r.Route("/cctv", func(r chi.Router) {
			r.Get("/status", s.handleCCTVStatus)
			r.Post("/start", s.handleCCTVStart)
			r.Post("/stop", s.handleCCTVStop)
			r.Get("/cameras", s.handleCCTVCameras)
			r.Get("/event-types", s.handleCCTVEventTypes)
			r.Get("/events", s.handleCCTVEvents)
			r.Get("/statistics", s.handleCCTVStatistics)

			r.Group(func(r chi.Router) {
				if limiter != nil {
					r.Use(limiter)
				}
				r.Post("/trigger", s.handleCCTVTrigger)
			})
		})
	})

	if s.telemetry != nil {
		r.Method(http.MethodGet, "/metrics", s.telemetry.MetricsHandler())
	}

	return r
}

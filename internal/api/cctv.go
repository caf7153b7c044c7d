package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

func (s *Server) handleCCTVStatus(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, s.simulator.Status())
}

func (s *Server) handleCCTVStart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IntervalSeconds int     `json:"intervalSeconds"`
		Probability     float64 `json:"probability"`
	}
	// An empty body means defaults.
	_ = json.NewDecoder(r.Body).Decode(&body)

	if s.simulator.Running() {
		respond(w, http.StatusOK, envelope{
			Success: true,
			Message: "CCTV simulator already running",
			Data:    s.simulator.Status(),
		})
		return
	}

	s.simulator.Start(time.Duration(body.IntervalSeconds)*time.Second, body.Probability)
	respond(w, http.StatusOK, envelope{
		Success: true,
		Message: "CCTV simulator started",
		Data:    s.simulator.Status(),
	})
}

func (s *Server) handleCCTVStop(w http.ResponseWriter, r *http.Request) {
	s.simulator.Stop()
	respond(w, http.StatusOK, envelope{
		Success: true,
		Message: "CCTV simulator stopped",
		Data:    s.simulator.Status(),
	})
}

func (s *Server) handleCCTVTrigger(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EventType string `json:"eventType"`
	}
	// An empty body triggers a random event type.
	_ = json.NewDecoder(r.Body).Decode(&body)

	event, err := s.simulator.Trigger(body.EventType)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.telemetry != nil && s.telemetry.Metrics() != nil {
		s.telemetry.Metrics().CCTVEvents.WithLabelValues(eventTypeLabel(event.Keywords)).Inc()
	}
	respondData(w, http.StatusOK, event)
}

// eventTypeLabel extracts the event type id the simulator records as the
// first keyword.
func eventTypeLabel(keywords []string) string {
	if len(keywords) > 0 {
		return keywords[0]
	}
	return "unknown"
}

func (s *Server) handleCCTVCameras(w http.ResponseWriter, r *http.Request) {
	cams := s.simulator.Cameras()
	respondData(w, http.StatusOK, map[string]interface{}{
		"cameras": cams,
		"total":   len(cams),
	})
}

func (s *Server) handleCCTVEventTypes(w http.ResponseWriter, r *http.Request) {
	types := s.simulator.EventTypes()
	respondData(w, http.StatusOK, map[string]interface{}{
		"eventTypes": types,
		"total":      len(types),
	})
}

func (s *Server) handleCCTVEvents(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	events := s.simulator.Events(limit)
	respondData(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"total":  len(events),
	})
}

func (s *Server) handleCCTVStatistics(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, s.simulator.Status().Statistics)
}

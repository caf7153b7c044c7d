package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/argussky/argus/internal/pipeline"
)

func sseHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// writeSSE emits one named server-sent event frame and flushes it.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	if event != "" {
		fmt.Fprintf(w, "event: %s\n", event)
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
}

// handleAnalyzeStream runs an analysis with per-stage progress streamed as
// named SSE events, ending with a complete event carrying the final
// snapshot. A caller joining an in-flight run gets an attached event and
// the shared outcome only.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	sseHeaders(w)
	flusher.Flush()

	summary, err := s.pipeline.Run(r.Context(), "stream", func(ev pipeline.Event) {
		writeSSE(w, flusher, ev.Type, ev)
	})
	if err != nil {
		writeSSE(w, flusher, pipeline.EventError, map[string]string{"message": err.Error()})
		return
	}

	writeSSE(w, flusher, pipeline.EventComplete, map[string]interface{}{
		"totalIndex":   summary.Index.TotalIndex,
		"threatLevel":  summary.Index.Level,
		"categories":   summary.Categories,
		"newThreats":   summary.NewThreats,
		"totalThreats": summary.TotalThreats,
		"lastUpdated":  summary.Index.LastUpdated,
		"attached":     summary.Attached,
	})
}

// handleAlertStream subscribes the client to the live broadcast feed. The
// connected handshake and heartbeats come from the broadcaster itself;
// frames are data-only, distinguished by their type field.
func (s *Server) handleAlertStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ch := s.broadcaster.Subscribe()
	defer s.broadcaster.Unsubscribe(ch)

	if s.telemetry != nil && s.telemetry.Metrics() != nil {
		s.telemetry.Metrics().Subscribers.Inc()
		defer s.telemetry.Metrics().Subscribers.Dec()
	}

	sseHeaders(w)
	flusher.Flush()

	s.logger.Info("sse client connected", zap.Int("clients", s.broadcaster.Count()))
	defer s.logger.Info("sse client disconnected")

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			writeSSE(w, flusher, "", ev)
		}
	}
}

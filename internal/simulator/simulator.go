// Package simulator fabricates CCTV video-analysis events so the live feed
// stays populated without real camera integrations. Generated events are
// pre-scored and injected next to pipeline threats, and pushed to alert
// subscribers as they happen.
package simulator

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/argussky/argus/internal/broadcast"
	"github.com/argussky/argus/internal/category"
	"github.com/argussky/argus/internal/threat"
)

// Defaults for the probability ticker.
const (
	DefaultInterval    = 30 * time.Second
	DefaultProbability = 0.4
)

// maxEventHistory caps the simulator's own recent-event list.
const maxEventHistory = 100

// Camera is one fixed CCTV location.
type Camera struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Zone string  `json:"zone"`
	Area string  `json:"area"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// EventType describes one class of simulated detection.
type EventType struct {
	ID            string      `json:"id"`
	Category      category.ID `json:"category"`
	BaseSeverity  int         `json:"baseSeverity"`
	Title         string      `json:"title"`
	Descriptions  []string    `json:"-"`
	ConfidenceMin float64     `json:"-"`
	ConfidenceMax float64     `json:"-"`
	Areas         []string    `json:"applicableAreas"`
}

// Sink receives generated events; the threat store satisfies it.
type Sink interface {
	Inject(threat.ScoredThreat)
}

// Status reports the simulator's current state.
type Status struct {
	Running      bool                  `json:"isRunning"`
	TotalCameras int                   `json:"totalCameras"`
	EventTypes   int                   `json:"eventTypes"`
	RecentEvents []threat.ScoredThreat `json:"recentEvents"`
	Statistics   Statistics            `json:"statistics"`
}

// Statistics summarizes generated events.
type Statistics struct {
	TotalEvents int                 `json:"totalEvents"`
	ByCategory  map[category.ID]int `json:"byCategory"`
	ByZone      map[string]int      `json:"byZone"`
	AvgSeverity int                 `json:"avgSeverity"`
}

// Simulator drives the periodic probability draw.
type Simulator struct {
	mu      sync.Mutex
	running bool
	stop    chan struct{}

	sink        Sink
	broadcaster *broadcast.Broadcaster
	logger      *zap.Logger
	rand        *rand.Rand
	now         func() time.Time

	events []threat.ScoredThreat
	zones  map[string]string // event id -> zone, for statistics
}

// New creates a stopped simulator.
func New(sink Sink, broadcaster *broadcast.Broadcaster, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		sink:        sink,
		broadcaster: broadcaster,
		logger:      logger,
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
		zones:       make(map[string]string),
	}
}

// Start begins the probability ticker. Starting a running simulator is a
// no-op.
func (s *Simulator) Start(interval time.Duration, probability float64) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if probability <= 0 || probability > 1 {
		probability = DefaultProbability
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	stop := s.stop
	s.mu.Unlock()

	s.logger.Info("cctv simulator started",
		zap.Duration("interval", interval),
		zap.Float64("probability", probability))

	go s.loop(stop, interval, probability)
}

// Stop halts the ticker. Stopping a stopped simulator is a no-op.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	close(s.stop)
	s.logger.Info("cctv simulator stopped")
}

// Running reports whether the ticker is live.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Simulator) loop(stop <-chan struct{}, interval time.Duration, probability float64) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			draw := s.rand.Float64()
			s.mu.Unlock()
			if draw < probability {
				s.emit("")
			}
		case <-stop:
			return
		}
	}
}

// Trigger forces one event of the given type, or a random type when id is
// empty. Used by the demo endpoint.
func (s *Simulator) Trigger(eventTypeID string) (threat.ScoredThreat, error) {
	if eventTypeID != "" {
		if _, ok := eventTypeIndex[eventTypeID]; !ok {
			return threat.ScoredThreat{}, fmt.Errorf("unknown event type: %s", eventTypeID)
		}
	}
	return s.emit(eventTypeID), nil
}

// emit generates, records, injects, and broadcasts one event.
func (s *Simulator) emit(eventTypeID string) threat.ScoredThreat {
	s.mu.Lock()
	event, zone := s.generateLocked(eventTypeID)
	s.events = append(s.events, event)
	if len(s.events) > maxEventHistory {
		evicted := s.events[0]
		delete(s.zones, evicted.ID)
		s.events = s.events[1:]
	}
	s.zones[event.ID] = zone
	s.mu.Unlock()

	s.logger.Info("cctv event generated",
		zap.String("title", event.Title),
		zap.String("camera", event.SourceName),
		zap.Int("score", event.Score))

	if s.sink != nil {
		s.sink.Inject(event)
	}
	if s.broadcaster != nil {
		s.broadcaster.Publish(broadcast.Event{
			Type: broadcast.TypeCCTVAlert,
			Data: event,
		})
	}
	return event
}

// generateLocked builds one pre-scored event. Callers hold s.mu.
func (s *Simulator) generateLocked(eventTypeID string) (threat.ScoredThreat, string) {
	var et EventType
	if eventTypeID != "" {
		et = eventTypeIndex[eventTypeID]
	} else {
		et = eventTypes[s.rand.Intn(len(eventTypes))]
	}

	cam := s.pickCamera(et.Areas)

	confidence := et.ConfidenceMin + s.rand.Float64()*(et.ConfidenceMax-et.ConfidenceMin)

	// Severity jitters around the base by up to ten percent either way.
	jitter := float64(et.BaseSeverity) * 0.1
	severity := threat.ClampSeverity(int(math.Round(
		float64(et.BaseSeverity) + s.rand.Float64()*jitter*2 - jitter)))

	description := et.Descriptions[s.rand.Intn(len(et.Descriptions))]
	now := s.now()

	st := threat.ScoredThreat{
		ID:         uuid.NewString(),
		Score:      int(math.Round(float64(severity) * confidence)),
		Status:     threat.StatusActive,
		DetectedAt: now,
	}
	st.Title = fmt.Sprintf("[CCTV] %s", et.Title)
	st.Content = fmt.Sprintf("%s: %s", cam.Name, description)
	st.Source = "cctv"
	st.SourceType = "video_analysis"
	st.SourceName = cam.ID
	st.PublishedAt = now
	st.IsThreat = true
	st.Category = et.Category
	st.Severity = severity
	st.Confidence = math.Round(confidence*1000) / 1000
	st.Keywords = []string{et.ID, cam.Zone, cam.Area}
	st.Recommendation = recommendationFor(et.Category, severity)
	st.Method = threat.MethodDefault

	return st, cam.Zone
}

func (s *Simulator) pickCamera(areas []string) Camera {
	eligible := make([]Camera, 0, len(cameras))
	for _, cam := range cameras {
		for _, area := range areas {
			if cam.Area == area {
				eligible = append(eligible, cam)
				break
			}
		}
	}
	if len(eligible) == 0 {
		return cameras[0]
	}
	return eligible[s.rand.Intn(len(eligible))]
}

// Status returns the live state and statistics.
func (s *Simulator) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	recent := s.events
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	recentCopy := make([]threat.ScoredThreat, len(recent))
	copy(recentCopy, recent)

	return Status{
		Running:      s.running,
		TotalCameras: len(cameras),
		EventTypes:   len(eventTypes),
		RecentEvents: recentCopy,
		Statistics:   s.statisticsLocked(),
	}
}

func (s *Simulator) statisticsLocked() Statistics {
	stats := Statistics{
		TotalEvents: len(s.events),
		ByCategory:  make(map[category.ID]int),
		ByZone:      make(map[string]int),
	}
	if len(s.events) == 0 {
		return stats
	}

	totalSeverity := 0
	for _, ev := range s.events {
		stats.ByCategory[ev.Category]++
		zone := s.zones[ev.ID]
		if zone == "" {
			zone = "UNKNOWN"
		}
		stats.ByZone[zone]++
		totalSeverity += ev.Severity
	}
	stats.AvgSeverity = int(math.Round(float64(totalSeverity) / float64(len(s.events))))
	return stats
}

// Events returns up to limit generated events, newest first.
func (s *Simulator) Events(limit int) []threat.ScoredThreat {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]threat.ScoredThreat, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out
}

// Cameras returns the fixed camera table.
func (s *Simulator) Cameras() []Camera {
	out := make([]Camera, len(cameras))
	copy(out, cameras)
	return out
}

// EventTypes returns the fixed event-type table.
func (s *Simulator) EventTypes() []EventType {
	out := make([]EventType, len(eventTypes))
	copy(out, eventTypes)
	return out
}

// recommendationFor maps category and severity to a canned response action.
func recommendationFor(id category.ID, severity int) string {
	switch id {
	case category.Terror:
		if severity > 80 {
			return "Dispatch security team immediately and lock down the zone"
		}
		return "Security officer verification and increased monitoring"
	case category.Drone:
		if severity > 80 {
			return "Consider halting flight operations and activate counter-drone equipment"
		}
		return "Track the drone and notify the control tower"
	case category.Smuggling:
		if severity > 80 {
			return "Coordinate with customs and police, secure the suspect"
		}
		return "Additional screening and identity verification"
	case category.Insider:
		if severity > 70 {
			return "Block access immediately and run a background check"
		}
		return "Increase monitoring and report the situation"
	case category.Cyber:
		if severity > 80 {
			return "Isolate the affected system and dispatch the security team"
		}
		return "Remote inspection and log analysis"
	default:
		return "Continue monitoring the situation"
	}
}

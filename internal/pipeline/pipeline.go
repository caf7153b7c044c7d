// Package pipeline orchestrates one analysis run: collect, classify, score,
// aggregate, commit. Concurrent triggers from any combination of the
// scheduler, the manual endpoint, and the streaming endpoint collapse into
// a single in-flight run; late callers attach and receive the outcome.
package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/argussky/argus/internal/aggregate"
	"github.com/argussky/argus/internal/broadcast"
	"github.com/argussky/argus/internal/category"
	"github.com/argussky/argus/internal/classify"
	"github.com/argussky/argus/internal/collect"
	"github.com/argussky/argus/internal/observability"
	"github.com/argussky/argus/internal/score"
	"github.com/argussky/argus/internal/store"
	"github.com/argussky/argus/internal/threat"
)

// runKey is the singleflight key: there is only ever one kind of run.
const runKey = "analysis"

// Event types emitted to a streaming observer.
const (
	EventStart    = "start"
	EventStage    = "stage"
	EventThreat   = "threat"
	EventProgress = "progress"
	EventComplete = "complete"
	EventError    = "error"
	EventAttached = "attached"
)

// Config bounds one pipeline run.
type Config struct {
	// MaxItems caps how many collected items are analyzed per run.
	MaxItems int `yaml:"max_items"`

	// Concurrency bounds parallel classification calls.
	Concurrency int `yaml:"concurrency"`

	// RunTimeout bounds one full run.
	RunTimeout time.Duration `yaml:"run_timeout"`
}

// DefaultConfig returns the standard run bounds.
func DefaultConfig() Config {
	return Config{
		MaxItems:    20,
		Concurrency: 3,
		RunTimeout:  5 * time.Minute,
	}
}

// Event is one progress notification during a streaming run.
type Event struct {
	Type      string       `json:"type"`
	Stage     threat.Stage `json:"stage,omitempty"`
	Status    string       `json:"status,omitempty"`
	Index     int          `json:"index,omitempty"`
	Total     int          `json:"total,omitempty"`
	Count     int          `json:"count,omitempty"`
	Title     string       `json:"title,omitempty"`
	Category  category.ID  `json:"category,omitempty"`
	Severity  int          `json:"severity,omitempty"`
	IsThreat  bool         `json:"isThreat,omitempty"`
	Message   string       `json:"message,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Observer receives streaming run events. It is called from multiple
// goroutines but never concurrently.
type Observer func(Event)

// Summary is the outcome of one run, returned to every caller that
// triggered or attached to it.
type Summary struct {
	Collected    int                                  `json:"collected"`
	Analyzed     int                                  `json:"analyzed"`
	NewThreats   int                                  `json:"newThreats"`
	TotalThreats int                                  `json:"totalThreats"`
	Index        threat.IndexSnapshot                 `json:"index"`
	Categories   map[category.ID]threat.CategoryState `json:"categories"`
	Attached     bool                                 `json:"attached"`
	Duration     time.Duration                        `json:"-"`
}

// UpdatePayload is the broadcast sent to alert subscribers after a commit.
type UpdatePayload struct {
	TotalIndex int                                  `json:"totalIndex"`
	Level      category.Level                       `json:"threatLevel"`
	Categories map[category.ID]threat.CategoryState `json:"categories"`
	NewThreats int                                  `json:"newThreats"`
}

// Pipeline wires the run stages together.
type Pipeline struct {
	config      Config
	collectors  *collect.Manager
	classifier  *classify.Classifier
	scorer      *score.Scorer
	store       *store.Store
	broadcaster *broadcast.Broadcaster
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time

	group   singleflight.Group
	running atomic.Bool
}

// New creates a pipeline. metrics may be nil.
func New(
	config Config,
	collectors *collect.Manager,
	classifier *classify.Classifier,
	scorer *score.Scorer,
	st *store.Store,
	broadcaster *broadcast.Broadcaster,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Pipeline {
	if config.MaxItems <= 0 {
		config.MaxItems = DefaultConfig().MaxItems
	}
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConfig().Concurrency
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = DefaultConfig().RunTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		config:      config,
		collectors:  collectors,
		classifier:  classifier,
		scorer:      scorer,
		store:       st,
		broadcaster: broadcaster,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Running reports whether a run is in flight.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// Run triggers an analysis run or attaches to the one already in flight.
// Only the caller whose trigger actually starts the run observes per-stage
// events; an attached caller's observer receives a single attached event
// once the shared run completes, followed by the shared summary.
func (p *Pipeline) Run(ctx context.Context, trigger string, observer Observer) (Summary, error) {
	executed := false
	v, err, _ := p.group.Do(runKey, func() (interface{}, error) {
		executed = true
		p.running.Store(true)
		defer p.running.Store(false)
		return p.execute(trigger, observer), nil
	})
	if err != nil {
		return Summary{}, err
	}

	summary := v.(Summary)
	if !executed {
		summary.Attached = true
		if observer != nil {
			observer(Event{
				Type:      EventAttached,
				Message:   "joined in-flight analysis run",
				Timestamp: p.now(),
			})
		}
	}
	return summary, nil
}

// execute is the single-flight body. It deliberately runs on a fresh
// context so a disconnecting trigger cannot cancel a run other callers
// share; only the run timeout bounds it.
func (p *Pipeline) execute(trigger string, observer Observer) Summary {
	start := p.now()
	ctx, cancel := context.WithTimeout(context.Background(), p.config.RunTimeout)
	defer cancel()

	var obsMu sync.Mutex
	emit := func(ev Event) {
		if observer == nil {
			return
		}
		ev.Timestamp = p.now()
		obsMu.Lock()
		observer(ev)
		obsMu.Unlock()
	}

	p.logger.Info("analysis run started", zap.String("trigger", trigger))
	emit(Event{Type: EventStart, Message: "analysis started"})

	// Stage 1: collect.
	emit(Event{Type: EventStage, Stage: threat.StageCollecting, Status: "running"})
	items := p.collectors.CollectAll(ctx)
	if len(items) > p.config.MaxItems {
		items = items[:p.config.MaxItems]
	}
	if p.metrics != nil {
		for _, item := range items {
			p.metrics.ItemsCollected.WithLabelValues(item.Source).Inc()
		}
	}
	emit(Event{Type: EventStage, Stage: threat.StageCollecting, Status: "complete", Count: len(items)})

	// Stage 2: classify with bounded concurrency.
	emit(Event{Type: EventStage, Stage: threat.StageClassifying, Status: "running", Total: len(items)})
	classifications := make([]threat.Classification, len(items))
	g := errgroup.Group{}
	g.SetLimit(p.config.Concurrency)
	for i := range items {
		i := i
		g.Go(func() error {
			cls := p.classifier.Classify(ctx, items[i])
			classifications[i] = cls

			ev := Event{
				Type:     EventProgress,
				Index:    i + 1,
				Total:    len(items),
				Title:    truncate(items[i].Title, 50),
				IsThreat: cls.IsThreat,
			}
			if cls.IsThreat {
				ev.Type = EventThreat
				ev.Category = cls.Category
				ev.Severity = cls.Severity
			}
			emit(ev)
			return nil
		})
	}
	g.Wait()
	emit(Event{Type: EventStage, Stage: threat.StageClassifying, Status: "complete"})

	if ctx.Err() != nil {
		p.logger.Error("analysis run timed out", zap.String("trigger", trigger))
		emit(Event{Type: EventError, Stage: threat.StageFailed, Message: "run timed out"})
		if p.metrics != nil {
			p.metrics.RunsTotal.WithLabelValues(trigger, "timeout").Inc()
		}
		return p.timeoutSummary(len(items), start)
	}

	// Stage 3: score the confirmed threats.
	emit(Event{Type: EventStage, Stage: threat.StageScoring, Status: "running"})
	now := p.now()
	newThreats := make([]threat.ScoredThreat, 0, len(items))
	for i, cls := range classifications {
		if !cls.IsThreat {
			continue
		}
		st := threat.ScoredThreat{
			ID:             uuid.NewString(),
			CandidateItem:  items[i],
			Classification: cls,
			Score:          p.scorer.Score(items[i], cls),
			Status:         threat.StatusActive,
			DetectedAt:     now,
		}
		newThreats = append(newThreats, st)
		if p.metrics != nil {
			p.metrics.ThreatsDetected.WithLabelValues(string(cls.Category), string(cls.Method)).Inc()
		}
	}
	emit(Event{Type: EventStage, Stage: threat.StageScoring, Status: "complete", Count: len(newThreats)})

	// Stage 4: aggregate and commit atomically.
	emit(Event{Type: EventStage, Stage: threat.StageAggregating, Status: "running"})
	result := aggregate.Run(now, newThreats, p.store.Categories(), p.store.Index().TotalIndex)
	emit(Event{Type: EventStage, Stage: threat.StageAggregating, Status: "complete"})

	emit(Event{Type: EventStage, Stage: threat.StageCommitting, Status: "running"})
	p.store.ApplyRun(result, newThreats)
	emit(Event{Type: EventStage, Stage: threat.StageCommitting, Status: "complete"})

	if p.metrics != nil {
		p.metrics.ThreatIndex.Set(float64(result.Index.TotalIndex))
		for id, state := range result.Categories {
			p.metrics.CategoryScore.WithLabelValues(string(id)).Set(float64(state.Score))
		}
		p.metrics.RunsTotal.WithLabelValues(trigger, "ok").Inc()
		p.metrics.RunDuration.Observe(p.now().Sub(start).Seconds())
	}

	if p.broadcaster != nil {
		p.broadcaster.Publish(broadcast.Event{
			Type: broadcast.TypeUpdate,
			Data: UpdatePayload{
				TotalIndex: result.Index.TotalIndex,
				Level:      result.Index.Level,
				Categories: result.Categories,
				NewThreats: len(newThreats),
			},
		})
	}

	summary := Summary{
		Collected:    len(items),
		Analyzed:     len(items),
		NewThreats:   len(newThreats),
		TotalThreats: p.store.Count(),
		Index:        result.Index,
		Categories:   result.Categories,
		Duration:     p.now().Sub(start),
	}

	p.logger.Info("analysis run complete",
		zap.String("trigger", trigger),
		zap.Int("collected", summary.Collected),
		zap.Int("new_threats", summary.NewThreats),
		zap.Int("total_index", summary.Index.TotalIndex),
		zap.Duration("duration", summary.Duration))

	emit(Event{Type: EventStage, Stage: threat.StageDone, Status: "complete"})
	emit(Event{Type: EventComplete, Count: len(newThreats)})

	return summary
}

// timeoutSummary builds a summary from the current store state without
// committing anything.
func (p *Pipeline) timeoutSummary(collected int, start time.Time) Summary {
	return Summary{
		Collected:    collected,
		TotalThreats: p.store.Count(),
		Index:        p.store.Index(),
		Categories:   p.store.Categories(),
		Duration:     p.now().Sub(start),
	}
}

// truncate cuts s to at most n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Package collect gathers candidate items from external intelligence
// sources. Sources are isolated from each other: one failing or slow
// source never poisons a run, it just contributes nothing.
package collect

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/argussky/argus/internal/threat"
)

// dedupeKeyLen bounds the lowercased title prefix used for duplicate
// detection across sources.
const dedupeKeyLen = 50

// Collector produces candidate items from one source.
type Collector interface {
	Name() string
	Collect(ctx context.Context) ([]threat.CandidateItem, error)
}

// Manager fans collection out across all configured sources.
type Manager struct {
	collectors []Collector
	fallback   Collector
	logger     *zap.Logger
}

// NewManager creates a manager. fallback supplies the batch used when every
// live source comes back empty; it may be nil.
func NewManager(logger *zap.Logger, fallback Collector, collectors ...Collector) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		collectors: collectors,
		fallback:   fallback,
		logger:     logger,
	}
}

// CollectAll queries every source in parallel, deduplicates by title, and
// falls back to the simulated batch when nothing was collected. Individual
// source failures are logged and swallowed.
func (m *Manager) CollectAll(ctx context.Context) []threat.CandidateItem {
	var (
		mu      sync.Mutex
		results []threat.CandidateItem
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range m.collectors {
		c := c
		g.Go(func() error {
			items, err := c.Collect(gctx)
			if err != nil {
				m.logger.Warn("source collection failed",
					zap.String("source", c.Name()),
					zap.Error(err))
				return nil
			}
			m.logger.Info("source collected",
				zap.String("source", c.Name()),
				zap.Int("items", len(items)))

			mu.Lock()
			results = append(results, items...)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	results = Dedupe(results)

	if len(results) == 0 && m.fallback != nil {
		items, err := m.fallback.Collect(ctx)
		if err != nil {
			m.logger.Error("fallback collection failed", zap.Error(err))
			return nil
		}
		m.logger.Info("no live data collected, using fallback batch",
			zap.Int("items", len(items)))
		return items
	}

	return results
}

// Dedupe drops items whose normalized title prefix was already seen,
// keeping the first occurrence. Untitled items are dropped.
func Dedupe(items []threat.CandidateItem) []threat.CandidateItem {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]

	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Title))
		if len(key) > dedupeKeyLen {
			key = key[:dedupeKeyLen]
		}
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

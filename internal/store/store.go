// Package store holds the live threat state: per-category scores, the
// recent threat list, the bounded index history, and the current snapshot.
// Everything lives in memory behind one lock; a run commit is atomic.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/argussky/argus/internal/aggregate"
	"github.com/argussky/argus/internal/category"
	"github.com/argussky/argus/internal/threat"
)

// Common errors.
var (
	ErrThreatNotFound = errors.New("threat not found")
	ErrInvalidStatus  = errors.New("invalid threat status")
)

const (
	// MaxThreats caps the newest-first threat list.
	MaxThreats = 100

	// MaxHistory caps the index time series (30 days of hourly entries).
	MaxHistory = 720
)

// Filter narrows a threat listing. Zero values mean no constraint; Limit 0
// falls back to DefaultLimit.
type Filter struct {
	Category category.ID
	Status   threat.Status
	Limit    int
	Offset   int
}

// DefaultLimit is applied when a listing does not specify one.
const DefaultLimit = 50

// Store is the mutex-guarded aggregate state.
type Store struct {
	mu         sync.RWMutex
	categories map[category.ID]threat.CategoryState
	threats    []threat.ScoredThreat
	history    []threat.HistoryEntry
	index      threat.IndexSnapshot
}

// New creates a store with all category lanes zeroed.
func New() *Store {
	categories := make(map[category.ID]threat.CategoryState, len(category.IDs()))
	for _, info := range category.All() {
		categories[info.ID] = threat.CategoryState{
			ID:    info.ID,
			Name:  info.Name,
			Trend: threat.TrendStable,
		}
	}
	return &Store{
		categories: categories,
		index: threat.IndexSnapshot{
			Level: category.LevelFor(0),
		},
	}
}

// ApplyRun commits one aggregation result and its newly detected threats as
// a single unit. New threats go to the front of the list.
func (s *Store) ApplyRun(result aggregate.Result, newThreats []threat.ScoredThreat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = result.Categories
	s.index = result.Index

	s.threats = append(append([]threat.ScoredThreat{}, newThreats...), s.threats...)
	if len(s.threats) > MaxThreats {
		s.threats = s.threats[:MaxThreats]
	}

	s.history = append(s.history, result.History)
	if len(s.history) > MaxHistory {
		s.history = s.history[len(s.history)-MaxHistory:]
	}
}

// Inject prepends an externally scored threat (such as a CCTV event)
// without touching categories or the index; the next run folds it in
// only through the threat list cap.
func (s *Store) Inject(st threat.ScoredThreat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.threats = append([]threat.ScoredThreat{st}, s.threats...)
	if len(s.threats) > MaxThreats {
		s.threats = s.threats[:MaxThreats]
	}
}

// UpdateStatus transitions one threat's lifecycle state. The status is
// validated before any lookup so an invalid status on a missing id still
// reports the status error.
func (s *Store) UpdateStatus(id string, status threat.Status, now time.Time) (threat.ScoredThreat, error) {
	if !threat.ValidStatus(status) {
		return threat.ScoredThreat{}, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.threats {
		if s.threats[i].ID == id {
			s.threats[i].Status = status
			s.threats[i].UpdatedAt = now
			return s.threats[i], nil
		}
	}
	return threat.ScoredThreat{}, ErrThreatNotFound
}

// ThreatByID returns one threat by id.
func (s *Store) ThreatByID(id string) (threat.ScoredThreat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.threats {
		if st.ID == id {
			return st, nil
		}
	}
	return threat.ScoredThreat{}, ErrThreatNotFound
}

// Threats lists threats newest first, filtered and paginated. total is the
// filtered count before pagination.
func (s *Store) Threats(f Filter) (threats []threat.ScoredThreat, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := make([]threat.ScoredThreat, 0, len(s.threats))
	for _, st := range s.threats {
		if f.Category != "" && st.Category != f.Category {
			continue
		}
		if f.Status != "" && st.Status != f.Status {
			continue
		}
		filtered = append(filtered, st)
	}
	total = len(filtered)

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []threat.ScoredThreat{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return filtered[offset:end], total
}

// History returns the most recent n history entries, oldest first. n <= 0
// returns the full series.
func (s *Store) History(n int) []threat.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.history
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	out := make([]threat.HistoryEntry, len(entries))
	copy(out, entries)
	return out
}

// Categories returns a copy of the current per-category states.
func (s *Store) Categories() map[category.ID]threat.CategoryState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[category.ID]threat.CategoryState, len(s.categories))
	for id, st := range s.categories {
		out[id] = st
	}
	return out
}

// Index returns the current index snapshot.
func (s *Store) Index() threat.IndexSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// ActiveCount returns the number of threats still in the active state.
func (s *Store) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, st := range s.threats {
		if st.Status == threat.StatusActive {
			count++
		}
	}
	return count
}

// Count returns the number of retained threats.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.threats)
}

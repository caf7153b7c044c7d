package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/argussky/argus/internal/aggregate"
	"github.com/argussky/argus/internal/category"
	"github.com/argussky/argus/internal/threat"
)

func newThreat(id string, cat category.ID, status threat.Status) threat.ScoredThreat {
	st := threat.ScoredThreat{ID: id, Status: status}
	st.Category = cat
	return st
}

func applyThreats(s *Store, threats ...threat.ScoredThreat) {
	s.ApplyRun(aggregate.Run(time.Now(), threats, s.Categories(), s.Index().TotalIndex), threats)
}

func TestNewStoreInitializesAllCategories(t *testing.T) {
	s := New()

	cats := s.Categories()
	if len(cats) != len(category.IDs()) {
		t.Fatalf("got %d categories, want %d", len(cats), len(category.IDs()))
	}
	for id, st := range cats {
		if st.Score != 0 || st.Count != 0 || st.Trend != threat.TrendStable {
			t.Errorf("%s not zeroed: %+v", id, st)
		}
	}
	if got := s.Index().Level.ID; got != "LOW" {
		t.Errorf("initial level = %s, want LOW", got)
	}
}

func TestApplyRunCommitsAtomically(t *testing.T) {
	s := New()
	scored := []threat.ScoredThreat{newThreat("t1", category.Terror, threat.StatusActive)}
	scored[0].Score = 40

	applyThreats(s, scored...)

	if got := s.Count(); got != 1 {
		t.Errorf("threat count = %d, want 1", got)
	}
	if got := s.Index().TotalIndex; got != 15 {
		t.Errorf("index = %d, want 15", got)
	}
	if got := s.Categories()[category.Terror].Score; got != 40 {
		t.Errorf("terror score = %d, want 40", got)
	}
	if got := len(s.History(0)); got != 1 {
		t.Errorf("history length = %d, want 1", got)
	}
}

func TestThreatListCapNewestFirst(t *testing.T) {
	s := New()

	for i := 0; i < 3; i++ {
		batch := make([]threat.ScoredThreat, 0, 50)
		for j := 0; j < 50; j++ {
			batch = append(batch, newThreat(fmt.Sprintf("b%d-t%d", i, j), category.Cyber, threat.StatusActive))
		}
		applyThreats(s, batch...)
	}

	if got := s.Count(); got != MaxThreats {
		t.Fatalf("threat count = %d, want %d", got, MaxThreats)
	}

	threats, _ := s.Threats(Filter{Limit: 1})
	if threats[0].ID != "b2-t0" {
		t.Errorf("newest threat = %s, want b2-t0", threats[0].ID)
	}

	// The oldest batch must have been evicted entirely.
	if _, err := s.ThreatByID("b0-t0"); !errors.Is(err, ErrThreatNotFound) {
		t.Errorf("expected b0-t0 evicted, got err %v", err)
	}
}

func TestHistoryRingCap(t *testing.T) {
	s := New()

	for i := 0; i < MaxHistory+10; i++ {
		s.ApplyRun(aggregate.Result{
			Categories: s.Categories(),
			History:    threat.HistoryEntry{TotalIndex: i},
		}, nil)
	}

	history := s.History(0)
	if len(history) != MaxHistory {
		t.Fatalf("history length = %d, want %d", len(history), MaxHistory)
	}
	if history[0].TotalIndex != 10 {
		t.Errorf("oldest retained entry = %d, want 10", history[0].TotalIndex)
	}
	if history[len(history)-1].TotalIndex != MaxHistory+9 {
		t.Errorf("newest entry = %d, want %d", history[len(history)-1].TotalIndex, MaxHistory+9)
	}
}

func TestInjectPrepends(t *testing.T) {
	s := New()
	applyThreats(s, newThreat("pipeline-1", category.Cyber, threat.StatusActive))

	before := s.Index().TotalIndex
	s.Inject(newThreat("cctv-1", category.Terror, threat.StatusActive))

	threats, total := s.Threats(Filter{})
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if threats[0].ID != "cctv-1" {
		t.Errorf("first threat = %s, want cctv-1", threats[0].ID)
	}
	if got := s.Index().TotalIndex; got != before {
		t.Errorf("inject changed index from %d to %d; must not touch the index", before, got)
	}
}

func TestUpdateStatus(t *testing.T) {
	s := New()
	applyThreats(s, newThreat("t1", category.Drone, threat.StatusActive))

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	updated, err := s.UpdateStatus("t1", threat.StatusResolved, now)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != threat.StatusResolved {
		t.Errorf("status = %s, want resolved", updated.Status)
	}
	if !updated.UpdatedAt.Equal(now) {
		t.Errorf("updatedAt = %v, want %v", updated.UpdatedAt, now)
	}

	if _, err := s.UpdateStatus("t1", threat.Status("escalated"), now); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("unknown status err = %v, want ErrInvalidStatus", err)
	}
	if _, err := s.UpdateStatus("missing", threat.StatusResolved, now); !errors.Is(err, ErrThreatNotFound) {
		t.Errorf("missing id err = %v, want ErrThreatNotFound", err)
	}

	// Invalid status wins over missing id.
	if _, err := s.UpdateStatus("missing", threat.Status("escalated"), now); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("invalid status on missing id err = %v, want ErrInvalidStatus", err)
	}
}

func TestThreatsFilterAndPagination(t *testing.T) {
	s := New()
	applyThreats(s,
		newThreat("t1", category.Cyber, threat.StatusActive),
		newThreat("t2", category.Cyber, threat.StatusResolved),
		newThreat("t3", category.Terror, threat.StatusActive),
		newThreat("t4", category.Cyber, threat.StatusActive),
	)

	threats, total := s.Threats(Filter{Category: category.Cyber})
	if total != 3 {
		t.Errorf("cyber total = %d, want 3", total)
	}
	if len(threats) != 3 {
		t.Errorf("cyber listed = %d, want 3", len(threats))
	}

	threats, total = s.Threats(Filter{Category: category.Cyber, Status: threat.StatusActive})
	if total != 2 {
		t.Errorf("cyber+active total = %d, want 2", total)
	}

	threats, total = s.Threats(Filter{Limit: 2, Offset: 1})
	if total != 4 {
		t.Errorf("unfiltered total = %d, want 4", total)
	}
	if len(threats) != 2 {
		t.Errorf("page size = %d, want 2", len(threats))
	}
	if threats[0].ID != "t2" {
		t.Errorf("page start = %s, want t2", threats[0].ID)
	}

	threats, total = s.Threats(Filter{Offset: 99})
	if len(threats) != 0 || total != 4 {
		t.Errorf("out-of-range page = %d items total %d, want 0 items total 4", len(threats), total)
	}
}

func TestActiveCount(t *testing.T) {
	s := New()
	applyThreats(s,
		newThreat("t1", category.Cyber, threat.StatusActive),
		newThreat("t2", category.Cyber, threat.StatusResolved),
		newThreat("t3", category.Cyber, threat.StatusActive),
	)

	if got := s.ActiveCount(); got != 2 {
		t.Errorf("active count = %d, want 2", got)
	}
}

// TestConcurrentAccess exercises the lock under parallel readers and
// writers; run with -race.
func TestConcurrentAccess(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Inject(newThreat(fmt.Sprintf("w%d-%d", i, j), category.Cyber, threat.StatusActive))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Threats(Filter{})
				s.Index()
				s.Categories()
				s.ActiveCount()
			}
		}()
	}
	wg.Wait()

	if got := s.Count(); got != MaxThreats {
		t.Errorf("count after concurrent injects = %d, want %d", got, MaxThreats)
	}
}

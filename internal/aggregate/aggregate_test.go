package aggregate

import (
	"testing"
	"time"

	"github.com/argussky/argus/internal/category"
	"github.com/argussky/argus/internal/threat"
)

func scoredIn(id category.ID, scores ...int) []threat.ScoredThreat {
	out := make([]threat.ScoredThreat, 0, len(scores))
	for _, s := range scores {
		st := threat.ScoredThreat{Score: s}
		st.Category = id
		out = append(out, st)
	}
	return out
}

func TestCategoryStatesMeanAndCount(t *testing.T) {
	scored := scoredIn(category.Cyber, 40, 60, 50)
	states := CategoryStates(scored, nil)

	cyber := states[category.Cyber]
	if cyber.Score != 50 {
		t.Errorf("cyber score = %d, want 50", cyber.Score)
	}
	if cyber.Count != 3 {
		t.Errorf("cyber count = %d, want 3", cyber.Count)
	}
}

func TestCategoryStatesAllCategoriesPresent(t *testing.T) {
	states := CategoryStates(nil, nil)
	if len(states) != len(category.IDs()) {
		t.Fatalf("got %d category states, want %d", len(states), len(category.IDs()))
	}
	for _, id := range category.IDs() {
		st, ok := states[id]
		if !ok {
			t.Errorf("missing state for %s", id)
			continue
		}
		if st.Score != 0 || st.Count != 0 {
			t.Errorf("%s = score %d count %d, want zeros for empty run", id, st.Score, st.Count)
		}
	}
}

// TestCategoryStatesZeroItemReset verifies the overwrite semantics: a
// category with no items this run drops to zero even if it scored high in
// the previous run, and the drop registers as a down trend.
func TestCategoryStatesZeroItemReset(t *testing.T) {
	previous := map[category.ID]threat.CategoryState{
		category.Terror: {ID: category.Terror, Score: 70, Count: 4, Trend: threat.TrendUp},
	}

	states := CategoryStates(scoredIn(category.Cyber, 30), previous)

	terror := states[category.Terror]
	if terror.Score != 0 {
		t.Errorf("terror score = %d, want 0 after empty run", terror.Score)
	}
	if terror.Trend != threat.TrendDown {
		t.Errorf("terror trend = %s, want down", terror.Trend)
	}
}

func TestCategoryStatesTrend(t *testing.T) {
	previous := map[category.ID]threat.CategoryState{
		category.Drone: {ID: category.Drone, Score: 40},
	}

	tests := []struct {
		name   string
		scores []int
		want   threat.Trend
	}{
		{"rising", []int{50, 60}, threat.TrendUp},
		{"falling", []int{10, 20}, threat.TrendDown},
		{"flat", []int{40, 40}, threat.TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states := CategoryStates(scoredIn(category.Drone, tt.scores...), previous)
			if got := states[category.Drone].Trend; got != tt.want {
				t.Errorf("trend = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCategoryStatesIgnoresUnknownCategory(t *testing.T) {
	scored := []threat.ScoredThreat{{Score: 90}}
	scored[0].Category = "VOLCANO"

	states := CategoryStates(scored, nil)
	for id, st := range states {
		if st.Score != 0 {
			t.Errorf("%s score = %d, want 0; unknown category must not feed a lane", id, st.Score)
		}
	}
}

func TestTotalIndexWeightedBlend(t *testing.T) {
	states := CategoryStates(scoredIn(category.Terror, 40), nil)

	// Only TERROR scored: 40 × 0.25 / 1.0 × 1.5 = 15.
	if got := TotalIndex(states); got != 15 {
		t.Errorf("total index = %d, want 15", got)
	}
}

func TestTotalIndexClampsAt100(t *testing.T) {
	states := make(map[category.ID]threat.CategoryState)
	for _, id := range category.IDs() {
		states[id] = threat.CategoryState{ID: id, Score: 100}
	}

	// All lanes maxed: 100 × 1.5 = 150 → clamp 100.
	if got := TotalIndex(states); got != 100 {
		t.Errorf("total index = %d, want 100", got)
	}
}

func TestTotalIndexEmpty(t *testing.T) {
	if got := TotalIndex(nil); got != 0 {
		t.Errorf("total index of no states = %d, want 0", got)
	}
}

func TestTrend(t *testing.T) {
	entry := func(idx int) threat.HistoryEntry {
		return threat.HistoryEntry{TotalIndex: idx}
	}

	tests := []struct {
		name    string
		history []threat.HistoryEntry
		periods int
		want    threat.Trend
		change  float64
	}{
		{"empty", nil, 24, threat.TrendStable, 0},
		{"single point", []threat.HistoryEntry{entry(40)}, 24, threat.TrendStable, 0},
		{"rising", []threat.HistoryEntry{entry(10), entry(30)}, 24, threat.TrendUp, 20},
		{"falling", []threat.HistoryEntry{entry(30), entry(10)}, 24, threat.TrendDown, -20},
		{"small move reads stable", []threat.HistoryEntry{entry(20), entry(24)}, 24, threat.TrendStable, 4},
		{"window trims old points", []threat.HistoryEntry{entry(90), entry(10), entry(30)}, 2, threat.TrendUp, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Trend(tt.history, tt.periods)
			if got.Direction != tt.want {
				t.Errorf("direction = %s, want %s", got.Direction, tt.want)
			}
			if got.Change != tt.change {
				t.Errorf("change = %f, want %f", got.Change, tt.change)
			}
		})
	}
}

func TestTrendChangePercent(t *testing.T) {
	history := []threat.HistoryEntry{{TotalIndex: 40}, {TotalIndex: 50}}
	got := Trend(history, 24)
	if got.ChangePercent != 25 {
		t.Errorf("changePercent = %f, want 25", got.ChangePercent)
	}
}

func TestRunProducesSnapshotAndHistory(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	scored := scoredIn(category.Terror, 40)

	result := Run(now, scored, nil, 5)

	if result.Index.TotalIndex != 15 {
		t.Errorf("index = %d, want 15", result.Index.TotalIndex)
	}
	if result.Index.Change24h != 10 {
		t.Errorf("change = %d, want 10 (15 - previous 5)", result.Index.Change24h)
	}
	if result.Index.Level.ID != "LOW" {
		t.Errorf("level = %s, want LOW", result.Index.Level.ID)
	}
	if !result.Index.LastUpdated.Equal(now) {
		t.Errorf("lastUpdated = %v, want %v", result.Index.LastUpdated, now)
	}

	if result.History.TotalIndex != 15 {
		t.Errorf("history index = %d, want 15", result.History.TotalIndex)
	}
	if len(result.History.Categories) != len(category.IDs()) {
		t.Errorf("history categories = %d, want %d", len(result.History.Categories), len(category.IDs()))
	}

	// History must hold its own copy, not alias the live map.
	result.Categories[category.Terror] = threat.CategoryState{ID: category.Terror, Score: 99}
	if result.History.Categories[category.Terror].Score == 99 {
		t.Error("history categories alias the live category map")
	}
}

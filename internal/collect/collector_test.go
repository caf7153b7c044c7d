package collect

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/argussky/argus/internal/category"
	"github.com/argussky/argus/internal/threat"
)

type stubCollector struct {
	name  string
	items []threat.CandidateItem
	err   error
}

func (s *stubCollector) Name() string { return s.name }

func (s *stubCollector) Collect(ctx context.Context) ([]threat.CandidateItem, error) {
	return s.items, s.err
}

func item(title string) threat.CandidateItem {
	return threat.CandidateItem{Title: title, Source: "stub"}
}

func TestCollectAllMergesSources(t *testing.T) {
	m := NewManager(zap.NewNop(), nil,
		&stubCollector{name: "a", items: []threat.CandidateItem{item("alpha")}},
		&stubCollector{name: "b", items: []threat.CandidateItem{item("beta"), item("gamma")}},
	)

	got := m.CollectAll(context.Background())
	if len(got) != 3 {
		t.Errorf("collected %d items, want 3", len(got))
	}
}

func TestCollectAllIsolatesFailingSource(t *testing.T) {
	m := NewManager(zap.NewNop(), nil,
		&stubCollector{name: "broken", err: errors.New("connection refused")},
		&stubCollector{name: "ok", items: []threat.CandidateItem{item("alpha")}},
	)

	got := m.CollectAll(context.Background())
	if len(got) != 1 {
		t.Fatalf("collected %d items, want 1", len(got))
	}
	if got[0].Title != "alpha" {
		t.Errorf("item = %q, want alpha", got[0].Title)
	}
}

func TestCollectAllFallsBackWhenEmpty(t *testing.T) {
	fallback := &stubCollector{name: "sim", items: []threat.CandidateItem{item("canned")}}
	m := NewManager(zap.NewNop(), fallback,
		&stubCollector{name: "broken", err: errors.New("down")},
	)

	got := m.CollectAll(context.Background())
	if len(got) != 1 || got[0].Title != "canned" {
		t.Errorf("got %v, want the fallback batch", got)
	}
}

func TestCollectAllNoFallbackWhenDataExists(t *testing.T) {
	fallback := &stubCollector{name: "sim", items: []threat.CandidateItem{item("canned")}}
	m := NewManager(zap.NewNop(), fallback,
		&stubCollector{name: "ok", items: []threat.CandidateItem{item("live")}},
	)

	got := m.CollectAll(context.Background())
	if len(got) != 1 || got[0].Title != "live" {
		t.Errorf("got %v, want only the live item", got)
	}
}

func TestDedupe(t *testing.T) {
	items := []threat.CandidateItem{
		item("Drone spotted near runway"),
		item("DRONE SPOTTED NEAR RUNWAY"),
		item("  drone spotted near runway  "),
		item("Different story"),
		item(""),
	}

	got := Dedupe(items)
	if len(got) != 2 {
		t.Fatalf("deduped to %d items, want 2", len(got))
	}
	if got[0].Title != "Drone spotted near runway" {
		t.Errorf("kept %q, want first occurrence", got[0].Title)
	}
}

func TestDedupeLongTitlePrefix(t *testing.T) {
	long := "A very long headline that keeps going well past the fifty character mark"
	items := []threat.CandidateItem{
		item(long + " (updated)"),
		item(long + " (second wire copy)"),
	}

	if got := Dedupe(items); len(got) != 1 {
		t.Errorf("deduped to %d items, want 1 via the title prefix", len(got))
	}
}

func TestSimulatedCollectorCoversAllCategories(t *testing.T) {
	c := NewSimulatedCollector()
	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	hinted := make(map[category.ID]bool)
	for _, it := range items {
		hinted[it.CategoryHint] = true
		if it.PublishedAt.IsZero() {
			t.Errorf("item %q missing publishedAt", it.Title)
		}
	}
	for _, id := range category.IDs() {
		if !hinted[id] {
			t.Errorf("no simulated item for %s", id)
		}
	}
}

package classify

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/argussky/argus/internal/category"
	"github.com/argussky/argus/internal/threat"
)

// fakeBackend returns a canned verdict or error.
type fakeBackend struct {
	result *threat.Classification
	err    error
	calls  int
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Classify(ctx context.Context, content, source string) (*threat.Classification, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	clone := *f.result
	return &clone, nil
}

func TestMatchKeywordsBaseScore(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category category.ID
		hits     int
		base     int
	}{
		{"single hit", "suspicious drone spotted near runway", category.Drone, 1, 35},
		{"two hits", "bomb threat called in, possible explosive device", category.Terror, 2, 50},
		{"capped at 100", "terror terrorism bomb explosive explosion attack militant hijack", category.Terror, 8, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := MatchKeywords(tt.text)
			hit, ok := matches[tt.category]
			if !ok {
				t.Fatalf("no match for %s in %q", tt.category, tt.text)
			}
			if hit.Hits != tt.hits {
				t.Errorf("hits = %d, want %d", hit.Hits, tt.hits)
			}
			if hit.BaseScore != tt.base {
				t.Errorf("base score = %d, want %d", hit.BaseScore, tt.base)
			}
		})
	}
}

func TestMatchKeywordsCaseInsensitive(t *testing.T) {
	matches := MatchKeywords("RANSOMWARE outbreak reported")
	if _, ok := matches[category.Cyber]; !ok {
		t.Error("uppercase text did not match cyber keywords")
	}
}

func TestTopMatchHintWinsTies(t *testing.T) {
	// "attack" alone hits TERROR once; "cyber attack" hits both TERROR and
	// CYBER. With equal scores the hint must win.
	matches := map[category.ID]KeywordMatch{
		category.Terror: {Category: category.Terror, Hits: 1, BaseScore: 35},
		category.Cyber:  {Category: category.Cyber, Hits: 1, BaseScore: 35},
	}

	id, _ := topMatch(matches, category.Cyber)
	if id != category.Cyber {
		t.Errorf("topMatch with hint = %s, want CYBER", id)
	}

	id, _ = topMatch(matches, "")
	if id != category.Terror {
		t.Errorf("topMatch without hint = %s, want TERROR (canonical order)", id)
	}
}

func TestClassifyEmptyContent(t *testing.T) {
	backend := &fakeBackend{result: &threat.Classification{IsThreat: true}}
	c := NewClassifier(backend, zap.NewNop())

	got := c.Classify(context.Background(), threat.CandidateItem{Source: "test"})
	if got.Method != threat.MethodDefault {
		t.Errorf("method = %s, want default", got.Method)
	}
	if got.IsThreat || got.Severity != 0 || got.Confidence != 0 {
		t.Errorf("empty content classified as threat: %+v", got)
	}
	if backend.calls != 0 {
		t.Errorf("backend called %d times for empty content, want 0", backend.calls)
	}
}

func TestClassifyNoKeywordsSkipsBackend(t *testing.T) {
	backend := &fakeBackend{result: &threat.Classification{IsThreat: true}}
	c := NewClassifier(backend, zap.NewNop())

	got := c.Classify(context.Background(), threat.CandidateItem{
		Title:   "Weekend weather forecast",
		Content: "Sunny skies expected across the region",
		Source:  "test",
	})
	if got.IsThreat {
		t.Error("benign text classified as threat")
	}
	if got.Method != threat.MethodKeyword {
		t.Errorf("method = %s, want keyword", got.Method)
	}
	if backend.calls != 0 {
		t.Errorf("backend called %d times without keyword signal, want 0", backend.calls)
	}
}

func TestClassifyAISuccess(t *testing.T) {
	backend := &fakeBackend{result: &threat.Classification{
		IsThreat:   true,
		Category:   category.Cyber,
		Severity:   70,
		Confidence: 0.9,
		Summary:    "ransomware campaign targeting aviation",
	}}
	c := NewClassifier(backend, zap.NewNop())

	got := c.Classify(context.Background(), threat.CandidateItem{
		Title:  "Ransomware hits airline systems",
		Source: "test",
	})
	if got.Method != threat.MethodAI {
		t.Errorf("method = %s, want ai", got.Method)
	}
	if got.Category != category.Cyber {
		t.Errorf("category = %s, want CYBER", got.Category)
	}
	if got.Severity != 70 {
		t.Errorf("severity = %d, want 70", got.Severity)
	}
}

func TestClassifyAIInvalidCategoryFallsBackToKeywordWinner(t *testing.T) {
	backend := &fakeBackend{result: &threat.Classification{
		IsThreat:   true,
		Category:   category.ID("PANDEMIC"),
		Severity:   60,
		Confidence: 0.8,
	}}
	c := NewClassifier(backend, zap.NewNop())

	got := c.Classify(context.Background(), threat.CandidateItem{
		Title:  "Unidentified drone over the north runway",
		Source: "test",
	})
	if got.Method != threat.MethodAI {
		t.Errorf("method = %s, want ai", got.Method)
	}
	if got.Category != category.Drone {
		t.Errorf("category = %s, want keyword winner DRONE", got.Category)
	}
}

func TestClassifyAIFailureDegradesToKeyword(t *testing.T) {
	backend := &fakeBackend{err: errors.New("rate limited")}
	c := NewClassifier(backend, zap.NewNop())

	got := c.Classify(context.Background(), threat.CandidateItem{
		Title:  "Hacking attempt against control tower network",
		Source: "test",
	})
	if got.Method != threat.MethodKeyword {
		t.Errorf("method = %s, want keyword", got.Method)
	}
	if got.Category != category.Cyber {
		t.Errorf("category = %s, want CYBER", got.Category)
	}
	if !got.IsThreat {
		t.Error("keyword hit above threshold not flagged as threat")
	}
}

func TestClassifyNilBackendUsesKeywords(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())

	got := c.Classify(context.Background(), threat.CandidateItem{
		Title:  "Drone sighting halts departures",
		Source: "test",
	})
	if got.Method != threat.MethodKeyword {
		t.Errorf("method = %s, want keyword", got.Method)
	}
	if got.Category != category.Drone {
		t.Errorf("category = %s, want DRONE", got.Category)
	}
}

func TestClassifyKeywordConfidenceCap(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())

	// Enough hits to push base to 100; confidence must cap at 0.8.
	got := c.Classify(context.Background(), threat.CandidateItem{
		Title:   "terror terrorism bomb explosive explosion attack",
		Content: "militant hijack",
		Source:  "test",
	})
	if got.Confidence != keywordMaxConf {
		t.Errorf("confidence = %f, want %f", got.Confidence, keywordMaxConf)
	}
	if got.Severity != 100 {
		t.Errorf("severity = %d, want 100", got.Severity)
	}
}

func TestClassifyHintOnlyItem(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())

	// No configured keywords in the text, but the collector asserted a
	// category. Scored at the rule-engine floor.
	got := c.Classify(context.Background(), threat.CandidateItem{
		Title:        "Anomalous perimeter sensor reading at gate 12",
		Source:       "cctv",
		CategoryHint: category.Insider,
	})
	if got.Category != category.Insider {
		t.Errorf("category = %s, want INSIDER", got.Category)
	}
	if got.Severity != keywordBase {
		t.Errorf("severity = %d, want %d", got.Severity, keywordBase)
	}
	if got.IsThreat {
		t.Error("floor score below threshold flagged as threat")
	}
}

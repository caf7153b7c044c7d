package score

import (
	"testing"
	"time"

	"github.com/argussky/argus/internal/category"
	"github.com/argussky/argus/internal/threat"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedScorer() *Scorer {
	return NewScorerAt(func() time.Time { return fixedNow })
}

func TestCredibility(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"Government Advisory", 1.0},
		{"Reuters", 0.95},
		{"AFP Wire", 0.90},
		{"BBC World", 0.85},
		{"SecurityWeek", 0.85},
		{"Daily News", 0.70},
		{"Twitter", 0.40},
		{"anonymous tip line", 0.20},
		{"", DefaultCredibility},
		{"obscure forum", DefaultCredibility},
	}

	for _, tt := range tests {
		if got := Credibility(tt.source); got != tt.want {
			t.Errorf("Credibility(%q) = %f, want %f", tt.source, got, tt.want)
		}
	}
}

// TestCredibilityFirstMatchWins verifies table order decides when multiple
// patterns appear in one name.
func TestCredibilityFirstMatchWins(t *testing.T) {
	// "reuters" precedes "news" in the table.
	if got := Credibility("Reuters News"); got != 0.95 {
		t.Errorf("Credibility(Reuters News) = %f, want 0.95", got)
	}
	// "government" precedes "blog".
	if got := Credibility("government blog"); got != 1.0 {
		t.Errorf("Credibility(government blog) = %f, want 1.0", got)
	}
}

func TestTemporalFactorBands(t *testing.T) {
	s := fixedScorer()

	tests := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{"fresh", 30 * time.Minute, 1.0},
		{"exactly 1h", 1 * time.Hour, 1.0},
		{"just over 1h", 61 * time.Minute, 0.9},
		{"exactly 6h", 6 * time.Hour, 0.9},
		{"9h", 9 * time.Hour, 0.8},
		{"18h", 18 * time.Hour, 0.6},
		{"36h", 36 * time.Hour, 0.4},
		{"60h", 60 * time.Hour, 0.2},
		{"week old", 7 * 24 * time.Hour, staleFactor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.TemporalFactor(fixedNow.Add(-tt.age))
			if got != tt.want {
				t.Errorf("TemporalFactor(age %v) = %f, want %f", tt.age, got, tt.want)
			}
		})
	}
}

func TestTemporalFactorZeroTimestamp(t *testing.T) {
	s := fixedScorer()
	if got := s.TemporalFactor(time.Time{}); got != staleFactor {
		t.Errorf("TemporalFactor(zero) = %f, want %f", got, staleFactor)
	}
}

func TestTemporalFactorFutureTimestamp(t *testing.T) {
	s := fixedScorer()
	if got := s.TemporalFactor(fixedNow.Add(2 * time.Hour)); got != 1.0 {
		t.Errorf("TemporalFactor(future) = %f, want 1.0", got)
	}
}

// TestScoreWorkedExample pins the reference case: severity 80 in TERROR
// (weight 0.25), government source, fresh timestamp, full confidence.
// 80 × 0.25 × 1.0 × 1.0 × 1.0 × 2 = 40.
func TestScoreWorkedExample(t *testing.T) {
	s := fixedScorer()

	got := s.Score(
		threat.CandidateItem{
			SourceName:  "Government Advisory",
			PublishedAt: fixedNow.Add(-10 * time.Minute),
		},
		threat.Classification{
			Category:   category.Terror,
			Severity:   80,
			Confidence: 1.0,
		},
	)
	if got != 40 {
		t.Errorf("score = %d, want 40", got)
	}
}

func TestScoreConfidenceFloor(t *testing.T) {
	s := fixedScorer()

	item := threat.CandidateItem{
		SourceName:  "Government Advisory",
		PublishedAt: fixedNow,
	}
	low := s.Score(item, threat.Classification{Category: category.Terror, Severity: 80, Confidence: 0.1})
	floor := s.Score(item, threat.Classification{Category: category.Terror, Severity: 80, Confidence: 0.5})
	if low != floor {
		t.Errorf("confidence 0.1 scored %d, confidence 0.5 scored %d, want equal", low, floor)
	}
	if low != 20 {
		t.Errorf("floored score = %d, want 20", low)
	}
}

func TestScoreUnknownCategoryUsesDefaultWeight(t *testing.T) {
	s := fixedScorer()

	got := s.Score(
		threat.CandidateItem{
			SourceName:  "Government Advisory",
			PublishedAt: fixedNow,
		},
		threat.Classification{Category: "VOLCANO", Severity: 100, Confidence: 1.0},
	)
	// 100 × 0.15 × 1.0 × 1.0 × 1.0 × 2 = 30
	if got != 30 {
		t.Errorf("score = %d, want 30", got)
	}
}

func TestScoreStaleItemDecays(t *testing.T) {
	s := fixedScorer()

	got := s.Score(
		threat.CandidateItem{
			SourceName:  "Government Advisory",
			PublishedAt: fixedNow.Add(-100 * time.Hour),
		},
		threat.Classification{Category: category.Terror, Severity: 80, Confidence: 1.0},
	)
	// 80 × 0.25 × 1.0 × 0.1 × 1.0 × 2 = 4
	if got != 4 {
		t.Errorf("score = %d, want 4", got)
	}
}

func TestScoreClampsSeverity(t *testing.T) {
	s := fixedScorer()

	got := s.Score(
		threat.CandidateItem{
			SourceName:  "Government Advisory",
			PublishedAt: fixedNow,
		},
		threat.Classification{Category: category.Terror, Severity: 500, Confidence: 1.0},
	)
	// Severity clamps to 100 first: 100 × 0.25 × 1 × 1 × 1 × 2 = 50.
	if got != 50 {
		t.Errorf("score = %d, want 50", got)
	}
}

func TestScoreSourceNamePreferredOverSource(t *testing.T) {
	s := fixedScorer()

	cls := threat.Classification{Category: category.Terror, Severity: 80, Confidence: 1.0}
	named := s.Score(threat.CandidateItem{
		Source:      "rss-feed-17",
		SourceName:  "Reuters",
		PublishedAt: fixedNow,
	}, cls)
	unnamed := s.Score(threat.CandidateItem{
		Source:      "rss-feed-17",
		PublishedAt: fixedNow,
	}, cls)
	if named <= unnamed {
		t.Errorf("named source scored %d, unnamed %d; want credibility from SourceName", named, unnamed)
	}
}

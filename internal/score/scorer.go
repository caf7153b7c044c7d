// Package score computes the final 0-100 score of a classified threat from
// severity, category weight, source credibility, temporal decay, and
// classifier confidence.
package score

import (
	"math"
	"strings"
	"time"

	"github.com/argussky/argus/internal/category"
	"github.com/argussky/argus/internal/threat"
)

// DefaultCredibility is applied when a source matches no known pattern.
const DefaultCredibility = 0.30

// confidenceFloor prevents low-confidence classifications from zeroing out
// an otherwise severe threat.
const confidenceFloor = 0.5

// credibilityEntry pairs a source substring with its trust factor.
type credibilityEntry struct {
	pattern string
	factor  float64
}

// credibilityTable is matched top to bottom by case-insensitive substring;
// the first hit wins, so order is part of the contract.
var credibilityTable = []credibilityEntry{
	// Government and official bodies.
	{"government", 1.0},
	{"official", 1.0},
	{"airport_authority", 1.0},

	// Wire services.
	{"reuters", 0.95},
	{"ap", 0.95},
	{"yonhap", 0.90},
	{"afp", 0.90},

	// Major international outlets.
	{"bbc", 0.85},
	{"cnn", 0.85},
	{"nytimes", 0.85},
	{"washingtonpost", 0.85},
	{"guardian", 0.85},

	// Major Korean outlets.
	{"chosun", 0.80},
	{"joongang", 0.80},
	{"donga", 0.80},
	{"hani", 0.80},
	{"kyunghyang", 0.80},

	// Security trade press.
	{"securityweek", 0.85},
	{"darkreading", 0.85},
	{"bleepingcomputer", 0.80},
	{"threatpost", 0.80},

	// General news and blogs.
	{"news", 0.70},
	{"online_news", 0.65},
	{"blog", 0.50},

	// Social media.
	{"twitter", 0.40},
	{"facebook", 0.35},
	{"reddit", 0.35},

	// Unverified.
	{"unknown", 0.30},
	{"anonymous", 0.20},
}

// decayBand maps an age ceiling to its decay factor.
type decayBand struct {
	maxAge time.Duration
	factor float64
}

var decayBands = []decayBand{
	{1 * time.Hour, 1.0},
	{6 * time.Hour, 0.9},
	{12 * time.Hour, 0.8},
	{24 * time.Hour, 0.6},
	{48 * time.Hour, 0.4},
	{72 * time.Hour, 0.2},
}

// staleFactor applies past the last decay band and to items without a
// timestamp.
const staleFactor = 0.1

// Scorer computes threat scores. The clock is injectable for tests.
type Scorer struct {
	now func() time.Time
}

// NewScorer creates a scorer using the wall clock.
func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// NewScorerAt creates a scorer with a fixed clock.
func NewScorerAt(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

// Credibility returns the trust factor for a source name using ordered
// case-insensitive substring matching against the static table.
func Credibility(source string) float64 {
	if source == "" {
		return DefaultCredibility
	}
	lower := strings.ToLower(source)
	for _, entry := range credibilityTable {
		if strings.Contains(lower, entry.pattern) {
			return entry.factor
		}
	}
	return DefaultCredibility
}

// TemporalFactor returns the decay factor for an event timestamp. A zero
// timestamp and future timestamps older than the clock skew both resolve
// conservatively.
func (s *Scorer) TemporalFactor(publishedAt time.Time) float64 {
	if publishedAt.IsZero() {
		return staleFactor
	}
	age := s.now().Sub(publishedAt)
	if age < 0 {
		age = 0
	}
	for _, band := range decayBands {
		if age <= band.maxAge {
			return band.factor
		}
	}
	return staleFactor
}

// Score computes the final 0-100 score for one classified item.
//
// score = clamp(round(severity × weight × credibility × temporal ×
// max(0.5, confidence) × 2), 0, 100)
func (s *Scorer) Score(item threat.CandidateItem, cls threat.Classification) int {
	severity := float64(threat.ClampSeverity(cls.Severity))
	weight := category.Weight(cls.Category)
	credibility := Credibility(sourceLabel(item))
	temporal := s.TemporalFactor(item.PublishedAt)

	confidence := threat.ClampConfidence(cls.Confidence)
	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}

	raw := severity * weight * credibility * temporal * confidence * 2
	return clampScore(int(math.Round(raw)))
}

// sourceLabel prefers the human-readable source name over the source id for
// credibility matching.
func sourceLabel(item threat.CandidateItem) string {
	if item.SourceName != "" {
		return item.SourceName
	}
	return item.Source
}

// CredibilityEntry is one row of the credibility table as served by the
// evidence endpoint.
type CredibilityEntry struct {
	Pattern string  `json:"pattern"`
	Factor  float64 `json:"factor"`
}

// CredibilityTable returns the ordered credibility table.
func CredibilityTable() []CredibilityEntry {
	out := make([]CredibilityEntry, len(credibilityTable))
	for i, e := range credibilityTable {
		out[i] = CredibilityEntry{Pattern: e.pattern, Factor: e.factor}
	}
	return out
}

// DecayStep is one row of the temporal decay table as served by the
// evidence endpoint.
type DecayStep struct {
	MaxAgeHours int     `json:"maxAgeHours"`
	Factor      float64 `json:"factor"`
}

// DecayTable returns the temporal decay steps, oldest band last. The stale
// factor is reported as a zero-bound final step.
func DecayTable() []DecayStep {
	out := make([]DecayStep, 0, len(decayBands)+1)
	for _, b := range decayBands {
		out = append(out, DecayStep{MaxAgeHours: int(b.maxAge / time.Hour), Factor: b.factor})
	}
	out = append(out, DecayStep{MaxAgeHours: 0, Factor: staleFactor})
	return out
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Package threat defines the data model flowing through the ARGUS pipeline:
// candidate items collected from sources, classification results, scored
// threats, per-category state, and the overall index snapshot.
package threat

import (
	"fmt"
	"time"

	"github.com/argussky/argus/internal/category"
)

// Method tags which classification stage produced a result.
type Method string

const (
	MethodAI      Method = "ai"
	MethodKeyword Method = "keyword"
	MethodDefault Method = "default"
)

// Status is the lifecycle state of a scored threat.
type Status string

const (
	StatusActive        Status = "active"
	StatusResolved      Status = "resolved"
	StatusDismissed     Status = "dismissed"
	StatusInvestigating Status = "investigating"
)

// ValidStatus reports whether s is one of the accepted lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusResolved, StatusDismissed, StatusInvestigating:
		return true
	}
	return false
}

// Trend is the direction of a category score between two consecutive runs.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// CandidateItem is a raw unclassified item produced by a collector. It is
// consumed once by the classifier and not retained afterwards.
type CandidateItem struct {
	Title        string      `json:"title"`
	Content      string      `json:"content"`
	Source       string      `json:"source"`
	SourceType   string      `json:"sourceType"`
	SourceName   string      `json:"sourceName"`
	URL          string      `json:"url,omitempty"`
	PublishedAt  time.Time   `json:"publishedAt"`
	CategoryHint category.ID `json:"categoryHint,omitempty"`
}

// Classification is the immutable outcome of classifying one candidate item.
type Classification struct {
	IsThreat       bool        `json:"isThreat"`
	Category       category.ID `json:"category,omitempty"`
	Severity       int         `json:"severity"`
	Confidence     float64     `json:"confidence"`
	Summary        string      `json:"summary,omitempty"`
	Keywords       []string    `json:"keywords,omitempty"`
	Recommendation string      `json:"recommendation,omitempty"`
	Method         Method      `json:"analysisMethod"`
}

// ScoredThreat is a classified item with its final 0-100 score and lifecycle
// status. It is the unit stored in the recent-threats list.
type ScoredThreat struct {
	ID string `json:"id"`
	CandidateItem
	Classification
	Score      int       `json:"calculatedScore"`
	Status     Status    `json:"status"`
	DetectedAt time.Time `json:"detectedAt"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// CategoryState is the per-category score for the most recent run. It is
// overwritten each run; the previous value survives only as the trend
// comparison baseline.
type CategoryState struct {
	ID    category.ID `json:"id"`
	Name  string      `json:"name"`
	Score int         `json:"score"`
	Count int         `json:"count"`
	Trend Trend       `json:"trend"`
}

// IndexSnapshot is the overall blended threat index, recomputed every run.
type IndexSnapshot struct {
	TotalIndex  int            `json:"totalIndex"`
	Level       category.Level `json:"threatLevel"`
	Change24h   int            `json:"change24h"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// HistoryEntry is one point of the bounded index time series.
type HistoryEntry struct {
	Timestamp  time.Time                     `json:"timestamp"`
	TotalIndex int                           `json:"totalIndex"`
	Categories map[category.ID]CategoryState `json:"categories"`
}

// Stage identifies a phase of one pipeline run.
type Stage string

const (
	StageCollecting  Stage = "collecting"
	StageClassifying Stage = "classifying"
	StageScoring     Stage = "scoring"
	StageAggregating Stage = "aggregating"
	StageCommitting  Stage = "committing"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// ClampSeverity forces severity into [0,100].
func ClampSeverity(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ClampConfidence forces confidence into [0,1].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Text returns the concatenated title and body used for analysis.
func (c CandidateItem) Text() string {
	if c.Title == "" {
		return c.Content
	}
	if c.Content == "" {
		return c.Title
	}
	return fmt.Sprintf("%s %s", c.Title, c.Content)
}

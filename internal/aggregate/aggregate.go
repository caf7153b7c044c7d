// Package aggregate folds one run's scored threats into per-category states
// and the overall blended threat index.
package aggregate

import (
	"math"
	"time"

	"github.com/argussky/argus/internal/category"
	"github.com/argussky/argus/internal/threat"
)

// indexScale stretches the weighted category average so a moderate spread of
// category scores lands in a readable index band.
const indexScale = 1.5

// Result is the complete outcome of aggregating one run. It is applied to
// the store as a single unit.
type Result struct {
	Categories map[category.ID]threat.CategoryState
	Index      threat.IndexSnapshot
	History    threat.HistoryEntry
}

// CategoryStates computes this run's per-category state: mean score over the
// run's items and a trend against the previous state. Categories without
// items this run reset to zero; the reset is deliberate, the previous score
// survives only as the trend baseline.
func CategoryStates(scored []threat.ScoredThreat, previous map[category.ID]threat.CategoryState) map[category.ID]threat.CategoryState {
	type bucket struct {
		total int
		count int
	}
	buckets := make(map[category.ID]*bucket, len(category.IDs()))
	for _, id := range category.IDs() {
		buckets[id] = &bucket{}
	}

	for _, st := range scored {
		b, ok := buckets[st.Category]
		if !ok {
			// Items outside the fixed taxonomy carry a score but do not feed
			// a category lane.
			continue
		}
		b.total += st.Score
		b.count++
	}

	states := make(map[category.ID]threat.CategoryState, len(buckets))
	for _, info := range category.All() {
		b := buckets[info.ID]
		var avg float64
		if b.count > 0 {
			avg = float64(b.total) / float64(b.count)
		}

		prevScore := 0
		if prev, ok := previous[info.ID]; ok {
			prevScore = prev.Score
		}

		states[info.ID] = threat.CategoryState{
			ID:    info.ID,
			Name:  info.Name,
			Score: int(math.Round(avg)),
			Count: b.count,
			Trend: trendFor(avg, prevScore),
		}
	}

	return states
}

// trendFor compares the unrounded mean against the previous rounded score,
// so a fractional move still registers as a direction.
func trendFor(avg float64, prevScore int) threat.Trend {
	switch {
	case avg > float64(prevScore):
		return threat.TrendUp
	case avg < float64(prevScore):
		return threat.TrendDown
	default:
		return threat.TrendStable
	}
}

// TotalIndex blends category scores into the overall 0-100 index:
//
// index = clamp(round(Σ(score_i × w_i) / Σw_i × 1.5), 0, 100)
func TotalIndex(states map[category.ID]threat.CategoryState) int {
	var weightedSum, totalWeight float64
	for _, id := range category.IDs() {
		st, ok := states[id]
		if !ok {
			continue
		}
		w := category.Weight(id)
		weightedSum += float64(st.Score) * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}

	scaled := weightedSum / totalWeight * indexScale
	idx := int(math.Round(scaled))
	if idx < 0 {
		return 0
	}
	if idx > 100 {
		return 100
	}
	return idx
}

// TrendSummary describes the index movement across a history window.
type TrendSummary struct {
	Direction     threat.Trend `json:"direction"`
	Change        float64      `json:"change"`
	ChangePercent float64      `json:"changePercent"`
}

// trendDeadband is the index delta below which movement reads as stable.
const trendDeadband = 5

// Trend compares the first and last index values of the most recent periods
// entries. Fewer than two points is always stable.
func Trend(history []threat.HistoryEntry, periods int) TrendSummary {
	if periods > 0 && len(history) > periods {
		history = history[len(history)-periods:]
	}
	if len(history) < 2 {
		return TrendSummary{Direction: threat.TrendStable}
	}

	first := history[0].TotalIndex
	last := history[len(history)-1].TotalIndex
	change := last - first

	direction := threat.TrendStable
	if change > trendDeadband {
		direction = threat.TrendUp
	} else if change < -trendDeadband {
		direction = threat.TrendDown
	}

	var changePercent float64
	if first > 0 {
		changePercent = float64(change) / float64(first) * 100
	}

	return TrendSummary{
		Direction:     direction,
		Change:        math.Round(float64(change)*10) / 10,
		ChangePercent: math.Round(changePercent*10) / 10,
	}
}

// Run aggregates one run at time now. previousIndex is the index from the
// prior run and feeds the reported delta.
func Run(now time.Time, scored []threat.ScoredThreat, previous map[category.ID]threat.CategoryState, previousIndex int) Result {
	states := CategoryStates(scored, previous)
	index := TotalIndex(states)

	historyCategories := make(map[category.ID]threat.CategoryState, len(states))
	for id, st := range states {
		historyCategories[id] = st
	}

	return Result{
		Categories: states,
		Index: threat.IndexSnapshot{
			TotalIndex:  index,
			Level:       category.LevelFor(index),
			Change24h:   index - previousIndex,
			LastUpdated: now,
		},
		History: threat.HistoryEntry{
			Timestamp:  now,
			TotalIndex: index,
			Categories: historyCategories,
		},
	}
}

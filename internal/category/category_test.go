package category

import (
	"math"
	"testing"
)

// TestWeightsSumToOne verifies the fixed taxonomy invariant that all category
// weights sum to 1.0.
func TestWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, info := range All() {
		sum += info.Weight
	}

	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("category weights sum to %f, want 1.0", sum)
	}
}

// TestLevelBandsCoverFullRange verifies the bands are contiguous, inclusive,
// and cover [0,100] with no gaps or overlaps.
func TestLevelBandsCoverFullRange(t *testing.T) {
	bands := Levels()

	if bands[0].Min != 0 {
		t.Errorf("first band starts at %d, want 0", bands[0].Min)
	}
	if bands[len(bands)-1].Max != 100 {
		t.Errorf("last band ends at %d, want 100", bands[len(bands)-1].Max)
	}

	for i := 1; i < len(bands); i++ {
		if bands[i].Min != bands[i-1].Max+1 {
			t.Errorf("band %s starts at %d, previous band %s ends at %d",
				bands[i].ID, bands[i].Min, bands[i-1].ID, bands[i-1].Max)
		}
	}

	// Every index in [0,100] must map to exactly one band.
	for idx := 0; idx <= 100; idx++ {
		matches := 0
		for _, b := range bands {
			if idx >= b.Min && idx <= b.Max {
				matches++
			}
		}
		if matches != 1 {
			t.Errorf("index %d maps to %d bands, want 1", idx, matches)
		}
	}
}

// TestLevelForAdjacentBoundaries verifies that 25 and 26 map to adjacent,
// different bands.
func TestLevelForAdjacentBoundaries(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "LOW"},
		{25, "LOW"},
		{26, "GUARDED"},
		{50, "GUARDED"},
		{51, "ELEVATED"},
		{65, "ELEVATED"},
		{66, "HIGH"},
		{85, "HIGH"},
		{86, "CRITICAL"},
		{100, "CRITICAL"},
	}

	for _, tt := range tests {
		if got := LevelFor(tt.index); got.ID != tt.want {
			t.Errorf("LevelFor(%d) = %s, want %s", tt.index, got.ID, tt.want)
		}
	}
}

// TestLevelForClampsOutOfRange verifies that out-of-range indices clamp to
// the nearest band instead of falling through.
func TestLevelForClampsOutOfRange(t *testing.T) {
	if got := LevelFor(-10); got.ID != "LOW" {
		t.Errorf("LevelFor(-10) = %s, want LOW", got.ID)
	}
	if got := LevelFor(250); got.ID != "CRITICAL" {
		t.Errorf("LevelFor(250) = %s, want CRITICAL", got.ID)
	}
}

// TestWeightUnknownCategory verifies the mid-range default weight.
func TestWeightUnknownCategory(t *testing.T) {
	if got := Weight(ID("VOLCANO")); got != DefaultWeight {
		t.Errorf("Weight(VOLCANO) = %f, want %f", got, DefaultWeight)
	}
	if got := Weight(Terror); got != 0.25 {
		t.Errorf("Weight(TERROR) = %f, want 0.25", got)
	}
}

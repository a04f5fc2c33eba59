package stats

import (
	"math"
	"testing"
)

func feedbackRecords(ratings ...map[string]float64) []FeedbackRecord {
	records := make([]FeedbackRecord, 0, len(ratings))
	for _, r := range ratings {
		records = append(records, FeedbackRecord{Ratings: r})
	}
	return records
}

func TestCorrelationsSelfAndSymmetry(t *testing.T) {
	records := feedbackRecords(
		map[string]float64{"pace": 1, "difficulty": 5, "comfort": 3},
		map[string]float64{"pace": 2, "difficulty": 4, "comfort": 3},
		map[string]float64{"pace": 3, "difficulty": 3, "comfort": 3},
		map[string]float64{"pace": 4, "difficulty": 2, "comfort": 3},
	)

	matrix := Correlations(records)

	for x := range matrix {
		if matrix[x][x] != 1 {
			t.Errorf("self-correlation of %q should be 1, got %v", x, matrix[x][x])
		}
		for y := range matrix[x] {
			if matrix[x][y] != matrix[y][x] {
				t.Errorf("matrix not symmetric at (%s,%s): %v vs %v", x, y, matrix[x][y], matrix[y][x])
			}
			if matrix[x][y] < -1 || matrix[x][y] > 1 {
				t.Errorf("coefficient out of bounds at (%s,%s): %v", x, y, matrix[x][y])
			}
		}
	}

	// pace and difficulty move in exact opposition.
	if matrix["pace"]["difficulty"] != -1 {
		t.Errorf("expected -1 for perfectly inverse dimensions, got %v", matrix["pace"]["difficulty"])
	}
}

func TestCorrelationsZeroVariance(t *testing.T) {
	records := feedbackRecords(
		map[string]float64{"pace": 3, "comfort": 1},
		map[string]float64{"pace": 3, "comfort": 5},
	)

	matrix := Correlations(records)

	// comfort varies but pace does not: the pair is defined as 0 while the
	// zero-variance dimension still self-correlates at 1.
	if matrix["pace"]["comfort"] != 0 {
		t.Errorf("expected 0 for zero-variance pair, got %v", matrix["pace"]["comfort"])
	}
	if matrix["pace"]["pace"] != 1 {
		t.Errorf("expected self-correlation 1 even without variance, got %v", matrix["pace"]["pace"])
	}
}

func TestCorrelationsSkipsSparseRecords(t *testing.T) {
	records := feedbackRecords(
		map[string]float64{"pace": 1, "difficulty": 1},
		map[string]float64{"pace": 5}, // no difficulty rating
		map[string]float64{"pace": 2, "difficulty": 2},
		map[string]float64{"pace": 3, "difficulty": 3},
	)

	matrix := Correlations(records)

	// With the sparse record excluded the remaining pairs line up exactly.
	if matrix["pace"]["difficulty"] != 1 {
		t.Errorf("expected 1 after skipping the sparse record, got %v", matrix["pace"]["difficulty"])
	}
}

func TestCorrelationsDimensionUnion(t *testing.T) {
	// Dimensions missing from the first record must still appear.
	records := feedbackRecords(
		map[string]float64{"pace": 3},
		map[string]float64{"comfort": 4},
	)

	matrix := Correlations(records)

	if _, ok := matrix["comfort"]; !ok {
		t.Fatal("expected comfort dimension from later record")
	}
	if matrix["comfort"]["comfort"] != 1 {
		t.Errorf("expected 1, got %v", matrix["comfort"]["comfort"])
	}
	// No record carries both, so the pair is degenerate.
	if matrix["pace"]["comfort"] != 0 {
		t.Errorf("expected 0 for disjoint dimensions, got %v", matrix["pace"]["comfort"])
	}
}

func TestCorrelationsEmpty(t *testing.T) {
	if got := Correlations(nil); len(got) != 0 {
		t.Errorf("expected empty matrix, got %+v", got)
	}
}

func TestCorrelationsRounding(t *testing.T) {
	records := feedbackRecords(
		map[string]float64{"a": 1, "b": 2},
		map[string]float64{"a": 2, "b": 1},
		map[string]float64{"a": 3, "b": 5},
		map[string]float64{"a": 4, "b": 3},
		map[string]float64{"a": 5, "b": 4},
	)

	matrix := Correlations(records)

	value := matrix["a"]["b"]
	if math.Round(value*100) != value*100 {
		t.Errorf("coefficient %v not rounded to 2 decimals", value)
	}
}

func TestRatingAverages(t *testing.T) {
	records := feedbackRecords(
		map[string]float64{"pace": 4, "difficulty": 2},
		map[string]float64{"pace": 5},
	)

	averages := RatingAverages(records)

	if got := averages["pace"]; got.Average != 4.5 || got.Count != 2 {
		t.Errorf("unexpected pace stat: %+v", got)
	}
	if got := averages["difficulty"]; got.Average != 2 || got.Count != 1 {
		t.Errorf("unexpected difficulty stat: %+v", got)
	}
}

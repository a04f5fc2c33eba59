package stats

import (
	"math"
	"sort"
)

// Correlations builds the pairwise Pearson correlation matrix over every
// rating dimension observed across all records, not just the dimensions of
// the first one. Dimension names are sorted so iteration and display order
// are deterministic. Coefficients are rounded to two decimals.
func Correlations(records []FeedbackRecord) CorrelationMatrix {
	dims := ratingDimensions(records)
	if len(dims) == 0 {
		return CorrelationMatrix{}
	}

	matrix := make(CorrelationMatrix, len(dims))
	for _, x := range dims {
		matrix[x] = make(map[string]float64, len(dims))
		for _, y := range dims {
			if x == y {
				// Defined as exactly 1, sidestepping 0/0 when a
				// dimension has zero variance.
				matrix[x][y] = 1
				continue
			}
			xs, ys := pairedRatings(records, x, y)
			matrix[x][y] = round2(pearson(xs, ys))
		}
	}
	return matrix
}

// RatingAverages summarizes each observed dimension: mean rating and the
// number of records carrying that dimension.
func RatingAverages(records []FeedbackRecord) map[string]RatingStat {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, rec := range records {
		for dim, value := range rec.Ratings {
			sums[dim] += value
			counts[dim]++
		}
	}

	averages := make(map[string]RatingStat, len(sums))
	for dim, sum := range sums {
		averages[dim] = RatingStat{
			Average: round2(sum / float64(counts[dim])),
			Count:   counts[dim],
		}
	}
	return averages
}

// ratingDimensions returns the sorted union of dimension names.
func ratingDimensions(records []FeedbackRecord) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		for dim := range rec.Ratings {
			seen[dim] = struct{}{}
		}
	}
	dims := make([]string, 0, len(seen))
	for dim := range seen {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	return dims
}

// pairedRatings collects the values of both dimensions from records that
// carry both; sparse records are skipped rather than treated as errors.
func pairedRatings(records []FeedbackRecord, x, y string) ([]float64, []float64) {
	xs := make([]float64, 0, len(records))
	ys := make([]float64, 0, len(records))
	for _, rec := range records {
		xv, xok := rec.Ratings[x]
		yv, yok := rec.Ratings[y]
		if xok && yok {
			xs = append(xs, xv)
			ys = append(ys, yv)
		}
	}
	return xs, ys
}

// pearson computes the correlation coefficient using population standard
// deviation. Degenerate inputs (no pairs, or zero variance in either
// dimension) yield 0.
func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}

	var xMean, yMean float64
	for i := 0; i < n; i++ {
		xMean += xs[i]
		yMean += ys[i]
	}
	xMean /= float64(n)
	yMean /= float64(n)

	var cov, xVar, yVar float64
	for i := 0; i < n; i++ {
		dx := xs[i] - xMean
		dy := ys[i] - yMean
		cov += dx * dy
		xVar += dx * dx
		yVar += dy * dy
	}

	xStd := math.Sqrt(xVar / float64(n))
	yStd := math.Sqrt(yVar / float64(n))
	if xStd == 0 || yStd == 0 {
		return 0
	}
	return cov / (float64(n) * xStd * yStd)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

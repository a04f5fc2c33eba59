package stats

import "sort"

// TrendPoint is the average rating of one dimension on one day.
type TrendPoint struct {
	Day           string  `json:"created_at"`
	Field         string  `json:"field"`
	AverageRating float64 `json:"average_rating"`
	Count         int     `json:"count"`
}

// FeedbackTrends groups ratings by calendar day (UTC) and dimension and
// averages them, producing the time series behind the feedback trends
// chart. Points are ordered by day, then dimension.
func FeedbackTrends(records []FeedbackRecord) []TrendPoint {
	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[string]map[string]*bucket)

	for _, rec := range records {
		day := rec.CreatedAt.UTC().Format("2006-01-02")
		for dim, value := range rec.Ratings {
			if buckets[day] == nil {
				buckets[day] = make(map[string]*bucket)
			}
			b := buckets[day][dim]
			if b == nil {
				b = &bucket{}
				buckets[day][dim] = b
			}
			b.sum += value
			b.count++
		}
	}

	points := make([]TrendPoint, 0, len(buckets))
	for day, fields := range buckets {
		for dim, b := range fields {
			points = append(points, TrendPoint{
				Day:           day,
				Field:         dim,
				AverageRating: b.sum / float64(b.count),
				Count:         b.count,
			})
		}
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Day != points[j].Day {
			return points[i].Day < points[j].Day
		}
		return points[i].Field < points[j].Field
	})
	return points
}

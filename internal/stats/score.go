package stats

import "sort"

// Score returns a student's percentage score given the quiz's question
// count. The denominator is always the full question count, so unanswered
// questions count as incorrect. A quiz with no questions scores 0; the
// zero-question case is defined rather than left to divide by zero.
func Score(responses []Response, questionCount int) float64 {
	if questionCount <= 0 {
		return 0
	}
	correct := 0
	for _, r := range responses {
		if r.IsCorrect {
			correct++
		}
	}
	return float64(correct) / float64(questionCount) * 100
}

// ClassStats computes the class-wide summary over grouped answers. Each
// element of answers is one distinct student's submission, so
// TotalSubmissions is simply the length.
func ClassStats(answers []StudentAnswer, questionCount int) QuizStats {
	scores := make([]float64, 0, len(answers))
	for _, a := range answers {
		scores = append(scores, Score(a.Responses, questionCount))
	}

	stats := QuizStats{TotalSubmissions: len(answers)}
	if len(scores) == 0 {
		return stats
	}

	sum := 0.0
	highest := scores[0]
	lowest := scores[0]
	for _, s := range scores {
		sum += s
		if s > highest {
			highest = s
		}
		if s < lowest {
			lowest = s
		}
	}

	stats.AverageScore = sum / float64(len(scores))
	stats.MedianScore = median(scores)
	stats.HighestScore = highest
	stats.LowestScore = lowest
	return stats
}

// median picks the element at index len/2 of the ascending-sorted scores.
// For even-length input this is the upper of the two central elements, not
// their mean; the dashboard has always reported it this way and consumers
// compare against stored values, so the rule is kept as-is.
func median(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

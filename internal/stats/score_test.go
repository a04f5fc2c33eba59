package stats

import (
	"testing"
	"time"
)

func responses(correct, wrong int) []Response {
	var rs []Response
	for i := 0; i < correct; i++ {
		rs = append(rs, Response{QuestionID: "q", Answer: "a", IsCorrect: true})
	}
	for i := 0; i < wrong; i++ {
		rs = append(rs, Response{QuestionID: "q", Answer: "b", IsCorrect: false})
	}
	return rs
}

func TestScore(t *testing.T) {
	t.Run("full marks", func(t *testing.T) {
		if got := Score(responses(4, 0), 4); got != 100 {
			t.Errorf("expected 100, got %v", got)
		}
	})

	t.Run("partial", func(t *testing.T) {
		if got := Score(responses(1, 1), 4); got != 25 {
			t.Errorf("expected 25, got %v", got)
		}
	})

	t.Run("unanswered questions count as wrong", func(t *testing.T) {
		// One correct out of two answered, but the quiz has 4 questions.
		if got := Score(responses(1, 1), 4); got != 25 {
			t.Errorf("expected denominator to be question count, got %v", got)
		}
	})

	t.Run("no responses", func(t *testing.T) {
		if got := Score(nil, 5); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("zero questions is defined as zero", func(t *testing.T) {
		if got := Score(responses(3, 0), 0); got != 0 {
			t.Errorf("expected 0 for empty quiz, got %v", got)
		}
	})
}

func TestClassStatsEmpty(t *testing.T) {
	stats := ClassStats(nil, 4)
	if stats.AverageScore != 0 || stats.MedianScore != 0 || stats.HighestScore != 0 || stats.LowestScore != 0 {
		t.Errorf("expected all-zero stats for empty input, got %+v", stats)
	}
	if stats.TotalSubmissions != 0 {
		t.Errorf("expected 0 submissions, got %d", stats.TotalSubmissions)
	}
}

func TestMedianUsesSingleIndexRule(t *testing.T) {
	// The median of an even-length list is the element at index len/2 of
	// the sorted list, not the mean of the two central values.
	answers := []StudentAnswer{
		{StudentID: "s1", Responses: responses(6, 4)}, // 60
		{StudentID: "s2", Responses: responses(7, 3)}, // 70
		{StudentID: "s3", Responses: responses(8, 2)}, // 80
		{StudentID: "s4", Responses: responses(9, 1)}, // 90
	}
	stats := ClassStats(answers, 10)
	if stats.MedianScore != 80 {
		t.Errorf("expected median 80 (index 2), got %v", stats.MedianScore)
	}
	if stats.AverageScore != 75 {
		t.Errorf("expected average 75, got %v", stats.AverageScore)
	}
	if stats.HighestScore != 90 || stats.LowestScore != 60 {
		t.Errorf("unexpected extremes: %+v", stats)
	}
}

func TestClassStatsTwoQuestionScenario(t *testing.T) {
	// Student A answers both questions correctly; student B attempts both
	// and gets one right. The denominator is always the question count.
	submitted := time.Now()
	answers := []StudentAnswer{
		{StudentID: "a", SubmittedAt: submitted, Responses: []Response{
			{QuestionID: "q1", Answer: "x", IsCorrect: true},
			{QuestionID: "q2", Answer: "y", IsCorrect: true},
		}},
		{StudentID: "b", SubmittedAt: submitted, Responses: []Response{
			{QuestionID: "q1", Answer: "x", IsCorrect: true},
			{QuestionID: "q2", Answer: "z", IsCorrect: false},
		}},
	}

	stats := ClassStats(answers, 2)
	if stats.AverageScore != 75 {
		t.Errorf("expected average 75, got %v", stats.AverageScore)
	}
	// Sorted scores are [50, 100]; index 1 is 100 under the single-index
	// median rule.
	if stats.MedianScore != 100 {
		t.Errorf("expected median 100, got %v", stats.MedianScore)
	}
	if stats.TotalSubmissions != 2 {
		t.Errorf("expected 2 submissions, got %d", stats.TotalSubmissions)
	}
}

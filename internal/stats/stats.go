// Package stats implements the quiz-results aggregation engine: score
// computation, class-wide statistics, per-student grouping, feedback
// correlation analysis and the filter/sort/paginate pipeline backing the
// results view. Everything here is pure, synchronous computation over
// in-memory collections; fetching and persistence live in the service layer.
package stats

import "time"

// Response is one student's recorded answer to one question. IsCorrect was
// computed when the answer was ingested and is authoritative here; the
// engine never re-grades against the question's correct answer.
type Response struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
	IsCorrect  bool   `json:"isCorrect"`
}

// StudentAnswer bundles all of one student's responses to one quiz.
// Unanswered questions are simply absent from Responses.
type StudentAnswer struct {
	StudentID    string     `json:"studentId"`
	StudentName  string     `json:"studentName"`
	StudentEmail string     `json:"studentEmail"`
	SubmittedAt  time.Time  `json:"submittedAt"`
	Responses    []Response `json:"responses"`
}

// AnswerRow is a flat per-question row as returned by the backend join,
// the input shape for GroupAnswers.
type AnswerRow struct {
	StudentID    string
	StudentName  string
	StudentEmail string
	QuestionID   string
	Answer       string
	IsCorrect    bool
	CreatedAt    time.Time
}

// QuizStats is the class-wide summary for one quiz. All score fields are
// percentages in [0, 100]; empty inputs yield zeros rather than NaN.
type QuizStats struct {
	AverageScore     float64 `json:"average_score"`
	MedianScore      float64 `json:"median_score"`
	HighestScore     float64 `json:"highest_score"`
	LowestScore      float64 `json:"lowest_score"`
	TotalSubmissions int     `json:"total_submissions"`
}

// FeedbackRecord carries one student's post-quiz ratings (1-5 scale, keyed
// by dimension name) and free-text answers. Non-numeric rating values are
// dropped at the fetch boundary before records reach this package.
type FeedbackRecord struct {
	StudentID string             `json:"student_id"`
	Ratings   map[string]float64 `json:"rating_field"`
	Open      map[string]string  `json:"open_field"`
	CreatedAt time.Time          `json:"created_at"`
}

// RatingStat is the per-dimension summary shown in the feedback overview.
type RatingStat struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// CorrelationMatrix maps dimension name -> dimension name -> Pearson
// coefficient in [-1, 1]. It is symmetric with a unit diagonal.
type CorrelationMatrix map[string]map[string]float64

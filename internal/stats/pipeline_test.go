package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twelveStudents builds a roster where student N answers N questions
// correctly out of 10, so scores run 10, 20, ..., 120 capped by the
// question count. Submission times increase with the index.
func twelveStudents() []StudentAnswer {
	base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	answers := make([]StudentAnswer, 0, 12)
	for i := 1; i <= 12; i++ {
		correct := i
		if correct > 10 {
			correct = 10
		}
		answers = append(answers, StudentAnswer{
			StudentID:   fmt.Sprintf("s%02d", i),
			StudentName: fmt.Sprintf("Student %02d", i),
			SubmittedAt: base.Add(time.Duration(i) * time.Minute),
			Responses:   responses(correct, 10-correct),
		})
	}
	return answers
}

func TestResultsQueryDefaults(t *testing.T) {
	q := NewResultsQuery()
	assert.Equal(t, SortBySubmitted, q.SortKey)
	assert.Equal(t, SortDesc, q.SortDir)
	assert.Equal(t, DefaultPageSize, q.DisplayCount)

	page := q.Apply(twelveStudents(), 10)
	require.Len(t, page.Answers, 5)
	assert.Equal(t, 12, page.Total)
	assert.True(t, page.HasMore)

	// Newest submission first.
	assert.Equal(t, "s12", page.Answers[0].StudentID)
}

func TestResultsQueryShowMore(t *testing.T) {
	q := NewResultsQuery()
	answers := twelveStudents()

	q = q.ShowMore(12)
	page := q.Apply(answers, 10)
	require.Len(t, page.Answers, 10)
	assert.True(t, page.HasMore)

	q = q.ShowMore(12)
	page = q.Apply(answers, 10)
	require.Len(t, page.Answers, 12)
	assert.False(t, page.HasMore)

	// Everything visible: further clicks change nothing.
	assert.Equal(t, q, q.ShowMore(12))
}

func TestResultsQueryScoreFilter(t *testing.T) {
	answers := twelveStudents()

	value := "90-100"
	q := NewResultsQuery().WithFilter(ScoreFilterKey, &value)
	page := q.Apply(answers, 10)

	// Students 9 through 12 score 90 or 100.
	require.Equal(t, 4, page.Total)
	assert.False(t, page.HasMore)
	for _, a := range page.Answers {
		score := Score(a.Responses, 10)
		assert.GreaterOrEqual(t, score, 90.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func TestResultsQueryScoreFilterBoundaries(t *testing.T) {
	answers := []StudentAnswer{{StudentID: "s1", Responses: responses(9, 1)}} // score 90

	inRange := "90-100"
	page := NewResultsQuery().WithFilter(ScoreFilterKey, &inRange).Apply(answers, 10)
	assert.Equal(t, 1, page.Total, "score 90 is inside 90-100")

	outOfRange := "0-49"
	page = NewResultsQuery().WithFilter(ScoreFilterKey, &outOfRange).Apply(answers, 10)
	assert.Equal(t, 0, page.Total, "score 90 is outside 0-49")
}

func TestResultsQueryScoreFilterOpenMax(t *testing.T) {
	answers := twelveStudents()

	value := "50"
	page := NewResultsQuery().WithFilter(ScoreFilterKey, &value).Apply(answers, 10)
	// Max defaults to 100, so students 5 through 12 match.
	assert.Equal(t, 8, page.Total)
}

func TestResultsQueryScoreFilterUnparsable(t *testing.T) {
	answers := twelveStudents()

	value := "high-low"
	page := NewResultsQuery().WithFilter(ScoreFilterKey, &value).Apply(answers, 10)
	assert.Equal(t, 0, page.Total, "an unparsable range matches nothing")
}

func TestResultsQueryQuestionFilter(t *testing.T) {
	answers := []StudentAnswer{
		{StudentID: "s1", Responses: []Response{{QuestionID: "q1", Answer: "A", IsCorrect: true}}},
		{StudentID: "s2", Responses: []Response{{QuestionID: "q1", Answer: "B", IsCorrect: false}}},
		{StudentID: "s3", Responses: nil}, // never answered q1
	}

	value := "A"
	q := NewResultsQuery().WithFilter("q1", &value)
	page := q.Apply(answers, 1)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "s1", page.Answers[0].StudentID)

	// Clearing the filter restores the full list.
	page = q.WithFilter("q1", nil).Apply(answers, 1)
	assert.Equal(t, 3, page.Total)
}

func TestResultsQuerySearch(t *testing.T) {
	answers := twelveStudents()

	page := NewResultsQuery().WithSearch("student 03").Apply(answers, 10)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "s03", page.Answers[0].StudentID)
}

func TestResultsQueryFiltersCombineWithAnd(t *testing.T) {
	answers := twelveStudents()

	value := "90-100"
	q := NewResultsQuery().WithFilter(ScoreFilterKey, &value).WithSearch("student 1")
	page := q.Apply(answers, 10)

	// "student 1" matches 01 and 10 through 12; the score range keeps only
	// 10 through 12.
	assert.Equal(t, 3, page.Total)
}

func TestResultsQueryChangesResetDisplayCount(t *testing.T) {
	answers := twelveStudents()

	q := NewResultsQuery().ShowMore(12).ShowMore(12)
	require.Equal(t, 15, q.DisplayCount)

	assert.Equal(t, DefaultPageSize, q.WithSearch("a").DisplayCount)
	assert.Equal(t, DefaultPageSize, q.WithSort(SortByName).DisplayCount)
	value := "50-100"
	assert.Equal(t, DefaultPageSize, q.WithFilter(ScoreFilterKey, &value).DisplayCount)

	page := q.WithSearch("student").Apply(answers, 10)
	assert.Len(t, page.Answers, 5)
}

func TestResultsQuerySortToggle(t *testing.T) {
	q := NewResultsQuery()

	q = q.WithSort(SortByName)
	assert.Equal(t, SortAsc, q.SortDir, "a new key starts ascending")

	q = q.WithSort(SortByName)
	assert.Equal(t, SortDesc, q.SortDir, "re-selecting toggles direction")

	q = q.WithSort(SortByScore)
	assert.Equal(t, SortAsc, q.SortDir)
	assert.Equal(t, SortByScore, q.SortKey)
}

func TestResultsQuerySortByScore(t *testing.T) {
	answers := twelveStudents()

	page := NewResultsQuery().WithSort(SortByScore).ShowMore(12).ShowMore(12).Apply(answers, 10)
	require.Equal(t, 12, page.Total)

	previous := -1.0
	for _, a := range page.Answers {
		score := Score(a.Responses, 10)
		assert.GreaterOrEqual(t, score, previous)
		previous = score
	}
}

func TestResultsQueryImmutable(t *testing.T) {
	q := NewResultsQuery()
	value := "90-100"
	derived := q.WithFilter(ScoreFilterKey, &value)

	assert.Empty(t, q.Filters, "the original query must not gain filters")
	assert.Len(t, derived.Filters, 1)
}

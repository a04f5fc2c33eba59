package stats

import (
	"reflect"
	"testing"
	"time"
)

func sampleRows() []AnswerRow {
	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return []AnswerRow{
		{StudentID: "s1", StudentName: "Ada", StudentEmail: "ada@example.com", QuestionID: "q1", Answer: "A", IsCorrect: true, CreatedAt: t0},
		{StudentID: "s2", StudentName: "Grace", StudentEmail: "grace@example.com", QuestionID: "q1", Answer: "B", IsCorrect: false, CreatedAt: t0.Add(time.Minute)},
		{StudentID: "s1", StudentName: "Ada", StudentEmail: "ada@example.com", QuestionID: "q2", Answer: "C", IsCorrect: false, CreatedAt: t0},
		{StudentID: "s2", StudentName: "Grace", StudentEmail: "grace@example.com", QuestionID: "q2", Answer: "C", IsCorrect: true, CreatedAt: t0.Add(time.Minute)},
	}
}

func TestGroupAnswers(t *testing.T) {
	grouped := GroupAnswers(sampleRows())

	if len(grouped) != 2 {
		t.Fatalf("expected 2 students, got %d", len(grouped))
	}

	// Student order follows first appearance in the input.
	if grouped[0].StudentID != "s1" || grouped[1].StudentID != "s2" {
		t.Errorf("unexpected student order: %s, %s", grouped[0].StudentID, grouped[1].StudentID)
	}

	// Responses within a student keep row order.
	ada := grouped[0]
	if len(ada.Responses) != 2 || ada.Responses[0].QuestionID != "q1" || ada.Responses[1].QuestionID != "q2" {
		t.Errorf("unexpected response order: %+v", ada.Responses)
	}
	if ada.StudentName != "Ada" || ada.StudentEmail != "ada@example.com" {
		t.Errorf("student fields not carried over: %+v", ada)
	}
}

func TestGroupAnswersIdempotent(t *testing.T) {
	rows := sampleRows()
	first := GroupAnswers(rows)
	second := GroupAnswers(rows)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("grouping is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestGroupAnswersEmpty(t *testing.T) {
	if got := GroupAnswers(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}

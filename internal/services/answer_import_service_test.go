package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newAnswerImportFixture(t *testing.T) (*mockRepository, AnswerImportService) {
	t.Helper()
	repo, _, _, results := newResultsFixture(t)
	return repo, NewAnswerImportService(repo, results, testLogger())
}

func TestImportAnswersFromCSV(t *testing.T) {
	repo, service := newAnswerImportFixture(t)

	csvData := strings.Join([]string{
		"student_id,question_id,selected_answer",
		"ext-1,q1,A",
		"ext-1,q2,C",
		"ext-2,q1,A",
		"ext-2,q2,D",
	}, "\n")

	result, err := service.ImportFromFile(context.Background(), "quiz-1", strings.NewReader(csvData), "answers.csv", "teacher-1")
	if err != nil {
		t.Fatalf("ImportFromFile: %v", err)
	}

	if result.SubmittedStudents != 2 || result.ErrorCount != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
	// Each student's rows were graded and stored.
	if len(repo.answer.saved) != 4 {
		t.Errorf("expected 4 saved answers, got %d", len(repo.answer.saved))
	}
	correct := 0
	for _, a := range repo.answer.saved {
		if a.IsCorrect {
			correct++
		}
	}
	if correct != 3 {
		t.Errorf("expected 3 correct answers, got %d", correct)
	}
}

// Imports address the quiz by internal id instead of access code, so a
// teacher without course access must be rejected before any row lands.
func TestImportAnswersDeniedForStranger(t *testing.T) {
	repo, service := newAnswerImportFixture(t)

	csvData := strings.Join([]string{
		"student_id,question_id,selected_answer",
		"ext-1,q1,A",
	}, "\n")

	_, err := service.ImportFromFile(context.Background(), "quiz-1", strings.NewReader(csvData), "answers.csv", "intruder-teacher")
	if !IsUnauthorized(err) {
		t.Fatalf("expected permission error, got %v", err)
	}
	if len(repo.answer.saved) != 0 {
		t.Errorf("expected no saved answers, got %d", len(repo.answer.saved))
	}
}

func TestImportAnswersSkipsResubmissions(t *testing.T) {
	_, service := newAnswerImportFixture(t)

	csvData := strings.Join([]string{
		"student_id,question_id,selected_answer",
		"ext-1,q1,A",
	}, "\n")

	if _, err := service.ImportFromFile(context.Background(), "quiz-1", strings.NewReader(csvData), "answers.csv", "teacher-1"); err != nil {
		t.Fatalf("first import: %v", err)
	}

	result, err := service.ImportFromFile(context.Background(), "quiz-1", strings.NewReader(csvData), "answers.csv", "teacher-1")
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if result.SubmittedStudents != 0 || result.SkippedStudents != 1 {
		t.Errorf("expected resubmission skipped, got %+v", result)
	}
}

func TestImportAnswersReportsUnknownStudents(t *testing.T) {
	_, service := newAnswerImportFixture(t)

	csvData := strings.Join([]string{
		"student_id,question_id,selected_answer",
		"nobody,q1,A",
		"ext-1,q1,A",
	}, "\n")

	result, err := service.ImportFromFile(context.Background(), "quiz-1", strings.NewReader(csvData), "answers.csv", "teacher-1")
	if err != nil {
		t.Fatalf("ImportFromFile: %v", err)
	}
	if result.SubmittedStudents != 1 || result.ErrorCount != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Value != "nobody" {
		t.Errorf("unexpected errors: %+v", result.Errors)
	}
}

func TestImportAnswersRequiresHeaderColumns(t *testing.T) {
	_, service := newAnswerImportFixture(t)

	csvData := "student,question,answer\next-1,q1,A"
	_, err := service.ImportFromFile(context.Background(), "quiz-1", strings.NewReader(csvData), "answers.csv", "teacher-1")
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
}

func TestImportAnswersRejectsUnknownExtension(t *testing.T) {
	_, service := newAnswerImportFixture(t)

	_, err := service.ImportFromFile(context.Background(), "quiz-1", strings.NewReader(""), "answers.txt", "teacher-1")
	if !errors.Is(err, ErrImportInvalidFormat) {
		t.Errorf("expected ErrImportInvalidFormat, got %v", err)
	}
}

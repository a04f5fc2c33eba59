package validator

import (
	"testing"

	"github.com/teacherhub/quiz-service/internal/models"
)

func validQuestion() models.Question {
	return models.Question{
		ID:            "q1",
		Text:          "Which keyword declares a variable?",
		Type:          models.MultipleChoice,
		Options:       []string{"var", "let", "dim"},
		CorrectAnswer: "var",
	}
}

func TestValidateQuestion(t *testing.T) {
	v := NewQuestionValidator()

	t.Run("valid multiple choice", func(t *testing.T) {
		q := validQuestion()
		if err := v.ValidateQuestion(&q); err != nil {
			t.Errorf("expected valid question, got %v", err)
		}
	})

	t.Run("correct answer must be an option", func(t *testing.T) {
		q := validQuestion()
		q.CorrectAnswer = "const"
		if err := v.ValidateQuestion(&q); err == nil {
			t.Error("expected error for answer outside options")
		}
	})

	t.Run("too few options", func(t *testing.T) {
		q := validQuestion()
		q.Options = []string{"var"}
		q.CorrectAnswer = "var"
		if err := v.ValidateQuestion(&q); err == nil {
			t.Error("expected error for single option")
		}
	})

	t.Run("true false answer", func(t *testing.T) {
		q := models.Question{ID: "q2", Text: "Go has classes.", Type: models.TrueFalse, CorrectAnswer: "False"}
		if err := v.ValidateQuestion(&q); err != nil {
			t.Errorf("expected valid question, got %v", err)
		}
		q.CorrectAnswer = "Nope"
		if err := v.ValidateQuestion(&q); err == nil {
			t.Error("expected error for non-boolean answer")
		}
	})

	t.Run("code interpretation needs a snippet", func(t *testing.T) {
		q := models.Question{
			ID:            "q3",
			Text:          "What does this print?",
			Type:          models.CodeInterpretation,
			Options:       []string{"1", "2"},
			CorrectAnswer: "2",
		}
		if err := v.ValidateQuestion(&q); err == nil {
			t.Error("expected error for missing snippet")
		}
		q.CodeSnippet = "fmt.Println(1 + 1)"
		if err := v.ValidateQuestion(&q); err != nil {
			t.Errorf("expected valid question, got %v", err)
		}
	})
}

func TestValidateBatch(t *testing.T) {
	v := NewQuestionValidator()

	if err := v.ValidateBatch(nil); err == nil {
		t.Error("expected error for empty batch")
	}

	q1 := validQuestion()
	q2 := validQuestion()
	if err := v.ValidateBatch([]models.Question{q1, q2}); err == nil {
		t.Error("expected error for duplicate question ids")
	}

	q2.ID = "q2"
	if err := v.ValidateBatch([]models.Question{q1, q2}); err != nil {
		t.Errorf("expected valid batch, got %v", err)
	}
}

func TestValidatorStructTags(t *testing.T) {
	v := New()

	quiz := &models.Quiz{ID: "quiz-1", CourseID: "course-1", Title: "Pointers", CreatedBy: "t1", Status: models.QuizDraft}
	if err := quiz.SetQuestions([]models.Question{validQuestion()}); err != nil {
		t.Fatalf("SetQuestions: %v", err)
	}
	if err := v.Validate(quiz); err != nil {
		t.Errorf("expected valid quiz, got %v", err)
	}

	quiz.Title = ""
	if err := v.Validate(quiz); err == nil {
		t.Error("expected error for missing title")
	}
}

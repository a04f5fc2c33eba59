package validator

import (
	"fmt"

	"github.com/teacherhub/quiz-service/internal/models"
)

// QuestionValidator handles question-specific validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.ID == "" {
		return fmt.Errorf("question id is required")
	}
	if question.Text == "" {
		return fmt.Errorf("question text is required")
	}

	switch question.Type {
	case models.MultipleChoice:
		return v.validateMultipleChoice(question)
	case models.TrueFalse:
		return v.validateTrueFalse(question)
	case models.CodeInterpretation:
		return v.validateCodeInterpretation(question)
	default:
		return fmt.Errorf("unsupported question type: %s", question.Type)
	}
}

// ValidateBatch validates multiple questions
func (v *QuestionValidator) ValidateBatch(questions []models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}

	seen := make(map[string]bool, len(questions))
	for i := range questions {
		question := &questions[i]
		if seen[question.ID] {
			return fmt.Errorf("duplicate question id: %s", question.ID)
		}
		seen[question.ID] = true
		if err := v.ValidateQuestion(question); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}

	return nil
}

func (v *QuestionValidator) validateMultipleChoice(question *models.Question) error {
	if len(question.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	if len(question.Options) > 10 {
		return fmt.Errorf("cannot have more than 10 options")
	}
	return v.validateCorrectAnswer(question)
}

func (v *QuestionValidator) validateTrueFalse(question *models.Question) error {
	if question.CorrectAnswer != "True" && question.CorrectAnswer != "False" {
		return fmt.Errorf("true/false answer must be True or False")
	}
	return nil
}

func (v *QuestionValidator) validateCodeInterpretation(question *models.Question) error {
	if question.CodeSnippet == "" {
		return fmt.Errorf("code snippet is required")
	}
	if len(question.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	return v.validateCorrectAnswer(question)
}

func (v *QuestionValidator) validateCorrectAnswer(question *models.Question) error {
	seen := make(map[string]bool, len(question.Options))
	for _, option := range question.Options {
		if option == "" {
			return fmt.Errorf("option text cannot be empty")
		}
		if seen[option] {
			return fmt.Errorf("duplicate option: %s", option)
		}
		seen[option] = true
	}
	if !seen[question.CorrectAnswer] {
		return fmt.Errorf("correct answer must be one of the options")
	}
	return nil
}
